package assess

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SwarupShekhar/ENGAPP/internal/grammar"
	"github.com/SwarupShekhar/ENGAPP/internal/jsonrecover"
	"github.com/SwarupShekhar/ENGAPP/internal/mispron"
	"github.com/SwarupShekhar/ENGAPP/internal/observe"
	"github.com/SwarupShekhar/ENGAPP/internal/resilience"
	"github.com/SwarupShekhar/ENGAPP/internal/speechflow"
	"github.com/SwarupShekhar/ENGAPP/internal/vocab"
	"github.com/SwarupShekhar/ENGAPP/pkg/provider/llm"
	"github.com/SwarupShekhar/ENGAPP/pkg/types"
)

// Per-word penalties the pronunciation score applies on top of the
// recognizer's accuracy evidence.
const (
	criticalErrorPenalty = 5
	minorErrorPenalty    = 2
)

const grammarSystem = `You are a grammar expert assessing English learners. Analyze ONLY grammar. Respond with JSON only, no prose.`

const grammarPromptFormat = `Expected level: %s

Text: %q

Find grammar errors and annotate sentence structures.

CALIBRATION:
- "I go to school yesterday" (A1): wrong tense, TIER_1
- "Although I was tired, but I continued" (B1): redundant conjunction, TIER_2
- "Having finished the project, we celebrated" (C1): correct participle clause, no error

Respond ONLY with JSON:
{
  "errors": [
    {
      "original": "exact phrase with error",
      "corrected": "correct version",
      "type": "wrong_tense_context|subject_verb_disagreement|missing_auxiliary|word_order_chaos|article_error|preposition_error|plural_form_error|wrong_verb_form|article_omission_casual|uncountable_plural|redundant_preposition|colloquial_contraction",
      "severity": "TIER_1|TIER_2|TIER_3",
      "explanation": "brief explanation"
    }
  ],
  "structures": [
    {
      "sentence": "full sentence",
      "type": "simple|compound|complex|compound-complex",
      "features": ["subordinate_clause", "passive_voice", "conditional"]
    }
  ],
  "justification": "1 sentence explaining overall grammar quality"
}`

const vocabularySystem = `You are a vocabulary expert assessing English learners. Analyze ONLY vocabulary precision. Respond with JSON only, no prose.`

const vocabularyPromptFormat = `Expected level: %s

Text: %q

Rate collocation and word-choice precision 0-100 and flag misused words.

CALIBRATION:
- "make research about the topic": precision 50, flag "make research" -> "conduct research"
- "The conference proved invaluable": precision 90+

Respond ONLY with JSON:
{
  "precision": <number 0-100>,
  "flags": [
    {
      "word": "misused word or phrase",
      "issue": "what is wrong",
      "suggestion": "better choice"
    }
  ],
  "justification": "1 sentence"
}`

const fluencySystem = `You are a fluency expert assessing English learners. Count hesitation signals in the transcript. Respond with JSON only, no prose.`

const fluencyPromptFormat = `Text: %q

Count filler words (um, uh, like, basically, you know), self-corrections
and false starts, and list natural discourse markers (however, moreover,
by the way).

Respond ONLY with JSON:
{
  "filler_total": <int>,
  "self_corrections": <int>,
  "discourse_markers": ["however"],
  "justification": "1 sentence"
}`

// grammarAnalysis is the parsed grammar model reply.
type grammarAnalysis struct {
	Errors []struct {
		Original    string `json:"original"`
		Corrected   string `json:"corrected"`
		Type        string `json:"type"`
		Severity    string `json:"severity"`
		Explanation string `json:"explanation"`
	} `json:"errors"`
	Structures []struct {
		Sentence string   `json:"sentence"`
		Type     string   `json:"type"`
		Features []string `json:"features"`
	} `json:"structures"`
	Justification string `json:"justification"`
}

// reported converts the parsed errors to the classifier's input shape.
func (a grammarAnalysis) reported() []grammar.ReportedError {
	out := make([]grammar.ReportedError, 0, len(a.Errors))
	for _, e := range a.Errors {
		out = append(out, grammar.ReportedError{
			Original:    e.Original,
			Corrected:   e.Corrected,
			Type:        e.Type,
			Severity:    e.Severity,
			Explanation: e.Explanation,
		})
	}
	return out
}

func (a grammarAnalysis) sentenceStructures() []grammar.SentenceStructure {
	out := make([]grammar.SentenceStructure, 0, len(a.Structures))
	for _, s := range a.Structures {
		out = append(out, grammar.SentenceStructure{
			Sentence: s.Sentence,
			Type:     s.Type,
			Features: s.Features,
		})
	}
	return out
}

// vocabAnalysis pairs the local vocabulary result with the model's
// precision judgement and word flags.
type vocabAnalysis struct {
	Local         vocab.Result
	Flags         []vocabFlag
	Justification string
}

type vocabFlag struct {
	Word       string `json:"word"`
	Issue      string `json:"issue"`
	Suggestion string `json:"suggestion"`
}

// pronAnalysis is the pronunciation unit's output: a dimension score
// derived from recognizer evidence plus the phonetic insight report.
type pronAnalysis struct {
	Score  types.DimensionScore
	Report *mispron.Report
}

// complete issues one model call through the provider, wrapped in the
// retry policy and circuit breaker, recording the standard provider
// metrics. An open breaker fails immediately without retrying.
func (o *Orchestrator) complete(ctx context.Context, system, user string) (string, error) {
	var content string
	err := resilience.Retry(ctx, o.retry, func(ctx context.Context) error {
		err := o.breaker.Execute(func() error {
			resp, err := o.llm.Complete(ctx, llm.CompletionRequest{
				SystemPrompt: system,
				Messages: []llm.Message{
					{Role: llm.RoleUser, Content: user},
				},
				Temperature: o.temperature,
			})
			if err != nil {
				return err
			}
			content = resp.Content
			return nil
		})
		if errors.Is(err, resilience.ErrOpen) {
			return resilience.Permanent(err)
		}
		return err
	})
	if err != nil {
		o.metrics.RecordProviderError(ctx, "llm", "completion")
		return "", err
	}
	o.metrics.RecordProviderRequest(ctx, "llm", "completion", "ok")
	return content, nil
}

// analyzeGrammar asks the model for errors and sentence structures. A
// failed call is an analyzer failure; a malformed reply degrades to an
// empty error list.
func (o *Orchestrator) analyzeGrammar(ctx context.Context, text string, level types.CEFRLevel) (grammarAnalysis, error) {
	content, err := o.complete(ctx, grammarSystem, fmt.Sprintf(grammarPromptFormat, level, text))
	if err != nil {
		return grammarAnalysis{}, fmt.Errorf("grammar analysis: %w", err)
	}

	var parsed grammarAnalysis
	if !jsonrecover.ParseValidated(content, jsonrecover.SchemaGrammarAnalysis, &parsed) {
		observe.Logger(ctx).Warn("grammar reply unrecoverable, degrading to no errors")
		return grammarAnalysis{Justification: "Grammar detail unavailable for this sample."}, nil
	}
	return parsed, nil
}

// analyzeVocabulary runs the local lexical analysis and refines its
// precision component with the model's judgement.
func (o *Orchestrator) analyzeVocabulary(ctx context.Context, text string, level types.CEFRLevel) (vocabAnalysis, error) {
	content, err := o.complete(ctx, vocabularySystem, fmt.Sprintf(vocabularyPromptFormat, level, text))
	if err != nil {
		return vocabAnalysis{}, fmt.Errorf("vocabulary analysis: %w", err)
	}

	local := o.vocab.Analyze(text)

	var parsed struct {
		Precision     float64     `json:"precision"`
		Flags         []vocabFlag `json:"flags"`
		Justification string      `json:"justification"`
	}
	if !jsonrecover.ParseValidated(content, jsonrecover.SchemaVocabularyAnalysis, &parsed) {
		observe.Logger(ctx).Warn("vocabulary reply unrecoverable, keeping local precision")
		return vocabAnalysis{Local: local}, nil
	}

	return vocabAnalysis{
		Local:         local.WithPrecision(parsed.Precision),
		Flags:         parsed.Flags,
		Justification: parsed.Justification,
	}, nil
}

// analyzeFluency counts hesitation signals with the model and feeds
// them into the timing-based recalibration.
func (o *Orchestrator) analyzeFluency(ctx context.Context, req Request) (speechflow.FluencyResult, error) {
	content, err := o.complete(ctx, fluencySystem, fmt.Sprintf(fluencyPromptFormat, req.text()))
	if err != nil {
		return speechflow.FluencyResult{}, fmt.Errorf("fluency analysis: %w", err)
	}

	pauses := 0
	var parsed struct {
		FillerTotal     int `json:"filler_total"`
		SelfCorrections int `json:"self_corrections"`
	}
	if jsonrecover.ParseValidated(content, jsonrecover.SchemaFluencyAnalysis, &parsed) {
		pauses = parsed.FillerTotal + parsed.SelfCorrections
	} else {
		observe.Logger(ctx).Warn("fluency reply unrecoverable, assuming no hesitations")
	}

	base, prosody := 70.0, 70.0
	if req.Speech != nil {
		base = req.Speech.FluencyScore
		prosody = req.Speech.ProsodyScore
	}

	return speechflow.Recalibrate(speechflow.FluencyInput{
		BaseFluency:     base,
		Prosody:         prosody,
		SpeechRateWPM:   req.speechRateWPM(),
		MidPhrasePauses: pauses,
		Transcript:      req.text(),
		Words:           req.words(),
	}), nil
}

// analyzePronunciation scores pronunciation from recognizer evidence
// alone: the dual-pass detector surfaces errors and patterns, and the
// word accuracy evidence anchors the score. It never calls the model.
func (o *Orchestrator) analyzePronunciation(ctx context.Context, req Request) (pronAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return pronAnalysis{}, err
	}

	words := req.words()
	if len(words) == 0 {
		return pronAnalysis{
			Score: types.DimensionScore{
				Value:         neutralScore,
				Justification: "No speech evidence supplied; pronunciation not assessed.",
			},
		}, nil
	}

	report := o.detector.Detect(req.text(), words)

	base := 0.0
	if req.Speech != nil && req.Speech.AccuracyScore > 0 {
		base = req.Speech.AccuracyScore
	} else {
		n := 0
		for _, w := range words {
			if w.ErrorKind == types.ErrorOmission {
				continue
			}
			base += w.AccuracyScore
			n++
		}
		if n > 0 {
			base /= float64(n)
		}
	}

	penalty := 0.0
	justification := "No systematic pronunciation issues detected."
	if report != nil {
		penalty = float64(len(report.CriticalErrors))*criticalErrorPenalty +
			float64(len(report.MinorErrors))*minorErrorPenalty
		justification = fmt.Sprintf("%d critical and %d minor pronunciation errors, %d interference patterns.",
			len(report.CriticalErrors), len(report.MinorErrors), len(report.Patterns))
	}

	value := max(0, min(100, base-penalty))
	return pronAnalysis{
		Score: types.DimensionScore{
			Value: value,
			Breakdown: map[string]float64{
				"accuracy":      base,
				"error_penalty": penalty,
			},
			Justification: justification,
		},
		Report: report,
	}, nil
}

// timed wraps an analyzer unit with the duration histogram and failure
// counter, and applies the per-analyzer timeout.
func timed[T any](ctx context.Context, o *Orchestrator, name string, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	out, err := fn(ctx)
	o.metrics.AnalyzerDuration.Record(ctx, time.Since(start).Seconds(),
		analyzerAttr(name))
	if err != nil {
		reason := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		o.metrics.RecordAnalyzerFailure(context.WithoutCancel(ctx), name, reason)
		observe.Logger(ctx).Error("analyzer failed, using neutral default",
			"analyzer", name, "error", err)
	}
	return out, err
}
