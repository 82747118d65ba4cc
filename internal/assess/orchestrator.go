// Package assess implements the multi-stage assessment orchestrator:
// dispatch, concurrent specialized analyzers, correction verification,
// and final synthesis.
//
// Per request the flow is Dispatch → Await → Verify → Synthesize →
// Done. The four analyzers (grammar, vocabulary, fluency,
// pronunciation) run concurrently, each with its own timeout; a failing
// or timed-out unit is replaced with a documented neutral default and
// never aborts the others. The caller always receives a complete
// [Result] — quality degrades to lower confidence and generic feedback
// rather than failing outright. The one exception is [ErrNoSignal],
// returned when no assessable input of any kind was supplied.
package assess

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/SwarupShekhar/ENGAPP/internal/cefr"
	"github.com/SwarupShekhar/ENGAPP/internal/confidence"
	"github.com/SwarupShekhar/ENGAPP/internal/grammar"
	"github.com/SwarupShekhar/ENGAPP/internal/mispron"
	"github.com/SwarupShekhar/ENGAPP/internal/observe"
	"github.com/SwarupShekhar/ENGAPP/internal/resilience"
	"github.com/SwarupShekhar/ENGAPP/internal/speechflow"
	"github.com/SwarupShekhar/ENGAPP/internal/vocab"
	"github.com/SwarupShekhar/ENGAPP/pkg/provider/llm"
	"github.com/SwarupShekhar/ENGAPP/pkg/provider/speech"
	"github.com/SwarupShekhar/ENGAPP/pkg/types"
)

// ErrNoSignal is returned when a request carries neither a transcript
// nor speech evidence. Every other degradation produces a complete
// result instead of an error.
var ErrNoSignal = errors.New("assess: no assessable input")

// neutralScore is the documented per-dimension default applied when an
// analyzer fails.
const neutralScore = 50

const (
	defaultAnalyzerTimeout = 15 * time.Second
	defaultVerifyTimeout   = 5 * time.Second
	defaultTemperature     = 0.2
)

// Weights are the dimension weights for the overall score.
type Weights struct {
	Grammar       float64
	Vocabulary    float64
	Fluency       float64
	Pronunciation float64
}

// DefaultWeights is the calibrated weight split.
var DefaultWeights = Weights{
	Grammar:       0.25,
	Vocabulary:    0.20,
	Fluency:       0.25,
	Pronunciation: 0.30,
}

// Request is the evidence bundle for one assessment.
type Request struct {
	// Text is the transcript to assess. Required when Speech is nil.
	Text string

	// Speech carries the pronunciation assessment evidence when audio
	// was available. Its transcript takes precedence over Text.
	Speech *speech.Result

	// Audio carries the quality proxies feeding the confidence
	// calculator.
	Audio types.AudioSignal

	// NativeLanguage optionally names the learner's first language,
	// used in feedback wording only.
	NativeLanguage string
}

// text returns the transcript to analyze.
func (r Request) text() string {
	if r.Speech != nil && r.Speech.Transcript.Text != "" {
		return r.Speech.Transcript.Text
	}
	return r.Text
}

// words returns the word-level evidence, nil for text-only requests.
func (r Request) words() []types.WordObservation {
	if r.Speech == nil {
		return nil
	}
	return r.Speech.Transcript.Words
}

// speechRateWPM derives words per minute from the audio signal. With no
// usable duration it returns a mid-band neutral rate so the flow score
// is not penalized for missing evidence.
func (r Request) speechRateWPM() float64 {
	if r.Audio.Duration > 0 && r.Audio.WordCount > 0 {
		return float64(r.Audio.WordCount) / r.Audio.Duration.Minutes()
	}
	return 150
}

// Option configures an [Orchestrator].
type Option func(*Orchestrator)

// WithWeights overrides the dimension weights.
func WithWeights(w Weights) Option {
	return func(o *Orchestrator) { o.weights = w }
}

// WithAnalyzerTimeout overrides the per-analyzer timeout.
func WithAnalyzerTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// WithVerifyTimeout overrides the per-correction verification timeout.
func WithVerifyTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.verifyTimeout = d }
}

// WithDetector overrides the mispronunciation detector.
func WithDetector(d *mispron.Detector) Option {
	return func(o *Orchestrator) { o.detector = d }
}

// WithVocabulary overrides the vocabulary analyzer.
func WithVocabulary(a *vocab.Analyzer) Option {
	return func(o *Orchestrator) { o.vocab = a }
}

// WithCEFR overrides the baseline CEFR classifier.
func WithCEFR(c *cefr.Classifier) Option {
	return func(o *Orchestrator) { o.cefr = c }
}

// WithMetrics overrides the metrics instance, mainly for tests.
func WithMetrics(m *observe.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithRetry overrides the retry policy applied to every model call.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(o *Orchestrator) { o.retry = cfg }
}

// Orchestrator runs the full assessment pipeline. Construct with [New];
// safe for concurrent use.
type Orchestrator struct {
	llm      llm.Provider
	detector *mispron.Detector
	vocab    *vocab.Analyzer
	cefr     *cefr.Classifier

	weights       Weights
	timeout       time.Duration
	verifyTimeout time.Duration
	temperature   float64

	retry   resilience.RetryConfig
	breaker *resilience.Breaker
	metrics *observe.Metrics
}

// New creates an Orchestrator backed by the given model provider.
func New(provider llm.Provider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		llm:           provider,
		detector:      mispron.New(nil),
		vocab:         vocab.NewAnalyzer(),
		cefr:          cefr.New(cefr.DefaultCutoffs),
		weights:       DefaultWeights,
		timeout:       defaultAnalyzerTimeout,
		verifyTimeout: defaultVerifyTimeout,
		temperature:   defaultTemperature,
		breaker:       resilience.NewBreaker(resilience.BreakerConfig{Name: "llm"}),
		metrics:       observe.DefaultMetrics(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Assess runs one full assessment. It blocks until all four analyzers
// settle, then verifies grammar corrections and synthesizes the final
// result. Analyzer failures degrade to neutral defaults; only a request
// with no signal at all returns an error.
func (o *Orchestrator) Assess(ctx context.Context, req Request) (*Result, error) {
	if req.text() == "" && len(req.words()) == 0 {
		return nil, ErrNoSignal
	}

	start := time.Now()
	o.metrics.ActiveAssessments.Add(ctx, 1)
	defer o.metrics.ActiveAssessments.Add(context.WithoutCancel(ctx), -1)

	ctx, span := observe.StartSpan(ctx, "assess.Assess")
	defer span.End()

	text := req.text()
	baseline := o.cefr.Classify(text)

	// Await: fan out the four analyzers. Each goroutine owns its result
	// slot; failures are captured per slot, never returned to the group.
	var (
		gOut grammarAnalysis
		gErr error
		vOut vocabAnalysis
		vErr error
		fOut speechflow.FluencyResult
		fErr error
		pOut pronAnalysis
		pErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		gOut, gErr = timed(ctx, o, "grammar", func(ctx context.Context) (grammarAnalysis, error) {
			return o.analyzeGrammar(ctx, text, baseline.Level)
		})
		return nil
	})
	g.Go(func() error {
		vOut, vErr = timed(ctx, o, "vocabulary", func(ctx context.Context) (vocabAnalysis, error) {
			return o.analyzeVocabulary(ctx, text, baseline.Level)
		})
		return nil
	})
	g.Go(func() error {
		fOut, fErr = timed(ctx, o, "fluency", func(ctx context.Context) (speechflow.FluencyResult, error) {
			return o.analyzeFluency(ctx, req)
		})
		return nil
	})
	g.Go(func() error {
		pOut, pErr = timed(ctx, o, "pronunciation", func(ctx context.Context) (pronAnalysis, error) {
			return o.analyzePronunciation(ctx, req)
		})
		return nil
	})
	g.Wait()

	if gErr != nil && vErr != nil && fErr != nil && pErr != nil {
		o.metrics.RecordAssessment(context.WithoutCancel(ctx), "fallback")
		res := o.fallbackResult(baseline, req, start)
		span.SetAttributes(observe.AssessmentAttrs(res.ID, string(res.Level), true)...)
		return res, nil
	}

	// Verify: check the model's grammar corrections before scoring.
	var records []types.ErrorRecord
	gScore := types.DimensionScore{
		Value:         neutralScore,
		Justification: "Grammar analysis unavailable for this sample.",
	}
	if gErr == nil {
		verified := o.verifyCorrections(ctx, gOut.reported())
		classified := grammar.Classify(verified, gOut.sentenceStructures())
		gScore = types.DimensionScore{
			Value:         classified.Score,
			Breakdown:     classified.Breakdown(),
			Justification: gOut.Justification,
		}
		records = classified.ErrorRecords()
	}

	vScore := types.DimensionScore{
		Value:         neutralScore,
		Justification: "Vocabulary analysis unavailable for this sample.",
	}
	if vErr == nil {
		vScore = types.DimensionScore{
			Value:         vOut.Local.Score,
			Breakdown:     vOut.Local.Breakdown(),
			Justification: vOut.Justification,
		}
		records = append(records, vocabRecords(vOut.Flags)...)
	}

	fScore := types.DimensionScore{
		Value:         neutralScore,
		Justification: "Fluency analysis unavailable for this sample.",
	}
	if fErr == nil {
		fScore = types.DimensionScore{
			Value:     fOut.Overall,
			Breakdown: fOut.Breakdown(),
		}
	}

	pScore := types.DimensionScore{
		Value:         neutralScore,
		Justification: "Pronunciation analysis unavailable for this sample.",
	}
	var report *mispron.Report
	if pErr == nil {
		pScore = pOut.Score
		report = pOut.Report
	}

	result := o.synthesize(synthesisInput{
		baseline:   baseline,
		audio:      req.Audio,
		grammar:    gScore,
		vocabulary: vScore,
		fluency:    fScore,
		pron:       pScore,
		records:    records,
		report:     report,
		elapsed:    time.Since(start),
	})

	span.SetAttributes(observe.AssessmentAttrs(result.ID, string(result.Level), false)...)
	o.metrics.RecordAssessment(context.WithoutCancel(ctx), "ok")
	o.metrics.AssessmentDuration.Record(context.WithoutCancel(ctx), time.Since(start).Seconds())
	return result, nil
}

// fallbackResult is the all-analyzers-failed escape: neutral scores
// across the board with disclaimer feedback, never an error.
func (o *Orchestrator) fallbackResult(baseline cefr.Estimate, req Request, start time.Time) *Result {
	neutral := types.DimensionScore{Value: neutralScore}
	return &Result{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now(),
		Level:      baseline.Level,
		LevelScore: neutralScore,
		Confidence: confidence.Calculate(req.Audio),
		Metrics: Metrics{
			Grammar:       neutral,
			Vocabulary:    neutral,
			Fluency:       neutral,
			Pronunciation: neutral,
			Overall:       neutralScore,
		},
		Feedback: "Assessment is temporarily degraded. Scores are placeholders; please try again.",
		Fallback: true,
		Elapsed:  time.Since(start),
	}
}

// vocabRecords converts model word flags into minor vocabulary errors.
func vocabRecords(flags []vocabFlag) []types.ErrorRecord {
	out := make([]types.ErrorRecord, 0, len(flags))
	for _, f := range flags {
		out = append(out, types.ErrorRecord{
			Kind:        types.MetricVocabulary,
			Severity:    types.SeverityMinor,
			Original:    f.Word,
			Corrected:   f.Suggestion,
			RuleName:    "word_choice",
			Explanation: f.Issue,
		})
	}
	return out
}

func analyzerAttr(name string) metric.RecordOption {
	return metric.WithAttributes(attribute.String("analyzer", name))
}
