package assess_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/SwarupShekhar/ENGAPP/internal/assess"
	"github.com/SwarupShekhar/ENGAPP/internal/observe"
	"github.com/SwarupShekhar/ENGAPP/pkg/provider/llm"
	"github.com/SwarupShekhar/ENGAPP/pkg/provider/speech"
	"github.com/SwarupShekhar/ENGAPP/pkg/types"
)

const (
	grammarReply = `{"errors": [{"original": "she have", "corrected": "she has", "type": "subject_verb_disagreement", "severity": "TIER_1", "explanation": "Subject and verb must agree."}], "structures": [{"sentence": "Although it rained, we walked to the market.", "type": "complex", "features": ["subordinate_clause"]}], "justification": "Mostly accurate grammar with one agreement slip."}`

	vocabReply = `{"precision": 80, "flags": [{"word": "make research", "issue": "wrong collocation", "suggestion": "conduct research"}], "justification": "Varied word choice."}`

	fluencyReply = `{"filler_total": 2, "self_corrections": 1, "discourse_markers": ["however"], "justification": "Few hesitations."}`

	verifyReply = `{"valid": true, "reason": "the corrected form agrees with its subject"}`
)

// routeProvider answers by prompt kind so concurrent analyzer calls
// stay deterministic.
type routeProvider struct {
	mu    sync.Mutex
	calls int

	grammarBlocks bool
	failAll       bool
}

func (p *routeProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if p.failAll {
		return nil, errors.New("backend down")
	}

	switch {
	case strings.Contains(req.SystemPrompt, "grammar expert"):
		if p.grammarBlocks {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return &llm.CompletionResponse{Content: grammarReply}, nil
	case strings.Contains(req.SystemPrompt, "vocabulary expert"):
		return &llm.CompletionResponse{Content: vocabReply}, nil
	case strings.Contains(req.SystemPrompt, "fluency expert"):
		return &llm.CompletionResponse{Content: fluencyReply}, nil
	default:
		return &llm.CompletionResponse{Content: verifyReply}, nil
	}
}

func testOrchestrator(t *testing.T, p llm.Provider, opts ...assess.Option) *assess.Orchestrator {
	t.Helper()
	m, err := observe.NewMetrics(sdkmetric.NewMeterProvider())
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return assess.New(p, append([]assess.Option{assess.WithMetrics(m)}, opts...)...)
}

const sampleText = "Although it rained, we walked to the market. She have a new umbrella, however it broke."

func TestAssessTextOnly(t *testing.T) {
	t.Parallel()

	o := testOrchestrator(t, &routeProvider{})
	res, err := o.Assess(context.Background(), assess.Request{Text: sampleText})
	if err != nil {
		t.Fatalf("Assess() error = %v", err)
	}

	// One tier-1 error (penalty 10) plus one complex structure (bonus 3).
	if got, want := res.Metrics.Grammar.Value, 93.0; got != want {
		t.Errorf("grammar score = %v, want %v", got, want)
	}
	if got, want := res.Metrics.Pronunciation.Value, 50.0; got != want {
		t.Errorf("pronunciation score without speech evidence = %v, want neutral %v", got, want)
	}
	if res.Insights != nil {
		t.Errorf("Insights = %+v, want nil without speech evidence", res.Insights)
	}

	wantOverall := res.Metrics.Grammar.Value*0.25 +
		res.Metrics.Vocabulary.Value*0.20 +
		res.Metrics.Fluency.Value*0.25 +
		res.Metrics.Pronunciation.Value*0.30
	if math.Abs(res.Metrics.Overall-wantOverall) > 1e-9 {
		t.Errorf("overall = %v, want weighted %v", res.Metrics.Overall, wantOverall)
	}

	var grammarRecords, vocabRecords int
	for _, e := range res.Errors {
		switch e.Kind {
		case types.MetricGrammar:
			grammarRecords++
		case types.MetricVocabulary:
			vocabRecords++
		}
	}
	if grammarRecords != 1 || vocabRecords != 1 {
		t.Errorf("error records = %d grammar / %d vocabulary, want 1 / 1", grammarRecords, vocabRecords)
	}

	if res.ID == "" {
		t.Error("result ID is empty")
	}
	if !res.Level.IsValid() {
		t.Errorf("level %q is not a valid CEFR band", res.Level)
	}
	if len(res.Tasks) > 3 {
		t.Errorf("got %d tasks, want at most 3", len(res.Tasks))
	}
	if res.Fallback {
		t.Error("Fallback = true on a successful assessment")
	}
}

func TestAssessGrammarTimeoutFallsBackToNeutral(t *testing.T) {
	t.Parallel()

	o := testOrchestrator(t, &routeProvider{grammarBlocks: true},
		assess.WithAnalyzerTimeout(100*time.Millisecond))

	res, err := o.Assess(context.Background(), assess.Request{Text: sampleText})
	if err != nil {
		t.Fatalf("Assess() error = %v", err)
	}

	if got, want := res.Metrics.Grammar.Value, 50.0; got != want {
		t.Errorf("grammar score after timeout = %v, want neutral %v", got, want)
	}
	if res.Fallback {
		t.Error("Fallback = true, want false when only one analyzer failed")
	}

	wantOverall := 50.0*0.25 +
		res.Metrics.Vocabulary.Value*0.20 +
		res.Metrics.Fluency.Value*0.25 +
		res.Metrics.Pronunciation.Value*0.30
	if math.Abs(res.Metrics.Overall-wantOverall) > 1e-9 {
		t.Errorf("overall = %v, want %v (25%% weight on the neutral default)", res.Metrics.Overall, wantOverall)
	}

	for _, e := range res.Errors {
		if e.Kind == types.MetricGrammar {
			t.Errorf("unexpected grammar error record %+v after analyzer timeout", e)
		}
	}
}

func TestAssessWithSpeechEvidence(t *testing.T) {
	t.Parallel()

	sp := &speech.Result{
		Transcript: types.Transcript{
			Text: "the water was very cold",
			Words: []types.WordObservation{
				{
					Text:          "water",
					AccuracyScore: 78,
					Duration:      300 * time.Millisecond,
					Phonemes: []types.PhonemeObservation{
						{
							Expected:      "w",
							AccuracyScore: 70,
							Candidates: []types.PhonemeCandidate{
								{Symbol: "w", Rank: 0},
								{Symbol: "v", Rank: 1},
							},
						},
					},
				},
			},
			Duration: 2 * time.Second,
		},
		AccuracyScore: 90,
		FluencyScore:  82,
		ProsodyScore:  85,
	}

	o := testOrchestrator(t, &routeProvider{})
	res, err := o.Assess(context.Background(), assess.Request{
		Speech: sp,
		Audio:  types.AudioSignal{Quality: 92, Duration: 2 * time.Second, WordCount: 5},
	})
	if err != nil {
		t.Fatalf("Assess() error = %v", err)
	}

	if res.Insights == nil {
		t.Fatal("Insights = nil, want report with v/w pattern")
	}
	found := false
	for _, p := range res.Insights.Patterns {
		if p.Name == "v_w_confusion" && p.Word == "water" {
			found = true
		}
	}
	if !found {
		t.Errorf("patterns = %+v, want v_w_confusion for water", res.Insights.Patterns)
	}

	// Base accuracy 90 minus one minor-error penalty of 2.
	if got, want := res.Metrics.Pronunciation.Value, 88.0; got != want {
		t.Errorf("pronunciation = %v, want %v", got, want)
	}
}

func TestAssessNoSignal(t *testing.T) {
	t.Parallel()

	o := testOrchestrator(t, &routeProvider{})
	_, err := o.Assess(context.Background(), assess.Request{})
	if !errors.Is(err, assess.ErrNoSignal) {
		t.Errorf("Assess() error = %v, want ErrNoSignal", err)
	}
}

func TestAssessAllFailedReturnsFallbackResult(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := testOrchestrator(t, &routeProvider{failAll: true})
	res, err := o.Assess(ctx, assess.Request{Text: sampleText})
	if err != nil {
		t.Fatalf("Assess() error = %v, want fallback result instead", err)
	}
	if !res.Fallback {
		t.Fatal("Fallback = false, want true when every analyzer failed")
	}
	if res.Metrics.Overall != 50 {
		t.Errorf("fallback overall = %v, want 50", res.Metrics.Overall)
	}
	if res.Feedback == "" {
		t.Error("fallback feedback is empty, want disclaimer text")
	}
	if len(res.Errors) != 0 {
		t.Errorf("fallback errors = %+v, want empty", res.Errors)
	}
}
