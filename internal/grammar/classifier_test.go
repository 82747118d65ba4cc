package grammar_test

import (
	"testing"

	"github.com/SwarupShekhar/ENGAPP/internal/grammar"
	"github.com/SwarupShekhar/ENGAPP/pkg/types"
)

func TestClassify_NoErrorsNoBonus(t *testing.T) {
	t.Parallel()

	r := grammar.Classify(nil, nil)
	if r.Score != 100 {
		t.Errorf("Score = %v, want 100 for clean input", r.Score)
	}
	if r.TotalErrors() != 0 {
		t.Errorf("TotalErrors() = %d, want 0", r.TotalErrors())
	}
	if r.SentenceComplexity != 50 {
		t.Errorf("SentenceComplexity = %v, want neutral 50", r.SentenceComplexity)
	}
}

func TestClassify_TierPenalties(t *testing.T) {
	t.Parallel()

	errs := []grammar.ReportedError{
		{Original: "Yesterday I go", Corrected: "Yesterday I went", Type: "wrong_tense_context", Severity: "TIER_1"},
		{Original: "I am engineer", Corrected: "I am an engineer", Type: "article_error", Severity: "TIER_2"},
		{Original: "informations", Corrected: "information", Type: "uncountable_plural", Severity: "TIER_3"},
	}

	r := grammar.Classify(errs, nil)
	if want := 100.0 - 10 - 5 - 2; r.Score != want {
		t.Errorf("Score = %v, want %v", r.Score, want)
	}
	if got := len(r.ErrorsByTier[grammar.Tier1]); got != 1 {
		t.Errorf("Tier1 errors = %d, want 1", got)
	}
}

func TestClassify_TierResolutionFallsBackToTypeThenDefault(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  grammar.ReportedError
		want grammar.Tier
	}{
		{"explicit tag wins over type", grammar.ReportedError{Type: "uncountable_plural", Severity: "TIER_1"}, grammar.Tier1},
		{"severity alias", grammar.ReportedError{Type: "whatever", Severity: "minor"}, grammar.Tier3},
		{"type keyword", grammar.ReportedError{Type: "subject_verb_disagreement"}, grammar.Tier1},
		{"unknown defaults to tier 2", grammar.ReportedError{Type: "mystery_error", Severity: "TIER_9"}, grammar.Tier2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := grammar.Classify([]grammar.ReportedError{tc.err}, nil)
			if got := len(r.ErrorsByTier[tc.want]); got != 1 {
				t.Errorf("error landed in %+v, want tier %d", r.ErrorsByTier, tc.want)
			}
		})
	}
}

func TestClassify_ScoreClampsAtZero(t *testing.T) {
	t.Parallel()

	errs := make([]grammar.ReportedError, 20)
	for i := range errs {
		errs[i] = grammar.ReportedError{Type: "wrong_tense_context", Severity: "TIER_1"}
	}

	r := grammar.Classify(errs, nil)
	if r.Score != 0 {
		t.Errorf("Score = %v, want floor 0 for 20 tier-1 errors", r.Score)
	}
}

func TestClassify_ScoreClampsAtHundred(t *testing.T) {
	t.Parallel()

	structures := []grammar.SentenceStructure{
		{Type: "complex", Features: []string{"passive_voice", "conditional"}},
		{Type: "compound-complex", Features: []string{"conditional"}},
	}

	r := grammar.Classify(nil, structures)
	if r.Score != 100 {
		t.Errorf("Score = %v, want ceiling 100 with bonus and no errors", r.Score)
	}
}

func TestClassify_ComplexityBonusCapsAtFifteen(t *testing.T) {
	t.Parallel()

	structures := make([]grammar.SentenceStructure, 10)
	for i := range structures {
		structures[i] = grammar.SentenceStructure{Type: "complex", Features: []string{"passive_voice"}}
	}

	r := grammar.Classify(nil, structures)
	if r.ComplexityBonus != 15 {
		t.Errorf("ComplexityBonus = %v, want cap 15", r.ComplexityBonus)
	}
}

func TestClassify_TenseAndArticleSubScores(t *testing.T) {
	t.Parallel()

	errs := []grammar.ReportedError{
		{Type: "wrong_tense_context"},
		{Type: "wrong_verb_form"},
		{Type: "article_error"},
	}

	r := grammar.Classify(errs, nil)
	if r.TenseControl != 70 {
		t.Errorf("TenseControl = %v, want 70 (two tense/verb errors at 15 each)", r.TenseControl)
	}
	if r.ArticleUsage != 90 {
		t.Errorf("ArticleUsage = %v, want 90 (one article error at 10)", r.ArticleUsage)
	}
}

func TestClassify_SentenceComplexityVariety(t *testing.T) {
	t.Parallel()

	structures := []grammar.SentenceStructure{
		{Type: "simple"},
		{Type: "compound"},
		{Type: "complex"},
	}

	r := grammar.Classify(nil, structures)
	// 40 + 3 distinct types * 15 + 10 for a complex form = 95.
	if r.SentenceComplexity != 95 {
		t.Errorf("SentenceComplexity = %v, want 95", r.SentenceComplexity)
	}
}

func TestResult_ErrorRecordsOrderedWorstFirst(t *testing.T) {
	t.Parallel()

	errs := []grammar.ReportedError{
		{Original: "a", Type: "uncountable_plural"},
		{Original: "b", Type: "wrong_tense_context"},
	}

	records := grammar.Classify(errs, nil).ErrorRecords()
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].Severity != types.SeverityCritical {
		t.Errorf("records[0].Severity = %q, want critical first", records[0].Severity)
	}
	if records[0].Kind != types.MetricGrammar {
		t.Errorf("records[0].Kind = %q, want grammar", records[0].Kind)
	}
}
