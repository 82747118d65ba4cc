// Package grammar turns LLM-reported grammar errors into a calibrated
// 0–100 score with a three-tier severity taxonomy.
//
// The language model finds the errors; this package decides how much
// each one costs. Keeping the penalty arithmetic out of the model makes
// scores reproducible across model versions and prompt tweaks.
package grammar

import (
	"strings"

	"github.com/SwarupShekhar/ENGAPP/pkg/types"
)

// Tier is an error severity tier. Lower tiers cost more.
type Tier int

const (
	// Tier1 errors block comprehension ("Yesterday I go").
	Tier1 Tier = 1

	// Tier2 errors are noticeable but understandable ("I am engineer").
	Tier2 Tier = 2

	// Tier3 errors are minor slips a listener barely registers.
	Tier3 Tier = 3
)

// Penalty returns the score penalty for one error of this tier.
func (t Tier) Penalty() float64 {
	switch t {
	case Tier1:
		return 10
	case Tier3:
		return 2
	default:
		return 5
	}
}

// Severity maps the tier onto the shared severity scale.
func (t Tier) Severity() types.Severity {
	switch t {
	case Tier1:
		return types.SeverityCritical
	case Tier3:
		return types.SeverityMinor
	default:
		return types.SeverityMajor
	}
}

// maxComplexityBonus caps the reward for complex structure use.
const maxComplexityBonus = 15

// ReportedError is one grammar error as reported upstream, before tier
// resolution.
type ReportedError struct {
	Original    string
	Corrected   string
	Type        string
	Severity    string
	Explanation string
}

// SentenceStructure is one upstream sentence-structure annotation.
type SentenceStructure struct {
	Sentence string
	Type     string
	Features []string
}

// Result is the classified grammar assessment.
type Result struct {
	// Score is the final 0–100 grammar score.
	Score float64

	// ErrorsByTier groups the input errors by resolved tier.
	ErrorsByTier map[Tier][]ReportedError

	// ComplexityBonus is the awarded structure bonus, at most 15.
	ComplexityBonus float64

	// TenseControl, ArticleUsage, and SentenceComplexity are the 0–100
	// sub-scores.
	TenseControl       float64
	ArticleUsage       float64
	SentenceComplexity float64
}

// TotalErrors returns the number of classified errors across all tiers.
func (r Result) TotalErrors() int {
	n := 0
	for _, errs := range r.ErrorsByTier {
		n += len(errs)
	}
	return n
}

// Breakdown returns the sub-scores keyed for a [types.DimensionScore].
func (r Result) Breakdown() map[string]float64 {
	return map[string]float64{
		"tense_control":       r.TenseControl,
		"article_usage":       r.ArticleUsage,
		"sentence_complexity": r.SentenceComplexity,
	}
}

// tierByType maps known error-type keywords to tiers, used when the
// upstream severity tag is absent or unrecognized.
var tierByType = map[string]Tier{
	"wrong_tense_context":       Tier1,
	"subject_verb_disagreement": Tier1,
	"missing_auxiliary":         Tier1,
	"word_order_chaos":          Tier1,
	"critical_omission":         Tier1,

	"article_error":     Tier2,
	"preposition_error": Tier2,
	"plural_form_error": Tier2,
	"wrong_verb_form":   Tier2,
	"punctuation_error": Tier2,

	"article_omission_casual": Tier3,
	"uncountable_plural":      Tier3,
	"redundant_preposition":   Tier3,
	"colloquial_contraction":  Tier3,
	"minor_tense_slip":        Tier3,
}

// Classify resolves each reported error to a tier, applies per-tier
// penalties and the complexity bonus, and derives the sub-scores. The
// final score is clamped to [0, 100] at both extremes.
func Classify(errors []ReportedError, structures []SentenceStructure) Result {
	r := Result{
		ErrorsByTier: map[Tier][]ReportedError{},
	}

	var penalty float64
	for _, e := range errors {
		tier := resolveTier(e)
		r.ErrorsByTier[tier] = append(r.ErrorsByTier[tier], e)
		penalty += tier.Penalty()
	}

	r.ComplexityBonus = complexityBonus(structures)
	r.Score = clamp(100-penalty+r.ComplexityBonus, 0, 100)
	r.TenseControl = keywordSubScore(errors, 15, "tense", "verb")
	r.ArticleUsage = keywordSubScore(errors, 10, "article")
	r.SentenceComplexity = complexityScore(structures)
	return r
}

// ErrorRecords converts the classified errors into the shared error
// record shape, ordered worst tier first.
func (r Result) ErrorRecords() []types.ErrorRecord {
	var out []types.ErrorRecord
	for _, tier := range []Tier{Tier1, Tier2, Tier3} {
		for _, e := range r.ErrorsByTier[tier] {
			out = append(out, types.ErrorRecord{
				Kind:        types.MetricGrammar,
				Severity:    tier.Severity(),
				Original:    e.Original,
				Corrected:   e.Corrected,
				RuleName:    e.Type,
				Explanation: e.Explanation,
			})
		}
	}
	return out
}

// resolveTier trusts an explicit, recognized severity tag, then falls
// back to the type keyword map, then defaults to Tier2.
func resolveTier(e ReportedError) Tier {
	switch strings.ToUpper(strings.TrimSpace(e.Severity)) {
	case "TIER_1", "CRITICAL":
		return Tier1
	case "TIER_2", "MAJOR":
		return Tier2
	case "TIER_3", "MINOR":
		return Tier3
	}
	if t, ok := tierByType[strings.ToLower(strings.TrimSpace(e.Type))]; ok {
		return t
	}
	return Tier2
}

// complexityBonus awards 3 points per complex or compound-complex
// sentence, 2 per passive-voice use, and 2 per conditional, capped.
func complexityBonus(structures []SentenceStructure) float64 {
	var bonus float64
	for _, s := range structures {
		switch strings.ToLower(s.Type) {
		case "complex", "compound-complex":
			bonus += 3
		}
		for _, f := range s.Features {
			switch strings.ToLower(f) {
			case "passive_voice":
				bonus += 2
			case "conditional":
				bonus += 2
			}
		}
	}
	return min(bonus, maxComplexityBonus)
}

// keywordSubScore subtracts perError points from 100 for each error
// whose type contains any of the keywords. Floor is 0.
func keywordSubScore(errors []ReportedError, perError float64, keywords ...string) float64 {
	count := 0
	for _, e := range errors {
		et := strings.ToLower(e.Type)
		for _, kw := range keywords {
			if strings.Contains(et, kw) {
				count++
				break
			}
		}
	}
	return max(0, 100-float64(count)*perError)
}

// complexityScore rates structural variety: 40 plus 15 per distinct
// structure type, plus 10 when a complex form appears, capped at 100.
// No annotations at all is the neutral 50.
func complexityScore(structures []SentenceStructure) float64 {
	if len(structures) == 0 {
		return 50
	}
	seen := make(map[string]struct{}, len(structures))
	hasComplex := false
	for _, s := range structures {
		st := strings.ToLower(s.Type)
		seen[st] = struct{}{}
		if st == "complex" || st == "compound-complex" {
			hasComplex = true
		}
	}
	score := 40 + float64(len(seen))*15
	if hasComplex {
		score += 10
	}
	return min(100, score)
}

func clamp(v, lo, hi float64) float64 {
	return min(hi, max(lo, v))
}
