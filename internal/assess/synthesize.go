package assess

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SwarupShekhar/ENGAPP/internal/cefr"
	"github.com/SwarupShekhar/ENGAPP/internal/confidence"
	"github.com/SwarupShekhar/ENGAPP/internal/mispron"
	"github.com/SwarupShekhar/ENGAPP/pkg/types"
)

// Caps on learner-facing list lengths.
const (
	maxStrengths = 3
	maxTasks     = 3
)

// synthesisInput gathers everything the final composition step needs.
// All fields are settled before synthesis begins.
type synthesisInput struct {
	baseline   cefr.Estimate
	audio      types.AudioSignal
	grammar    types.DimensionScore
	vocabulary types.DimensionScore
	fluency    types.DimensionScore
	pron       types.DimensionScore
	records    []types.ErrorRecord
	report     *mispron.Report
	elapsed    time.Duration
}

// synthesize combines the settled dimension scores into the final
// result: weighted overall score, refined CEFR level, confidence,
// feedback, strengths and weaknesses, and practice tasks.
func (o *Orchestrator) synthesize(in synthesisInput) *Result {
	overall := in.grammar.Value*o.weights.Grammar +
		in.vocabulary.Value*o.weights.Vocabulary +
		in.fluency.Value*o.weights.Fluency +
		in.pron.Value*o.weights.Pronunciation

	strengths, weaknesses := extractStrengthsWeaknesses(in)

	return &Result{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now(),
		Level:      o.refineLevel(in.baseline, overall),
		LevelScore: overall,
		Confidence: confidence.Calculate(in.audio),
		Errors:     in.records,
		Metrics: Metrics{
			Grammar:       in.grammar,
			Vocabulary:    in.vocabulary,
			Fluency:       in.fluency,
			Pronunciation: in.pron,
			Overall:       overall,
		},
		Feedback:   buildFeedback(overall, in),
		Strengths:  strengths,
		Weaknesses: weaknesses,
		Tasks:      buildTasks(in.records, weaknesses, in.report),
		Insights:   in.report,
		Elapsed:    in.elapsed,
	}
}

// refineLevel buckets the synthesized overall score into a CEFR band,
// capped at one band above the surface-feature baseline. The cap keeps
// a short, simple sample from being promoted far past what its own text
// supports.
func (o *Orchestrator) refineLevel(baseline cefr.Estimate, overall float64) types.CEFRLevel {
	refined := o.cefr.LevelForScore(overall)
	if levelIndex(refined) > levelIndex(baseline.Level)+1 {
		return types.Levels[levelIndex(baseline.Level)+1]
	}
	return refined
}

func levelIndex(l types.CEFRLevel) int {
	for i, v := range types.Levels {
		if v == l {
			return i
		}
	}
	return 0
}

// buildFeedback composes the learner-facing summary from the overall
// band and the analyzers' own justifications.
func buildFeedback(overall float64, in synthesisInput) string {
	var parts []string
	switch {
	case overall >= 80:
		parts = append(parts, "Excellent work! Your English proficiency is strong.")
	case overall >= 60:
		parts = append(parts, "Good progress! You're communicating effectively.")
	default:
		parts = append(parts, "Keep practicing! You're building your skills.")
	}

	for _, j := range []string{in.grammar.Justification, in.vocabulary.Justification, in.pron.Justification} {
		if j != "" {
			parts = append(parts, j)
		}
	}
	return strings.Join(parts, " ")
}

// extractStrengthsWeaknesses applies fixed per-dimension thresholds,
// capped at three entries each.
func extractStrengthsWeaknesses(in synthesisInput) (strengths, weaknesses []string) {
	if in.grammar.Value >= 70 {
		strengths = append(strengths, "Strong grammatical accuracy")
	} else if in.grammar.Value < 50 {
		weaknesses = append(weaknesses, "Improve basic grammar structures")
	}

	if lr, ok := in.vocabulary.Breakdown["lexical_range"]; ok {
		if lr >= 70 {
			strengths = append(strengths, "Good vocabulary variety")
		} else if lr < 40 {
			weaknesses = append(weaknesses, "Expand vocabulary range")
		}
	}

	if in.fluency.Value >= 75 {
		strengths = append(strengths, "Natural fluency")
	} else if in.fluency.Value < 50 {
		weaknesses = append(weaknesses, "Reduce hesitations and filler words")
	}

	if in.pron.Value >= 75 {
		strengths = append(strengths, "Clear pronunciation")
	} else if in.pron.Value < 60 {
		weaknesses = append(weaknesses, "Work on pronunciation clarity")
	}

	if len(strengths) > maxStrengths {
		strengths = strengths[:maxStrengths]
	}
	if len(weaknesses) > maxStrengths {
		weaknesses = weaknesses[:maxStrengths]
	}
	return strengths, weaknesses
}

// buildTasks derives up to three practice tasks: drills for the most
// frequent error rules, vocabulary expansion when a weakness names
// vocabulary, and pattern practice when the phonetic insight report
// carries interference patterns.
func buildTasks(records []types.ErrorRecord, weaknesses []string, report *mispron.Report) []types.PracticeTask {
	var tasks []types.PracticeTask

	counts := map[string]int{}
	for _, r := range records {
		if r.RuleName != "" {
			counts[r.RuleName]++
		}
	}
	rules := make([]string, 0, len(counts))
	for rule := range counts {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool {
		if counts[rules[i]] != counts[rules[j]] {
			return counts[rules[i]] > counts[rules[j]]
		}
		return rules[i] < rules[j]
	})
	for _, rule := range rules[:min(2, len(rules))] {
		tasks = append(tasks, types.PracticeTask{
			Type:   "grammar_drill",
			Topic:  rule,
			Reason: pluralReason(counts[rule]),
		})
	}

	for _, w := range weaknesses {
		if strings.Contains(strings.ToLower(w), "vocabulary") {
			tasks = append(tasks, types.PracticeTask{
				Type:   "vocabulary_expansion",
				Topic:  "Synonyms and alternatives",
				Reason: w,
			})
		}
	}

	if report != nil && len(report.Patterns) > 0 {
		p := report.Patterns[0]
		tasks = append(tasks, types.PracticeTask{
			Type:   "pronunciation_practice",
			Topic:  p.Name,
			Reason: p.Hint,
		})
	}

	if len(tasks) > maxTasks {
		tasks = tasks[:maxTasks]
	}
	return tasks
}

func pluralReason(n int) string {
	if n == 1 {
		return "Found 1 error in this area"
	}
	return fmt.Sprintf("Found %d errors in this area", n)
}
