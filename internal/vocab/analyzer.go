// Package vocab scores vocabulary use from a transcript: lexical range
// via an MTLD diversity measure, word-choice precision via a collocation
// table, and sophistication via CEFR word-level lists with a
// domain-term bonus.
package vocab

import (
	"bufio"
	"embed"
	"regexp"
	"strings"

	"github.com/SwarupShekhar/ENGAPP/pkg/types"
)

//go:embed wordlists/*.txt
var wordlistFS embed.FS

// Component weights.
const (
	rangeWeight          = 0.40
	precisionWeight      = 0.35
	sophisticationWeight = 0.25
)

// defaultPrecision applies when the sample offers no collocation
// opportunity: fairly high, since no mistake was observed either.
const defaultPrecision = 75

// correctCollocations maps a verb to the nouns it pairs with naturally.
var correctCollocations = map[string][]string{
	"make":    {"decision", "mistake", "progress", "effort", "sure"},
	"do":      {"homework", "research", "damage", "harm", "well"},
	"conduct": {"research", "experiment", "survey", "analysis"},
	"draw":    {"conclusion", "attention", "comparison"},
}

// knownMiscollocations lists verb-noun pairs that are common learner
// mistakes for a verb the table covers.
var knownMiscollocations = map[[2]string]struct{}{
	{"make", "research"}: {},
}

var tokenPattern = regexp.MustCompile(`[a-z0-9']+`)

// Option configures an [Analyzer].
type Option func(*Analyzer)

// WithWordList replaces the embedded word list for one CEFR level.
func WithWordList(level types.CEFRLevel, words []string) Option {
	return func(a *Analyzer) {
		a.levels[level] = toSet(words)
	}
}

// WithDomainTerms replaces the embedded domain-term list.
func WithDomainTerms(words []string) Option {
	return func(a *Analyzer) {
		a.domain = toSet(words)
	}
}

// Analyzer scores vocabulary against its word lists. It is read-only
// after construction and safe for concurrent use.
type Analyzer struct {
	levels map[types.CEFRLevel]map[string]struct{}
	domain map[string]struct{}
}

// NewAnalyzer returns an Analyzer backed by the embedded CEFR and
// domain word lists, adjusted by any options.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		levels: map[types.CEFRLevel]map[string]struct{}{
			types.CEFRA2: loadEmbedded("wordlists/a2.txt"),
			types.CEFRB1: loadEmbedded("wordlists/b1.txt"),
			types.CEFRB2: loadEmbedded("wordlists/b2.txt"),
			types.CEFRC1: loadEmbedded("wordlists/c1.txt"),
			types.CEFRC2: loadEmbedded("wordlists/c2.txt"),
		},
		domain: loadEmbedded("wordlists/domain.txt"),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Result is the vocabulary assessment for one transcript.
type Result struct {
	// Score is the weighted composite, 0–100.
	Score float64

	// LexicalRange, Precision, and Sophistication are the component
	// scores, 0–100 each.
	LexicalRange   float64
	Precision      float64
	Sophistication float64

	// Distribution counts tokens per CEFR band, each token assigned to
	// its highest matching list (unlisted tokens count as A1).
	Distribution map[types.CEFRLevel]int

	// DomainTerms counts tokens found in the domain list.
	DomainTerms int
}

// Breakdown returns the component scores keyed for a
// [types.DimensionScore].
func (r Result) Breakdown() map[string]float64 {
	return map[string]float64{
		"lexical_range":  r.LexicalRange,
		"precision":      r.Precision,
		"sophistication": r.Sophistication,
	}
}

// Analyze tokenizes the transcript (case-folded, word boundaries) and
// scores the three components, weighted 40/35/25. An empty transcript
// scores zero across the board.
func (a *Analyzer) Analyze(transcript string) Result {
	tokens := tokenize(transcript)
	if len(tokens) == 0 {
		return Result{Distribution: map[types.CEFRLevel]int{}}
	}

	r := Result{
		LexicalRange:   rangeScore(tokens),
		Precision:      a.precision(tokens),
		Sophistication: a.sophistication(tokens),
		Distribution:   a.distribution(tokens),
		DomainTerms:    a.countDomainTerms(tokens),
	}
	r.Score = r.LexicalRange*rangeWeight +
		r.Precision*precisionWeight +
		r.Sophistication*sophisticationWeight
	return r
}

// WithPrecision returns a copy of r with the precision component
// replaced and the composite score recomputed. The orchestrator uses it
// to refine the table-based precision with a model judgement.
func (r Result) WithPrecision(p float64) Result {
	if p <= 0 || p > 100 {
		return r
	}
	r.Precision = p
	r.Score = r.LexicalRange*rangeWeight +
		r.Precision*precisionWeight +
		r.Sophistication*sophisticationWeight
	return r
}

// precision checks adjacent verb-noun pairs against the collocation
// table and returns the hit accuracy. With no opportunity observed, the
// default applies.
func (a *Analyzer) precision(tokens []string) float64 {
	var correct, incorrect int
	for i := 0; i < len(tokens)-1; i++ {
		verb, noun := tokens[i], tokens[i+1]
		nouns, ok := correctCollocations[verb]
		if !ok {
			continue
		}
		switch {
		case contains(nouns, noun):
			correct++
		default:
			if _, bad := knownMiscollocations[[2]string{verb, noun}]; bad {
				incorrect++
			}
		}
	}
	if correct+incorrect == 0 {
		return defaultPrecision
	}
	return float64(correct) / float64(correct+incorrect) * 100
}

// sophistication averages a 1–6 CEFR level score per token, with a +2
// bonus for domain terms, then scales the average onto 0–100 against
// the C2 ceiling.
func (a *Analyzer) sophistication(tokens []string) float64 {
	var sum float64
	for _, tok := range tokens {
		score := float64(a.levelScore(tok))
		if _, ok := a.domain[tok]; ok {
			score += 2
		}
		sum += score
	}
	avg := sum / float64(len(tokens))
	return min(100, avg/6*100)
}

// levelScore returns 1 (A1) through 6 (C2) for the highest CEFR list
// containing the token.
func (a *Analyzer) levelScore(token string) int {
	for i := len(types.Levels) - 1; i >= 1; i-- {
		if _, ok := a.levels[types.Levels[i]][token]; ok {
			return i + 1
		}
	}
	return 1
}

func (a *Analyzer) distribution(tokens []string) map[types.CEFRLevel]int {
	dist := make(map[types.CEFRLevel]int, len(types.Levels))
	for _, tok := range tokens {
		dist[types.Levels[a.levelScore(tok)-1]]++
	}
	return dist
}

func (a *Analyzer) countDomainTerms(tokens []string) int {
	n := 0
	for _, tok := range tokens {
		if _, ok := a.domain[tok]; ok {
			n++
		}
	}
	return n
}

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func loadEmbedded(path string) map[string]struct{} {
	f, err := wordlistFS.Open(path)
	if err != nil {
		return map[string]struct{}{}
	}
	defer f.Close()

	set := make(map[string]struct{})
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if w := strings.ToLower(strings.TrimSpace(sc.Text())); w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
