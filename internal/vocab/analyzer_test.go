package vocab_test

import (
	"math"
	"strings"
	"testing"

	"github.com/SwarupShekhar/ENGAPP/internal/vocab"
	"github.com/SwarupShekhar/ENGAPP/pkg/types"
)

func TestAnalyze_EmptyTranscript(t *testing.T) {
	t.Parallel()

	r := vocab.NewAnalyzer().Analyze("")
	if r.Score != 0 {
		t.Errorf("Score = %v, want 0 for empty transcript", r.Score)
	}
}

func TestAnalyze_ComponentWeights(t *testing.T) {
	t.Parallel()

	r := vocab.NewAnalyzer().Analyze("yesterday I talked to my neighbour about the weather")

	want := r.LexicalRange*0.40 + r.Precision*0.35 + r.Sophistication*0.25
	if math.Abs(r.Score-want) > 1e-9 {
		t.Errorf("Score = %v, want %v (40/35/25 weighting)", r.Score, want)
	}
}

func TestAnalyze_PrecisionDefaultWithoutOpportunity(t *testing.T) {
	t.Parallel()

	r := vocab.NewAnalyzer().Analyze("the sun rises in the east every morning")
	if r.Precision != 75 {
		t.Errorf("Precision = %v, want default 75 with no collocation opportunity", r.Precision)
	}
}

func TestAnalyze_CollocationAccuracy(t *testing.T) {
	t.Parallel()

	a := vocab.NewAnalyzer()

	good := a.Analyze("we need to make progress and conduct research")
	if good.Precision != 100 {
		t.Errorf("Precision = %v, want 100 for two correct collocations", good.Precision)
	}

	// "make research" is a known learner miscollocation.
	mixed := a.Analyze("we make research but also make progress")
	if mixed.Precision != 50 {
		t.Errorf("Precision = %v, want 50 (one correct, one incorrect)", mixed.Precision)
	}
}

func TestAnalyze_SophisticationRewardsHigherBands(t *testing.T) {
	t.Parallel()

	a := vocab.NewAnalyzer()

	simple := a.Analyze("I like my house and my cat and my dog")
	advanced := a.Analyze("notwithstanding the ambiguous constraint we facilitate a comprehensive rigorous hypothesis")

	if simple.Sophistication >= advanced.Sophistication {
		t.Errorf("Sophistication simple %v >= advanced %v, want advanced higher",
			simple.Sophistication, advanced.Sophistication)
	}
}

func TestAnalyze_DomainTermBonus(t *testing.T) {
	t.Parallel()

	a := vocab.NewAnalyzer()

	plain := a.Analyze("we improved the system and made it faster")
	domain := a.Analyze("we improved the pipeline latency and database throughput")

	if domain.DomainTerms != 4 {
		t.Errorf("DomainTerms = %d, want 4 (pipeline, latency, database, throughput)", domain.DomainTerms)
	}
	if plain.DomainTerms != 0 {
		t.Errorf("DomainTerms = %d, want 0 for plain text", plain.DomainTerms)
	}
	if domain.Sophistication <= plain.Sophistication {
		t.Errorf("domain Sophistication %v <= plain %v, want bonus applied",
			domain.Sophistication, plain.Sophistication)
	}
}

func TestAnalyze_DistributionCoversEveryToken(t *testing.T) {
	t.Parallel()

	transcript := "the ubiquitous paradigm was nevertheless difficult to analyse"
	r := vocab.NewAnalyzer().Analyze(transcript)

	total := 0
	for _, n := range r.Distribution {
		total += n
	}
	if want := len(strings.Fields(transcript)); total != want {
		t.Errorf("distribution total = %d, want %d (every token assigned)", total, want)
	}
	if r.Distribution[types.CEFRC2] != 2 {
		t.Errorf("C2 count = %d, want 2 (ubiquitous, paradigm)", r.Distribution[types.CEFRC2])
	}
	if r.Distribution[types.CEFRC1] != 1 {
		t.Errorf("C1 count = %d, want 1 (nevertheless)", r.Distribution[types.CEFRC1])
	}
}

func TestAnalyze_RepetitionLowersLexicalRange(t *testing.T) {
	t.Parallel()

	a := vocab.NewAnalyzer()

	repetitive := a.Analyze(strings.Repeat("very good very nice very good very nice ", 5))
	varied := a.Analyze("yesterday my colleague demonstrated a comprehensive strategy to evaluate the underlying architecture and distinguish genuine evidence from widespread assumption across every circumstance")

	if repetitive.LexicalRange >= varied.LexicalRange {
		t.Errorf("LexicalRange repetitive %v >= varied %v, want varied higher",
			repetitive.LexicalRange, varied.LexicalRange)
	}
}

func TestAnalyze_WordListOverrides(t *testing.T) {
	t.Parallel()

	a := vocab.NewAnalyzer(
		vocab.WithWordList(types.CEFRC2, []string{"banana"}),
		vocab.WithDomainTerms([]string{"banana"}),
	)

	r := a.Analyze("banana")
	if r.Distribution[types.CEFRC2] != 1 {
		t.Errorf("C2 count = %d, want 1 after override", r.Distribution[types.CEFRC2])
	}
	if r.DomainTerms != 1 {
		t.Errorf("DomainTerms = %d, want 1 after override", r.DomainTerms)
	}
}
