// Package phoneme holds the acceptability rules that separate accent
// variation from genuine pronunciation errors.
//
// Two tables drive every decision:
//
//  1. A symmetric equivalence table of phoneme pairs that are
//     accent-neutral renditions of each other (vowel-length variants,
//     flapped and aspirated consonant variants, rhotic variants). Pairs in
//     this table are never flagged.
//
//  2. A directional pattern table mapping a specific (expected, observed)
//     substitution to a named accent-interference pattern with a fixed
//     learner-facing hint. Entries with an empty pattern name are
//     acceptable overrides for borderline substitutions that should pass
//     without being listed in the equivalence table.
//
// Any pair found in neither table is, deliberately, a mismatch: the
// completeness of these tables is the single control over the detector's
// false-positive rate.
package phoneme

// Pattern names a systematic accent-interference substitution together
// with the explanation shown to the learner.
type Pattern struct {
	// Name identifies the substitution (e.g., "v_w_confusion"). Empty for
	// acceptable overrides that carry no learner-facing pattern.
	Name string

	// Hint is the fixed teaching hint attached to every detection of this
	// pattern.
	Hint string
}

// pairKey is the canonical (sorted) form of an unordered phoneme pair.
type pairKey struct{ a, b string }

func newPairKey(x, y string) pairKey {
	if x > y {
		x, y = y, x
	}
	return pairKey{a: x, b: y}
}

// dirKey is a directional (expected, observed) phoneme pair.
type dirKey struct{ expected, observed string }

// Ruleset answers acceptability and pattern queries for phoneme pairs.
// It is read-only after construction and safe for concurrent use.
type Ruleset struct {
	equivalents map[pairKey]struct{}
	patterns    map[dirKey]Pattern
}

// Option extends a [Ruleset] during construction.
type Option func(*Ruleset)

// WithEquivalent registers an additional accent-neutral unordered pair.
func WithEquivalent(a, b string) Option {
	return func(r *Ruleset) {
		r.equivalents[newPairKey(a, b)] = struct{}{}
	}
}

// WithPattern registers an additional directional substitution pattern.
// An empty name marks the substitution as acceptable without a pattern.
func WithPattern(expected, observed, name, hint string) Option {
	return func(r *Ruleset) {
		r.patterns[dirKey{expected, observed}] = Pattern{Name: name, Hint: hint}
	}
}

// NewRuleset returns the default English acceptability rules, extended by
// any supplied options.
func NewRuleset(opts ...Option) *Ruleset {
	r := &Ruleset{
		equivalents: make(map[pairKey]struct{}, len(defaultEquivalents)),
		patterns:    make(map[dirKey]Pattern, len(defaultPatterns)),
	}
	for _, p := range defaultEquivalents {
		r.equivalents[newPairKey(p[0], p[1])] = struct{}{}
	}
	for k, v := range defaultPatterns {
		r.patterns[k] = v
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// IsAcceptable reports whether hearing observed where expected was
// required counts as accent variation rather than an error.
//
// Exact matches are always acceptable. Otherwise the unordered pair is
// looked up in the equivalence table, and finally the directional pattern
// table is consulted for an acceptable override (an entry with no pattern
// name). Everything else is a mismatch.
func (r *Ruleset) IsAcceptable(expected, observed string) bool {
	if expected == observed {
		return true
	}
	if _, ok := r.equivalents[newPairKey(expected, observed)]; ok {
		return true
	}
	if p, ok := r.patterns[dirKey{expected, observed}]; ok && p.Name == "" {
		return true
	}
	return false
}

// Lookup returns the named interference pattern for the directional
// substitution (expected → observed). Acceptable overrides and unknown
// pairs return ok == false.
func (r *Ruleset) Lookup(expected, observed string) (Pattern, bool) {
	p, ok := r.patterns[dirKey{expected, observed}]
	if !ok || p.Name == "" {
		return Pattern{}, false
	}
	return p, true
}

// defaultEquivalents lists unordered phoneme pairs treated as
// accent-neutral variants. Grouped by the variation they cover.
var defaultEquivalents = [][2]string{
	// Vowel-length variants: long/short realisations of the same quality.
	{"iː", "i"},
	{"uː", "u"},
	{"ɑː", "ɑ"},
	{"ɔː", "ɔ"},
	{"ɜː", "ə"},
	{"æ", "a"},

	// Flapped /t/ and /d/ (American "water", "ladder").
	{"t", "ɾ"},
	{"d", "ɾ"},

	// Aspirated stop variants.
	{"p", "pʰ"},
	{"t", "tʰ"},
	{"k", "kʰ"},

	// Rhotic variants: approximant, trill, and plain r.
	{"r", "ɹ"},
	{"r", "ɾ"},
	{"ɹ", "ɻ"},

	// Dental/alveolar neutralisations common across L1 backgrounds.
	{"t", "t̪"},
	{"d", "d̪"},

	// Syllabic consonant variants.
	{"əl", "l̩"},
	{"ən", "n̩"},
}

// hints reused across several pattern entries.
const (
	HintVW = "For 'v', bite your lower lip with your upper teeth and add voice. For 'w', round your lips and glide into the vowel."
	HintTH = "English 'th' needs the tongue between the teeth, not behind them. 'think' is voiceless, 'this' is voiced."
	HintLR = "For 'l', touch the tongue tip to the ridge behind your teeth. For 'r', curl the tongue back without touching."
	HintBV = "'b' closes both lips completely; 'v' touches the lower lip to the upper teeth and lets air flow."
)

// defaultPatterns maps directional (expected → observed) substitutions to
// named interference patterns. Empty-name entries are acceptable
// overrides.
var defaultPatterns = map[dirKey]Pattern{
	// v/w confusion, both directions.
	{"w", "v"}: {Name: "v_w_confusion", Hint: HintVW},
	{"v", "w"}: {Name: "v_w_confusion", Hint: HintVW},

	// th-stopping and th-fronting.
	{"θ", "t"}: {Name: "th_stopping", Hint: HintTH},
	{"θ", "d"}: {Name: "th_stopping", Hint: HintTH},
	{"θ", "s"}: {Name: "th_fronting", Hint: HintTH},
	{"θ", "f"}: {Name: "th_fronting", Hint: HintTH},
	{"ð", "d"}: {Name: "th_stopping", Hint: HintTH},
	{"ð", "z"}: {Name: "th_fronting", Hint: HintTH},
	{"ð", "v"}: {Name: "th_fronting", Hint: HintTH},

	// l/r confusion, both directions.
	{"l", "r"}: {Name: "l_r_confusion", Hint: HintLR},
	{"r", "l"}: {Name: "l_r_confusion", Hint: HintLR},

	// b/v confusion, both directions.
	{"b", "v"}: {Name: "b_v_confusion", Hint: HintBV},
	{"v", "b"}: {Name: "b_v_confusion", Hint: HintBV},

	// z devoiced to s at word ends.
	{"z", "s"}: {Name: "final_devoicing", Hint: "Keep your voice on through the final consonant: 'eyes' ends in a buzzing 'z', not a hissing 's'."},

	// dʒ/z merger.
	{"dʒ", "z"}: {Name: "j_z_confusion", Hint: "'j' starts with a complete closure like 'd', then releases into 'zh'. 'z' never closes fully."},

	// Epenthetic vowel before s-clusters ("school" → "iskool").
	{"s", "ɪs"}: {Name: "initial_cluster_epenthesis", Hint: "Start the 's' directly, without a helper vowel before it: 'school', not 'iskool'."},

	// Retroflex r: audibly different but fully intelligible — acceptable,
	// no pattern reported.
	{"r", "ɻ"}: {},
	{"ɹ", "ɽ"}: {},

	// Schwa coloured toward a full vowel: acceptable in most positions.
	{"ə", "ʌ"}: {},
}
