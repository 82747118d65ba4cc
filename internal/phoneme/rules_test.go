package phoneme_test

import (
	"testing"

	"github.com/SwarupShekhar/ENGAPP/internal/phoneme"
)

func TestRuleset_ExactMatchIsAcceptable(t *testing.T) {
	t.Parallel()

	r := phoneme.NewRuleset()
	for _, sym := range []string{"θ", "w", "iː", "k"} {
		if !r.IsAcceptable(sym, sym) {
			t.Errorf("IsAcceptable(%q, %q) = false, want true", sym, sym)
		}
	}
}

func TestRuleset_EquivalenceIsSymmetric(t *testing.T) {
	t.Parallel()

	r := phoneme.NewRuleset()

	pairs := [][2]string{
		{"iː", "i"},
		{"uː", "u"},
		{"t", "ɾ"},
		{"p", "pʰ"},
		{"r", "ɹ"},
	}
	for _, p := range pairs {
		if !r.IsAcceptable(p[0], p[1]) {
			t.Errorf("IsAcceptable(%q, %q) = false, want true", p[0], p[1])
		}
		if !r.IsAcceptable(p[1], p[0]) {
			t.Errorf("IsAcceptable(%q, %q) = false, want true (symmetry)", p[1], p[0])
		}
	}
}

func TestRuleset_UnknownPairIsMismatch(t *testing.T) {
	t.Parallel()

	r := phoneme.NewRuleset()
	if r.IsAcceptable("θ", "k") {
		t.Error(`IsAcceptable("θ", "k") = true, want false for unlisted pair`)
	}
	if r.IsAcceptable("m", "s") {
		t.Error(`IsAcceptable("m", "s") = true, want false for unlisted pair`)
	}
}

func TestRuleset_NamedPatternLookup(t *testing.T) {
	t.Parallel()

	r := phoneme.NewRuleset()

	p, ok := r.Lookup("w", "v")
	if !ok {
		t.Fatal(`Lookup("w", "v"): ok = false, want true`)
	}
	if p.Name != "v_w_confusion" {
		t.Errorf(`Lookup("w", "v"): Name = %q, want "v_w_confusion"`, p.Name)
	}
	if p.Hint == "" {
		t.Error(`Lookup("w", "v"): Hint is empty, want teaching hint`)
	}

	// A named pattern is still a mismatch for acceptability purposes.
	if r.IsAcceptable("w", "v") {
		t.Error(`IsAcceptable("w", "v") = true, want false for named pattern`)
	}
}

func TestRuleset_AcceptableOverrideHasNoPattern(t *testing.T) {
	t.Parallel()

	r := phoneme.NewRuleset()

	// Retroflex r is acceptable even though it is not in the equivalence
	// table, and it must not surface as a named pattern.
	if !r.IsAcceptable("r", "ɻ") {
		t.Error(`IsAcceptable("r", "ɻ") = false, want true (acceptable override)`)
	}
	if _, ok := r.Lookup("r", "ɻ"); ok {
		t.Error(`Lookup("r", "ɻ"): ok = true, want false for acceptable override`)
	}
}

func TestRuleset_DirectionalityOfPatterns(t *testing.T) {
	t.Parallel()

	r := phoneme.NewRuleset()

	// th-stopping is defined expected=θ observed=t; the reverse direction
	// is not a known substitution.
	if _, ok := r.Lookup("θ", "t"); !ok {
		t.Error(`Lookup("θ", "t"): ok = false, want true`)
	}
	if _, ok := r.Lookup("t", "θ"); ok {
		t.Error(`Lookup("t", "θ"): ok = true, want false (directional table)`)
	}
}

func TestRuleset_Options(t *testing.T) {
	t.Parallel()

	r := phoneme.NewRuleset(
		phoneme.WithEquivalent("x", "h"),
		phoneme.WithPattern("ŋ", "n", "ng_fronting", "Finish 'sing' at the back of the mouth, not the front."),
	)

	if !r.IsAcceptable("h", "x") {
		t.Error(`IsAcceptable("h", "x") = false, want true after WithEquivalent`)
	}
	p, ok := r.Lookup("ŋ", "n")
	if !ok || p.Name != "ng_fronting" {
		t.Errorf(`Lookup("ŋ", "n") = (%+v, %v), want ng_fronting pattern`, p, ok)
	}
}
