package jsonrecover_test

import (
	"testing"

	"github.com/SwarupShekhar/ENGAPP/internal/jsonrecover"
)

func TestValidateGrammarAnalysis(t *testing.T) {
	t.Parallel()

	good := []byte(`{"errors": [{"original": "she have", "corrected": "she has", "type": "subject_verb_disagreement"}], "structures": [{"sentence": "She has a car.", "type": "simple"}]}`)
	if err := jsonrecover.Validate(jsonrecover.SchemaGrammarAnalysis, good); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	missing := []byte(`{"errors": [{"original": "she have"}]}`)
	if err := jsonrecover.Validate(jsonrecover.SchemaGrammarAnalysis, missing); err == nil {
		t.Error("Validate() on entry without corrected/type: error = nil, want non-nil")
	}
}

func TestValidateVocabularyAnalysis(t *testing.T) {
	t.Parallel()

	if err := jsonrecover.Validate(jsonrecover.SchemaVocabularyAnalysis, []byte(`{"precision": 80}`)); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
	if err := jsonrecover.Validate(jsonrecover.SchemaVocabularyAnalysis, []byte(`{"precision": 140}`)); err == nil {
		t.Error("Validate() on precision above 100: error = nil, want non-nil")
	}
	if err := jsonrecover.Validate(jsonrecover.SchemaVocabularyAnalysis, []byte(`{"flags": []}`)); err == nil {
		t.Error("Validate() without precision: error = nil, want non-nil")
	}
}

func TestValidateFluencyAnalysis(t *testing.T) {
	t.Parallel()

	good := []byte(`{"filler_total": 3, "self_corrections": 1, "discourse_markers": ["however"]}`)
	if err := jsonrecover.Validate(jsonrecover.SchemaFluencyAnalysis, good); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
	if err := jsonrecover.Validate(jsonrecover.SchemaFluencyAnalysis, []byte(`{"filler_total": -2}`)); err == nil {
		t.Error("Validate() on negative filler_total: error = nil, want non-nil")
	}
}

func TestValidateUnknownSchema(t *testing.T) {
	t.Parallel()

	if err := jsonrecover.Validate("no_such_schema", []byte(`{}`)); err == nil {
		t.Error("Validate() on unknown schema name: error = nil, want non-nil")
	}
}

func TestParseValidated(t *testing.T) {
	t.Parallel()

	var out struct {
		Valid  bool   `json:"valid"`
		Reason string `json:"reason"`
	}
	text := "```json\n" + `{"valid": true, "reason": "correction preserves meaning"}` + "\n```"
	if !jsonrecover.ParseValidated(text, jsonrecover.SchemaCorrectionCheck, &out) {
		t.Fatal("ParseValidated() = false, want true")
	}
	if !out.Valid {
		t.Error("ParseValidated() filled Valid = false, want true")
	}

	if jsonrecover.ParseValidated(`{"reason": "no verdict"}`, jsonrecover.SchemaCorrectionCheck, &out) {
		t.Error("ParseValidated() on document missing required field = true, want false")
	}
}
