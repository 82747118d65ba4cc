package jsonrecover

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema names for the model replies the assessment pipeline consumes.
// Each name resolves to an embedded JSON Schema document.
const (
	SchemaGrammarAnalysis    = "grammar_analysis"
	SchemaVocabularyAnalysis = "vocabulary_analysis"
	SchemaFluencyAnalysis    = "fluency_analysis"
	SchemaCorrectionCheck    = "correction_check"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// compiledSchemas caches compiled schemas by name.
var compiledSchemas sync.Map // map[string]*jsonschema.Schema

// ParseValidated recovers JSON from text, validates it against the
// named embedded schema, and unmarshals it into v. It reports whether
// all three steps succeeded; on false, v is untouched.
func ParseValidated(text, schemaName string, v any) bool {
	raw, ok := Recover(text)
	if !ok {
		return false
	}
	if err := Validate(schemaName, []byte(raw)); err != nil {
		return false
	}
	return json.Unmarshal([]byte(raw), v) == nil
}

// Validate checks raw JSON against the named embedded schema. An
// unknown schema name is a programming error and always fails.
func Validate(schemaName string, raw []byte) error {
	compiled, err := compiledSchema(schemaName)
	if err != nil {
		return fmt.Errorf("jsonrecover: schema %q: %w", schemaName, err)
	}

	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("jsonrecover: parse document: %w", err)
	}
	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("jsonrecover: schema %q: %w", schemaName, err)
	}
	return nil
}

// compiledSchema returns a cached compiled schema or compiles and
// caches it from the embedded definition.
func compiledSchema(name string) (*jsonschema.Schema, error) {
	if cached, ok := compiledSchemas.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	def, err := schemaFS.ReadFile("schemas/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("parse definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(schemaURL, parsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	compiledSchemas.Store(name, compiled)
	return compiled, nil
}
