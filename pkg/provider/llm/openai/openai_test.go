package openai

import (
	"testing"

	"github.com/SwarupShekhar/ENGAPP/pkg/provider/llm"
)

// TestNew_MissingAPIKey ensures constructor rejects an empty API key.
func TestNew_MissingAPIKey(t *testing.T) {
	_, err := New("", "gpt-4o-mini")
	if err == nil {
		t.Fatal("expected error for empty API key")
	}
}

// TestNew_MissingModel ensures constructor rejects an empty model.
func TestNew_MissingModel(t *testing.T) {
	_, err := New("sk-test", "")
	if err == nil {
		t.Fatal("expected error for empty model")
	}
}

// TestNew_Options checks that optional settings are accepted without error.
func TestNew_Options(t *testing.T) {
	_, err := New("sk-test", "gpt-4o-mini",
		WithBaseURL("https://custom.example.com"),
		WithOrganization("org-123"),
	)
	if err != nil {
		t.Fatalf("unexpected error with valid options: %v", err)
	}
}

// TestBuildParams_SystemPromptFirst checks the system prompt becomes the
// leading system message.
func TestBuildParams_SystemPromptFirst(t *testing.T) {
	p := &Provider{model: "gpt-4o-mini"}
	params, err := p.buildParams(llm.CompletionRequest{
		SystemPrompt: "You are a vocabulary expert.",
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: "Rate this text."},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(params.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(params.Messages))
	}
	if params.Messages[0].OfSystem == nil {
		t.Error("expected leading system message")
	}
	if params.Messages[1].OfUser == nil {
		t.Error("expected trailing user message")
	}
}

// TestBuildParams_Roles checks each supported role converts.
func TestBuildParams_Roles(t *testing.T) {
	p := &Provider{model: "gpt-4o-mini"}
	params, err := p.buildParams(llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "s"},
			{Role: llm.RoleUser, Content: "u"},
			{Role: llm.RoleAssistant, Content: "a"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.Messages[0].OfSystem == nil || params.Messages[1].OfUser == nil || params.Messages[2].OfAssistant == nil {
		t.Error("role conversion mismatch")
	}
}

// TestBuildParams_UnknownRole checks that unknown roles return an error.
func TestBuildParams_UnknownRole(t *testing.T) {
	p := &Provider{model: "gpt-4o-mini"}
	_, err := p.buildParams(llm.CompletionRequest{
		Messages: []llm.Message{{Role: "tool", Content: "x"}},
	})
	if err == nil {
		t.Fatal("expected error for unsupported role, got nil")
	}
}

// TestBuildParams_Temperature checks temperature and max tokens are only
// set when non-zero.
func TestBuildParams_Temperature(t *testing.T) {
	p := &Provider{model: "gpt-4o-mini"}

	params, err := p.buildParams(llm.CompletionRequest{Temperature: 0.2, MaxTokens: 512})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !params.Temperature.Valid() || params.Temperature.Value != 0.2 {
		t.Errorf("expected temperature 0.2, got %+v", params.Temperature)
	}
	if !params.MaxCompletionTokens.Valid() || params.MaxCompletionTokens.Value != 512 {
		t.Errorf("expected max completion tokens 512, got %+v", params.MaxCompletionTokens)
	}

	params, err = p.buildParams(llm.CompletionRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.Temperature.Valid() {
		t.Error("expected unset temperature")
	}
}
