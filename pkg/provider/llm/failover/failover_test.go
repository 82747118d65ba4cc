package failover_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SwarupShekhar/ENGAPP/internal/resilience"
	"github.com/SwarupShekhar/ENGAPP/pkg/provider/llm"
	"github.com/SwarupShekhar/ENGAPP/pkg/provider/llm/failover"
	llmmock "github.com/SwarupShekhar/ENGAPP/pkg/provider/llm/mock"
)

func userMessage(content string) llm.CompletionRequest {
	return llm.CompletionRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: content}},
	}
}

func TestCompleteUsesPrimaryWhenHealthy(t *testing.T) {
	t.Parallel()

	primary := llmmock.New("from primary")
	backup := llmmock.New("from backup")
	p := failover.New(primary, "openai")
	p.AddFallback("ollama", backup)

	resp, err := p.Complete(context.Background(), userMessage("hello"))
	if err != nil {
		t.Fatalf("Complete() error = %v, want nil", err)
	}
	if resp.Content != "from primary" {
		t.Errorf("Content = %q, want %q", resp.Content, "from primary")
	}
	if n := len(backup.Calls()); n != 0 {
		t.Errorf("backup received %d calls, want 0", n)
	}
}

func TestCompleteFallsBackOnPrimaryFailure(t *testing.T) {
	t.Parallel()

	primary := llmmock.New().FailWith(errors.New("rate limited"))
	backup := llmmock.New("from backup")
	p := failover.New(primary, "openai")
	p.AddFallback("ollama", backup)

	resp, err := p.Complete(context.Background(), userMessage("hello"))
	if err != nil {
		t.Fatalf("Complete() error = %v, want nil", err)
	}
	if resp.Content != "from backup" {
		t.Errorf("Content = %q, want %q", resp.Content, "from backup")
	}
	if n := len(primary.Calls()); n != 1 {
		t.Errorf("primary received %d calls, want 1", n)
	}
}

func TestCompleteAllBackendsFailed(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	primary := llmmock.New().FailWith(boom)
	backup := llmmock.New().FailWith(boom)
	p := failover.New(primary, "openai")
	p.AddFallback("ollama", backup)

	_, err := p.Complete(context.Background(), userMessage("hello"))
	if !errors.Is(err, resilience.ErrAllFailed) {
		t.Fatalf("Complete() error = %v, want resilience.ErrAllFailed", err)
	}
}
