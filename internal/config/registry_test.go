package config_test

import (
	"errors"
	"testing"

	"github.com/SwarupShekhar/ENGAPP/internal/config"
	"github.com/SwarupShekhar/ENGAPP/pkg/provider/llm"
	llmmock "github.com/SwarupShekhar/ENGAPP/pkg/provider/llm/mock"
	"github.com/SwarupShekhar/ENGAPP/pkg/provider/speech"
	speechmock "github.com/SwarupShekhar/ENGAPP/pkg/provider/speech/mock"
)

func TestRegistryCreateLLM(t *testing.T) {
	t.Parallel()

	r := config.NewRegistry()
	r.RegisterLLM("mock", func(e config.ProviderEntry) (llm.Provider, error) {
		return llmmock.New("{}"), nil
	})

	p, err := r.CreateLLM(config.ProviderEntry{Name: "mock"})
	if err != nil {
		t.Fatalf("CreateLLM() error = %v", err)
	}
	if p == nil {
		t.Fatal("CreateLLM() returned nil provider")
	}

	_, err = r.CreateLLM(config.ProviderEntry{Name: "missing"})
	if !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("CreateLLM(missing) error = %v, want ErrProviderNotRegistered", err)
	}
}

func TestRegistryCreateSpeech(t *testing.T) {
	t.Parallel()

	r := config.NewRegistry()
	r.RegisterSpeech("mock", func(e config.ProviderEntry) (speech.Provider, error) {
		return speechmock.New(&speech.Result{}), nil
	})

	p, err := r.CreateSpeech(config.ProviderEntry{Name: "mock"})
	if err != nil {
		t.Fatalf("CreateSpeech() error = %v", err)
	}
	if p == nil {
		t.Fatal("CreateSpeech() returned nil provider")
	}

	_, err = r.CreateSpeech(config.ProviderEntry{Name: "missing"})
	if !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("CreateSpeech(missing) error = %v, want ErrProviderNotRegistered", err)
	}
}
