// Command engassess runs one English proficiency assessment from the
// command line: load config, build providers, gather evidence, assess,
// print the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/SwarupShekhar/ENGAPP/internal/assess"
	"github.com/SwarupShekhar/ENGAPP/internal/config"
	"github.com/SwarupShekhar/ENGAPP/internal/history"
	historypg "github.com/SwarupShekhar/ENGAPP/internal/history/postgres"
	"github.com/SwarupShekhar/ENGAPP/internal/mispron"
	"github.com/SwarupShekhar/ENGAPP/internal/observe"
	"github.com/SwarupShekhar/ENGAPP/pkg/provider/llm"
	"github.com/SwarupShekhar/ENGAPP/pkg/provider/llm/anyllm"
	"github.com/SwarupShekhar/ENGAPP/pkg/provider/llm/failover"
	oainative "github.com/SwarupShekhar/ENGAPP/pkg/provider/llm/openai"
	"github.com/SwarupShekhar/ENGAPP/pkg/provider/speech"
	azurespeech "github.com/SwarupShekhar/ENGAPP/pkg/provider/speech/azure"
	speechmock "github.com/SwarupShekhar/ENGAPP/pkg/provider/speech/mock"
	"github.com/SwarupShekhar/ENGAPP/pkg/types"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	text := flag.String("text", "", "transcript text to assess")
	evidencePath := flag.String("evidence", "", "path to a speech evidence JSON file")
	audioPath := flag.String("audio", "", "path to raw 16kHz mono PCM audio to assess via the speech provider")
	refText := flag.String("ref", "", "reference text for audio assessment (empty = self-referenced)")
	learner := flag.String("learner", "", "learner ID for history and trend analysis")
	native := flag.String("native", "", "learner's native language, used in feedback wording")
	flag.Parse()

	if *text == "" && *evidencePath == "" && *audioPath == "" {
		fmt.Fprintln(os.Stderr, "engassess: provide -text, -evidence, or -audio")
		return 2
	}

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "engassess: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "engassess: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	slog.SetDefault(newLogger(cfg.Server.LogLevel))

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: cfg.Server.ServiceName,
		MetricsAddr: cfg.Server.MetricsAddr,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Providers ─────────────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	model, err := reg.CreateLLM(cfg.Providers.LLM)
	if err != nil {
		slog.Error("failed to create llm provider", "name", cfg.Providers.LLM.Name, "err", err)
		return 1
	}
	slog.Info("provider created", "kind", "llm", "name", cfg.Providers.LLM.Name)

	// A configured fallback backend chains behind the primary.
	if fb := cfg.Providers.LLMFallback; fb.Name != "" {
		backup, err := reg.CreateLLM(fb)
		if err != nil {
			slog.Error("failed to create llm fallback provider", "name", fb.Name, "err", err)
			return 1
		}
		chain := failover.New(model, cfg.Providers.LLM.Name)
		chain.AddFallback(fb.Name, backup)
		model = chain
		slog.Info("provider created", "kind", "llm fallback", "name", fb.Name)
	}

	// ── Evidence ──────────────────────────────────────────────────────────────
	req := assess.Request{Text: *text, NativeLanguage: *native}

	switch {
	case *evidencePath != "":
		sp, err := loadEvidence(*evidencePath)
		if err != nil {
			slog.Error("failed to load speech evidence", "path", *evidencePath, "err", err)
			return 1
		}
		req.Speech = sp
	case *audioPath != "":
		sp, err := assessAudio(ctx, cfg, reg, *audioPath, *refText)
		if err != nil {
			slog.Error("speech assessment failed", "path", *audioPath, "err", err)
			return 1
		}
		req.Speech = sp
	}
	if req.Speech != nil {
		req.Audio = audioSignal(req.Speech)
	}

	// ── Assess ────────────────────────────────────────────────────────────────
	opts := append([]assess.Option{assess.WithWeights(cfg.Calibration.Weights.Weights())},
		calibrationOptions(cfg.Calibration)...)
	orch := assess.New(model, opts...)

	res, err := orch.Assess(ctx, req)
	if err != nil {
		slog.Error("assessment failed", "err", err)
		return 1
	}

	// ── History ───────────────────────────────────────────────────────────────
	if *learner != "" {
		if trends, err := recordHistory(ctx, cfg, *learner, res); err != nil {
			slog.Warn("history unavailable", "err", err)
		} else if trends.Sessions > 0 {
			printJSON(map[string]any{"trends": trends})
		}
	}

	printJSON(res)
	return 0
}

// calibrationOptions translates non-zero calibration values into
// orchestrator options.
func calibrationOptions(c config.CalibrationConfig) []assess.Option {
	var opts []assess.Option
	if c.AnalyzerTimeout > 0 {
		opts = append(opts, assess.WithAnalyzerTimeout(c.AnalyzerTimeout))
	}
	if c.VerifyTimeout > 0 {
		opts = append(opts, assess.WithVerifyTimeout(c.VerifyTimeout))
	}
	if c.CriticalThreshold > 0 || c.MinorThreshold > 0 || c.FuzzyThreshold > 0 {
		var dopts []mispron.Option
		if c.CriticalThreshold > 0 {
			dopts = append(dopts, mispron.WithCriticalThreshold(c.CriticalThreshold))
		}
		if c.MinorThreshold > 0 {
			dopts = append(dopts, mispron.WithMinorThreshold(c.MinorThreshold))
		}
		if c.FuzzyThreshold > 0 {
			dopts = append(dopts, mispron.WithFuzzyThreshold(c.FuzzyThreshold))
		}
		opts = append(opts, assess.WithDetector(mispron.New(nil, dopts...)))
	}
	return opts
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires all built-in provider factories into reg.
func registerBuiltinProviders(reg *config.Registry) {
	// anthropic, gemini and openai share the any-llm pattern: optional
	// APIKey + optional BaseURL.
	for _, providerName := range []string{"openai", "anthropic", "gemini"} {
		reg.RegisterLLM(providerName, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(providerName, entry.Model, opts...)
		})
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterLLM("ollama", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []anyllmlib.Option
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.New("ollama", entry.Model, opts...)
	})

	// openai-native talks to the OpenAI API through the official SDK.
	reg.RegisterLLM("openai-native", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []oainative.Option
		if entry.BaseURL != "" {
			opts = append(opts, oainative.WithBaseURL(entry.BaseURL))
		}
		return oainative.New(entry.APIKey, entry.Model, opts...)
	})

	reg.RegisterSpeech("azure", func(entry config.ProviderEntry) (speech.Provider, error) {
		var opts []azurespeech.Option
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, azurespeech.WithLanguage(lang))
		}
		return azurespeech.New(entry.APIKey, entry.Region, opts...)
	})

	reg.RegisterSpeech("mock", func(entry config.ProviderEntry) (speech.Provider, error) {
		return speechmock.New(&speech.Result{}), nil
	})
}

// assessAudio runs the configured speech provider over raw PCM audio.
func assessAudio(ctx context.Context, cfg *config.Config, reg *config.Registry, path, ref string) (*speech.Result, error) {
	if cfg.Providers.Speech.Name == "" {
		return nil, errors.New("providers.speech is not configured")
	}
	provider, err := reg.CreateSpeech(cfg.Providers.Speech)
	if err != nil {
		return nil, err
	}
	slog.Info("provider created", "kind", "speech", "name", cfg.Providers.Speech.Name)

	audio, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return provider.Assess(ctx, audio, speech.AssessConfig{ReferenceText: ref})
}

// loadEvidence reads a pre-recorded speech assessment from a JSON file.
func loadEvidence(path string) (*speech.Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sp := &speech.Result{}
	if err := json.Unmarshal(raw, sp); err != nil {
		return nil, fmt.Errorf("decode evidence: %w", err)
	}
	return sp, nil
}

// audioSignal derives the confidence calculator's quality proxies from
// the speech evidence.
func audioSignal(sp *speech.Result) types.AudioSignal {
	return types.AudioSignal{
		Quality:   sp.AccuracyScore,
		Duration:  sp.Transcript.Duration,
		WordCount: len(sp.Transcript.Words),
	}
}

// ── History ───────────────────────────────────────────────────────────────────

// recordHistory persists the result and returns pronunciation trends
// against the learner's recent sessions.
func recordHistory(ctx context.Context, cfg *config.Config, learner string, res *assess.Result) (history.Trends, error) {
	if cfg.History.PostgresDSN == "" {
		return history.Trends{}, errors.New("history.postgres_dsn is not configured")
	}

	store, err := historypg.NewStore(ctx, cfg.History.PostgresDSN)
	if err != nil {
		return history.Trends{}, err
	}
	defer store.Close()

	rec := history.NewRecord(learner, res)

	// Trends compare against sessions recorded before this one.
	prior, err := store.Recent(ctx, learner, 3)
	if err != nil {
		return history.Trends{}, err
	}
	if err := store.Save(ctx, rec); err != nil {
		return history.Trends{}, err
	}
	return history.AnalyzeTrends(rec.ProblemSounds, prior), nil
}

// ── Output ────────────────────────────────────────────────────────────────────

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		slog.Error("encode output", "err", err)
	}
}

// ── Logger ────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// optString extracts a string value from a provider Options map.
// Returns "" if the map is nil, the key is absent, or the value is not
// a string.
func optString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	s, _ := opts[key].(string)
	return s
}
