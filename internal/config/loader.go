package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"llm":    {"openai", "anthropic", "ollama", "gemini", "openai-native", "mock"},
	"speech": {"azure", "mock"},
}

// Load reads the YAML configuration file at path and returns a
// validated [Config]. It is a convenience wrapper around
// [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	validateProviderName("llm", cfg.Providers.LLM.Name)
	validateProviderName("llm", cfg.Providers.LLMFallback.Name)
	validateProviderName("speech", cfg.Providers.Speech.Name)

	if cfg.Providers.LLM.Name == "" {
		errs = append(errs, errors.New("providers.llm.name is required; the analyzers cannot run without a model"))
	}
	if cfg.Providers.Speech.Name == "azure" {
		if cfg.Providers.Speech.APIKey == "" {
			errs = append(errs, errors.New("providers.speech.api_key is required when providers.speech.name is azure"))
		}
		if cfg.Providers.Speech.Region == "" {
			errs = append(errs, errors.New("providers.speech.region is required when providers.speech.name is azure"))
		}
	}

	if w := cfg.Calibration.Weights; !w.isZero() {
		sum := w.Grammar + w.Vocabulary + w.Fluency + w.Pronunciation
		if math.Abs(sum-1) > 1e-6 {
			errs = append(errs, fmt.Errorf("calibration.weights sum to %.4f, want 1", sum))
		}
		for name, v := range map[string]float64{
			"grammar":       w.Grammar,
			"vocabulary":    w.Vocabulary,
			"fluency":       w.Fluency,
			"pronunciation": w.Pronunciation,
		} {
			if v < 0 {
				errs = append(errs, fmt.Errorf("calibration.weights.%s %.4f is negative", name, v))
			}
		}
	}
	if cfg.Calibration.AnalyzerTimeout < 0 {
		errs = append(errs, fmt.Errorf("calibration.analyzer_timeout %v is negative", cfg.Calibration.AnalyzerTimeout))
	}
	if cfg.Calibration.VerifyTimeout < 0 {
		errs = append(errs, fmt.Errorf("calibration.verify_timeout %v is negative", cfg.Calibration.VerifyTimeout))
	}
	if cfg.Calibration.Temperature < 0 || cfg.Calibration.Temperature > 2 {
		errs = append(errs, fmt.Errorf("calibration.temperature %.2f is out of range [0, 2]", cfg.Calibration.Temperature))
	}
	for name, v := range map[string]float64{
		"critical_threshold": cfg.Calibration.CriticalThreshold,
		"minor_threshold":    cfg.Calibration.MinorThreshold,
	} {
		if v < 0 || v > 100 {
			errs = append(errs, fmt.Errorf("calibration.%s %.2f is out of range [0, 100]", name, v))
		}
	}
	if f := cfg.Calibration.FuzzyThreshold; f < 0 || f > 1 {
		errs = append(errs, fmt.Errorf("calibration.fuzzy_threshold %.2f is out of range [0, 1]", f))
	}
	if c, m := cfg.Calibration.CriticalThreshold, cfg.Calibration.MinorThreshold; c > 0 && m > 0 && c > m {
		errs = append(errs, fmt.Errorf("calibration.critical_threshold %.2f exceeds minor_threshold %.2f", c, m))
	}

	if cfg.History.PostgresDSN == "" {
		slog.Warn("history.postgres_dsn is empty; assessment history will not survive restarts")
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not
// found in the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
