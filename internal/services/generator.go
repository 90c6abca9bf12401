package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"chatbot-backend/internal/config"
)

const (
	defaultTemperature = 0.7
	defaultTopP        = 0.9
)

// Generator produces a completion for a raw prompt. Sampling settings are fixed when
// the generator is built so a single instance can be shared by all requests.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
	Close() error
}

// SamplingConfig holds the generation parameters handed to a backend.
type SamplingConfig struct {
	Temperature  float32
	TopP         float32
	MaxNewTokens int
	Stop         []string
	Device       string
}

// ModelHandle pairs a loaded generator with its tokenizer. It is only ever built with
// both present.
type ModelHandle struct {
	Model     Generator
	Tokenizer Tokenizer
	Backend   string
	ModelName string
	Device    string
}

func (h *ModelHandle) Close() error {
	if h == nil || h.Model == nil {
		return nil
	}
	return h.Model.Close()
}

type ModelLoadError struct {
	Stage string
	Err   error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("model load failed (%s): %v", e.Stage, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// LoadModelHandle loads the tokenizer and then the configured backend. Any failure is
// returned as a *ModelLoadError and nothing is left open.
func LoadModelHandle(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*ModelHandle, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.ModelBackend == config.BackendNone {
		return nil, &ModelLoadError{Stage: "config", Err: fmt.Errorf("model backend disabled")}
	}

	tok, err := LoadTokenizer(cfg.TokenizerEncoding)
	if err != nil {
		return nil, &ModelLoadError{Stage: "tokenizer", Err: err}
	}

	device := ResolveDevice(cfg.ModelDevice)
	sampling := SamplingConfig{
		Temperature:  defaultTemperature,
		TopP:         defaultTopP,
		MaxNewTokens: cfg.MaxNewTokens,
		Stop:         StopSequences(tok),
		Device:       cfg.ModelDevice,
	}

	var gen Generator
	switch cfg.ModelBackend {
	case config.BackendOllama:
		gen, err = NewOllamaGenerator(ctx, cfg.OllamaURL, cfg.ModelName, sampling)
	case config.BackendGemini:
		gen, err = NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.ModelName, sampling, logger)
	default:
		err = fmt.Errorf("unknown model backend %q", cfg.ModelBackend)
	}
	if err != nil {
		return nil, &ModelLoadError{Stage: "model", Err: err}
	}

	return &ModelHandle{
		Model:     gen,
		Tokenizer: tok,
		Backend:   cfg.ModelBackend,
		ModelName: cfg.ModelName,
		Device:    device,
	}, nil
}

// ResolveDevice turns "auto" into the accelerator visible on this host. Explicit
// values are returned unchanged.
func ResolveDevice(device string) string {
	if device != "" && device != "auto" {
		return device
	}
	if _, err := os.Stat("/dev/nvidia0"); err == nil {
		return "cuda"
	}
	if runtime.GOOS == "darwin" && runtime.GOARCH == "arm64" {
		return "mps"
	}
	return "cpu"
}
