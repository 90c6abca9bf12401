package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

// OllamaGenerator runs completions against a local Ollama server in raw mode, so the
// prompt is sent exactly as built without the model's chat template.
type OllamaGenerator struct {
	client  *api.Client
	model   string
	options map[string]any
}

func NewOllamaGenerator(ctx context.Context, host, model string, sampling SamplingConfig) (*OllamaGenerator, error) {
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama host %q: %w", host, err)
	}

	// No client timeout: callers bound generation through the request context.
	client := api.NewClient(base, &http.Client{})

	if _, err := client.Show(ctx, &api.ShowRequest{Model: model}); err != nil {
		return nil, fmt.Errorf("model %q not available on %s: %w", model, host, err)
	}

	options := map[string]any{
		"temperature": sampling.Temperature,
		"top_p":       sampling.TopP,
		"num_predict": sampling.MaxNewTokens,
	}
	if len(sampling.Stop) > 0 {
		options["stop"] = sampling.Stop
	}
	if sampling.Device == "cpu" {
		options["num_gpu"] = 0
	}

	return &OllamaGenerator{
		client:  client,
		model:   model,
		options: options,
	}, nil
}

func (g *OllamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:   g.model,
		Prompt:  prompt,
		Raw:     true,
		Stream:  &stream,
		Options: g.options,
	}

	var text strings.Builder
	err := g.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		text.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("Ollama generate error: %w", err)
	}

	return text.String(), nil
}

func (g *OllamaGenerator) Name() string {
	return "ollama/" + g.model
}

// Close is a no-op, the HTTP client holds no resources worth releasing.
func (g *OllamaGenerator) Close() error {
	return nil
}
