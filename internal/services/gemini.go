package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
	logger *slog.Logger
}

func NewGeminiGenerator(ctx context.Context, apiKey, modelName string, sampling SamplingConfig, logger *slog.Logger) (*GeminiGenerator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// The client outlives ctx, which only bounds the availability check below.
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(sampling.Temperature)
	model.SetTopP(sampling.TopP)
	model.SetMaxOutputTokens(int32(sampling.MaxNewTokens))
	model.StopSequences = sampling.Stop

	// Fail at startup rather than on the first chat request if the model is unknown
	// or the key is rejected.
	if _, err := model.Info(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("Gemini model %q unavailable: %w", modelName, err)
	}

	return &GeminiGenerator{
		client: client,
		model:  model,
		name:   modelName,
		logger: logger,
	}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop && cand.FinishReason != genai.FinishReasonMaxTokens {
			g.logger.Warn("Gemini candidate stopped early",
				"model", g.name, "candidate", i, "finish_reason", cand.FinishReason.String())
		}
	}

	return extractText(resp), nil
}

func (g *GeminiGenerator) Name() string {
	return "gemini/" + g.name
}

func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
