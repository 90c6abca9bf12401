package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"chatbot-backend/internal/config"
	"chatbot-backend/internal/models"
)

// Mode is fixed when the engine is built and never changes afterwards.
type Mode string

const (
	ModeModelBacked Mode = "model-backed"
	ModeRuleBased   Mode = "rule-based"
)

const (
	systemPreamble = "You are a friendly, domain-specific assistant. " +
		"Give short, clear explanations that are easy for beginners in 2025.\n\n"
	assistantMarker = "Assistant:"
)

// Reply is the outcome of one generation. Source tells whether the text came from the
// model or from the keyword table.
type Reply struct {
	Text   string
	Source Mode
}

type ReplyEngine struct {
	handle *ModelHandle
	mode   Mode
	logger *slog.Logger
}

// NewReplyEngine wraps an already loaded handle. A nil handle gives a rule-based engine.
func NewReplyEngine(handle *ModelHandle, logger *slog.Logger) *ReplyEngine {
	if logger == nil {
		logger = slog.Default()
	}

	mode := ModeRuleBased
	if handle != nil && handle.Model != nil && handle.Tokenizer != nil {
		mode = ModeModelBacked
	} else {
		handle = nil
	}

	return &ReplyEngine{
		handle: handle,
		mode:   mode,
		logger: logger,
	}
}

// LoadReplyEngine tries to load the configured model and falls back to rule-based mode
// on any load failure. It never fails.
func LoadReplyEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger) *ReplyEngine {
	if logger == nil {
		logger = slog.Default()
	}

	handle, err := LoadModelHandle(ctx, cfg, logger)
	if err != nil {
		var loadErr *ModelLoadError
		if errors.As(err, &loadErr) {
			logger.Warn("model unavailable, using rule-based replies",
				"backend", cfg.ModelBackend, "model", cfg.ModelName, "stage", loadErr.Stage, "error", loadErr.Err)
		} else {
			logger.Warn("model unavailable, using rule-based replies", "error", err)
		}
		return NewReplyEngine(nil, logger)
	}

	logger.Info("model loaded",
		"backend", handle.Backend, "model", handle.ModelName, "device", handle.Device)
	return NewReplyEngine(handle, logger)
}

func (e *ReplyEngine) Mode() Mode {
	return e.mode
}

// Handle returns the loaded model, nil in rule-based mode.
func (e *ReplyEngine) Handle() *ModelHandle {
	return e.handle
}

func (e *ReplyEngine) Close() error {
	return e.handle.Close()
}

// GenerateReply never fails. Generation errors and blank output fall back to the
// keyword table for this request only.
func (e *ReplyEngine) GenerateReply(ctx context.Context, message string, history []models.ChatTurn) Reply {
	if e.mode == ModeRuleBased {
		return Reply{Text: RuleBasedReply(message, history), Source: ModeRuleBased}
	}

	reply, err := e.generate(ctx, message, history)
	if err != nil {
		e.logger.Warn("generation failed, using rule-based reply",
			"model", e.handle.Model.Name(), "error", err)
		return Reply{Text: RuleBasedReply(message, history), Source: ModeRuleBased}
	}
	if reply == "" {
		e.logger.Debug("model returned empty reply, using rule-based reply", "model", e.handle.Model.Name())
		return Reply{Text: RuleBasedReply(message, history), Source: ModeRuleBased}
	}

	return Reply{Text: reply, Source: ModeModelBacked}
}

func (e *ReplyEngine) generate(ctx context.Context, message string, history []models.ChatTurn) (string, error) {
	tok := e.handle.Tokenizer
	prompt := BuildPrompt(message, history)

	completion, err := e.handle.Model.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	// A causal model hands back the prompt followed by its continuation.
	decoded := prompt + tok.StripSpecial(completion)

	e.logger.Debug("generation finished",
		"model", e.handle.Model.Name(),
		"prompt_tokens", tok.CountTokens(prompt),
		"completion_tokens", tok.CountTokens(completion))

	return ExtractReply(decoded), nil
}

// FormatHistory renders turns as "User: ..." / "Assistant: ..." lines.
func FormatHistory(history []models.ChatTurn) string {
	parts := make([]string, 0, len(history))
	for _, turn := range history {
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		label := "Assistant"
		if strings.ToLower(strings.TrimSpace(string(turn.Role))) == string(models.RoleUser) {
			label = "User"
		}
		parts = append(parts, label+": "+content)
	}
	return strings.Join(parts, "\n")
}

func BuildPrompt(message string, history []models.ChatTurn) string {
	var b strings.Builder
	b.WriteString(systemPreamble)
	if conversation := FormatHistory(history); conversation != "" {
		b.WriteString(conversation)
		b.WriteString("\n")
	}
	b.WriteString("User: ")
	b.WriteString(message)
	b.WriteString("\n")
	b.WriteString(assistantMarker)
	return b.String()
}

// ExtractReply keeps what follows the last "Assistant:" marker.
func ExtractReply(decoded string) string {
	if idx := strings.LastIndex(decoded, assistantMarker); idx >= 0 {
		return strings.TrimSpace(decoded[idx+len(assistantMarker):])
	}
	return strings.TrimSpace(decoded)
}
