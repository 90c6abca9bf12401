package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"chatbot-backend/internal/middleware"
	"chatbot-backend/internal/models"
	"chatbot-backend/internal/services"
)

const maxChatBodyBytes = 1 << 20

type replyGenerator interface {
	GenerateReply(ctx context.Context, message string, history []models.ChatTurn) services.Reply
}

type ChatHandler struct {
	engine replyGenerator
	logger *slog.Logger
}

func NewChatHandler(engine replyGenerator, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{
		engine: engine,
		logger: logger,
	}
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	// An oversized or broken body reads as empty and fails validation below, so a body
	// over 1 MiB gets the same 400 as a missing message.
	body, _ := io.ReadAll(http.MaxBytesReader(w, r.Body, maxChatBodyBytes))
	message, rawHistory := decodeChatRequest(body)

	if message == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("Message is required."))
		return
	}

	history := SanitizeHistory(rawHistory)

	reply := h.engine.GenerateReply(r.Context(), message, history)

	h.logger.Debug("chat reply",
		"request_id", middleware.GetRequestID(r.Context()),
		"history_turns", len(history),
		"source", reply.Source)

	history = append(history,
		models.ChatTurn{Role: models.RoleUser, Content: message},
		models.ChatTurn{Role: models.RoleAssistant, Content: reply.Text},
	)

	writeJSON(w, http.StatusOK, models.ChatResponse{Reply: reply.Text, History: history})
}
