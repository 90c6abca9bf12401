package handlers

import (
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"

	"chatbot-backend/internal/models"
)

var validate = validator.New()

// SanitizeHistory keeps the valid turns among the last MaxHistoryTurns raw entries.
// Entries that are not objects, carry an unknown role, or have blank content are
// dropped without error. Kept content is trimmed.
func SanitizeHistory(raw []json.RawMessage) []models.ChatTurn {
	if len(raw) > models.MaxHistoryTurns {
		raw = raw[len(raw)-models.MaxHistoryTurns:]
	}

	// Room for the two turns appended after the reply.
	history := make([]models.ChatTurn, 0, len(raw)+2)
	for _, entry := range raw {
		turn, ok := parseTurn(entry)
		if !ok {
			continue
		}
		history = append(history, turn)
	}
	return history
}

func parseTurn(entry json.RawMessage) (models.ChatTurn, bool) {
	var fields map[string]any
	if err := json.Unmarshal(entry, &fields); err != nil || fields == nil {
		return models.ChatTurn{}, false
	}

	role, _ := fields["role"].(string)
	content, _ := fields["content"].(string)

	turn := models.ChatTurn{
		Role:    models.Role(role),
		Content: strings.TrimSpace(content),
	}
	if err := validate.Struct(turn); err != nil {
		return models.ChatTurn{}, false
	}
	return turn, true
}

// decodeChatRequest never fails: anything unreadable is treated as missing.
func decodeChatRequest(body []byte) (string, []json.RawMessage) {
	var req models.ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return "", nil
	}

	var message string
	if err := json.Unmarshal(req.Message, &message); err != nil {
		message = ""
	}

	var history []json.RawMessage
	if err := json.Unmarshal(req.History, &history); err != nil {
		history = nil
	}

	return strings.TrimSpace(message), history
}
