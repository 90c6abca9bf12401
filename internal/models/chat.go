package models

import "encoding/json"

// MaxHistoryTurns is how many of the most recent history entries a request may carry.
const MaxHistoryTurns = 10

// Role identifies who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn represents a single message in a conversation.
type ChatTurn struct {
	Role    Role   `json:"role" validate:"oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// ChatRequest is the payload sent to the chat endpoint. Both fields are kept raw so
// that malformed values can be dropped instead of failing the whole request.
type ChatRequest struct {
	Message json.RawMessage `json:"message"`
	History json.RawMessage `json:"history"`
}

// ChatResponse carries the reply and the history the client should send next time.
type ChatResponse struct {
	Reply   string     `json:"reply"`
	History []ChatTurn `json:"history"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Mode    string `json:"mode"`
	Backend string `json:"backend"`
	Model   string `json:"model,omitempty"`
	Device  string `json:"device,omitempty"`
}
