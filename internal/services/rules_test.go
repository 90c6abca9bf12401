package services

import (
	"testing"

	"chatbot-backend/internal/models"
)

func TestRuleBasedReply(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected string
	}{
		{"greeting", "hello", greetingReply},
		{"greeting upper case", "HEY there", greetingReply},
		{"first rule wins", "hi, can you help me with my project", greetingReply},
		{"substring match", "what is this", greetingReply},
		{"help", "I need help", helpReply},
		{"how do i", "How do I start?", helpReply},
		{"project", "tell me about the project", projectReply},
		{"thanks", "thanks a lot", thanksReply},
		{"thank you", "Thank you!", thanksReply},
		{"generic", "explain recursion", genericReply},
		{"empty", "", genericReply},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := RuleBasedReply(tc.message, nil)
			if got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestRuleBasedReply_IgnoresHistory(t *testing.T) {
	history := []models.ChatTurn{{Role: models.RoleUser, Content: "hello"}}

	if got := RuleBasedReply("explain recursion", history); got != genericReply {
		t.Errorf("Expected generic reply regardless of history, got %q", got)
	}
}

func TestRuleBasedReply_AlwaysOneOfFixedReplies(t *testing.T) {
	fixed := map[string]bool{
		greetingReply: true,
		helpReply:     true,
		projectReply:  true,
		thanksReply:   true,
		genericReply:  true,
	}

	for _, msg := range []string{"?", "   ", "ünïcödé", "HELP!!!", "project thanks", "12345"} {
		if !fixed[RuleBasedReply(msg, nil)] {
			t.Errorf("Unexpected reply for %q", msg)
		}
	}
}
