package services

import (
	"strings"

	"chatbot-backend/internal/models"
)

const (
	greetingReply = "Hi! I'm your 2025 AI chatbot. Ask me anything about our domain and I'll walk you through it step by step."
	helpReply     = "Tell me what you are trying to do, and I'll break it down into a clear, beginner-friendly set of steps."
	projectReply  = "This chatbot is designed as a small, domain-aware assistant. It keeps short-term context so it can respond based on your recent questions."
	thanksReply   = "You're welcome! If you have more questions, just send your next message."
	genericReply  = "Here's a concise, beginner-friendly explanation based on what you asked: " +
		"focus on the key idea, understand it with a small example, and then try it yourself. " +
		"If you tell me your exact use-case, I can tailor the answer to your context."
)

type replyRule struct {
	keywords []string
	reply    string
}

// Checked in order, first match wins. Matching is by substring, so "hi" also fires
// on words like "this".
var replyRules = []replyRule{
	{keywords: []string{"hello", "hi", "hey"}, reply: greetingReply},
	{keywords: []string{"help", "how do i"}, reply: helpReply},
	{keywords: []string{"project"}, reply: projectReply},
	{keywords: []string{"thanks", "thank you"}, reply: thanksReply},
}

// RuleBasedReply answers from a fixed keyword table. History is accepted for symmetry
// with the model path but never consulted.
func RuleBasedReply(message string, _ []models.ChatTurn) string {
	text := strings.ToLower(message)

	for _, rule := range replyRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.reply
			}
		}
	}

	return genericReply
}
