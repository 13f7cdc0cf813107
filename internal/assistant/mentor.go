package assistant

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Reply is what the mentor says back
type Reply struct {
	Text     string `json:"response"`
	Mode     Mode   `json:"type"`
	Fallback bool   `json:"fallback"`
}

// Mentor wraps an assistant so learners never see raw upstream errors
type Mentor struct {
	assistant Assistant
	logger    *zap.Logger
}

// NewMentor creates a new mentor
func NewMentor(assistant Assistant, logger *zap.Logger) *Mentor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mentor{assistant: assistant, logger: logger}
}

// Respond asks the assistant and substitutes an encouraging fallback on failure
func (m *Mentor) Respond(ctx context.Context, message string, mode Mode, opts Options) (Reply, error) {
	if strings.TrimSpace(message) == "" && strings.TrimSpace(opts.Topic) == "" {
		return Reply{}, ErrEmptyMessage
	}

	text, err := m.assistant.Respond(ctx, message, mode, opts)
	if err != nil || strings.TrimSpace(text) == "" {
		m.logger.Warn("Assistant unavailable, using fallback reply",
			zap.String("mode", string(mode)),
			zap.Error(err))
		return Reply{Text: FallbackReply(message, mode, opts), Mode: mode, Fallback: true}, nil
	}

	return Reply{Text: text, Mode: mode}, nil
}

// FallbackReply is the fixed message shown when the assistant fails
func FallbackReply(message string, mode Mode, opts Options) string {
	topic := opts.WithDefaults(message).Topic
	switch mode {
	case ModeLearn:
		return fmt.Sprintf("I'd be happy to help you learn about %s! This is an exciting field with many practical applications. Let me know if you'd like me to explain any specific aspects or create a quiz about it.", topic)
	case ModeQuiz:
		return fmt.Sprintf("I'd be happy to create a quiz about %s! Unfortunately, I'm having some trouble generating the questions right now. Would you like to try a different topic or ask me to explain %s concepts instead?", topic, topic)
	default:
		return "I'm sorry, I'm having trouble processing your request right now. Please try again or rephrase your question."
	}
}
