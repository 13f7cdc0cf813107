// Package assistant answers learner questions through an upstream LLM, or a
// scripted responder when none is configured.
package assistant

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotConfigured = errors.New("assistant API key not configured")
	ErrEmptyMessage  = errors.New("message is required")
)

// Mode selects the prompt family
type Mode string

const (
	ModeChat  Mode = "chat"
	ModeLearn Mode = "learn"
	ModeQuiz  Mode = "quiz"
)

// ParseMode parses a request type. Anything other than learn or quiz is a
// plain chat.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeLearn:
		return ModeLearn
	case ModeQuiz:
		return ModeQuiz
	default:
		return ModeChat
	}
}

// Options tune learn and quiz prompts
type Options struct {
	Topic        string `json:"topic,omitempty"`
	Level        string `json:"user_level,omitempty"`
	Style        string `json:"learning_style,omitempty"`
	Difficulty   string `json:"difficulty,omitempty"`
	NumQuestions int    `json:"num_questions,omitempty"`
}

// WithDefaults fills unset options. The topic falls back to the message.
func (o Options) WithDefaults(message string) Options {
	if strings.TrimSpace(o.Topic) == "" {
		o.Topic = strings.TrimSpace(message)
	}
	if o.Level == "" {
		o.Level = "Beginner"
	}
	if o.Style == "" {
		o.Style = "Visual"
	}
	if o.Difficulty == "" {
		o.Difficulty = "medium"
	}
	if o.NumQuestions <= 0 {
		o.NumQuestions = 3
	}
	return o
}

// Assistant produces a reply for a learner message
type Assistant interface {
	Respond(ctx context.Context, message string, mode Mode, opts Options) (string, error)
}

// Completer is a single system+user completion against an LLM
type Completer interface {
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// LLMAssistant renders prompts and forwards them to a Completer
type LLMAssistant struct {
	completer Completer
}

// NewLLMAssistant creates an assistant backed by completer
func NewLLMAssistant(completer Completer) *LLMAssistant {
	return &LLMAssistant{completer: completer}
}

// Respond builds the prompt for mode and returns the completion verbatim
func (a *LLMAssistant) Respond(ctx context.Context, message string, mode Mode, opts Options) (string, error) {
	if strings.TrimSpace(message) == "" && strings.TrimSpace(opts.Topic) == "" {
		return "", ErrEmptyMessage
	}
	system, user := BuildPrompt(message, mode, opts)
	return a.completer.CompleteWithSystem(ctx, system, user)
}
