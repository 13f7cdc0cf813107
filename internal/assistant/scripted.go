package assistant

import (
	"context"
	"fmt"
	"strings"
)

type scriptedQuestion struct {
	text        string
	options     []string
	correct     int
	explanation string
}

// Scripted answers without any upstream API. Chat replies are keyword based;
// learn and quiz replies are rendered from fixed templates.
type Scripted struct{}

// NewScripted creates a scripted assistant
func NewScripted() *Scripted {
	return &Scripted{}
}

func (s *Scripted) Respond(ctx context.Context, message string, mode Mode, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(message) == "" && strings.TrimSpace(opts.Topic) == "" {
		return "", ErrEmptyMessage
	}

	opts = opts.WithDefaults(message)
	switch mode {
	case ModeLearn:
		return scriptedLesson(opts), nil
	case ModeQuiz:
		return scriptedQuiz(opts), nil
	default:
		return scriptedChat(message), nil
	}
}

func scriptedChat(message string) string {
	lower := strings.ToLower(message)
	switch {
	case containsAny(lower, "learn", "teach", "explain"):
		return "I'd be happy to help you learn! What topic would you like to explore?"
	case containsAny(lower, "quiz", "test", "questions"):
		return "I can generate quizzes on various topics. What subject interests you?"
	case containsAny(lower, "hello", "hi"):
		return "Hello! I'm your AI learning assistant. I can help you learn new topics and create quizzes. What would you like to explore today?"
	default:
		return fmt.Sprintf("I understand you're asking about '%s'. I can help you learn about this topic or create a quiz. Would you like me to explain this concept or generate some practice questions?", message)
	}
}

func scriptedLesson(opts Options) string {
	t := opts.Topic
	var b strings.Builder
	fmt.Fprintf(&b, "Here's what you need to know about %s. This is tailored for %s level learners with a %s learning style.\n\n", t, opts.Level, opts.Style)

	b.WriteString("Key points:\n")
	for _, p := range []string{
		"Understanding the fundamentals of %s",
		"Key concepts and principles in %s",
		"Practical applications of %s",
		"Best practices for %s",
	} {
		fmt.Fprintf(&b, "- "+p+"\n", t)
	}

	b.WriteString("\nNext steps:\n")
	for _, p := range []string{
		"Practice with %s examples",
		"Join a community focused on %s",
		"Build a project using %s",
	} {
		fmt.Fprintf(&b, "- "+p+"\n", t)
	}

	b.WriteString("\nResources:\n")
	for _, p := range []string{
		"Official %s documentation",
		"Online courses about %s",
		"Books and tutorials on %s",
	} {
		fmt.Fprintf(&b, "- "+p+"\n", t)
	}
	return b.String()
}

func scriptedQuestions(topic string) []scriptedQuestion {
	lower := strings.ToLower(topic)
	switch {
	case strings.Contains(lower, "blockchain"):
		return []scriptedQuestion{
			{
				text:        "What is a blockchain?",
				options:     []string{"A type of database", "A distributed ledger", "A cryptocurrency", "A programming language"},
				correct:     1,
				explanation: "A blockchain is a distributed ledger that maintains a continuously growing list of records.",
			},
			{
				text:        "What provides security in blockchain?",
				options:     []string{"Passwords", "Cryptography", "Firewalls", "Antivirus"},
				correct:     1,
				explanation: "Blockchain uses cryptographic hashing and digital signatures for security.",
			},
		}
	case containsAny(lower, "ai") || strings.Contains(lower, "artificial intelligence"):
		return []scriptedQuestion{
			{
				text:        "What does AI stand for?",
				options:     []string{"Advanced Intelligence", "Artificial Intelligence", "Automated Intelligence", "Algorithmic Intelligence"},
				correct:     1,
				explanation: "AI stands for Artificial Intelligence.",
			},
			{
				text:        "What is machine learning?",
				options:     []string{"A type of AI", "A programming language", "A computer", "A website"},
				correct:     0,
				explanation: "Machine learning is a subset of artificial intelligence.",
			},
		}
	default:
		return []scriptedQuestion{
			{
				text: fmt.Sprintf("What is the main concept behind %s?", topic),
				options: []string{
					fmt.Sprintf("Basic principle of %s", topic),
					fmt.Sprintf("Advanced concept in %s", topic),
					fmt.Sprintf("Application of %s", topic),
					fmt.Sprintf("History of %s", topic),
				},
				correct:     0,
				explanation: fmt.Sprintf("This relates to the fundamental principles of %s.", topic),
			},
		}
	}
}

func scriptedQuiz(opts Options) string {
	questions := scriptedQuestions(opts.Topic)
	if len(questions) > opts.NumQuestions {
		questions = questions[:opts.NumQuestions]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Quiz: %s (%s)\n", opts.Topic, opts.Difficulty)
	for i, q := range questions {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, q.text)
		for j, o := range q.options {
			fmt.Fprintf(&b, "   %c) %s\n", 'A'+j, o)
		}
		fmt.Fprintf(&b, "   Answer: %c. %s\n", 'A'+q.correct, q.explanation)
	}
	return b.String()
}

// containsAny reports whether s contains one of words as a whole word
func containsAny(s string, words ...string) bool {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	for _, f := range fields {
		for _, w := range words {
			if f == w {
				return true
			}
		}
	}
	return false
}
