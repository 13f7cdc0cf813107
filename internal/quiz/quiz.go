// Package quiz scores multiple-choice quizzes by exact match against each
// question's correct option.
package quiz

import (
	"errors"
	"fmt"
)

// DefaultPassThreshold is the number of correct answers needed to pass the
// journey quiz. It is a literal, not a fraction of the question count.
const DefaultPassThreshold = 2

var (
	ErrEmptyBank          = errors.New("quiz has no questions")
	ErrQuestionOutOfRange = errors.New("question index out of range")
)

// Question is a single multiple-choice question
type Question struct {
	Text        string   `json:"question"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation"`
}

// IsCorrect reports whether selected matches the correct option
func (q Question) IsCorrect(selected int) bool {
	return selected == q.Correct
}

// HasOption reports whether index addresses one of the question's options
func (q Question) HasOption(index int) bool {
	return index >= 0 && index < len(q.Options)
}

// Bank is an ordered, fixed list of questions
type Bank []Question

// Validate checks that every question has options and a reachable correct index
func (b Bank) Validate() error {
	if len(b) == 0 {
		return ErrEmptyBank
	}
	for i, q := range b {
		if q.Text == "" {
			return fmt.Errorf("question %d: text is required", i)
		}
		if len(q.Options) < 2 {
			return fmt.Errorf("question %d: at least two options are required", i)
		}
		if !q.HasOption(q.Correct) {
			return fmt.Errorf("question %d: correct index %d outside %d options", i, q.Correct, len(q.Options))
		}
	}
	return nil
}

// Question returns the question at index
func (b Bank) Question(index int) (Question, error) {
	if index < 0 || index >= len(b) {
		return Question{}, ErrQuestionOutOfRange
	}
	return b[index], nil
}

// Score counts exact matches between answers and the bank's correct indices.
// Answers beyond the bank length are ignored; missing answers score nothing.
func Score(bank Bank, answers []int) int {
	score := 0
	for i, selected := range answers {
		if i >= len(bank) {
			break
		}
		if bank[i].IsCorrect(selected) {
			score++
		}
	}
	return score
}

// Passed reports whether score meets threshold
func Passed(score, threshold int) bool {
	return score >= threshold
}
