package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	bank := DefaultQuestions()

	tests := []struct {
		name    string
		answers []int
		want    int
	}{
		{"all correct", []int{1, 1, 2}, 3},
		{"one correct", []int{0, 1, 0}, 1},
		{"none correct", []int{0, 0, 0}, 0},
		{"partial answers", []int{1}, 1},
		{"extra answers ignored", []int{1, 1, 2, 2, 2}, 3},
		{"no answers", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(bank, tt.answers))
		})
	}
}

func TestPassed(t *testing.T) {
	assert.False(t, Passed(0, DefaultPassThreshold))
	assert.False(t, Passed(1, DefaultPassThreshold))
	assert.True(t, Passed(2, DefaultPassThreshold))
	assert.True(t, Passed(3, DefaultPassThreshold))
}

func TestBankValidate(t *testing.T) {
	require.NoError(t, DefaultQuestions().Validate())

	assert.ErrorIs(t, Bank{}.Validate(), ErrEmptyBank)

	bad := Bank{{Text: "Pick one", Options: []string{"a", "b"}, Correct: 2}}
	assert.Error(t, bad.Validate())

	noText := Bank{{Options: []string{"a", "b"}, Correct: 0}}
	assert.Error(t, noText.Validate())
}

func TestBankQuestion(t *testing.T) {
	bank := DefaultQuestions()

	q, err := bank.Question(2)
	require.NoError(t, err)
	assert.Equal(t, 2, q.Correct)
	assert.True(t, q.HasOption(3))
	assert.False(t, q.HasOption(4))

	_, err = bank.Question(3)
	assert.ErrorIs(t, err, ErrQuestionOutOfRange)
}
