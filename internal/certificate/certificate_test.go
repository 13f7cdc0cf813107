package certificate

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	g := NewGenerator(DefaultOptions())

	out, err := g.Generate(Data{
		LearnerName:   "Zoë",
		WalletAddress: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		QuizScore:     3,
		QuestionCount: 3,
		TokenID:       "token-1",
		TxHash:        "0xabc",
		IssuedAt:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Steps:         []string{"Create Wallet", "Crypto Quiz"},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.True(t, bytes.Contains(out, []byte("%%EOF")))
}

func TestGenerateRequiresBadge(t *testing.T) {
	_, err := NewGenerator(DefaultOptions()).Generate(Data{LearnerName: "Ada"})
	assert.ErrorIs(t, err, ErrNoBadge)
}

func TestJoinSteps(t *testing.T) {
	assert.Equal(t, "a", joinSteps([]string{"a"}))
	assert.Equal(t, "a and b", joinSteps([]string{"a", "b"}))
	assert.Equal(t, "a, b, and c", joinSteps([]string{"a", "b", "c"}))
}
