package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() simulateOptions {
	return simulateOptions{
		answers: "1,1,2",
		email:   "ada@example.com",
		name:    "Ada",
		timeout: 10 * time.Second,
	}
}

func TestParseAnswers(t *testing.T) {
	got, err := parseAnswers(" 1, 0 ,2,")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 2}, got)

	_, err = parseAnswers("1,x")
	assert.Error(t, err)
}

func TestSimulatePasses(t *testing.T) {
	var out bytes.Buffer
	opts := testOptions()
	opts.ask = "what is a wallet?"
	opts.certificate = filepath.Join(t.TempDir(), "cert.pdf")

	require.NoError(t, runSimulate(context.Background(), &out, opts))

	s := out.String()
	assert.Contains(t, s, "session_started")
	assert.Contains(t, s, "mentor> ")
	assert.Contains(t, s, "quiz attempt 1: 3/3")
	assert.Contains(t, s, "badge minted")

	pdf, err := os.ReadFile(opts.certificate)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}

func TestSimulateFailsQuiz(t *testing.T) {
	var out bytes.Buffer
	opts := testOptions()
	opts.answers = "0,0,0"
	opts.retries = 1

	err := runSimulate(context.Background(), &out, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quiz failed")
	assert.Equal(t, 2, strings.Count(out.String(), "quiz attempt"))
}

func TestSimulateRejectsWrongAnswerCount(t *testing.T) {
	opts := testOptions()
	opts.answers = "1,1"
	assert.Error(t, runSimulate(context.Background(), &bytes.Buffer{}, opts))
}

func TestQuestionsCommand(t *testing.T) {
	var out bytes.Buffer
	questionsJSON = false
	questionsCmd.SetOut(&out)
	require.NoError(t, runQuestions(questionsCmd, nil))
	assert.Contains(t, out.String(), "pass threshold: 2 of 3")
	assert.Contains(t, out.String(), "* [1]")
}
