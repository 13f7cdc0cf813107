// Package reports exports a progress report of the live journey sessions.
package reports

import (
	"github.com/google/uuid"

	"superlearn/learning-portal/learning-portal-backend/internal/journey"
)

// SessionRow is one line of the progress report. Email addresses are never
// exported.
type SessionRow struct {
	SessionID     uuid.UUID `json:"session_id"`
	LearnerName   string    `json:"learner_name"`
	CurrentStep   string    `json:"current_step"`
	Progress      int       `json:"progress"`
	StepsDone     int       `json:"steps_done"`
	QuizScore     int       `json:"quiz_score"`
	QuizAttempts  int       `json:"quiz_attempts"`
	WalletStatus  string    `json:"wallet_status"`
	WalletAddress string    `json:"wallet_address"`
	NFTMinted     bool      `json:"nft_minted"`
	TokenID       string    `json:"token_id"`
}

// Columns is the header row, in export order
var Columns = []string{
	"Session",
	"Learner",
	"Current Step",
	"Progress %",
	"Steps Done",
	"Quiz Score",
	"Quiz Attempts",
	"Wallet",
	"Wallet Address",
	"NFT Minted",
	"Token",
}

// NewSessionRow flattens a session view
func NewSessionRow(v journey.View) SessionRow {
	row := SessionRow{
		SessionID:     v.SessionID,
		LearnerName:   v.LearnerName,
		CurrentStep:   string(v.CurrentStep),
		Progress:      v.Progress,
		StepsDone:     len(v.Completed),
		QuizScore:     v.Quiz.Score,
		QuizAttempts:  v.Quiz.Attempts,
		WalletStatus:  string(v.Wallet.Status),
		WalletAddress: v.Wallet.Address,
		NFTMinted:     v.NFTMinted,
	}
	if v.Receipt != nil {
		row.TokenID = v.Receipt.TokenID
	}
	return row
}

func (r SessionRow) values() []interface{} {
	return []interface{}{
		r.SessionID.String(),
		r.LearnerName,
		r.CurrentStep,
		r.Progress,
		r.StepsDone,
		r.QuizScore,
		r.QuizAttempts,
		r.WalletStatus,
		r.WalletAddress,
		r.NFTMinted,
		r.TokenID,
	}
}

// Summary aggregates the report rows
type Summary struct {
	Sessions   int            `json:"sessions"`
	ByStep     map[string]int `json:"by_step"`
	QuizPassed int            `json:"quiz_passed"`
	Minted     int            `json:"minted"`
}

// Summarize counts sessions per step, passed quizzes and minted badges
func Summarize(views []journey.View, quizStep journey.StepID) Summary {
	s := Summary{Sessions: len(views), ByStep: make(map[string]int)}
	for _, v := range views {
		s.ByStep[string(v.CurrentStep)]++
		if v.NFTMinted {
			s.Minted++
		}
		for _, id := range v.Completed {
			if id == quizStep {
				s.QuizPassed++
				break
			}
		}
	}
	return s
}
