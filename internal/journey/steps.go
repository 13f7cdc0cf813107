package journey

import (
	"fmt"
	"time"

	"superlearn/learning-portal/learning-portal-backend/internal/quiz"
)

// StepID identifies one stage of the learning journey
type StepID string

const (
	StepRegistration StepID = "registration"
	StepWallet       StepID = "wallet"
	StepLinkWallet   StepID = "link-wallet"
	StepAIIntro      StepID = "ai-intro"
	StepQuiz         StepID = "quiz"
	StepNFTReward    StepID = "nft-reward"
)

// StepStatus is derived from the session state, never stored
type StepStatus string

const (
	StatusPending   StepStatus = "pending"
	StatusActive    StepStatus = "active"
	StatusCompleted StepStatus = "completed"
)

// StepDefinition describes a step for display
type StepDefinition struct {
	ID          StepID `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Flow is the configuration surface of the journey: which steps exist, in
// what order, how fast the journey moves between them and what it takes to
// pass the quiz.
type Flow struct {
	Steps []StepDefinition `json:"steps"`
	// Progress maps each step to a hand-authored percentage
	Progress map[StepID]int `json:"progress"`

	RegistrationStep StepID `json:"registration_step"`
	WalletStep       StepID `json:"wallet_step"`
	LinkWalletStep   StepID `json:"link_wallet_step"`
	AIIntroStep      StepID `json:"ai_intro_step"`
	QuizStep         StepID `json:"quiz_step"`
	NFTStep          StepID `json:"nft_step"`

	// PacingDelays holds the pause before leaving a step, so the client can
	// show a success animation first.
	PacingDelays map[StepID]time.Duration `json:"pacing_delays"`
	// WalletTimeout bounds a single wallet connect attempt
	WalletTimeout time.Duration `json:"wallet_timeout"`

	Questions     quiz.Bank `json:"questions"`
	PassThreshold int       `json:"pass_threshold"`
}

// DefaultFlow returns the six-step crypto journey
func DefaultFlow() Flow {
	return Flow{
		Steps: []StepDefinition{
			{ID: StepRegistration, Title: "Quick Start", Description: "Register with email"},
			{ID: StepWallet, Title: "Create Wallet", Description: "Embedded wallet"},
			{ID: StepLinkWallet, Title: "Link Wallet", Description: "Connect external wallet"},
			{ID: StepAIIntro, Title: "AI Crypto Guide", Description: "Chat with AI mentor to learn"},
			{ID: StepQuiz, Title: "Crypto Quiz", Description: "Test your knowledge"},
			{ID: StepNFTReward, Title: "Win NFT", Description: "Earn your crypto badge"},
		},
		Progress: map[StepID]int{
			StepRegistration: 16,
			StepWallet:       33,
			StepLinkWallet:   50,
			StepAIIntro:      66,
			StepQuiz:         83,
			StepNFTReward:    100,
		},
		RegistrationStep: StepRegistration,
		WalletStep:       StepWallet,
		LinkWalletStep:   StepLinkWallet,
		AIIntroStep:      StepAIIntro,
		QuizStep:         StepQuiz,
		NFTStep:          StepNFTReward,
		PacingDelays: map[StepID]time.Duration{
			StepWallet:     time.Second,
			StepLinkWallet: 500 * time.Millisecond,
		},
		WalletTimeout: 2 * time.Minute,
		Questions:     quiz.DefaultQuestions(),
		PassThreshold: quiz.DefaultPassThreshold,
	}
}

// Validate checks the flow is internally consistent
func (f Flow) Validate() error {
	if len(f.Steps) == 0 {
		return fmt.Errorf("flow has no steps")
	}

	seen := make(map[StepID]bool, len(f.Steps))
	for _, s := range f.Steps {
		if s.ID == "" {
			return fmt.Errorf("flow step with empty id")
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate step %q", s.ID)
		}
		seen[s.ID] = true
	}

	for role, id := range map[string]StepID{
		"registration": f.RegistrationStep,
		"wallet":       f.WalletStep,
		"link wallet":  f.LinkWalletStep,
		"ai intro":     f.AIIntroStep,
		"quiz":         f.QuizStep,
		"nft":          f.NFTStep,
	} {
		if id != "" && !seen[id] {
			return fmt.Errorf("%s step %q is not part of the flow", role, id)
		}
	}

	if f.QuizStep != "" {
		if err := f.Questions.Validate(); err != nil {
			return fmt.Errorf("quiz: %w", err)
		}
		if f.PassThreshold < 0 || f.PassThreshold > len(f.Questions) {
			return fmt.Errorf("pass threshold %d outside 0..%d", f.PassThreshold, len(f.Questions))
		}
		if f.NFTStep != "" {
			if next, ok := f.Next(f.QuizStep); !ok || next != f.NFTStep {
				return fmt.Errorf("nft step must directly follow the quiz step")
			}
		}
	}

	return nil
}

// Has reports whether id is one of the flow's steps
func (f Flow) Has(id StepID) bool {
	return f.Index(id) >= 0
}

// Index returns the position of id, or -1
func (f Flow) Index(id StepID) int {
	for i, s := range f.Steps {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// First returns the initial step
func (f Flow) First() StepID {
	return f.Steps[0].ID
}

// Next returns the step after id
func (f Flow) Next(id StepID) (StepID, bool) {
	i := f.Index(id)
	if i < 0 || i+1 >= len(f.Steps) {
		return "", false
	}
	return f.Steps[i+1].ID, true
}

// ProgressFor returns the stepped progress percentage for id
func (f Flow) ProgressFor(id StepID) int {
	if p, ok := f.Progress[id]; ok {
		return p
	}
	i := f.Index(id)
	if i < 0 {
		return 0
	}
	return (i + 1) * 100 / len(f.Steps)
}

// PacingDelay returns the pause before leaving id
func (f Flow) PacingDelay(id StepID) time.Duration {
	return f.PacingDelays[id]
}

func (f Flow) stepNames() []string {
	names := make([]string, len(f.Steps))
	for i, s := range f.Steps {
		names[i] = string(s.ID)
	}
	return names
}
