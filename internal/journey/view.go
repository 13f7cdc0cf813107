package journey

import (
	"github.com/google/uuid"

	"superlearn/learning-portal/learning-portal-backend/internal/mint"
	"superlearn/learning-portal/learning-portal-backend/internal/wallet"
)

// StepView is a step as the client renders it
type StepView struct {
	ID          StepID     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      StepStatus `json:"status"`
	Clickable   bool       `json:"clickable"`
}

// QuestionView is the current quiz question, without its answer
type QuestionView struct {
	Index    int      `json:"index"`
	Total    int      `json:"total"`
	Text     string   `json:"question"`
	Options  []string `json:"options"`
	Selected *int     `json:"selected,omitempty"`
}

// QuizResult describes the outcome of one submitted answer
type QuizResult struct {
	QuestionIndex int    `json:"question_index"`
	Selected      int    `json:"selected"`
	Correct       bool   `json:"correct"`
	CorrectIndex  int    `json:"correct_index"`
	Explanation   string `json:"explanation"`
	Score         int    `json:"score"`
	Finished      bool   `json:"finished"`
	Passed        bool   `json:"passed"`
}

// QuizView summarises quiz progress
type QuizView struct {
	QuizState
	Total         int           `json:"total"`
	PassThreshold int           `json:"pass_threshold"`
	Attempts      int           `json:"attempts"`
	Question      *QuestionView `json:"current_question,omitempty"`
	LastResult    *QuizResult   `json:"last_result,omitempty"`
}

// WalletView exposes the observed wallet state
type WalletView struct {
	Status  wallet.Status `json:"status"`
	Address string        `json:"address,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// View is the derived view model of a session
type View struct {
	SessionID   uuid.UUID     `json:"session_id"`
	CurrentStep StepID        `json:"current_step"`
	NextStep    StepID        `json:"next_step,omitempty"`
	ActiveModal StepID        `json:"active_modal,omitempty"`
	Progress    int           `json:"progress"`
	Steps       []StepView    `json:"steps"`
	Completed   []StepID      `json:"completed_steps"`
	Quiz        QuizView      `json:"quiz"`
	Wallet      WalletView    `json:"wallet"`
	LearnerName string        `json:"learner_name,omitempty"`
	NFTMinted   bool          `json:"nft_minted"`
	Receipt     *mint.Receipt `json:"receipt,omitempty"`
	Loading     bool          `json:"loading"`
}

// Snapshot is everything a view is derived from
type Snapshot struct {
	SessionID   uuid.UUID
	State       State
	ActiveModal StepID
	Selected    *int
	Attempts    int
	LastResult  *QuizResult
	Wallet      wallet.State
	WalletError string
	Minting     bool
	Receipt     *mint.Receipt
	// NextSteps are the steps the current one may advance to
	NextSteps   []StepID
}

// DeriveView computes the view model. It has no side effects.
func DeriveView(flow Flow, snap Snapshot) View {
	st := snap.State

	v := View{
		SessionID:   snap.SessionID,
		CurrentStep: st.CurrentStep,
		ActiveModal: snap.ActiveModal,
		Progress:    flow.ProgressFor(st.CurrentStep),
		Steps:       make([]StepView, 0, len(flow.Steps)),
		Completed:   make([]StepID, 0, len(st.CompletedSteps)),
		LearnerName: st.Name,
		NFTMinted:   st.NFTMinted,
		Receipt:     snap.Receipt,
		Loading:     snap.Minting,
	}
	if len(snap.NextSteps) > 0 {
		v.NextStep = snap.NextSteps[0]
	}

	for _, def := range flow.Steps {
		v.Steps = append(v.Steps, StepView{
			ID:          def.ID,
			Title:       def.Title,
			Description: def.Description,
			Status:      st.StatusOf(def.ID),
			Clickable:   st.IsNavigable(def.ID),
		})
		if st.IsCompleted(def.ID) {
			v.Completed = append(v.Completed, def.ID)
		}
	}

	v.Quiz = QuizView{
		QuizState:     st.Quiz,
		Total:         len(flow.Questions),
		PassThreshold: flow.PassThreshold,
		Attempts:      snap.Attempts,
		LastResult:    snap.LastResult,
	}
	if flow.QuizStep != "" && !st.IsCompleted(flow.QuizStep) {
		if q, err := flow.Questions.Question(st.Quiz.CurrentQuestionIndex); err == nil {
			qv := &QuestionView{
				Index:   st.Quiz.CurrentQuestionIndex,
				Total:   len(flow.Questions),
				Text:    q.Text,
				Options: append([]string(nil), q.Options...),
			}
			if snap.Selected != nil {
				sel := *snap.Selected
				qv.Selected = &sel
			}
			v.Quiz.Question = qv
		}
	}

	ws := snap.Wallet
	if ws == nil {
		ws = wallet.Disconnected{}
	}
	v.Wallet = WalletView{Status: ws.Status(), Error: snap.WalletError}
	if addr, ok := wallet.AddressOf(ws); ok {
		v.Wallet.Address = addr
	} else if st.WalletAddress != "" {
		v.Wallet.Address = st.WalletAddress
	}
	if ws.Status() == wallet.StatusConnecting {
		v.Loading = true
	}

	return v
}
