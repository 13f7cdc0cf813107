package journey

// QuizState tracks progress through the quiz
type QuizState struct {
	CurrentQuestionIndex int  `json:"current_question_index"`
	Score                int  `json:"score"`
	Completed            bool `json:"completed"`
}

// State is the session-scoped onboarding record. It is only mutated by the
// controller.
type State struct {
	CurrentStep    StepID              `json:"current_step"`
	CompletedSteps map[StepID]struct{} `json:"-"`
	Quiz           QuizState           `json:"quiz"`
	WalletAddress  string              `json:"wallet_address,omitempty"`
	NFTMinted      bool                `json:"nft_minted"`
	Email          string              `json:"email,omitempty"`
	Name           string              `json:"name,omitempty"`
}

// NewState returns the initial state for flow
func NewState(flow Flow) State {
	return State{
		CurrentStep:    flow.First(),
		CompletedSteps: make(map[StepID]struct{}),
	}
}

// IsCompleted reports whether id has been completed
func (s State) IsCompleted(id StepID) bool {
	_, ok := s.CompletedSteps[id]
	return ok
}

// StatusOf derives the display status of id
func (s State) StatusOf(id StepID) StepStatus {
	switch {
	case s.IsCompleted(id):
		return StatusCompleted
	case s.CurrentStep == id:
		return StatusActive
	default:
		return StatusPending
	}
}

// IsNavigable reports whether the user may open id
func (s State) IsNavigable(id StepID) bool {
	return s.CurrentStep == id || s.IsCompleted(id)
}

// Clone returns a deep copy
func (s State) Clone() State {
	out := s
	out.CompletedSteps = make(map[StepID]struct{}, len(s.CompletedSteps))
	for id := range s.CompletedSteps {
		out.CompletedSteps[id] = struct{}{}
	}
	return out
}

func (s *State) resetQuiz() {
	s.Quiz = QuizState{}
}
