package journey

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"superlearn/learning-portal/learning-portal-backend/internal/assistant"
	"superlearn/learning-portal/learning-portal-backend/internal/certificate"
	"superlearn/learning-portal/learning-portal-backend/internal/mint"
	"superlearn/learning-portal/learning-portal-backend/internal/sessions"
	"superlearn/learning-portal/learning-portal-backend/internal/wallet"
)

type Service interface {
	CreateSession(ctx context.Context) (*Controller, error)
	GetSession(ctx context.Context, id uuid.UUID) (*Controller, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
	ListSessions(ctx context.Context) []View

	AskMentor(ctx context.Context, id uuid.UUID, message string, mode assistant.Mode, opts assistant.Options) (assistant.Reply, error)
	Certificate(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type journeyService struct {
	flow         Flow
	store        *sessions.Store[*Controller]
	wallets      wallet.Factory
	minter       mint.Minter
	mentor       *assistant.Mentor
	certificates *certificate.Generator
	listener     Listener
	logger       *zap.Logger
}

func NewService(
	flow Flow,
	store *sessions.Store[*Controller],
	wallets wallet.Factory,
	minter mint.Minter,
	mentor *assistant.Mentor,
	certificates *certificate.Generator,
	listener Listener,
	logger *zap.Logger,
) (Service, error) {
	if err := flow.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flow: %w", err)
	}
	if listener == nil {
		listener = nopListener{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &journeyService{
		flow:         flow,
		store:        store,
		wallets:      wallets,
		minter:       minter,
		mentor:       mentor,
		certificates: certificates,
		listener:     listener,
		logger:       logger,
	}, nil
}

func (s *journeyService) CreateSession(ctx context.Context) (*Controller, error) {
	var provider wallet.Provider
	if s.wallets != nil {
		provider = s.wallets()
	}

	ctrl, err := NewController(ControllerOptions{
		Flow:     s.flow,
		Provider: provider,
		Minter:   s.minter,
		Listener: s.listener,
		Logger:   s.logger,
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.Put(ctrl.ID(), ctrl); err != nil {
		ctrl.Close()
		return nil, err
	}

	s.logger.Info("Session created", zap.String("session_id", ctrl.ID().String()))
	ctrl.Started()
	return ctrl, nil
}

func (s *journeyService) GetSession(ctx context.Context, id uuid.UUID) (*Controller, error) {
	ctrl, ok := s.store.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ctrl, nil
}

func (s *journeyService) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(id); err != nil {
		return ErrSessionNotFound
	}
	s.logger.Info("Session deleted", zap.String("session_id", id.String()))
	return nil
}

// ListSessions returns the view of every live session, ordered by id
func (s *journeyService) ListSessions(ctx context.Context) []View {
	ctrls := s.store.Values()
	views := make([]View, 0, len(ctrls))
	for _, ctrl := range ctrls {
		views = append(views, ctrl.View())
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].SessionID.String() < views[j].SessionID.String()
	})
	return views
}

// AskMentor is available once the learner has reached the mentor step
func (s *journeyService) AskMentor(ctx context.Context, id uuid.UUID, message string, mode assistant.Mode, opts assistant.Options) (assistant.Reply, error) {
	ctrl, err := s.GetSession(ctx, id)
	if err != nil {
		return assistant.Reply{}, err
	}
	if s.mentor == nil || s.flow.AIIntroStep == "" {
		return assistant.Reply{}, ErrStepNotConfigured
	}
	if !ctrl.State().IsNavigable(s.flow.AIIntroStep) {
		return assistant.Reply{}, fmt.Errorf("%w: %s", ErrStepNotCurrent, s.flow.AIIntroStep)
	}
	return s.mentor.Respond(ctx, message, mode, opts)
}

func (s *journeyService) Certificate(ctx context.Context, id uuid.UUID) ([]byte, error) {
	ctrl, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	receipt, err := ctrl.Receipt()
	if err != nil {
		return nil, err
	}

	st := ctrl.State()
	var steps []string
	for _, def := range s.flow.Steps {
		if st.IsCompleted(def.ID) {
			steps = append(steps, def.Title)
		}
	}

	return s.certificates.Generate(certificate.Data{
		LearnerName:   st.Name,
		WalletAddress: st.WalletAddress,
		QuizScore:     st.Quiz.Score,
		QuestionCount: len(s.flow.Questions),
		TokenID:       receipt.TokenID,
		TxHash:        receipt.TxHash,
		IssuedAt:      receipt.MintedAt,
		Steps:         steps,
	})
}
