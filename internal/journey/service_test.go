package journey

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"superlearn/learning-portal/learning-portal-backend/internal/assistant"
	"superlearn/learning-portal/learning-portal-backend/internal/certificate"
	"superlearn/learning-portal/learning-portal-backend/internal/sessions"
	"superlearn/learning-portal/learning-portal-backend/internal/wallet"
)

type failingAssistant struct{}

func (failingAssistant) Respond(ctx context.Context, message string, mode assistant.Mode, opts assistant.Options) (string, error) {
	return "", errors.New("upstream unavailable")
}

type serviceFixture struct {
	svc      Service
	store    *sessions.Store[*Controller]
	provider *fakeProvider
	minter   *fakeMinter
	events   *recorder
}

func newServiceFixture(t *testing.T, backend assistant.Assistant) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		store:    sessions.NewStore[*Controller](time.Hour, 4),
		provider: newFakeProvider(),
		minter:   &fakeMinter{},
		events:   &recorder{},
	}
	svc, err := NewService(
		testFlow(),
		f.store,
		func() wallet.Provider { return f.provider },
		f.minter,
		assistant.NewMentor(backend, zap.NewNop()),
		certificate.NewGenerator(certificate.DefaultOptions()),
		f.events,
		zap.NewNop(),
	)
	require.NoError(t, err)
	t.Cleanup(f.store.CloseAll)
	f.svc = svc
	return f
}

func TestNewServiceRejectsBadFlow(t *testing.T) {
	_, err := NewService(Flow{}, sessions.NewStore[*Controller](time.Hour, 1), nil, nil, nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestCreateAndGetSession(t *testing.T) {
	f := newServiceFixture(t, assistant.NewScripted())
	ctx := context.Background()

	ctrl, err := f.svc.CreateSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.store.Size())
	assert.Equal(t, []EventKind{EventSessionStarted}, f.events.Kinds())

	got, err := f.svc.GetSession(ctx, ctrl.ID())
	require.NoError(t, err)
	assert.Same(t, ctrl, got)

	_, err = f.svc.GetSession(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCreateSessionStoreFull(t *testing.T) {
	f := newServiceFixture(t, assistant.NewScripted())
	for i := 0; i < 4; i++ {
		_, err := f.svc.CreateSession(context.Background())
		require.NoError(t, err)
	}
	_, err := f.svc.CreateSession(context.Background())
	assert.ErrorIs(t, err, sessions.ErrStoreFull)
}

func TestDeleteSession(t *testing.T) {
	f := newServiceFixture(t, assistant.NewScripted())
	ctx := context.Background()
	ctrl, err := f.svc.CreateSession(ctx)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteSession(ctx, ctrl.ID()))
	assert.ErrorIs(t, f.svc.DeleteSession(ctx, ctrl.ID()), ErrSessionNotFound)

	// the controller was closed with the session
	assert.ErrorIs(t, ctrl.Register("ada@example.com", "Ada"), ErrSessionClosed)
}

func TestAskMentorRequiresAIIntro(t *testing.T) {
	f := newServiceFixture(t, assistant.NewScripted())
	ctx := context.Background()
	ctrl, err := f.svc.CreateSession(ctx)
	require.NoError(t, err)

	_, err = f.svc.AskMentor(ctx, ctrl.ID(), "what is a blockchain?", assistant.ModeChat, assistant.Options{})
	assert.ErrorIs(t, err, ErrStepNotCurrent)

	walkToQuiz(t, &fixture{ctrl: ctrl, provider: f.provider, minter: f.minter, events: f.events})

	reply, err := f.svc.AskMentor(ctx, ctrl.ID(), "what is a blockchain?", assistant.ModeChat, assistant.Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, reply.Text)
	assert.False(t, reply.Fallback)
}

func TestAskMentorFallsBack(t *testing.T) {
	f := newServiceFixture(t, failingAssistant{})
	ctx := context.Background()
	ctrl, err := f.svc.CreateSession(ctx)
	require.NoError(t, err)
	walkToQuiz(t, &fixture{ctrl: ctrl, provider: f.provider, minter: f.minter, events: f.events})

	reply, err := f.svc.AskMentor(ctx, ctrl.ID(), "hello", assistant.ModeChat, assistant.Options{})
	require.NoError(t, err)
	assert.True(t, reply.Fallback)
	assert.NotEmpty(t, reply.Text)
}

func TestCertificate(t *testing.T) {
	f := newServiceFixture(t, assistant.NewScripted())
	ctx := context.Background()
	ctrl, err := f.svc.CreateSession(ctx)
	require.NoError(t, err)

	_, err = f.svc.Certificate(ctx, ctrl.ID())
	assert.ErrorIs(t, err, ErrNotMinted)

	walkToQuiz(t, &fixture{ctrl: ctrl, provider: f.provider, minter: f.minter, events: f.events})
	answerAll(t, ctrl, []int{1, 1, 2})
	_, err = ctrl.MintNFT(ctx)
	require.NoError(t, err)

	pdf, err := f.svc.Certificate(ctx, ctrl.ID())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}
