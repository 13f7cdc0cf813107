package journey

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"superlearn/learning-portal/learning-portal-backend/internal/mint"
	"superlearn/learning-portal/learning-portal-backend/internal/quiz"
	"superlearn/learning-portal/learning-portal-backend/internal/wallet"
	"superlearn/learning-portal/learning-portal-backend/pkg/workflows"
)

// ControllerOptions contains the collaborators of a controller
type ControllerOptions struct {
	SessionID uuid.UUID
	Flow      Flow
	Provider  wallet.Provider
	Minter    mint.Minter
	Listener  Listener
	Logger    *zap.Logger
}

// Controller owns the onboarding state of one session. All mutations are
// serialized by mu; listeners are called after mu is released.
type Controller struct {
	id       uuid.UUID
	flow     Flow
	machine  *workflows.StateMachine
	provider wallet.Provider
	minter   mint.Minter
	listener Listener
	logger   *zap.Logger

	mu            sync.Mutex
	state         State
	activeModal   StepID
	selected      *int
	answers       []int
	attempts      int
	lastResult    *QuizResult
	walletState   wallet.State
	walletError   string
	minting       bool
	receipt       *mint.Receipt
	generation    uint64
	timers        map[StepID]*time.Timer
	cancelConnect context.CancelFunc
	closed        bool

	wg sync.WaitGroup
}

// NewController creates a controller in the initial state of opts.Flow
func NewController(opts ControllerOptions) (*Controller, error) {
	if err := opts.Flow.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flow: %w", err)
	}
	if opts.Flow.WalletStep != "" && opts.Provider == nil {
		return nil, fmt.Errorf("wallet provider is required")
	}
	if opts.Flow.NFTStep != "" && opts.Minter == nil {
		return nil, fmt.Errorf("minter is required")
	}

	id := opts.SessionID
	if id == uuid.Nil {
		id = uuid.New()
	}
	listener := opts.Listener
	if listener == nil {
		listener = nopListener{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Controller{
		id:          id,
		flow:        opts.Flow,
		machine:     workflows.NewLinearStateMachine(opts.Flow.stepNames()),
		provider:    opts.Provider,
		minter:      opts.Minter,
		listener:    listener,
		logger:      logger.With(zap.String("session_id", id.String())),
		state:       NewState(opts.Flow),
		walletState: wallet.Disconnected{},
		timers:      make(map[StepID]*time.Timer),
	}, nil
}

// ID returns the session id
func (c *Controller) ID() uuid.UUID {
	return c.id
}

// Flow returns the flow the controller was built with
func (c *Controller) Flow() Flow {
	return c.flow
}

// State returns a copy of the onboarding state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// View returns the current view model
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Started announces the session to listeners
func (c *Controller) Started() {
	c.mu.Lock()
	out := c.sealLocked([]Event{c.newEvent(EventSessionStarted, c.state.CurrentStep, nil)})
	c.mu.Unlock()
	c.publish(out)
}

// OpenStep shows the detail modal of id. Pending steps are inert: the call is
// logged and ignored.
func (c *Controller) OpenStep(id StepID) bool {
	c.mu.Lock()
	if c.closed || !c.state.IsNavigable(id) {
		c.logger.Debug("Step not clickable",
			zap.String("step", string(id)),
			zap.String("current_step", string(c.state.CurrentStep)))
		c.mu.Unlock()
		return false
	}
	c.activeModal = id
	out := c.sealLocked([]Event{c.newEvent(EventModalOpened, id, nil)})
	c.mu.Unlock()
	c.publish(out)
	return true
}

// CloseModal hides whatever modal is open
func (c *Controller) CloseModal() {
	c.mu.Lock()
	if c.activeModal == "" {
		c.mu.Unlock()
		return
	}
	closed := c.activeModal
	c.activeModal = ""
	out := c.sealLocked([]Event{c.newEvent(EventModalClosed, closed, nil)})
	c.mu.Unlock()
	c.publish(out)
}

// CompleteStep marks id completed. Completing twice is a no-op.
func (c *Controller) CompleteStep(id StepID) error {
	if !c.flow.Has(id) {
		return fmt.Errorf("%w: %s", ErrUnknownStep, id)
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrSessionClosed
	}
	out := c.sealLocked(c.completeStepLocked(id))
	c.mu.Unlock()
	c.publish(out)
	return nil
}

// AdvanceTo makes id the current step. Only the step directly after the
// current one is reachable; the caller completes the step being left.
func (c *Controller) AdvanceTo(id StepID) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrSessionClosed
	}
	evs, err := c.advanceLocked(id)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	out := c.sealLocked(evs)
	c.mu.Unlock()
	c.publish(out)
	return nil
}

// Register records the learner and moves past the registration step
func (c *Controller) Register(email, name string) error {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || name == "" {
		return ErrInvalidRegistration
	}

	c.mu.Lock()
	if err := c.requireCurrentLocked(c.flow.RegistrationStep); err != nil {
		c.mu.Unlock()
		return err
	}

	step := c.flow.RegistrationStep
	c.state.Email = email
	c.state.Name = name
	c.activeModal = ""

	evs := []Event{c.newEvent(EventRegistered, step, map[string]interface{}{"name": name})}
	evs = append(evs, c.completeStepLocked(step)...)
	evs = append(evs, c.scheduleAdvanceLocked(step)...)

	out := c.sealLocked(evs)
	c.mu.Unlock()
	c.publish(out)
	return nil
}

// ConnectWallet asks the wallet provider to connect. The attempt runs in the
// background and is bounded by the flow's wallet timeout; its outcome arrives
// through OnExternalWalletReady or as a wallet error on the view. Calling
// again after a failure retries.
func (c *Controller) ConnectWallet() error {
	c.mu.Lock()
	if err := c.requireCurrentLocked(c.flow.WalletStep); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.state.IsCompleted(c.flow.WalletStep) {
		c.mu.Unlock()
		return nil
	}
	if _, ok := c.walletState.(wallet.Connecting); ok {
		c.mu.Unlock()
		return ErrWalletConnecting
	}

	// already authenticated with the provider
	if addr, ok := c.provider.CurrentAddress(); ok {
		out := c.sealLocked(c.onWalletReadyLocked(addr))
		c.mu.Unlock()
		c.publish(out)
		return nil
	}

	c.walletState = wallet.Connecting{Since: time.Now()}
	c.walletError = ""
	gen := c.generation

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if c.flow.WalletTimeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), c.flow.WalletTimeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	c.cancelConnect = cancel
	c.wg.Add(1)

	out := c.sealLocked([]Event{c.newEvent(EventWalletConnecting, c.flow.WalletStep, nil)})
	c.mu.Unlock()
	c.publish(out)

	go func() {
		defer c.wg.Done()
		defer cancel()
		conn, err := c.provider.Connect(ctx)
		c.finishConnect(gen, conn, err)
	}()

	return nil
}

// OnExternalWalletReady reacts to the wallet provider reporting an address.
// It only takes effect while the wallet step is current and not completed:
// the address is stored, the wallet step completed, and after the wallet
// pacing delay the journey advances to the next step.
func (c *Controller) OnExternalWalletReady(address string) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	evs := c.onWalletReadyLocked(address)
	out := c.sealLocked(evs)
	c.mu.Unlock()
	c.publish(out)
	return len(evs) > 0
}

// LinkWallet triggers the provider's link flow and completes the link step
func (c *Controller) LinkWallet(ctx context.Context) error {
	c.mu.Lock()
	if err := c.requireCurrentLocked(c.flow.LinkWalletStep); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.state.IsCompleted(c.flow.LinkWalletStep) {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if err := c.provider.ShowLinkFlow(ctx); err != nil {
		return fmt.Errorf("failed to show link flow: %w", err)
	}

	c.mu.Lock()
	if err := c.requireCurrentLocked(c.flow.LinkWalletStep); err != nil {
		c.mu.Unlock()
		return err
	}
	step := c.flow.LinkWalletStep
	if c.state.IsCompleted(step) {
		c.mu.Unlock()
		return nil
	}

	evs := []Event{c.newEvent(EventWalletLinked, step, nil)}
	evs = append(evs, c.completeStepLocked(step)...)
	evs = append(evs, c.scheduleAdvanceLocked(step)...)

	out := c.sealLocked(evs)
	c.mu.Unlock()
	c.publish(out)
	return nil
}

// FinishAIIntro completes the mentor introduction and moves on to the quiz
func (c *Controller) FinishAIIntro() error {
	c.mu.Lock()
	if err := c.requireCurrentLocked(c.flow.AIIntroStep); err != nil {
		c.mu.Unlock()
		return err
	}

	step := c.flow.AIIntroStep
	c.activeModal = ""
	evs := c.completeStepLocked(step)
	evs = append(evs, c.scheduleAdvanceLocked(step)...)

	out := c.sealLocked(evs)
	c.mu.Unlock()
	c.publish(out)
	return nil
}

// AnswerQuizQuestion selects an option for the current question. The score is
// not touched until the answer is submitted.
func (c *Controller) AnswerQuizQuestion(index int) error {
	c.mu.Lock()
	if err := c.requireCurrentLocked(c.flow.QuizStep); err != nil {
		c.mu.Unlock()
		return err
	}

	if c.state.IsCompleted(c.flow.QuizStep) {
		c.mu.Unlock()
		return ErrQuizCompleted
	}

	qi := c.state.Quiz.CurrentQuestionIndex
	q, err := c.flow.Questions.Question(qi)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if !q.HasOption(index) {
		c.mu.Unlock()
		return fmt.Errorf("%w: %d not in 0..%d", ErrAnswerOutOfRange, index, len(q.Options)-1)
	}

	sel := index
	c.selected = &sel

	out := c.sealLocked([]Event{c.newEvent(EventAnswerSelected, c.flow.QuizStep, map[string]interface{}{
		"question_index": qi,
		"selected":       index,
	})})
	c.mu.Unlock()
	c.publish(out)
	return nil
}

// SubmitQuizAnswer scores the selected answer. After the last question the
// quiz passes when the score reaches the flow's pass threshold: the quiz step
// is completed and the badge step opened, or the journey moves on when there
// is no badge step. Otherwise the quiz starts over.
func (c *Controller) SubmitQuizAnswer() (QuizResult, error) {
	c.mu.Lock()
	if err := c.requireCurrentLocked(c.flow.QuizStep); err != nil {
		c.mu.Unlock()
		return QuizResult{}, err
	}
	if c.state.IsCompleted(c.flow.QuizStep) {
		c.mu.Unlock()
		return QuizResult{}, ErrQuizCompleted
	}
	if c.selected == nil {
		c.mu.Unlock()
		return QuizResult{}, ErrNoAnswerSelected
	}

	step := c.flow.QuizStep
	qi := c.state.Quiz.CurrentQuestionIndex
	q, err := c.flow.Questions.Question(qi)
	if err != nil {
		c.mu.Unlock()
		return QuizResult{}, err
	}

	selected := *c.selected
	correct := q.IsCorrect(selected)
	if correct {
		c.state.Quiz.Score++
	}
	c.answers = append(c.answers, selected)

	result := QuizResult{
		QuestionIndex: qi,
		Selected:      selected,
		Correct:       correct,
		CorrectIndex:  q.Correct,
		Explanation:   q.Explanation,
		Score:         c.state.Quiz.Score,
	}
	evs := []Event{c.newEvent(EventQuizAnswered, step, map[string]interface{}{
		"question_index": qi,
		"selected":       selected,
		"correct":        correct,
	})}

	if qi < len(c.flow.Questions)-1 {
		c.state.Quiz.CurrentQuestionIndex++
		c.selected = nil
	} else {
		c.state.Quiz.Completed = true
		c.attempts++
		c.selected = nil
		result.Finished = true
		result.Passed = quiz.Passed(c.state.Quiz.Score, c.flow.PassThreshold)

		detail := map[string]interface{}{
			"score":   c.state.Quiz.Score,
			"total":   len(c.flow.Questions),
			"answers": append([]int(nil), c.answers...),
			"attempt": c.attempts,
		}

		if result.Passed {
			evs = append(evs, c.newEvent(EventQuizPassed, step, detail))
			evs = append(evs, c.completeStepLocked(step)...)
			if c.flow.NFTStep != "" {
				adv, err := c.advanceLocked(c.flow.NFTStep)
				if err != nil {
					c.logger.Error("Failed to advance after quiz", zap.Error(err))
				}
				evs = append(evs, adv...)
				c.activeModal = c.flow.NFTStep
			} else {
				c.activeModal = ""
				evs = append(evs, c.scheduleAdvanceLocked(step)...)
			}
		} else {
			evs = append(evs, c.newEvent(EventQuizFailed, step, detail))
			c.state.resetQuiz()
			c.answers = nil
			c.activeModal = step
		}
	}

	res := result
	c.lastResult = &res

	out := c.sealLocked(evs)
	c.mu.Unlock()
	c.publish(out)
	return result, nil
}

// MintNFT mints the learner's badge. While a mint is pending further calls
// fail with ErrMintInProgress; once minted, calls return the same receipt and
// change nothing.
func (c *Controller) MintNFT(ctx context.Context) (*mint.Receipt, error) {
	c.mu.Lock()
	if err := c.requireCurrentLocked(c.flow.NFTStep); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if c.state.NFTMinted {
		receipt := c.receipt
		c.mu.Unlock()
		return receipt, nil
	}
	if c.minting {
		c.mu.Unlock()
		return nil, ErrMintInProgress
	}

	step := c.flow.NFTStep
	c.minting = true
	gen := c.generation
	req := mint.Request{
		SessionID:     c.id,
		Recipient:     c.state.WalletAddress,
		LearnerName:   c.state.Name,
		QuizScore:     c.state.Quiz.Score,
		QuestionCount: len(c.flow.Questions),
	}
	out := c.sealLocked([]Event{c.newEvent(EventMintStarted, step, nil)})
	c.mu.Unlock()
	c.publish(out)

	receipt, err := c.minter.Mint(ctx, req)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if gen != c.generation {
		c.mu.Unlock()
		return nil, ErrSessionReset
	}
	c.minting = false

	if err != nil {
		c.logger.Warn("Badge mint failed", zap.Error(err))
		out = c.sealLocked([]Event{c.newEvent(EventMintFailed, step, map[string]interface{}{"error": err.Error()})})
		c.mu.Unlock()
		c.publish(out)
		return nil, fmt.Errorf("%w: %w", ErrMintFailed, err)
	}

	c.state.NFTMinted = true
	c.receipt = receipt
	c.activeModal = ""
	evs := []Event{c.newEvent(EventNFTMinted, step, map[string]interface{}{
		"token_id":     receipt.TokenID,
		"tx_hash":      receipt.TxHash,
		"metadata_uri": receipt.MetadataURI,
		"email":        c.state.Email,
	})}
	evs = append(evs, c.completeStepLocked(step)...)

	out = c.sealLocked(evs)
	c.mu.Unlock()
	c.publish(out)
	return receipt, nil
}

// Receipt returns the mint receipt once the badge exists
func (c *Controller) Receipt() (*mint.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.NFTMinted {
		return nil, ErrNotMinted
	}
	return c.receipt, nil
}

// ResetDemo restores the initial state. Pending pacing delays, wallet
// attempts and mints are abandoned.
func (c *Controller) ResetDemo() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.abandonPendingLocked()

	c.state = NewState(c.flow)
	c.activeModal = ""
	c.selected = nil
	c.answers = nil
	c.attempts = 0
	c.lastResult = nil
	c.walletState = wallet.Disconnected{}
	c.walletError = ""
	c.minting = false
	c.receipt = nil

	out := c.sealLocked([]Event{c.newEvent(EventReset, c.state.CurrentStep, nil)})
	c.mu.Unlock()
	c.publish(out)
}

// Close stops pending timers and waits for background wallet attempts
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.abandonPendingLocked()
	c.mu.Unlock()

	c.wg.Wait()
	return nil
}

func (c *Controller) abandonPendingLocked() {
	c.generation++
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
	if c.cancelConnect != nil {
		c.cancelConnect()
		c.cancelConnect = nil
	}
}

func (c *Controller) finishConnect(gen uint64, conn wallet.Connection, err error) {
	c.mu.Lock()
	if c.closed || gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.cancelConnect = nil

	if err == nil && conn.Address == "" {
		err = wallet.ErrNotConnected
	}

	var evs []Event
	if err != nil {
		c.walletState = wallet.Disconnected{}
		c.walletError = walletErrorMessage(err)
		c.logger.Warn("Wallet connection failed", zap.Error(err))
		evs = []Event{c.newEvent(EventWalletFailed, c.flow.WalletStep, map[string]interface{}{"error": err.Error()})}
	} else {
		evs = c.onWalletReadyLocked(conn.Address)
		if len(evs) == 0 {
			c.walletState = c.restingWalletStateLocked()
		}
	}

	out := c.sealLocked(evs)
	c.mu.Unlock()
	c.publish(out)
}

func (c *Controller) onWalletReadyLocked(address string) []Event {
	step := c.flow.WalletStep
	if step == "" || address == "" || c.state.CurrentStep != step || c.state.IsCompleted(step) {
		return nil
	}

	c.state.WalletAddress = address
	c.walletState = wallet.Connected{Address: address}
	c.walletError = ""

	evs := []Event{c.newEvent(EventWalletConnected, step, map[string]interface{}{"address": address})}
	evs = append(evs, c.completeStepLocked(step)...)
	evs = append(evs, c.scheduleAdvanceLocked(step)...)
	return evs
}

func (c *Controller) restingWalletStateLocked() wallet.State {
	if c.state.WalletAddress != "" {
		return wallet.Connected{Address: c.state.WalletAddress}
	}
	return wallet.Disconnected{}
}

func (c *Controller) requireCurrentLocked(step StepID) error {
	if c.closed {
		return ErrSessionClosed
	}
	if step == "" {
		return ErrStepNotConfigured
	}
	if c.state.CurrentStep != step {
		return fmt.Errorf("%w: %s (current %s)", ErrStepNotCurrent, step, c.state.CurrentStep)
	}
	return nil
}

func (c *Controller) completeStepLocked(id StepID) []Event {
	if c.state.IsCompleted(id) {
		return nil
	}
	c.state.CompletedSteps[id] = struct{}{}
	return []Event{c.newEvent(EventStepCompleted, id, nil)}
}

func (c *Controller) advanceLocked(to StepID) ([]Event, error) {
	if !c.machine.Knows(string(to)) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStep, to)
	}
	from := c.state.CurrentStep
	if from == to {
		return nil, nil
	}
	if !c.machine.CanTransition(string(from), string(to)) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, from, to)
	}
	c.state.CurrentStep = to
	return []Event{c.newEvent(EventStepAdvanced, to, map[string]interface{}{"from": string(from)})}, nil
}

// scheduleAdvanceLocked moves to the step after from, immediately or once
// from's pacing delay has elapsed.
func (c *Controller) scheduleAdvanceLocked(from StepID) []Event {
	next, ok := c.flow.Next(from)
	if !ok {
		return nil
	}

	delay := c.flow.PacingDelay(from)
	if delay <= 0 {
		evs, err := c.advanceLocked(next)
		if err != nil {
			c.logger.Error("Failed to advance", zap.String("from", string(from)), zap.Error(err))
		}
		return evs
	}

	if t, ok := c.timers[from]; ok {
		t.Stop()
	}
	gen := c.generation
	c.timers[from] = time.AfterFunc(delay, func() {
		c.pacedAdvance(gen, from, next)
	})
	return nil
}

func (c *Controller) pacedAdvance(gen uint64, from, next StepID) {
	c.mu.Lock()
	if c.closed || gen != c.generation || c.state.CurrentStep != from {
		c.mu.Unlock()
		return
	}
	delete(c.timers, from)

	evs, err := c.advanceLocked(next)
	if err != nil {
		c.logger.Error("Failed to advance after pacing delay", zap.String("from", string(from)), zap.Error(err))
	}
	out := c.sealLocked(evs)
	c.mu.Unlock()
	c.publish(out)
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID:   c.id,
		State:       c.state,
		ActiveModal: c.activeModal,
		Selected:    c.selected,
		Attempts:    c.attempts,
		LastResult:  c.lastResult,
		Wallet:      c.walletState,
		WalletError: c.walletError,
		Minting:     c.minting,
		Receipt:     c.receipt,
		NextSteps:   c.nextStepsLocked(),
	}
}

func (c *Controller) nextStepsLocked() []StepID {
	allowed := c.machine.GetAllowedTransitions(string(c.state.CurrentStep))
	next := make([]StepID, len(allowed))
	for i, id := range allowed {
		next[i] = StepID(id)
	}
	return next
}

func (c *Controller) viewLocked() View {
	return DeriveView(c.flow, c.snapshotLocked())
}

func (c *Controller) newEvent(kind EventKind, step StepID, detail map[string]interface{}) Event {
	return Event{
		SessionID: c.id,
		Kind:      kind,
		Step:      step,
		Detail:    detail,
		At:        time.Now(),
	}
}

// sealLocked attaches the current view to events produced by one operation
func (c *Controller) sealLocked(events []Event) []Event {
	if len(events) == 0 {
		return nil
	}
	v := c.viewLocked()
	for i := range events {
		events[i].View = v
	}
	return events
}

func (c *Controller) publish(events []Event) {
	for _, e := range events {
		c.listener.Publish(e)
	}
}

func walletErrorMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "Creating your wallet is taking longer than expected. Please try again!"
	case errors.Is(err, wallet.ErrConnectionRejected):
		return "The wallet connection was cancelled. Try again when you're ready!"
	default:
		return "Oops! We couldn't create your wallet. Please try again!"
	}
}
