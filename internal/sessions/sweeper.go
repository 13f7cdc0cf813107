package sessions

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSweepSchedule runs the sweep at the top of every minute
const DefaultSweepSchedule = "0 * * * * *"

// Expirer is the part of a store the sweeper drives
type Expirer interface {
	RemoveExpired() int
	Size() int
}

// Sweeper periodically expires idle sessions
type Sweeper struct {
	cron     *cron.Cron
	store    Expirer
	schedule string
	logger   *zap.Logger
	mu       sync.Mutex
	running  bool
	entry    cron.EntryID
}

// NewSweeper creates a sweeper. schedule is a cron expression with seconds.
func NewSweeper(store Expirer, schedule string, logger *zap.Logger) *Sweeper {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		cron:     cron.New(cron.WithSeconds()),
		store:    store,
		schedule: schedule,
		logger:   logger,
	}
}

// Start registers the sweep job and starts the scheduler
func (s *Sweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("session sweeper already running")
	}

	if s.entry == 0 {
		id, err := s.cron.AddFunc(s.schedule, s.Sweep)
		if err != nil {
			return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
		}
		s.entry = id
	}

	s.logger.Info("Starting session sweeper", zap.String("schedule", s.schedule))
	s.cron.Start()
	s.running = true
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.logger.Info("Stopping session sweeper")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
}

// Sweep expires idle sessions once
func (s *Sweeper) Sweep() {
	removed := s.store.RemoveExpired()
	if removed > 0 {
		s.logger.Info("Expired idle sessions",
			zap.Int("removed", removed),
			zap.Int("remaining", s.store.Size()))
	}
}
