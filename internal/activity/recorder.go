package activity

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"superlearn/learning-portal/learning-portal-backend/internal/journey"
)

// LogRecorder writes entries to the application log. Used when no store is
// configured.
type LogRecorder struct {
	logger *zap.Logger
}

func NewLogRecorder(logger *zap.Logger) *LogRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogRecorder{logger: logger}
}

func (r *LogRecorder) Record(ctx context.Context, entry Entry) error {
	r.logger.Info("Journey activity",
		zap.String("session_id", entry.SessionID.String()),
		zap.String("kind", entry.Kind),
		zap.String("step", entry.Step),
		zap.String("current_step", entry.CurrentStep),
		zap.Int("progress", entry.Progress))
	return nil
}

// Listener feeds journey events to a Recorder from a single background
// worker. Events are dropped, not queued without bound, when the store falls
// behind.
type Listener struct {
	recorder Recorder
	timeout  time.Duration
	logger   *zap.Logger

	queue     chan journey.Event
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewListener starts the background worker
func NewListener(recorder Recorder, buffer int, logger *zap.Logger) *Listener {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = 256
	}
	l := &Listener{
		recorder: recorder,
		timeout:  5 * time.Second,
		logger:   logger,
		queue:    make(chan journey.Event, buffer),
		done:     make(chan struct{}),
	}
	go l.run()
	return l
}

// Publish implements journey.Listener
func (l *Listener) Publish(e journey.Event) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}

	select {
	case l.queue <- e:
	default:
		l.logger.Warn("Activity queue full, dropping event",
			zap.String("session_id", e.SessionID.String()),
			zap.String("kind", string(e.Kind)))
	}
}

func (l *Listener) run() {
	defer close(l.done)
	for e := range l.queue {
		entry, err := NewEntry(e)
		if err != nil {
			l.logger.Warn("Failed to build activity entry", zap.Error(err))
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		if err := l.recorder.Record(ctx, entry); err != nil {
			l.logger.Error("Failed to record activity",
				zap.String("session_id", entry.SessionID.String()),
				zap.Error(err))
		}
		cancel()
	}
}

// Close drains the queue and stops the worker
func (l *Listener) Close() error {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		l.closed = true
		close(l.queue)
		l.mu.Unlock()
	})
	<-l.done
	return nil
}
