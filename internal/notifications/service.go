// Package notifications pushes journey updates to connected clients and
// announces earned badges by email and SNS.
package notifications

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"superlearn/learning-portal/learning-portal-backend/internal/journey"
	"superlearn/learning-portal/learning-portal-backend/internal/notifications/websocket"
)

// Service is a journey listener. Badge delivery runs in the background so
// Publish never waits on AWS.
type Service struct {
	wsManager *websocket.Manager
	mailer    Mailer
	publisher Publisher
	timeout   time.Duration
	logger    *zap.Logger
	wg        sync.WaitGroup
}

// NewService creates a new notification service. Any channel may be nil.
func NewService(wsManager *websocket.Manager, mailer Mailer, publisher Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		wsManager: wsManager,
		mailer:    mailer,
		publisher: publisher,
		timeout:   15 * time.Second,
		logger:    logger,
	}
}

// Publish forwards the event's view to watchers and announces minted badges
func (s *Service) Publish(e journey.Event) {
	if s.wsManager != nil {
		err := s.wsManager.SendToSession(e.SessionID.String(), websocket.Message{
			Type:      string(e.Kind),
			Data:      e.View,
			Timestamp: e.At,
		})
		if err != nil {
			s.logger.Debug("Failed to push view", zap.String("session_id", e.SessionID.String()), zap.Error(err))
		}
	}

	if e.Kind != journey.EventNFTMinted || (s.mailer == nil && s.publisher == nil) {
		return
	}

	notice, err := NewBadgeNotice(e)
	if err != nil {
		s.logger.Warn("Malformed badge event", zap.Error(err))
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.announce(notice)
	}()
}

func (s *Service) announce(notice BadgeNotice) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if s.mailer != nil {
		if err := s.mailer.SendBadge(ctx, notice); err != nil {
			s.logger.Error("Badge email failed", zap.String("session_id", notice.SessionID.String()), zap.Error(err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishBadge(ctx, notice); err != nil {
			s.logger.Error("Badge publish failed", zap.String("session_id", notice.SessionID.String()), zap.Error(err))
		}
	}
}

// Close waits for pending badge announcements
func (s *Service) Close() error {
	s.wg.Wait()
	return nil
}
