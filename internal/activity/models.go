// Package activity keeps an append-only log of journey events for
// analytics. Nothing is ever read back into a live session.
package activity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"superlearn/learning-portal/learning-portal-backend/internal/journey"
)

// Entry is one logged journey event
type Entry struct {
	ID          uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid"`
	SessionID   uuid.UUID      `json:"session_id" gorm:"type:uuid;not null;index"`
	Kind        string         `json:"kind" gorm:"not null;index"`
	Step        string         `json:"step,omitempty"`
	CurrentStep string         `json:"current_step" gorm:"not null"`
	Progress    int            `json:"progress"`
	Detail      datatypes.JSON `json:"detail,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time      `json:"created_at" gorm:"not null"`
}

// TableName pins the table name
func (Entry) TableName() string {
	return "journey_activity"
}

// Recorder persists entries
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// privateDetail lists event detail keys that never leave the process
var privateDetail = map[string]bool{"email": true}

// NewEntry converts a journey event into a log entry
func NewEntry(e journey.Event) (Entry, error) {
	entry := Entry{
		ID:          uuid.New(),
		SessionID:   e.SessionID,
		Kind:        string(e.Kind),
		Step:        string(e.Step),
		CurrentStep: string(e.View.CurrentStep),
		Progress:    e.View.Progress,
		CreatedAt:   e.At,
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	detail := make(map[string]interface{}, len(e.Detail))
	for k, v := range e.Detail {
		if !privateDetail[k] {
			detail[k] = v
		}
	}
	if len(detail) > 0 {
		raw, err := json.Marshal(detail)
		if err != nil {
			return Entry{}, err
		}
		entry.Detail = datatypes.JSON(raw)
	}
	return entry, nil
}
