package journey

import (
	"time"

	"github.com/google/uuid"
)

// EventKind names a controller transition
type EventKind string

const (
	EventSessionStarted   EventKind = "session_started"
	EventModalOpened      EventKind = "modal_opened"
	EventModalClosed      EventKind = "modal_closed"
	EventStepCompleted    EventKind = "step_completed"
	EventStepAdvanced     EventKind = "step_advanced"
	EventRegistered       EventKind = "registered"
	EventWalletConnecting EventKind = "wallet_connecting"
	EventWalletConnected  EventKind = "wallet_connected"
	EventWalletFailed     EventKind = "wallet_failed"
	EventWalletLinked     EventKind = "wallet_linked"
	EventAnswerSelected   EventKind = "quiz_answer_selected"
	EventQuizAnswered     EventKind = "quiz_answered"
	EventQuizPassed       EventKind = "quiz_passed"
	EventQuizFailed       EventKind = "quiz_failed"
	EventMintStarted      EventKind = "mint_started"
	EventMintFailed       EventKind = "mint_failed"
	EventNFTMinted        EventKind = "nft_minted"
	EventReset            EventKind = "reset"
)

// Event is published after every state change, with the view as it stood
// once the change was applied.
type Event struct {
	SessionID uuid.UUID              `json:"session_id"`
	Kind      EventKind              `json:"kind"`
	Step      StepID                 `json:"step,omitempty"`
	Detail    map[string]interface{} `json:"detail,omitempty"`
	View      View                   `json:"view"`
	At        time.Time              `json:"at"`
}

// Listener receives controller events. Publish is called without the
// controller lock held and must not block for long.
type Listener interface {
	Publish(Event)
}

// ListenerFunc adapts a function to Listener
type ListenerFunc func(Event)

func (f ListenerFunc) Publish(e Event) { f(e) }

// Listeners fans an event out to each listener in order
type Listeners []Listener

func (ls Listeners) Publish(e Event) {
	for _, l := range ls {
		if l != nil {
			l.Publish(e)
		}
	}
}

type nopListener struct{}

func (nopListener) Publish(Event) {}
