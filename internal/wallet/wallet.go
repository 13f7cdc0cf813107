// Package wallet describes the external wallet-as-a-service collaborator the
// learning journey depends on, and the connection state observed from it.
package wallet

import (
	"context"
	"errors"
	"time"
)

var (
	ErrConnectionRejected = errors.New("wallet connection rejected")
	ErrNotConnected       = errors.New("wallet not connected")
)

// Provider is the wallet collaborator. The journey only observes it; the
// single configuration it performs is asking for the link flow to be shown.
type Provider interface {
	Connect(ctx context.Context) (Connection, error)
	CurrentAddress() (string, bool)
	ShowLinkFlow(ctx context.Context) error
}

// Factory builds a provider for a new session
type Factory func() Provider

// Connection is what a provider reports once a user is authenticated
type Connection struct {
	Address     string    `json:"address"`
	ConnectedAt time.Time `json:"connected_at"`
}

// Status names a wallet state variant
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
)

// State is one of Disconnected, Connecting or Connected.
type State interface {
	Status() Status
	isState()
}

// Disconnected is the initial wallet state
type Disconnected struct{}

// Connecting is held while the provider's connect flow is pending
type Connecting struct {
	Since time.Time
}

// Connected carries the address reported by the provider
type Connected struct {
	Address string
}

func (Disconnected) Status() Status { return StatusDisconnected }
func (Connecting) Status() Status   { return StatusConnecting }
func (Connected) Status() Status    { return StatusConnected }

func (Disconnected) isState() {}
func (Connecting) isState()   {}
func (Connected) isState()    {}

// AddressOf returns the address when s is Connected
func AddressOf(s State) (string, bool) {
	if c, ok := s.(Connected); ok {
		return c.Address, true
	}
	return "", false
}
