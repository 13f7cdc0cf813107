package wallet

import (
	"context"
	"sync"
	"time"
)

// SimulatedConfig tunes the simulated provider
type SimulatedConfig struct {
	Latency time.Duration `json:"latency"`
	// FailWith, when set, is returned by every Connect call
	FailWith error `json:"-"`
	// Address, when set, is reported instead of a random one
	Address string `json:"address"`
}

// SimulatedProvider stands in for an embedded-wallet SDK
type SimulatedProvider struct {
	config SimulatedConfig

	mu        sync.RWMutex
	address   string
	linkShown int
}

// NewSimulatedProvider creates a new simulated wallet provider
func NewSimulatedProvider(config SimulatedConfig) *SimulatedProvider {
	return &SimulatedProvider{config: config}
}

// NewSimulatedFactory returns a Factory producing independent simulated providers
func NewSimulatedFactory(config SimulatedConfig) Factory {
	return func() Provider {
		return NewSimulatedProvider(config)
	}
}

// Connect waits for the configured latency and reports an address
func (p *SimulatedProvider) Connect(ctx context.Context) (Connection, error) {
	if p.config.Latency > 0 {
		timer := time.NewTimer(p.config.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Connection{}, ctx.Err()
		case <-timer.C:
		}
	}

	if p.config.FailWith != nil {
		return Connection{}, p.config.FailWith
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.address == "" {
		addr := p.config.Address
		if addr == "" {
			var err error
			if addr, err = NewDemoAddress(); err != nil {
				return Connection{}, err
			}
		}
		p.address = addr
	}

	return Connection{Address: p.address, ConnectedAt: time.Now()}, nil
}

// CurrentAddress returns the connected address, if any
func (p *SimulatedProvider) CurrentAddress() (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.address, p.address != ""
}

// ShowLinkFlow records that the link flow was requested
func (p *SimulatedProvider) ShowLinkFlow(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.linkShown++
	return nil
}

// LinkFlowsShown returns how many times the link flow was requested
func (p *SimulatedProvider) LinkFlowsShown() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.linkShown
}
