package wallet

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksumAddress(t *testing.T) {
	vectors := []string{
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
		"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
	}
	for _, want := range vectors {
		assert.Equal(t, want, ChecksumAddress(strings.ToLower(want)))
	}
}

func TestNewDemoAddress(t *testing.T) {
	a, err := NewDemoAddress()
	require.NoError(t, err)
	b, err := NewDemoAddress()
	require.NoError(t, err)

	assert.True(t, IsAddress(a))
	assert.True(t, IsAddress(b))
	assert.NotEqual(t, a, b)
	assert.Equal(t, ChecksumAddress(a), a)
}

func TestAddressFromSeedIsDeterministic(t *testing.T) {
	seed := []byte("superlearn")
	assert.Equal(t, AddressFromSeed(seed), AddressFromSeed(seed))
}

func TestIsAddress(t *testing.T) {
	assert.False(t, IsAddress(""))
	assert.False(t, IsAddress("0xABC"))
	assert.False(t, IsAddress("5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed00"))
	assert.False(t, IsAddress("0xZZAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"))
}

func TestStateVariants(t *testing.T) {
	var s State = Disconnected{}
	assert.Equal(t, StatusDisconnected, s.Status())
	_, ok := AddressOf(s)
	assert.False(t, ok)

	s = Connecting{Since: time.Now()}
	assert.Equal(t, StatusConnecting, s.Status())

	s = Connected{Address: "0xABC"}
	addr, ok := AddressOf(s)
	assert.True(t, ok)
	assert.Equal(t, "0xABC", addr)
}

func TestSimulatedProviderConnect(t *testing.T) {
	p := NewSimulatedProvider(SimulatedConfig{Address: "0xABC"})

	_, ok := p.CurrentAddress()
	assert.False(t, ok)

	conn, err := p.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0xABC", conn.Address)

	addr, ok := p.CurrentAddress()
	assert.True(t, ok)
	assert.Equal(t, "0xABC", addr)
}

func TestSimulatedProviderKeepsAddress(t *testing.T) {
	p := NewSimulatedProvider(SimulatedConfig{})

	first, err := p.Connect(context.Background())
	require.NoError(t, err)
	second, err := p.Connect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Address, second.Address)
	assert.True(t, IsAddress(first.Address))
}

func TestSimulatedProviderFailure(t *testing.T) {
	p := NewSimulatedProvider(SimulatedConfig{FailWith: ErrConnectionRejected})

	_, err := p.Connect(context.Background())
	assert.True(t, errors.Is(err, ErrConnectionRejected))

	_, ok := p.CurrentAddress()
	assert.False(t, ok)
}

func TestSimulatedProviderHonoursContext(t *testing.T) {
	p := NewSimulatedProvider(SimulatedConfig{Latency: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.Connect(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSimulatedProviderLinkFlow(t *testing.T) {
	p := NewSimulatedProvider(SimulatedConfig{})
	require.NoError(t, p.ShowLinkFlow(context.Background()))
	require.NoError(t, p.ShowLinkFlow(context.Background()))
	assert.Equal(t, 2, p.LinkFlowsShown())
}
