package sessions

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSweeperSweep(t *testing.T) {
	s, clk := newTestStore(time.Minute, 0)
	v := &closable{}
	require.NoError(t, s.Put(uuid.New(), v))

	sw := NewSweeper(s, "", zap.NewNop())
	sw.Sweep()
	assert.Equal(t, 1, s.Size())

	clk.now = clk.now.Add(2 * time.Minute)
	sw.Sweep()
	assert.Equal(t, 0, s.Size())
	assert.Equal(t, int32(1), v.closed.Load())
}

func TestSweeperStartStop(t *testing.T) {
	s, _ := newTestStore(time.Minute, 0)
	sw := NewSweeper(s, "@every 1h", nil)

	require.NoError(t, sw.Start())
	assert.Error(t, sw.Start())
	sw.Stop()
	sw.Stop()

	require.NoError(t, sw.Start(), "restart after stop")
	sw.Stop()
}

func TestSweeperInvalidSchedule(t *testing.T) {
	s, _ := newTestStore(time.Minute, 0)
	sw := NewSweeper(s, "not a schedule", nil)
	assert.Error(t, sw.Start())
}
