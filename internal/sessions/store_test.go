package sessions

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type closable struct {
	closed atomic.Int32
}

func (c *closable) Close() error {
	c.closed.Add(1)
	return nil
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func newTestStore(ttl time.Duration, max int) (*Store[*closable], *clock) {
	clk := &clock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewStore[*closable](ttl, max)
	s.now = clk.Now
	return s, clk
}

func TestStorePutGet(t *testing.T) {
	s, _ := newTestStore(time.Minute, 0)
	id := uuid.New()
	v := &closable{}

	require.NoError(t, s.Put(id, v))
	got, ok := s.Get(id)
	assert.True(t, ok)
	assert.Same(t, v, got)

	_, ok = s.Get(uuid.New())
	assert.False(t, ok)
	assert.Equal(t, 1, s.Size())
	assert.Equal(t, []uuid.UUID{id}, s.Keys())
}

func TestStoreSlidingExpiry(t *testing.T) {
	s, clk := newTestStore(time.Minute, 0)
	id := uuid.New()
	require.NoError(t, s.Put(id, &closable{}))

	clk.now = clk.now.Add(45 * time.Second)
	_, ok := s.Get(id)
	require.True(t, ok)

	clk.now = clk.now.Add(45 * time.Second)
	_, ok = s.Get(id)
	assert.True(t, ok, "get extends the lifetime")

	clk.now = clk.now.Add(2 * time.Minute)
	_, ok = s.Get(id)
	assert.False(t, ok)
}

func TestStoreRemoveExpired(t *testing.T) {
	s, clk := newTestStore(time.Minute, 0)
	old, fresh := &closable{}, &closable{}
	require.NoError(t, s.Put(uuid.New(), old))

	clk.now = clk.now.Add(50 * time.Second)
	require.NoError(t, s.Put(uuid.New(), fresh))

	clk.now = clk.now.Add(20 * time.Second)
	assert.Equal(t, 1, s.RemoveExpired())
	assert.Equal(t, int32(1), old.closed.Load())
	assert.Equal(t, int32(0), fresh.closed.Load())
	assert.Equal(t, 1, s.Size())
}

func TestStoreLimit(t *testing.T) {
	s, _ := newTestStore(time.Minute, 1)
	id := uuid.New()
	require.NoError(t, s.Put(id, &closable{}))
	assert.NoError(t, s.Put(id, &closable{}), "replacing does not count against the limit")
	assert.ErrorIs(t, s.Put(uuid.New(), &closable{}), ErrStoreFull)
}

func TestStoreDelete(t *testing.T) {
	s, _ := newTestStore(time.Minute, 0)
	id := uuid.New()
	v := &closable{}
	require.NoError(t, s.Put(id, v))

	require.NoError(t, s.Delete(id))
	assert.Equal(t, int32(1), v.closed.Load())
	assert.ErrorIs(t, s.Delete(id), ErrNotFound)
}

func TestStoreCloseAll(t *testing.T) {
	s, _ := newTestStore(time.Minute, 0)
	a, b := &closable{}, &closable{}
	require.NoError(t, s.Put(uuid.New(), a))
	require.NoError(t, s.Put(uuid.New(), b))

	s.CloseAll()
	assert.Equal(t, 0, s.Size())
	assert.Equal(t, int32(1), a.closed.Load())
	assert.Equal(t, int32(1), b.closed.Load())
}

func TestStoreValuesDoesNotRefresh(t *testing.T) {
	s, clk := newTestStore(time.Minute, 0)
	v := &closable{}
	require.NoError(t, s.Put(uuid.New(), v))

	clk.now = clk.now.Add(45 * time.Second)
	assert.Equal(t, []*closable{v}, s.Values())

	clk.now = clk.now.Add(30 * time.Second)
	assert.Equal(t, 1, s.RemoveExpired())
	assert.Empty(t, s.Values())
}

func TestStoreValuesSkipsExpired(t *testing.T) {
	s, clk := newTestStore(time.Minute, 0)
	stale := &closable{}
	require.NoError(t, s.Put(uuid.New(), stale))

	clk.now = clk.now.Add(40 * time.Second)
	fresh := &closable{}
	require.NoError(t, s.Put(uuid.New(), fresh))

	clk.now = clk.now.Add(30 * time.Second)
	assert.Equal(t, []*closable{fresh}, s.Values())
	assert.Equal(t, 2, s.Size(), "not swept yet")
	assert.Zero(t, stale.closed.Load())
}
