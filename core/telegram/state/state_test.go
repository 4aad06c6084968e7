package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

const stateTesting State = "testing"

func newTestManager() (*memoryManager, *time.Time) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	m := NewMemoryManager().(*memoryManager)
	m.now = func() time.Time { return now }
	return m, &now
}

func TestStateLifecycle(t *testing.T) {
	m, _ := newTestManager()

	assert.Equal(t, StateIdle, m.GetState(1))
	assert.False(t, m.InProgress(1))

	m.SetState(1, stateTesting)
	assert.Equal(t, stateTesting, m.GetState(1))
	assert.True(t, m.InProgress(1))

	m.Clear(1)
	assert.Equal(t, StateIdle, m.GetState(1))
	assert.False(t, m.InProgress(1))
}

func TestTempData(t *testing.T) {
	m, _ := newTestManager()

	_, ok := m.GetTemp(1, "k")
	assert.False(t, ok)

	m.SetTemp(1, "k", 42)
	v, ok := m.GetTemp(1, "k")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	m.Clear(1)
	_, ok = m.GetTemp(1, "k")
	assert.False(t, ok)
}

func TestDispatchRunsRegisteredHandler(t *testing.T) {
	m, _ := newTestManager()

	var got int64
	m.Register(stateTesting, func(c tele.Context) error {
		got = c.Sender().ID
		return nil
	})

	m.SetState(7, stateTesting)
	c := &fakeContext{user: &tele.User{ID: 7}}
	require.NoError(t, m.Dispatch(c))
	assert.Equal(t, int64(7), got)
}

func TestDispatchWithoutHandlerIsNoop(t *testing.T) {
	m, _ := newTestManager()

	c := &fakeContext{user: &tele.User{ID: 7}}
	assert.NoError(t, m.Dispatch(c))
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	m, now := newTestManager()

	m.SetState(1, stateTesting)
	m.SetState(2, stateTesting)

	*now = now.Add(10 * time.Minute)
	m.SetState(2, stateTesting) // keeps session 2 fresh

	evicted := m.Sweep(5 * time.Minute)
	assert.Equal(t, 1, evicted)
	assert.False(t, m.InProgress(1))
	assert.True(t, m.InProgress(2))
}

func TestSweepZeroTTLIsDisabled(t *testing.T) {
	m, now := newTestManager()
	m.SetState(1, stateTesting)
	*now = now.Add(time.Hour)

	assert.Zero(t, m.Sweep(0))
	assert.True(t, m.InProgress(1))
}

// fakeContext implements just enough of tele.Context for dispatch.
type fakeContext struct {
	tele.Context
	user *tele.User
	kv   map[string]interface{}
}

func (f *fakeContext) Sender() *tele.User { return f.user }
func (f *fakeContext) Chat() *tele.Chat   { return &tele.Chat{ID: f.user.ID} }
func (f *fakeContext) Update() tele.Update {
	return tele.Update{}
}
func (f *fakeContext) Get(key string) interface{} {
	return f.kv[key]
}
func (f *fakeContext) Set(key string, value interface{}) {
	if f.kv == nil {
		f.kv = make(map[string]interface{})
	}
	f.kv[key] = value
}
