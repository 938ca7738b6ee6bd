package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEvent(t *testing.T, capacity int) *Event {
	t.Helper()
	start := time.Now().Add(24 * time.Hour)
	event, err := NewEvent("Go Conference", "Berlin", CategoryConference, capacity, 49.90, 1, start, start.Add(8*time.Hour))
	require.NoError(t, err)
	return event
}

func TestNewEvent_InitializesSeatsFromCapacity(t *testing.T) {
	event := newTestEvent(t, 100)

	assert.Equal(t, 100, event.Capacity)
	assert.Equal(t, 100, event.AvailableSeats)
	assert.Equal(t, StatusDraft, event.Status)
}

func TestNewEvent_RejectsInvalidCapacity(t *testing.T) {
	start := time.Now().Add(time.Hour)
	_, err := NewEvent("X", "Y", CategoryOther, 0, 1, 1, start, start)
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestReserveSeats_GuardedDecrement(t *testing.T) {
	event := newTestEvent(t, 5)

	assert.True(t, event.ReserveSeats(3))
	assert.Equal(t, 2, event.AvailableSeats)

	// 余票不足时必须拒绝且不产生任何变更
	assert.False(t, event.ReserveSeats(3))
	assert.Equal(t, 2, event.AvailableSeats)

	assert.True(t, event.ReserveSeats(2))
	assert.Equal(t, 0, event.AvailableSeats)
	assert.False(t, event.HasAvailableSeats())
}

func TestReserveSeats_RejectsNonPositiveCount(t *testing.T) {
	event := newTestEvent(t, 5)

	assert.False(t, event.ReserveSeats(0))
	assert.False(t, event.ReserveSeats(-1))
	assert.Equal(t, 5, event.AvailableSeats)
}

func TestReleaseSeats_UnguardedIncrement(t *testing.T) {
	event := newTestEvent(t, 5)
	require.True(t, event.ReserveSeats(2))

	event.ReleaseSeats(2)
	assert.Equal(t, 5, event.AvailableSeats)

	// 归还不校验预占记录，超过容量是已知风险
	event.ReleaseSeats(3)
	assert.Equal(t, 8, event.AvailableSeats)

	event.ReleaseSeats(0)
	assert.Equal(t, 8, event.AvailableSeats)
}

func TestPublish_OnlyFromDraft(t *testing.T) {
	event := newTestEvent(t, 5)

	require.NoError(t, event.Publish())
	assert.Equal(t, StatusPublished, event.Status)
	assert.ErrorIs(t, event.Publish(), ErrInvalidTransition)
}

func TestCancel_TerminalStates(t *testing.T) {
	event := newTestEvent(t, 5)
	seats := event.AvailableSeats

	require.NoError(t, event.Cancel())
	assert.Equal(t, StatusCancelled, event.Status)
	// 状态流转不触碰座位计数
	assert.Equal(t, seats, event.AvailableSeats)

	assert.ErrorIs(t, event.Cancel(), ErrInvalidTransition)
}
