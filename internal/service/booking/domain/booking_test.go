package domain

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	booking, err := NewBooking(1, 7, 2, 50.00, "alice@example.com", "Go Conference", time.Now().Add(72*time.Hour), "")
	require.NoError(t, err)
	return booking
}

func TestNewBooking_Defaults(t *testing.T) {
	booking := newTestBooking(t)

	assert.Equal(t, StatusPending, booking.Status)
	assert.NotEmpty(t, booking.BookingCode)
	assert.Nil(t, booking.ConfirmedAt)
	assert.Nil(t, booking.CancelledAt)
	assert.Equal(t, booking.CreatedAt, booking.UpdatedAt)
}

func TestNewBooking_Validation(t *testing.T) {
	eventDate := time.Now().Add(time.Hour)

	_, err := NewBooking(0, 7, 1, 10, "a@b.c", "X", eventDate, "")
	assert.Error(t, err)

	_, err = NewBooking(1, 7, 0, 10, "a@b.c", "X", eventDate, "")
	assert.Error(t, err)

	_, err = NewBooking(1, 7, 1, 0, "a@b.c", "X", eventDate, "")
	assert.Error(t, err)
}

func TestGenerateBookingCode_Format(t *testing.T) {
	now := time.Date(2023, 12, 15, 10, 0, 0, 0, time.UTC)
	code := GenerateBookingCode(now)

	assert.Regexp(t, regexp.MustCompile(`^BK-20231215-\d{4}$`), code)
}

func TestConfirm_OnlyFromPending(t *testing.T) {
	booking := newTestBooking(t)

	require.NoError(t, booking.Confirm())
	assert.Equal(t, StatusConfirmed, booking.Status)
	require.NotNil(t, booking.ConfirmedAt)

	assert.ErrorIs(t, booking.Confirm(), ErrBookingNotConfirmable)
}

func TestCancel_FromPendingAndConfirmed(t *testing.T) {
	pending := newTestBooking(t)
	require.NoError(t, pending.Cancel())
	assert.Equal(t, StatusCancelled, pending.Status)
	require.NotNil(t, pending.CancelledAt)

	confirmed := newTestBooking(t)
	require.NoError(t, confirmed.Confirm())
	require.NoError(t, confirmed.Cancel())
	assert.Equal(t, StatusCancelled, confirmed.Status)
}

func TestCancel_TerminalStatesAreFinal(t *testing.T) {
	booking := newTestBooking(t)
	require.NoError(t, booking.Cancel())

	// 再次取消必须失败，且时间戳不被覆盖
	cancelledAt := *booking.CancelledAt
	assert.ErrorIs(t, booking.Cancel(), ErrBookingNotCancellable)
	assert.Equal(t, cancelledAt, *booking.CancelledAt)

	refunded := newTestBooking(t)
	refunded.Status = StatusRefunded
	assert.False(t, refunded.CanBeCancelled())
	assert.ErrorIs(t, refunded.Cancel(), ErrBookingNotCancellable)
}
