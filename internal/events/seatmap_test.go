package events

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seatly/internal/shared/apperrors"
)

func TestGenerateSeats(t *testing.T) {
	m := GenerateSeats(5)

	require.Len(t, m, 5)
	assert.Equal(t, "S1", m[0].SeatNumber)
	assert.Equal(t, "S5", m[4].SeatNumber)
	assert.Equal(t, 5, m.AvailableCount())
	assert.Equal(t, 0, m.BookedCount())
}

func TestBook_MarksSeatsWithOwner(t *testing.T) {
	m := GenerateSeats(4)
	user := uuid.New()

	err := m.Book([]string{"S2", "S3"}, user)
	require.NoError(t, err)

	assert.Equal(t, 2, m.BookedCount())
	assert.True(t, m[1].IsBooked)
	assert.Equal(t, user, *m[1].BookedBy)
	assert.False(t, m[0].IsBooked)
}

func TestBook_AllOrNothingOnConflict(t *testing.T) {
	m := GenerateSeats(4)
	first := uuid.New()
	require.NoError(t, m.Book([]string{"S1"}, first))

	err := m.Book([]string{"S1", "S2"}, uuid.New())
	require.Error(t, err)

	su, ok := apperrors.IsSeatUnavailable(err)
	require.True(t, ok)
	assert.Equal(t, []string{"S1"}, su.Conflicting)
	assert.ElementsMatch(t, []string{"S2", "S3", "S4"}, su.Available)

	// S2 must remain free after the failed attempt.
	assert.False(t, m[1].IsBooked)
	assert.Equal(t, 1, m.BookedCount())
}

func TestBook_UnknownSeatIsConflict(t *testing.T) {
	m := GenerateSeats(2)

	err := m.Book([]string{"S9"}, uuid.New())
	su, ok := apperrors.IsSeatUnavailable(err)
	require.True(t, ok)
	assert.Equal(t, []string{"S9"}, su.Conflicting)
}

func TestFirstAvailable_Deterministic(t *testing.T) {
	m := GenerateSeats(5)
	require.NoError(t, m.Book([]string{"S1", "S3"}, uuid.New()))

	picked, err := m.FirstAvailable(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"S2", "S4"}, picked)
}

func TestFirstAvailable_NotEnoughSeats(t *testing.T) {
	m := GenerateSeats(3)
	require.NoError(t, m.Book([]string{"S1", "S2"}, uuid.New()))

	_, err := m.FirstAvailable(2)
	su, ok := apperrors.IsSeatUnavailable(err)
	require.True(t, ok)
	assert.Equal(t, []string{"S3"}, su.Available)
}

func TestRelease_Idempotent(t *testing.T) {
	m := GenerateSeats(3)
	require.NoError(t, m.Book([]string{"S1", "S2"}, uuid.New()))

	m.Release([]string{"S1", "S2"})
	assert.Equal(t, 3, m.AvailableCount())
	assert.Nil(t, m[0].BookedBy)

	// Releasing again, or releasing unknown seats, changes nothing.
	m.Release([]string{"S1", "S99"})
	assert.Equal(t, 3, m.AvailableCount())
}

func TestResize_GrowAppendsAfterHighestToken(t *testing.T) {
	m := GenerateSeats(3)

	out, err := m.Resize(5)
	require.NoError(t, err)
	require.Len(t, out, 5)
	assert.Equal(t, "S4", out[3].SeatNumber)
	assert.Equal(t, "S5", out[4].SeatNumber)
}

func TestResize_GrowAfterShrinkDoesNotReissueTokens(t *testing.T) {
	m := GenerateSeats(4)
	require.NoError(t, m.Book([]string{"S4"}, uuid.New()))

	// Shrink to 2: free tail seats go first, so S3 then S2 are dropped.
	smaller, err := m.Resize(2)
	require.NoError(t, err)
	require.Len(t, smaller, 2)
	assert.Equal(t, "S1", smaller[0].SeatNumber)
	assert.Equal(t, "S4", smaller[1].SeatNumber)

	// Growing again numbers past the highest surviving token.
	bigger, err := smaller.Resize(3)
	require.NoError(t, err)
	assert.Equal(t, "S5", bigger[2].SeatNumber)
}

func TestResize_ShrinkKeepsBookedSeats(t *testing.T) {
	m := GenerateSeats(5)
	user := uuid.New()
	require.NoError(t, m.Book([]string{"S2", "S5"}, user))

	out, err := m.Resize(2)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "S2", out[0].SeatNumber)
	assert.Equal(t, "S5", out[1].SeatNumber)
	assert.Equal(t, 2, out.BookedCount())
}

func TestResize_BelowBookedCountConflicts(t *testing.T) {
	m := GenerateSeats(5)
	require.NoError(t, m.Book([]string{"S1", "S2", "S3"}, uuid.New()))

	_, err := m.Resize(2)
	cc, ok := apperrors.IsCapacityConflict(err)
	require.True(t, ok)
	assert.Equal(t, 2, cc.Requested)
	assert.Equal(t, 3, cc.Booked)
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusUpcoming.CanTransitionTo(StatusActive))
	assert.True(t, StatusUpcoming.CanTransitionTo(StatusEnded))
	assert.True(t, StatusActive.CanTransitionTo(StatusEnded))
	assert.False(t, StatusEnded.CanTransitionTo(StatusActive))
	assert.False(t, StatusEnded.CanTransitionTo(StatusUpcoming))
	assert.False(t, StatusActive.CanTransitionTo(StatusUpcoming))

	assert.True(t, StatusActive.AcceptsBookings())
	assert.False(t, StatusEnded.AcceptsBookings())
}
