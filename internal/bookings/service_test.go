package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seatly/internal/events"
	"seatly/internal/shared/apperrors"
	"seatly/pkg/logger"
)

// fakeRepo drives the service against an in-memory event, mirroring the
// transactional repository's behavior without a database.
type fakeRepo struct {
	event         *events.Event
	bookings      map[uuid.UUID]*Booking
	conflictsLeft int // number of calls that fail with ErrConflict first
}

func newFakeRepo(totalSeats int, price decimal.Decimal) *fakeRepo {
	return &fakeRepo{
		event: &events.Event{
			ID:             uuid.New(),
			Title:          "Test Event",
			Date:           time.Now().Add(48 * time.Hour),
			TotalSeats:     totalSeats,
			AvailableSeats: totalSeats,
			Price:          price,
			Status:         events.StatusUpcoming,
			Seats:          events.GenerateSeats(totalSeats),
		},
		bookings: map[uuid.UUID]*Booking{},
	}
}

func (f *fakeRepo) maybeConflict() error {
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return apperrors.ErrConflict
	}
	return nil
}

func (f *fakeRepo) BookSeats(_ context.Context, eventID, userID uuid.UUID, seatNumbers []string) (*Booking, error) {
	if err := f.maybeConflict(); err != nil {
		return nil, err
	}
	if eventID != f.event.ID {
		return nil, apperrors.ErrEventNotFound
	}
	if !f.event.Status.AcceptsBookings() {
		return nil, apperrors.ErrEventEnded
	}
	if err := f.event.Seats.Book(seatNumbers, userID); err != nil {
		return nil, err
	}
	b := &Booking{
		ID:          uuid.New(),
		EventID:     eventID,
		UserID:      userID,
		SeatNumbers: append([]string(nil), seatNumbers...),
		Tickets:     len(seatNumbers),
		TotalPrice:  f.event.Price.Mul(decimal.NewFromInt(int64(len(seatNumbers)))),
		Status:      StatusConfirmed,
		CreatedAt:   time.Now(),
	}
	f.event.AvailableSeats = f.event.Seats.AvailableCount()
	f.bookings[b.ID] = b
	return b, nil
}

func (f *fakeRepo) BookSeatCount(ctx context.Context, eventID, userID uuid.UUID, count int) (*Booking, error) {
	if err := f.maybeConflict(); err != nil {
		return nil, err
	}
	picked, err := f.event.Seats.FirstAvailable(count)
	if err != nil {
		return nil, err
	}
	return f.BookSeats(ctx, eventID, userID, picked)
}

func (f *fakeRepo) Cancel(_ context.Context, bookingID, callerID uuid.UUID, isAdmin bool) (*Booking, error) {
	b, ok := f.bookings[bookingID]
	if !ok {
		return nil, apperrors.ErrBookingNotFound
	}
	if !isAdmin && b.UserID != callerID {
		return nil, apperrors.ErrForbidden
	}
	if b.Status == StatusCanceled {
		return b, nil
	}
	f.event.Seats.Release(b.SeatNumbers)
	f.event.AvailableSeats = f.event.Seats.AvailableCount()
	now := time.Now()
	b.Status = StatusCanceled
	b.CancelledAt = &now
	return b, nil
}

func (f *fakeRepo) SetStatus(_ context.Context, bookingID uuid.UUID, status Status) (*Booking, error) {
	b, ok := f.bookings[bookingID]
	if !ok {
		return nil, apperrors.ErrBookingNotFound
	}
	if b.Status == status {
		return b, nil
	}
	if b.Status == StatusCanceled {
		return nil, apperrors.NewValidation("status", "canceled bookings cannot change status")
	}
	if status == StatusCanceled {
		f.event.Seats.Release(b.SeatNumbers)
		f.event.AvailableSeats = f.event.Seats.AvailableCount()
		now := time.Now()
		b.CancelledAt = &now
	}
	b.Status = status
	return b, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, apperrors.ErrBookingNotFound
	}
	return b, nil
}

func (f *fakeRepo) ListByUser(_ context.Context, userID uuid.UUID, page, limit int) ([]Booking, int64, error) {
	var out []Booking
	for _, b := range f.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) ListByEvent(_ context.Context, eventID uuid.UUID) ([]Booking, error) {
	var out []Booking
	for _, b := range f.bookings {
		if b.EventID == eventID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func newTestService(repo Repository) Service {
	return NewService(repo, nil, nil, logger.NewNop())
}

func TestCreateBooking_ExplicitSeats(t *testing.T) {
	repo := newFakeRepo(10, decimal.NewFromInt(50))
	svc := newTestService(repo)
	user := uuid.New()

	resp, err := svc.CreateBooking(context.Background(), user, CreateBookingRequest{
		EventID:     repo.event.ID,
		SeatNumbers: []string{"S1", "S2", "S3"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, resp.Tickets)
	assert.Equal(t, StatusConfirmed, resp.Status)
	assert.True(t, resp.TotalPrice.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, 7, repo.event.AvailableSeats)
}

func TestCreateBooking_ByCountPicksFirstFree(t *testing.T) {
	repo := newFakeRepo(5, decimal.NewFromInt(20))
	svc := newTestService(repo)

	_, err := svc.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		EventID:     repo.event.ID,
		SeatNumbers: []string{"S1", "S3"},
	})
	require.NoError(t, err)

	resp, err := svc.CreateBookingByCount(context.Background(), uuid.New(), CreateByCountRequest{
		EventID: repo.event.ID,
		Tickets: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"S2", "S4"}, []string(resp.SeatNumbers))
}

func TestCreateBooking_OverlapRejectedWithConflictList(t *testing.T) {
	repo := newFakeRepo(5, decimal.NewFromInt(20))
	svc := newTestService(repo)

	_, err := svc.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		EventID:     repo.event.ID,
		SeatNumbers: []string{"S2"},
	})
	require.NoError(t, err)

	_, err = svc.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		EventID:     repo.event.ID,
		SeatNumbers: []string{"S1", "S2"},
	})
	su, ok := apperrors.IsSeatUnavailable(err)
	require.True(t, ok)
	assert.Equal(t, []string{"S2"}, su.Conflicting)

	// The losing request must not have taken S1.
	assert.Equal(t, 4, repo.event.AvailableSeats)
}

func TestCreateBooking_EmptySelection(t *testing.T) {
	repo := newFakeRepo(5, decimal.NewFromInt(20))
	svc := newTestService(repo)

	_, err := svc.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		EventID: repo.event.ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrEmptySelection)

	_, err = svc.CreateBookingByCount(context.Background(), uuid.New(), CreateByCountRequest{
		EventID: repo.event.ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrEmptySelection)
}

func TestCreateBooking_DuplicateSeatsRejected(t *testing.T) {
	repo := newFakeRepo(5, decimal.NewFromInt(20))
	svc := newTestService(repo)

	_, err := svc.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		EventID:     repo.event.ID,
		SeatNumbers: []string{"S1", "S1"},
	})
	_, ok := apperrors.IsValidation(err)
	assert.True(t, ok)
}

func TestCreateBooking_RetriesTransientConflicts(t *testing.T) {
	repo := newFakeRepo(5, decimal.NewFromInt(20))
	repo.conflictsLeft = 2
	svc := newTestService(repo)

	resp, err := svc.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		EventID:     repo.event.ID,
		SeatNumbers: []string{"S1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Tickets)
}

func TestCreateBooking_GivesUpAfterMaxRetries(t *testing.T) {
	repo := newFakeRepo(5, decimal.NewFromInt(20))
	repo.conflictsLeft = maxBookingAttempts
	svc := newTestService(repo)

	_, err := svc.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		EventID:     repo.event.ID,
		SeatNumbers: []string{"S1"},
	})
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavailable)
}

func TestCreateBooking_EndedEventRejected(t *testing.T) {
	repo := newFakeRepo(5, decimal.NewFromInt(20))
	repo.event.Status = events.StatusEnded
	svc := newTestService(repo)

	_, err := svc.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		EventID:     repo.event.ID,
		SeatNumbers: []string{"S1"},
	})
	assert.ErrorIs(t, err, apperrors.ErrEventEnded)
}

func TestCancelBooking_ReleasesSeats(t *testing.T) {
	repo := newFakeRepo(5, decimal.NewFromInt(20))
	svc := newTestService(repo)
	user := uuid.New()

	created, err := svc.CreateBooking(context.Background(), user, CreateBookingRequest{
		EventID:     repo.event.ID,
		SeatNumbers: []string{"S1", "S2"},
	})
	require.NoError(t, err)
	require.Equal(t, 3, repo.event.AvailableSeats)

	cancelled, err := svc.CancelBooking(context.Background(), created.ID, user, false)
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, 5, repo.event.AvailableSeats)

	// A freed seat can be booked again.
	_, err = svc.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		EventID:     repo.event.ID,
		SeatNumbers: []string{"S1"},
	})
	assert.NoError(t, err)
}

func TestCancelBooking_Idempotent(t *testing.T) {
	repo := newFakeRepo(5, decimal.NewFromInt(20))
	svc := newTestService(repo)
	user := uuid.New()

	created, err := svc.CreateBooking(context.Background(), user, CreateBookingRequest{
		EventID:     repo.event.ID,
		SeatNumbers: []string{"S1"},
	})
	require.NoError(t, err)

	_, err = svc.CancelBooking(context.Background(), created.ID, user, false)
	require.NoError(t, err)

	again, err := svc.CancelBooking(context.Background(), created.ID, user, false)
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, again.Status)
	assert.Equal(t, 5, repo.event.AvailableSeats)
}

func TestCancelBooking_OwnerOnly(t *testing.T) {
	repo := newFakeRepo(5, decimal.NewFromInt(20))
	svc := newTestService(repo)
	owner := uuid.New()

	created, err := svc.CreateBooking(context.Background(), owner, CreateBookingRequest{
		EventID:     repo.event.ID,
		SeatNumbers: []string{"S1"},
	})
	require.NoError(t, err)

	_, err = svc.CancelBooking(context.Background(), created.ID, uuid.New(), false)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// Admins may cancel on behalf of anyone.
	_, err = svc.CancelBooking(context.Background(), created.ID, uuid.New(), true)
	assert.NoError(t, err)
}

func TestUpdateBookingStatus_CancelReleases(t *testing.T) {
	repo := newFakeRepo(5, decimal.NewFromInt(20))
	svc := newTestService(repo)

	created, err := svc.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		EventID:     repo.event.ID,
		SeatNumbers: []string{"S1", "S2"},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateBookingStatus(context.Background(), created.ID, StatusCanceled)
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, updated.Status)
	assert.Equal(t, 5, repo.event.AvailableSeats)

	// A canceled booking is terminal.
	_, err = svc.UpdateBookingStatus(context.Background(), created.ID, StatusConfirmed)
	_, ok := apperrors.IsValidation(err)
	assert.True(t, ok)
}

func TestGetBooking_OwnershipEnforced(t *testing.T) {
	repo := newFakeRepo(5, decimal.NewFromInt(20))
	svc := newTestService(repo)
	owner := uuid.New()

	created, err := svc.CreateBooking(context.Background(), owner, CreateBookingRequest{
		EventID:     repo.event.ID,
		SeatNumbers: []string{"S1"},
	})
	require.NoError(t, err)

	_, err = svc.GetBooking(context.Background(), created.ID, uuid.New(), false)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	got, err := svc.GetBooking(context.Background(), created.ID, owner, false)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestCreateBooking_PriceSnapshotSurvivesPriceChange(t *testing.T) {
	repo := newFakeRepo(5, decimal.NewFromInt(100))
	svc := newTestService(repo)

	created, err := svc.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		EventID:     repo.event.ID,
		SeatNumbers: []string{"S1", "S2"},
	})
	require.NoError(t, err)
	require.True(t, created.TotalPrice.Equal(decimal.NewFromInt(200)))

	// Raising the event price later must not touch the recorded total.
	repo.event.Price = decimal.NewFromInt(500)

	got, err := svc.GetBooking(context.Background(), created.ID, created.UserID, false)
	require.NoError(t, err)
	assert.True(t, got.TotalPrice.Equal(decimal.NewFromInt(200)))
}
