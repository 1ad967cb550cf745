package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seatly/internal/shared/apperrors"
	"seatly/internal/shared/config"
	"seatly/pkg/logger"
)

type fakeEventRepo struct {
	store map[uuid.UUID]*Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{store: map[uuid.UUID]*Event{}}
}

func (f *fakeEventRepo) Create(_ context.Context, event *Event) error {
	f.store[event.ID] = event
	return nil
}

func (f *fakeEventRepo) GetByID(_ context.Context, id uuid.UUID) (*Event, error) {
	e, ok := f.store[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	return e, nil
}

func (f *fakeEventRepo) List(_ context.Context, filters ListFilters) ([]Event, int64, error) {
	var out []Event
	for _, e := range f.store {
		if filters.Category != "" && e.Category != filters.Category {
			continue
		}
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (f *fakeEventRepo) UpdateLocked(_ context.Context, id uuid.UUID, mutate func(*Event) error) (*Event, error) {
	e, ok := f.store[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	if err := mutate(e); err != nil {
		return nil, err
	}
	e.AvailableSeats = e.Seats.AvailableCount()
	e.TotalSeats = len(e.Seats)
	return e, nil
}

func (f *fakeEventRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.store[id]; !ok {
		return apperrors.ErrEventNotFound
	}
	delete(f.store, id)
	return nil
}

func newTestService(repo Repository) Service {
	return NewService(repo, nil, config.RedisConfig{}, logger.NewNop())
}

func TestCreateEvent_GeneratesFullSeatMap(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newTestService(repo)

	resp, err := svc.CreateEvent(context.Background(), uuid.New(), CreateEventRequest{
		Title:      "Launch Party",
		Venue:      "Main Hall",
		Date:       time.Now().AddDate(0, 1, 0),
		TotalSeats: 50,
		Price:      decimal.NewFromInt(25),
	})
	require.NoError(t, err)

	assert.Equal(t, StatusUpcoming, resp.Status)
	assert.Equal(t, 50, resp.TotalSeats)
	assert.Equal(t, 50, resp.AvailableSeats)

	stored := repo.store[resp.ID]
	require.Len(t, stored.Seats, 50)
	assert.Equal(t, "S1", stored.Seats[0].SeatNumber)
	assert.Equal(t, "S50", stored.Seats[49].SeatNumber)
}

func TestCreateEvent_NegativePriceRejected(t *testing.T) {
	svc := newTestService(newFakeEventRepo())

	_, err := svc.CreateEvent(context.Background(), uuid.New(), CreateEventRequest{
		Title:      "Bad Price",
		Venue:      "Hall",
		Date:       time.Now(),
		TotalSeats: 10,
		Price:      decimal.NewFromInt(-1),
	})
	_, ok := apperrors.IsValidation(err)
	assert.True(t, ok)
}

func TestUpdateEvent_ResizeGrows(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newTestService(repo)

	created, err := svc.CreateEvent(context.Background(), uuid.New(), CreateEventRequest{
		Title:      "Resizable",
		Venue:      "Hall",
		Date:       time.Now().AddDate(0, 0, 10),
		TotalSeats: 10,
		Price:      decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	newTotal := 15
	updated, err := svc.UpdateEvent(context.Background(), created.ID, UpdateEventRequest{
		TotalSeats: &newTotal,
	})
	require.NoError(t, err)
	assert.Equal(t, 15, updated.TotalSeats)
	assert.Equal(t, 15, updated.AvailableSeats)
}

func TestUpdateEvent_AppliesBannerURL(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newTestService(repo)

	created, err := svc.CreateEvent(context.Background(), uuid.New(), CreateEventRequest{
		Title:      "Rebranded",
		Venue:      "Hall",
		Date:       time.Now().AddDate(0, 0, 10),
		TotalSeats: 5,
		Price:      decimal.NewFromInt(10),
		BannerURL:  "uploads/old.png",
	})
	require.NoError(t, err)

	banner := "uploads/new.png"
	updated, err := svc.UpdateEvent(context.Background(), created.ID, UpdateEventRequest{
		BannerURL: &banner,
	})
	require.NoError(t, err)
	assert.Equal(t, "uploads/new.png", updated.BannerURL)
	assert.Equal(t, "uploads/new.png", repo.store[created.ID].BannerURL)
}

func TestUpdateEvent_ResizeBelowBookedConflicts(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newTestService(repo)

	created, err := svc.CreateEvent(context.Background(), uuid.New(), CreateEventRequest{
		Title:      "Nearly Full",
		Venue:      "Hall",
		Date:       time.Now().AddDate(0, 0, 10),
		TotalSeats: 5,
		Price:      decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	require.NoError(t, repo.store[created.ID].Seats.Book([]string{"S1", "S2", "S3"}, uuid.New()))

	newTotal := 2
	_, err = svc.UpdateEvent(context.Background(), created.ID, UpdateEventRequest{
		TotalSeats: &newTotal,
	})
	cc, ok := apperrors.IsCapacityConflict(err)
	require.True(t, ok)
	assert.Equal(t, 3, cc.Booked)
}

func TestUpdateEvent_IllegalStatusTransition(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newTestService(repo)

	created, err := svc.CreateEvent(context.Background(), uuid.New(), CreateEventRequest{
		Title:      "One Way",
		Venue:      "Hall",
		Date:       time.Now().AddDate(0, 0, 10),
		TotalSeats: 5,
		Price:      decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	ended := StatusEnded
	_, err = svc.UpdateEvent(context.Background(), created.ID, UpdateEventRequest{Status: &ended})
	require.NoError(t, err)

	active := StatusActive
	_, err = svc.UpdateEvent(context.Background(), created.ID, UpdateEventRequest{Status: &active})
	_, ok := apperrors.IsValidation(err)
	assert.True(t, ok)
}

func TestGetAvailableSeats_OnlyFreeSeats(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newTestService(repo)

	created, err := svc.CreateEvent(context.Background(), uuid.New(), CreateEventRequest{
		Title:      "Partially Booked",
		Venue:      "Hall",
		Date:       time.Now().AddDate(0, 0, 10),
		TotalSeats: 4,
		Price:      decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	require.NoError(t, repo.store[created.ID].Seats.Book([]string{"S2"}, uuid.New()))

	avail, err := svc.GetAvailableSeats(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, avail.TotalSeats)
	assert.Equal(t, 3, avail.AvailableSeats)
	for _, seat := range avail.Seats {
		assert.False(t, seat.IsBooked)
		assert.NotEqual(t, "S2", seat.SeatNumber)
	}
}

func TestGetAllEvents_FilterValidation(t *testing.T) {
	svc := newTestService(newFakeEventRepo())

	_, err := svc.GetAllEvents(context.Background(), ListQuery{DateFrom: "not-a-date"})
	_, ok := apperrors.IsValidation(err)
	assert.True(t, ok)

	_, err = svc.GetAllEvents(context.Background(), ListQuery{MinPrice: "-5"})
	_, ok = apperrors.IsValidation(err)
	assert.True(t, ok)
}

func TestGetEventByID_NotFound(t *testing.T) {
	svc := newTestService(newFakeEventRepo())

	_, err := svc.GetEventByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
}
