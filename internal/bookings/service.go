package bookings

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"seatly/internal/shared/apperrors"
	"seatly/internal/shared/constants"
	"seatly/pkg/cache"
	"seatly/pkg/logger"
)

// maxBookingAttempts bounds retries when concurrent writers collide on
// the same event row.
const maxBookingAttempts = 3

// ActivityPublisher receives booking lifecycle records. Implementations
// must be best effort; publish failures never fail the booking.
type ActivityPublisher interface {
	BookingCreated(ctx context.Context, booking *Booking)
	BookingCanceled(ctx context.Context, booking *Booking)
}

type Service interface {
	CreateBooking(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*BookingResponse, error)
	CreateBookingByCount(ctx context.Context, userID uuid.UUID, req CreateByCountRequest) (*BookingResponse, error)
	CancelBooking(ctx context.Context, bookingID, callerID uuid.UUID, isAdmin bool) (*BookingResponse, error)
	UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status Status) (*BookingResponse, error)
	GetBooking(ctx context.Context, bookingID, callerID uuid.UUID, isAdmin bool) (*BookingResponse, error)
	ListMine(ctx context.Context, userID uuid.UUID, q ListQuery) (*PaginatedBookings, error)
	ListForEvent(ctx context.Context, eventID uuid.UUID) ([]BookingResponse, error)
}

type service struct {
	repo  Repository
	cache cache.Service
	feed  ActivityPublisher
	log   *logger.Logger
}

func NewService(repo Repository, cacheSvc cache.Service, feed ActivityPublisher, log *logger.Logger) Service {
	return &service{repo: repo, cache: cacheSvc, feed: feed, log: log}
}

func (s *service) CreateBooking(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*BookingResponse, error) {
	if len(req.SeatNumbers) == 0 {
		return nil, apperrors.ErrEmptySelection
	}
	if err := validateSeatSelection(req.SeatNumbers); err != nil {
		return nil, err
	}

	return s.bookWithRetry(ctx, req.EventID, userID, func() (*Booking, error) {
		return s.repo.BookSeats(ctx, req.EventID, userID, req.SeatNumbers)
	})
}

func (s *service) CreateBookingByCount(ctx context.Context, userID uuid.UUID, req CreateByCountRequest) (*BookingResponse, error) {
	if req.Tickets <= 0 {
		return nil, apperrors.ErrEmptySelection
	}

	return s.bookWithRetry(ctx, req.EventID, userID, func() (*Booking, error) {
		return s.repo.BookSeatCount(ctx, req.EventID, userID, req.Tickets)
	})
}

// bookWithRetry drives the repository call, retrying transient write
// conflicts with identical input, then handles logging, cache and feed
// side effects for the successful booking.
func (s *service) bookWithRetry(ctx context.Context, eventID, userID uuid.UUID, book func() (*Booking, error)) (*BookingResponse, error) {
	var booking *Booking
	var err error
	for attempt := 1; attempt <= maxBookingAttempts; attempt++ {
		booking, err = book()
		if !errors.Is(err, apperrors.ErrConflict) {
			break
		}
		s.log.Warn("booking attempt hit a write conflict, retrying",
			"event_id", eventID, "user_id", userID, "attempt", attempt)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.ErrServiceUnavailable
		}
		if su, ok := apperrors.IsSeatUnavailable(err); ok {
			s.log.LogBookingConflict(ctx, eventID.String(), userID.String(), su.Conflicting)
		}
		return nil, err
	}

	s.log.LogBookingCreated(ctx, booking.ID.String(), booking.EventID.String(), userID.String(), booking.SeatNumbers)
	s.invalidateEventCaches(ctx, booking.EventID)
	if s.feed != nil {
		s.feed.BookingCreated(ctx, booking)
	}

	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) CancelBooking(ctx context.Context, bookingID, callerID uuid.UUID, isAdmin bool) (*BookingResponse, error) {
	booking, err := s.repo.Cancel(ctx, bookingID, callerID, isAdmin)
	if err != nil {
		return nil, err
	}

	s.log.LogBookingCancelled(ctx, booking.ID.String(), booking.EventID.String(), callerID.String())
	s.invalidateEventCaches(ctx, booking.EventID)
	if s.feed != nil {
		s.feed.BookingCanceled(ctx, booking)
	}

	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status Status) (*BookingResponse, error) {
	if !status.IsValid() {
		return nil, apperrors.NewValidation("status", "unknown booking status")
	}

	booking, err := s.repo.SetStatus(ctx, bookingID, status)
	if err != nil {
		return nil, err
	}

	s.invalidateEventCaches(ctx, booking.EventID)
	if status == StatusCanceled && s.feed != nil {
		s.feed.BookingCanceled(ctx, booking)
	}

	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) GetBooking(ctx context.Context, bookingID, callerID uuid.UUID, isAdmin bool) (*BookingResponse, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && booking.UserID != callerID {
		return nil, apperrors.ErrForbidden
	}
	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, q ListQuery) (*PaginatedBookings, error) {
	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	list, total, err := s.repo.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}

	out := &PaginatedBookings{
		Bookings:   make([]BookingResponse, 0, len(list)),
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}
	for i := range list {
		out.Bookings = append(out.Bookings, list[i].ToResponse())
	}
	return out, nil
}

func (s *service) ListForEvent(ctx context.Context, eventID uuid.UUID) ([]BookingResponse, error) {
	list, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	out := make([]BookingResponse, 0, len(list))
	for i := range list {
		out = append(out, list[i].ToResponse())
	}
	return out, nil
}

func (s *service) invalidateEventCaches(ctx context.Context, eventID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx,
		constants.CACHE_KEY_EVENT_DETAIL+eventID.String(),
		constants.CACHE_KEY_EVENT_SEATS+eventID.String(),
	); err != nil {
		s.log.Warn("booking cache invalidation failed", "event_id", eventID, "error", err)
	}
	if err := s.cache.DeletePattern(ctx, constants.PATTERN_INVALIDATE_ANALYTICS); err != nil {
		s.log.Warn("analytics cache invalidation failed", "error", err)
	}
}

func validateSeatSelection(seats []string) error {
	seen := make(map[string]bool, len(seats))
	for _, num := range seats {
		if num == "" {
			return apperrors.NewValidation("seat_numbers", "seat numbers must not be empty")
		}
		if seen[num] {
			return apperrors.NewValidation("seat_numbers", "duplicate seat "+num)
		}
		seen[num] = true
	}
	return nil
}
