package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"seatly/internal/shared/apperrors"
	"seatly/internal/shared/config"
	"seatly/internal/shared/constants"
	"seatly/pkg/cache"
	"seatly/pkg/logger"
)

// SeatAvailability is the live view of an event's open inventory.
type SeatAvailability struct {
	EventID        uuid.UUID `json:"event_id"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	Seats          []Seat    `json:"seats"`
}

type Service interface {
	CreateEvent(ctx context.Context, creatorID uuid.UUID, req CreateEventRequest) (*EventResponse, error)
	GetEventByID(ctx context.Context, id uuid.UUID) (*EventResponse, error)
	GetAllEvents(ctx context.Context, q ListQuery) (*PaginatedEvents, error)
	GetAvailableSeats(ctx context.Context, id uuid.UUID) (*SeatAvailability, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, req UpdateEventRequest) (*EventResponse, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo  Repository
	cache cache.Service
	ttl   config.RedisConfig
	log   *logger.Logger
}

func NewService(repo Repository, cacheSvc cache.Service, redisCfg config.RedisConfig, log *logger.Logger) Service {
	return &service{repo: repo, cache: cacheSvc, ttl: redisCfg, log: log}
}

func (s *service) CreateEvent(ctx context.Context, creatorID uuid.UUID, req CreateEventRequest) (*EventResponse, error) {
	if req.Price.IsNegative() {
		return nil, apperrors.NewValidation("price", "must not be negative")
	}

	event := &Event{
		ID:             uuid.New(),
		Title:          req.Title,
		Description:    req.Description,
		Venue:          req.Venue,
		Category:       req.Category,
		Date:           req.Date,
		StartTime:      req.Time,
		TotalSeats:     req.TotalSeats,
		AvailableSeats: req.TotalSeats,
		Price:          req.Price,
		BannerURL:      req.BannerURL,
		Status:         StatusUpcoming,
		Seats:          GenerateSeats(req.TotalSeats),
		CreatedBy:      creatorID,
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.log.LogEventCreated(ctx, event.ID.String(), creatorID.String())
	s.invalidateListCaches(ctx)

	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) GetEventByID(ctx context.Context, id uuid.UUID) (*EventResponse, error) {
	if s.cache != nil {
		var resp EventResponse
		key := constants.CACHE_KEY_EVENT_DETAIL + id.String()
		err := s.cache.GetOrSet(ctx, key, &resp, s.ttl.EventTTL, func() (interface{}, error) {
			event, err := s.repo.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			return event.ToResponse(), nil
		})
		if err != nil {
			return nil, err
		}
		return &resp, nil
	}

	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) GetAllEvents(ctx context.Context, q ListQuery) (*PaginatedEvents, error) {
	filters, err := parseFilters(q)
	if err != nil {
		return nil, err
	}

	fetch := func() (interface{}, error) {
		evts, total, err := s.repo.List(ctx, filters)
		if err != nil {
			return nil, err
		}
		out := &PaginatedEvents{
			Events:     make([]EventResponse, 0, len(evts)),
			Total:      total,
			Page:       filters.Page,
			Limit:      filters.Limit,
			TotalPages: int((total + int64(filters.Limit) - 1) / int64(filters.Limit)),
		}
		for i := range evts {
			out.Events = append(out.Events, evts[i].ToResponse())
		}
		return out, nil
	}

	if s.cache != nil {
		var page PaginatedEvents
		key := listCacheKey(q)
		err := s.cache.GetOrSet(ctx, key, &page, s.ttl.ListTTL, fetch)
		if err != nil {
			return nil, err
		}
		return &page, nil
	}

	result, err := fetch()
	if err != nil {
		return nil, err
	}
	return result.(*PaginatedEvents), nil
}

func (s *service) GetAvailableSeats(ctx context.Context, id uuid.UUID) (*SeatAvailability, error) {
	fetch := func() (interface{}, error) {
		event, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		free := make([]Seat, 0, event.Seats.AvailableCount())
		for _, seat := range event.Seats {
			if !seat.IsBooked {
				free = append(free, seat)
			}
		}
		return &SeatAvailability{
			EventID:        event.ID,
			TotalSeats:     len(event.Seats),
			AvailableSeats: len(free),
			Seats:          free,
		}, nil
	}

	if s.cache != nil {
		var avail SeatAvailability
		key := constants.CACHE_KEY_EVENT_SEATS + id.String()
		err := s.cache.GetOrSet(ctx, key, &avail, s.ttl.SeatTTL, fetch)
		if err != nil {
			return nil, err
		}
		return &avail, nil
	}

	result, err := fetch()
	if err != nil {
		return nil, err
	}
	return result.(*SeatAvailability), nil
}

func (s *service) UpdateEvent(ctx context.Context, id uuid.UUID, req UpdateEventRequest) (*EventResponse, error) {
	if req.Price != nil && req.Price.IsNegative() {
		return nil, apperrors.NewValidation("price", "must not be negative")
	}

	event, err := s.repo.UpdateLocked(ctx, id, func(e *Event) error {
		if req.Title != nil {
			e.Title = *req.Title
		}
		if req.Description != nil {
			e.Description = *req.Description
		}
		if req.Venue != nil {
			e.Venue = *req.Venue
		}
		if req.Category != nil {
			e.Category = *req.Category
		}
		if req.Date != nil {
			e.Date = *req.Date
		}
		if req.Time != nil {
			e.StartTime = *req.Time
		}
		if req.Price != nil {
			// Existing bookings keep the price captured at booking time.
			e.Price = *req.Price
		}
		if req.BannerURL != nil {
			e.BannerURL = *req.BannerURL
		}
		if req.Status != nil {
			if !e.Status.CanTransitionTo(*req.Status) {
				return apperrors.NewValidation("status",
					fmt.Sprintf("cannot transition from %s to %s", e.Status, *req.Status))
			}
			e.Status = *req.Status
		}
		if req.TotalSeats != nil && *req.TotalSeats != len(e.Seats) {
			resized, err := e.Seats.Resize(*req.TotalSeats)
			if err != nil {
				return err
			}
			e.Seats = resized
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateEventCaches(ctx, id)

	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateEventCaches(ctx, id)
	return nil
}

func (s *service) invalidateEventCaches(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx,
		constants.CACHE_KEY_EVENT_DETAIL+id.String(),
		constants.CACHE_KEY_EVENT_SEATS+id.String(),
	); err != nil {
		s.log.Warn("event cache invalidation failed", "event_id", id, "error", err)
	}
	s.invalidateListCaches(ctx)
}

func (s *service) invalidateListCaches(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, constants.CACHE_KEY_EVENTS_LIST+"*"); err != nil {
		s.log.Warn("event list cache invalidation failed", "error", err)
	}
	if err := s.cache.DeletePattern(ctx, constants.PATTERN_INVALIDATE_ANALYTICS); err != nil {
		s.log.Warn("analytics cache invalidation failed", "error", err)
	}
}

func listCacheKey(q ListQuery) string {
	return fmt.Sprintf("%s:page:%d:limit:%d:search:%s:venue:%s:cat:%s:status:%s:from:%s:to:%s:min:%s:max:%s",
		constants.CACHE_KEY_EVENTS_LIST,
		q.Page, q.Limit, q.Search, q.Venue, q.Category, q.Status,
		q.DateFrom, q.DateTo, q.MinPrice, q.MaxPrice)
}

func parseFilters(q ListQuery) (ListFilters, error) {
	f := ListFilters{
		Page:     q.Page,
		Limit:    q.Limit,
		Search:   q.Search,
		Venue:    q.Venue,
		Category: q.Category,
		Status:   q.Status,
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}

	if q.DateFrom != "" {
		t, err := time.Parse("2006-01-02", q.DateFrom)
		if err != nil {
			return f, apperrors.NewValidation("date_from", "must be YYYY-MM-DD")
		}
		f.DateFrom = &t
	}
	if q.DateTo != "" {
		t, err := time.Parse("2006-01-02", q.DateTo)
		if err != nil {
			return f, apperrors.NewValidation("date_to", "must be YYYY-MM-DD")
		}
		// Inclusive upper bound for the whole day.
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.DateTo = &end
	}
	if q.MinPrice != "" {
		d, err := decimal.NewFromString(q.MinPrice)
		if err != nil || d.IsNegative() {
			return f, apperrors.NewValidation("min_price", "must be a non-negative number")
		}
		f.MinPrice = &d
	}
	if q.MaxPrice != "" {
		d, err := decimal.NewFromString(q.MaxPrice)
		if err != nil || d.IsNegative() {
			return f, apperrors.NewValidation("max_price", "must be a non-negative number")
		}
		f.MaxPrice = &d
	}
	return f, nil
}
