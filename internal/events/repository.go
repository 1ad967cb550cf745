package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"seatly/internal/shared/apperrors"
)

// ListFilters is the validated form of ListQuery.
type ListFilters struct {
	Page     int
	Limit    int
	Search   string
	Venue    string
	Category string
	Status   string
	DateFrom *time.Time
	DateTo   *time.Time
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	List(ctx context.Context, f ListFilters) ([]Event, int64, error)
	// UpdateLocked loads the event under a row lock, applies mutate and
	// persists the result in one transaction. AvailableSeats is recomputed
	// from the seat map before saving.
	UpdateLocked(ctx context.Context, id uuid.UUID, mutate func(*Event) error) (*Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, event *Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *repository) List(ctx context.Context, f ListFilters) ([]Event, int64, error) {
	query := r.db.WithContext(ctx).Model(&Event{})

	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if f.Venue != "" {
		query = query.Where("venue ILIKE ?", "%"+f.Venue+"%")
	}
	if f.Category != "" {
		query = query.Where("category ILIKE ?", "%"+f.Category+"%")
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.DateFrom != nil {
		query = query.Where("date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		query = query.Where("date <= ?", *f.DateTo)
	}
	if f.MinPrice != nil {
		query = query.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query = query.Where("price <= ?", *f.MaxPrice)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var evts []Event
	offset := (f.Page - 1) * f.Limit
	err := query.
		Order("date ASC, created_at ASC").
		Limit(f.Limit).
		Offset(offset).
		Find(&evts).Error
	if err != nil {
		return nil, 0, err
	}
	return evts, total, nil
}

func (r *repository) UpdateLocked(ctx context.Context, id uuid.UUID, mutate func(*Event) error) (*Event, error) {
	var updated *Event
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event Event
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&event).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrEventNotFound
			}
			return err
		}

		if err := mutate(&event); err != nil {
			return err
		}

		event.AvailableSeats = event.Seats.AvailableCount()
		event.TotalSeats = len(event.Seats)
		if err := tx.Save(&event).Error; err != nil {
			return err
		}
		updated = &event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the event and its bookings in one transaction, bookings
// first so no booking row ever points at a missing event.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event Event
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&event).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrEventNotFound
			}
			return err
		}

		if err := tx.Exec("DELETE FROM bookings WHERE event_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&event).Error
	})
}
