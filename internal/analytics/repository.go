package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"seatly/internal/shared/apperrors"
)

type Repository interface {
	PopularEvents(ctx context.Context, limit int) ([]PopularEvent, error)
	RevenueByEvent(ctx context.Context) ([]EventRevenue, error)
	TopUsers(ctx context.Context, limit int) ([]TopUser, error)
	SearchRanked(ctx context.Context, q SearchQuery, limit int) ([]RankedEvent, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Canceled bookings carry no demand or revenue, so every rollup here
// excludes them.

func (r *repository) PopularEvents(ctx context.Context, limit int) ([]PopularEvent, error) {
	var out []PopularEvent
	err := r.db.WithContext(ctx).
		Table("events e").
		Select("e.id AS event_id, e.title, e.venue, e.date, COUNT(b.id) AS booking_count").
		Joins("JOIN bookings b ON b.event_id = e.id AND b.status <> 'CANCELED'").
		Group("e.id, e.title, e.venue, e.date").
		Order("booking_count DESC, e.date ASC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

func (r *repository) RevenueByEvent(ctx context.Context) ([]EventRevenue, error) {
	var out []EventRevenue
	err := r.db.WithContext(ctx).
		Table("events e").
		Select("e.id AS event_id, e.title, COALESCE(SUM(b.total_price), 0) AS revenue, COUNT(b.id) AS booking_count").
		Joins("LEFT JOIN bookings b ON b.event_id = e.id AND b.status <> 'CANCELED'").
		Group("e.id, e.title").
		Order("revenue DESC").
		Scan(&out).Error
	return out, err
}

func (r *repository) TopUsers(ctx context.Context, limit int) ([]TopUser, error) {
	var out []TopUser
	err := r.db.WithContext(ctx).
		Table("users u").
		Select("u.id AS user_id, u.first_name, u.last_name, u.email, COUNT(b.id) AS booking_count, COALESCE(SUM(b.total_price), 0) AS total_spent").
		Joins("JOIN bookings b ON b.user_id = u.id AND b.status <> 'CANCELED'").
		Group("u.id, u.first_name, u.last_name, u.email").
		Order("booking_count DESC, total_spent DESC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

func (r *repository) SearchRanked(ctx context.Context, q SearchQuery, limit int) ([]RankedEvent, error) {
	query := r.db.WithContext(ctx).
		Table("events e").
		Select("e.id AS event_id, e.title, e.venue, e.category, e.date, e.start_time AS time, e.price, e.status, COUNT(b.id) AS booking_count").
		Joins("LEFT JOIN bookings b ON b.event_id = e.id AND b.status <> 'CANCELED'")

	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		query = query.Where("e.title ILIKE ? OR e.description ILIKE ?", pattern, pattern)
	}
	if q.Venue != "" {
		query = query.Where("e.venue ILIKE ?", "%"+q.Venue+"%")
	}
	if q.Date != "" {
		day, err := time.Parse("2006-01-02", q.Date)
		if err != nil {
			return nil, apperrors.NewValidation("date", "must be YYYY-MM-DD")
		}
		query = query.Where("e.date >= ? AND e.date < ?", day, day.Add(24*time.Hour))
	}
	if q.Time != "" {
		query = query.Where("e.start_time ILIKE ?", "%"+q.Time+"%")
	}
	if q.MinPrice != "" {
		d, err := decimal.NewFromString(q.MinPrice)
		if err != nil {
			return nil, apperrors.NewValidation("min_price", "must be a number")
		}
		query = query.Where("e.price >= ?", d)
	}
	if q.MaxPrice != "" {
		d, err := decimal.NewFromString(q.MaxPrice)
		if err != nil {
			return nil, apperrors.NewValidation("max_price", "must be a number")
		}
		query = query.Where("e.price <= ?", d)
	}

	var out []RankedEvent
	err := query.
		Group("e.id, e.title, e.venue, e.category, e.date, e.start_time, e.price, e.status").
		Order("booking_count DESC, e.date ASC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}
