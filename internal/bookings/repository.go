package bookings

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"seatly/internal/events"
	"seatly/internal/shared/apperrors"
)

type Repository interface {
	// BookSeats claims the given seats atomically. The event row is
	// locked for the duration, so two overlapping requests serialize and
	// the loser sees the seats as taken.
	BookSeats(ctx context.Context, eventID, userID uuid.UUID, seatNumbers []string) (*Booking, error)
	// BookSeatCount claims the first count free seats in seat order.
	BookSeatCount(ctx context.Context, eventID, userID uuid.UUID, count int) (*Booking, error)
	// Cancel releases the booking's seats and marks it CANCELED. A
	// booking that is already canceled is returned unchanged.
	Cancel(ctx context.Context, bookingID, callerID uuid.UUID, isAdmin bool) (*Booking, error)
	// SetStatus is the admin transition. Moving into CANCELED releases
	// the seats, the other transitions only flip the status.
	SetStatus(ctx context.Context, bookingID uuid.UUID, status Status) (*Booking, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]Booking, int64, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]Booking, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) BookSeats(ctx context.Context, eventID, userID uuid.UUID, seatNumbers []string) (*Booking, error) {
	return r.book(ctx, eventID, userID, func(event *events.Event) ([]string, error) {
		if err := event.Seats.Book(seatNumbers, userID); err != nil {
			return nil, err
		}
		return seatNumbers, nil
	})
}

func (r *repository) BookSeatCount(ctx context.Context, eventID, userID uuid.UUID, count int) (*Booking, error) {
	return r.book(ctx, eventID, userID, func(event *events.Event) ([]string, error) {
		picked, err := event.Seats.FirstAvailable(count)
		if err != nil {
			return nil, err
		}
		if err := event.Seats.Book(picked, userID); err != nil {
			return nil, err
		}
		return picked, nil
	})
}

// book runs the booking critical section: lock the event row, let claim
// mark seats on the map, then persist the booking and the updated map in
// the same transaction.
func (r *repository) book(ctx context.Context, eventID, userID uuid.UUID, claim func(*events.Event) ([]string, error)) (*Booking, error) {
	var booking *Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event events.Event
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", eventID).
			First(&event).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrEventNotFound
			}
			return classifyTxError(err)
		}

		if !event.Status.AcceptsBookings() {
			return apperrors.ErrEventEnded
		}

		seats, err := claim(&event)
		if err != nil {
			return err
		}

		b := &Booking{
			ID:          uuid.New(),
			EventID:     event.ID,
			UserID:      userID,
			SeatNumbers: seats,
			Tickets:     len(seats),
			TotalPrice:  event.Price.Mul(decimal.NewFromInt(int64(len(seats)))),
			Status:      StatusConfirmed,
		}
		if err := tx.Create(b).Error; err != nil {
			return classifyTxError(err)
		}

		event.AvailableSeats = event.Seats.AvailableCount()
		if err := tx.Save(&event).Error; err != nil {
			return classifyTxError(err)
		}

		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *repository) Cancel(ctx context.Context, bookingID, callerID uuid.UUID, isAdmin bool) (*Booking, error) {
	var out *Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking Booking
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", bookingID).
			First(&booking).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrBookingNotFound
			}
			return classifyTxError(err)
		}

		if !isAdmin && booking.UserID != callerID {
			return apperrors.ErrForbidden
		}

		// Canceling twice is a no-op rather than an error.
		if booking.Status == StatusCanceled {
			out = &booking
			return nil
		}

		if err := r.releaseSeats(tx, &booking); err != nil {
			return err
		}

		now := time.Now()
		booking.Status = StatusCanceled
		booking.CancelledAt = &now
		if err := tx.Save(&booking).Error; err != nil {
			return classifyTxError(err)
		}
		out = &booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) SetStatus(ctx context.Context, bookingID uuid.UUID, status Status) (*Booking, error) {
	var out *Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking Booking
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", bookingID).
			First(&booking).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrBookingNotFound
			}
			return classifyTxError(err)
		}

		if booking.Status == status {
			out = &booking
			return nil
		}

		// A canceled booking's seats may already belong to someone else,
		// so it cannot be reactivated.
		if booking.Status == StatusCanceled {
			return apperrors.NewValidation("status", "canceled bookings cannot change status")
		}

		if status == StatusCanceled {
			if err := r.releaseSeats(tx, &booking); err != nil {
				return err
			}
			now := time.Now()
			booking.CancelledAt = &now
		}

		booking.Status = status
		if err := tx.Save(&booking).Error; err != nil {
			return classifyTxError(err)
		}
		out = &booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// releaseSeats frees the booking's seats on the parent event, inside the
// caller's transaction.
func (r *repository) releaseSeats(tx *gorm.DB, booking *Booking) error {
	var event events.Event
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", booking.EventID).
		First(&event).Error
	if err != nil {
		// The event may have been purged already; nothing to release.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return classifyTxError(err)
	}

	event.Seats.Release(booking.SeatNumbers)
	event.AvailableSeats = event.Seats.AvailableCount()
	return classifyTxError(tx.Save(&event).Error)
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]Booking, int64, error) {
	query := r.db.WithContext(ctx).Model(&Booking{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []Booking
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]Booking, error) {
	var list []Booking
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

// classifyTxError maps transient serialization failures to ErrConflict so
// the service layer can retry them.
func classifyTxError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "could not serialize access") ||
		strings.Contains(msg, "lock timeout") {
		return apperrors.ErrConflict
	}
	return err
}
