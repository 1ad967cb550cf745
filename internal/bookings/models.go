package bookings

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Booking is one ledger entry: a user's claim on specific seats of an
// event, with the price captured at booking time.
type Booking struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	EventID     uuid.UUID       `json:"event_id" gorm:"type:uuid;not null;index"`
	UserID      uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	SeatNumbers pq.StringArray  `json:"seat_numbers" gorm:"type:text[];not null"`
	Tickets     int             `json:"tickets" gorm:"not null"`
	TotalPrice  decimal.Decimal `json:"total_price" gorm:"type:numeric(12,2);not null"`
	Status      Status          `json:"status" gorm:"type:varchar(20);not null;default:'CONFIRMED';index"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	CancelledAt *time.Time      `json:"cancelled_at,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}

// CreateBookingRequest books explicitly named seats.
type CreateBookingRequest struct {
	EventID     uuid.UUID `json:"event_id" binding:"required"`
	SeatNumbers []string  `json:"seat_numbers" binding:"required,min=1,max=50,dive,min=2,max=10"`
}

// CreateByCountRequest books the first free seats, however they are
// numbered.
type CreateByCountRequest struct {
	EventID uuid.UUID `json:"event_id" binding:"required"`
	Tickets int       `json:"tickets" binding:"required,min=1,max=50"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required,oneof=PENDING CONFIRMED CANCELED"`
}

type ListQuery struct {
	Page  int `form:"page,default=1" binding:"min=1"`
	Limit int `form:"limit,default=20" binding:"min=1,max=100"`
}

type BookingResponse struct {
	ID          uuid.UUID       `json:"id"`
	EventID     uuid.UUID       `json:"event_id"`
	UserID      uuid.UUID       `json:"user_id"`
	SeatNumbers []string        `json:"seat_numbers"`
	Tickets     int             `json:"tickets"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	CancelledAt *time.Time      `json:"cancelled_at,omitempty"`
}

func (b *Booking) ToResponse() BookingResponse {
	return BookingResponse{
		ID:          b.ID,
		EventID:     b.EventID,
		UserID:      b.UserID,
		SeatNumbers: b.SeatNumbers,
		Tickets:     b.Tickets,
		TotalPrice:  b.TotalPrice,
		Status:      b.Status,
		CreatedAt:   b.CreatedAt,
		CancelledAt: b.CancelledAt,
	}
}

type PaginatedBookings struct {
	Bookings   []BookingResponse `json:"bookings"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}
