package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PopularEvent is an event ranked by how many active bookings it holds.
type PopularEvent struct {
	EventID      uuid.UUID `json:"event_id"`
	Title        string    `json:"title"`
	Venue        string    `json:"venue"`
	Date         time.Time `json:"date"`
	BookingCount int64     `json:"booking_count"`
}

// EventRevenue sums the captured totals of an event's active bookings.
type EventRevenue struct {
	EventID      uuid.UUID       `json:"event_id"`
	Title        string          `json:"title"`
	Revenue      decimal.Decimal `json:"revenue"`
	BookingCount int64           `json:"booking_count"`
}

// TopUser is a user ranked by booking volume.
type TopUser struct {
	UserID       uuid.UUID       `json:"user_id"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	Email        string          `json:"email"`
	BookingCount int64           `json:"booking_count"`
	TotalSpent   decimal.Decimal `json:"total_spent"`
}

// SearchQuery filters the ranked event search. All fields are optional.
type SearchQuery struct {
	Search   string `form:"search"`
	Venue    string `form:"venue"`
	Date     string `form:"date"` // YYYY-MM-DD
	Time     string `form:"time"`
	MinPrice string `form:"min_price"`
	MaxPrice string `form:"max_price"`
}

// RankedEvent is a search hit ordered by booking demand.
type RankedEvent struct {
	EventID      uuid.UUID       `json:"event_id"`
	Title        string          `json:"title"`
	Venue        string          `json:"venue"`
	Category     string          `json:"category,omitempty"`
	Date         time.Time       `json:"date"`
	Time         string          `json:"time,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Status       string          `json:"status"`
	BookingCount int64           `json:"booking_count"`
}
