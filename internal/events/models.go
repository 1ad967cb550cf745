package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Event struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Title          string          `json:"title" gorm:"not null;size:255"`
	Description    string          `json:"description" gorm:"type:text"`
	Venue          string          `json:"venue" gorm:"not null;size:255"`
	Category       string          `json:"category" gorm:"size:100;index"`
	Date           time.Time       `json:"date" gorm:"not null;index"`
	StartTime      string          `json:"time" gorm:"column:start_time;size:20"`
	TotalSeats     int             `json:"total_seats" gorm:"not null"`
	AvailableSeats int             `json:"available_seats" gorm:"not null"`
	Price          decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null"`
	BannerURL      string          `json:"banner_url,omitempty" gorm:"size:500"`
	Status         Status          `json:"status" gorm:"type:varchar(20);not null;default:'UPCOMING';index"`
	Seats          SeatMap         `json:"-" gorm:"type:jsonb;not null"`
	CreatedBy      uuid.UUID       `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (Event) TableName() string {
	return "events"
}

type CreateEventRequest struct {
	Title       string          `json:"title" binding:"required,min=1,max=255"`
	Description string          `json:"description" binding:"max=5000"`
	Venue       string          `json:"venue" binding:"required,min=1,max=255"`
	Category    string          `json:"category" binding:"max=100"`
	Date        time.Time       `json:"date" binding:"required"`
	Time        string          `json:"time" binding:"max=20"`
	TotalSeats  int             `json:"total_seats" binding:"required,min=1,max=100000"`
	Price       decimal.Decimal `json:"price"`
	BannerURL   string          `json:"banner_url" binding:"omitempty,max=500"`
}

type UpdateEventRequest struct {
	Title       *string          `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string          `json:"description" binding:"omitempty,max=5000"`
	Venue       *string          `json:"venue" binding:"omitempty,min=1,max=255"`
	Category    *string          `json:"category" binding:"omitempty,max=100"`
	Date        *time.Time       `json:"date"`
	Time        *string          `json:"time" binding:"omitempty,max=20"`
	TotalSeats  *int             `json:"total_seats" binding:"omitempty,min=1,max=100000"`
	Price       *decimal.Decimal `json:"price"`
	BannerURL   *string          `json:"banner_url" binding:"omitempty,max=500"`
	Status      *Status          `json:"status" binding:"omitempty,oneof=UPCOMING ACTIVE ENDED"`
}

// ListQuery carries the supported listing filters.
type ListQuery struct {
	Page     int    `form:"page,default=1" binding:"min=1"`
	Limit    int    `form:"limit,default=20" binding:"min=1,max=100"`
	Search   string `form:"search"`
	Venue    string `form:"venue"`
	Category string `form:"category"`
	Status   string `form:"status" binding:"omitempty,oneof=UPCOMING ACTIVE ENDED"`
	DateFrom string `form:"date_from"` // YYYY-MM-DD
	DateTo   string `form:"date_to"`
	MinPrice string `form:"min_price"`
	MaxPrice string `form:"max_price"`
}

type EventResponse struct {
	ID             uuid.UUID       `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	Venue          string          `json:"venue"`
	Category       string          `json:"category,omitempty"`
	Date           time.Time       `json:"date"`
	Time           string          `json:"time,omitempty"`
	TotalSeats     int             `json:"total_seats"`
	AvailableSeats int             `json:"available_seats"`
	Price          decimal.Decimal `json:"price"`
	BannerURL      string          `json:"banner_url,omitempty"`
	Status         Status          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (e *Event) ToResponse() EventResponse {
	return EventResponse{
		ID:             e.ID,
		Title:          e.Title,
		Description:    e.Description,
		Venue:          e.Venue,
		Category:       e.Category,
		Date:           e.Date,
		Time:           e.StartTime,
		TotalSeats:     e.TotalSeats,
		AvailableSeats: e.AvailableSeats,
		Price:          e.Price,
		BannerURL:      e.BannerURL,
		Status:         e.Status,
		CreatedAt:      e.CreatedAt,
	}
}

type PaginatedEvents struct {
	Events     []EventResponse `json:"events"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}
