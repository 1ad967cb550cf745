package events

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"seatly/internal/shared/apperrors"
)

// Seat is a single unit of sellable inventory inside an event's seat map.
type Seat struct {
	SeatNumber string     `json:"seat_number"`
	IsBooked   bool       `json:"is_booked"`
	BookedBy   *uuid.UUID `json:"booked_by,omitempty"`
}

// SeatMap is the event's full seat collection, stored as a jsonb column so
// the whole inventory travels with the event row and is covered by its
// row lock during booking transactions.
type SeatMap []Seat

func (m SeatMap) Value() (driver.Value, error) {
	if m == nil {
		m = SeatMap{}
	}
	return json.Marshal(m)
}

func (m *SeatMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported seat map column type %T", value)
	}
}

// GenerateSeats builds a fresh map of total unbooked seats numbered S1..Sn.
func GenerateSeats(total int) SeatMap {
	seats := make(SeatMap, 0, total)
	for i := 1; i <= total; i++ {
		seats = append(seats, Seat{SeatNumber: "S" + strconv.Itoa(i)})
	}
	return seats
}

func (m SeatMap) AvailableCount() int {
	n := 0
	for _, s := range m {
		if !s.IsBooked {
			n++
		}
	}
	return n
}

func (m SeatMap) BookedCount() int {
	return len(m) - m.AvailableCount()
}

// AvailableNumbers returns the seat numbers still free, in map order.
func (m SeatMap) AvailableNumbers() []string {
	free := make([]string, 0, len(m))
	for _, s := range m {
		if !s.IsBooked {
			free = append(free, s.SeatNumber)
		}
	}
	return free
}

// Book marks every requested seat as taken by userID. All or nothing: if
// any seat is unknown or already booked, no seat is touched and the error
// lists every conflicting seat plus the currently free ones.
func (m SeatMap) Book(seatNumbers []string, userID uuid.UUID) error {
	index := make(map[string]int, len(m))
	for i, s := range m {
		index[s.SeatNumber] = i
	}

	var conflicting []string
	for _, num := range seatNumbers {
		i, ok := index[num]
		if !ok || m[i].IsBooked {
			conflicting = append(conflicting, num)
		}
	}
	if len(conflicting) > 0 {
		return &apperrors.SeatUnavailableError{
			Conflicting: conflicting,
			Available:   m.AvailableNumbers(),
		}
	}

	uid := userID
	for _, num := range seatNumbers {
		i := index[num]
		m[i].IsBooked = true
		m[i].BookedBy = &uid
	}
	return nil
}

// FirstAvailable picks the first n free seats in map order. The map is
// generated in ascending seat order, so selection is deterministic.
func (m SeatMap) FirstAvailable(n int) ([]string, error) {
	free := m.AvailableNumbers()
	if len(free) < n {
		return nil, &apperrors.SeatUnavailableError{Available: free}
	}
	return free[:n], nil
}

// Release frees the given seats. Seats already free or unknown are
// ignored, which keeps cancellation idempotent.
func (m SeatMap) Release(seatNumbers []string) {
	wanted := make(map[string]bool, len(seatNumbers))
	for _, num := range seatNumbers {
		wanted[num] = true
	}
	for i := range m {
		if wanted[m[i].SeatNumber] {
			m[i].IsBooked = false
			m[i].BookedBy = nil
		}
	}
}

// Resize returns a map with newTotal seats. Growing appends seats numbered
// after the highest existing token so released numbers are never reissued.
// Shrinking removes free seats from the tail; booked seats are never
// removed, and a target below the booked count is a capacity conflict.
func (m SeatMap) Resize(newTotal int) (SeatMap, error) {
	booked := m.BookedCount()
	if newTotal < booked {
		return nil, &apperrors.CapacityConflictError{Requested: newTotal, Booked: booked}
	}

	if newTotal >= len(m) {
		out := make(SeatMap, len(m), newTotal)
		copy(out, m)
		next := m.maxSeatIndex()
		for len(out) < newTotal {
			next++
			out = append(out, Seat{SeatNumber: "S" + strconv.Itoa(next)})
		}
		return out, nil
	}

	// Shrink: drop free seats starting from the end until we hit the target.
	toDrop := len(m) - newTotal
	keep := make([]bool, len(m))
	for i := range keep {
		keep[i] = true
	}
	for i := len(m) - 1; i >= 0 && toDrop > 0; i-- {
		if !m[i].IsBooked {
			keep[i] = false
			toDrop--
		}
	}

	out := make(SeatMap, 0, newTotal)
	for i, s := range m {
		if keep[i] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m SeatMap) maxSeatIndex() int {
	max := 0
	for _, s := range m {
		raw := strings.TrimPrefix(s.SeatNumber, "S")
		if n, err := strconv.Atoi(raw); err == nil && n > max {
			max = n
		}
	}
	return max
}
