package events

// Status tracks where an event sits in its lifecycle.
type Status string

const (
	StatusUpcoming Status = "UPCOMING"
	StatusActive   Status = "ACTIVE"
	StatusEnded    Status = "ENDED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusUpcoming, StatusActive, StatusEnded:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving to target is allowed.
// ENDED is terminal.
func (s Status) CanTransitionTo(target Status) bool {
	if s == target {
		return true
	}
	switch s {
	case StatusUpcoming:
		return target == StatusActive || target == StatusEnded
	case StatusActive:
		return target == StatusEnded
	}
	return false
}

// AcceptsBookings reports whether seats may still be booked.
func (s Status) AcceptsBookings() bool {
	return s == StatusUpcoming || s == StatusActive
}
