package officer

import "time"

type AvailabilityStatus string

const (
	Available   AvailabilityStatus = "AVAILABLE"
	Unavailable AvailabilityStatus = "UNAVAILABLE"
	Busy        AvailabilityStatus = "BUSY"
	OnLeave     AvailabilityStatus = "ON_LEAVE"
)

func (s AvailabilityStatus) Valid() bool {
	switch s {
	case Available, Unavailable, Busy, OnLeave:
		return true
	}
	return false
}

const DefaultMaxActiveOrders = 5

// Officer is a procurement officer profile joined with its account.
type Officer struct {
	UserID             string
	Name               string
	Email              string
	Active             bool
	AvailabilityStatus AvailabilityStatus
	MaxActiveOrders    int
	UpdatedAt          time.Time
}

// Eligible reports whether the officer may receive new assignments at all.
func (o *Officer) Eligible() bool {
	return o.Active && o.AvailabilityStatus == Available
}
