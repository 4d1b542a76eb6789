package assignment

import (
	"time"

	"fulfillment-be/internal/officer"
	"fulfillment-be/internal/order"
)

type Decision string

const (
	DecisionAccept Decision = "ACCEPT"
	DecisionReject Decision = "REJECT"
)

// Reasons reported on an Outcome that made no assignment.
const (
	ReasonDisabled          = "automatic assignment disabled"
	ReasonNotAwaiting       = "order not awaiting assignment"
	ReasonUnpaid            = "payment not completed"
	ReasonNoEligibleOfficer = "no eligible officer"
	ReasonAttemptsExhausted = "reassignment attempts exhausted"
)

// Outcome of an automatic assignment attempt. Assigned is false for every
// no-op, with Reason saying why.
type Outcome struct {
	Assigned                bool
	OfficerID               string
	NeedsManualIntervention bool
	Reason                  string
	Order                   *order.Order
}

// Status is the assignment view of an order.
type Status struct {
	OrderNumber             string
	OrderStatus             order.OrderStatus
	AssignmentStatus        order.AssignmentStatus
	AssignedOfficerID       *string
	AssignedAt              *time.Time
	AssignmentRespondedAt   *time.Time
	AssignmentNotes         string
	RejectionReason         string
	ReassignmentAttempts    int
	NeedsManualIntervention bool
}

// StatusOf builds the assignment view of o.
func StatusOf(o *order.Order) *Status {
	return &Status{
		OrderNumber:             o.Number,
		OrderStatus:             o.Status,
		AssignmentStatus:        o.AssignmentStatus,
		AssignedOfficerID:       o.AssignedOfficerID,
		AssignedAt:              o.AssignedAt,
		AssignmentRespondedAt:   o.AssignmentRespondedAt,
		AssignmentNotes:         o.AssignmentNotes,
		RejectionReason:         o.RejectionReason,
		ReassignmentAttempts:    o.ReassignmentAttempts,
		NeedsManualIntervention: o.NeedsManualIntervention,
	}
}

type Workload struct {
	OfficerID          string
	Name               string
	Email              string
	AvailabilityStatus officer.AvailabilityStatus
	MaxActiveOrders    int
	ActiveOrders       int
	HasCapacity        bool
}
