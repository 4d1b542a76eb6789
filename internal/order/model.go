package order

import (
	"time"
)

type OrderStatus string

const (
	StatusDraft      OrderStatus = "DRAFT"
	StatusConfirmed  OrderStatus = "CONFIRMED"
	StatusAssigned   OrderStatus = "ASSIGNED"
	StatusInProgress OrderStatus = "IN_PROGRESS"
	StatusCompleted  OrderStatus = "COMPLETED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

type AssignmentStatus string

const (
	AssignmentUnassigned        AssignmentStatus = "UNASSIGNED"
	AssignmentPendingAcceptance AssignmentStatus = "PENDING_ACCEPTANCE"
	AssignmentAccepted          AssignmentStatus = "ACCEPTED"
	AssignmentRejected          AssignmentStatus = "REJECTED"
	AssignmentReassigned        AssignmentStatus = "REASSIGNED"
)

type ItemStatus string

const (
	ItemPending     ItemStatus = "PENDING"
	ItemPaid        ItemStatus = "PAID"
	ItemSourcing    ItemStatus = "SOURCING"
	ItemReady       ItemStatus = "READY"
	ItemShipped     ItemStatus = "SHIPPED"
	ItemDelivered   ItemStatus = "DELIVERED"
	ItemUnavailable ItemStatus = "UNAVAILABLE"
	ItemCancelled   ItemStatus = "CANCELLED"
)

var validItemStatuses = map[ItemStatus]bool{
	ItemPending:     true,
	ItemPaid:        true,
	ItemSourcing:    true,
	ItemReady:       true,
	ItemShipped:     true,
	ItemDelivered:   true,
	ItemUnavailable: true,
	ItemCancelled:   true,
}

func (s ItemStatus) Valid() bool {
	return validItemStatuses[s]
}

var statusRank = map[OrderStatus]int{
	StatusDraft:      0,
	StatusConfirmed:  1,
	StatusAssigned:   2,
	StatusInProgress: 3,
	StatusCompleted:  4,
}

// CanAdvanceTo reports whether moving from s to next keeps the order status
// moving forward. CANCELLED is reachable from any non-terminal state.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	return statusRank[next] > statusRank[s]
}

func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// HoldsOfficer reports whether an order in assignment state s must reference
// an officer.
func (s AssignmentStatus) HoldsOfficer() bool {
	return s == AssignmentPendingAcceptance || s == AssignmentAccepted || s == AssignmentReassigned
}

// AwaitingResponse reports whether the assigned officer still has to answer.
func (s AssignmentStatus) AwaitingResponse() bool {
	return s == AssignmentPendingAcceptance || s == AssignmentReassigned
}

type Order struct {
	ID            uint
	Number        string
	CustomerName  string
	CustomerEmail string
	TotalAmount   int64
	Status        OrderStatus

	AssignmentStatus        AssignmentStatus
	AssignedOfficerID       *string
	AssignedBy              *string
	AssignedAt              *time.Time
	AssignmentRespondedAt   *time.Time
	AssignmentNotes         string
	RejectionReason         string
	LastRejectedBy          *string
	ReassignmentAttempts    int
	NeedsManualIntervention bool

	CreatedAt time.Time
	UpdatedAt time.Time
	Items     []OrderItem
}

type OrderItem struct {
	ID              uint
	OrderID         uint
	VariantID       string
	VariantName     string
	Quantity        int
	Price           int64
	Status          ItemStatus
	StatusNote      string
	StatusUpdatedAt *time.Time
	StatusUpdatedBy *string
}

// Item returns a pointer to the item with id, or nil.
func (o *Order) Item(id uint) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == id {
			return &o.Items[i]
		}
	}
	return nil
}

// OfficerID returns the assigned officer or "".
func (o *Order) OfficerID() string {
	if o.AssignedOfficerID == nil {
		return ""
	}
	return *o.AssignedOfficerID
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (o *Order) Clone() *Order {
	c := *o
	c.AssignedOfficerID = clonePtr(o.AssignedOfficerID)
	c.AssignedBy = clonePtr(o.AssignedBy)
	c.AssignedAt = clonePtr(o.AssignedAt)
	c.AssignmentRespondedAt = clonePtr(o.AssignmentRespondedAt)
	c.LastRejectedBy = clonePtr(o.LastRejectedBy)
	c.Items = make([]OrderItem, len(o.Items))
	for i, it := range o.Items {
		it.StatusUpdatedAt = clonePtr(it.StatusUpdatedAt)
		it.StatusUpdatedBy = clonePtr(it.StatusUpdatedBy)
		c.Items[i] = it
	}
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Actor is the caller performing a mutation.
type Actor struct {
	UserID string
	Role   string
}

// CountsTowardWorkload reports whether o occupies a slot of its assigned
// officer's capacity.
func (o *Order) CountsTowardWorkload() bool {
	if o.AssignedOfficerID == nil {
		return false
	}
	if o.AssignmentStatus != AssignmentPendingAcceptance && o.AssignmentStatus != AssignmentAccepted {
		return false
	}
	return o.Status == StatusAssigned || o.Status == StatusInProgress
}
