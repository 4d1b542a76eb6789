// Package model holds the JSON shapes served by the HTTP API.
package model

import "time"

type OrderItem struct {
	ID              uint       `json:"id"`
	VariantID       string     `json:"variantId"`
	VariantName     string     `json:"variantName"`
	Quantity        int        `json:"quantity"`
	Price           int64      `json:"price"`
	Status          string     `json:"status"`
	StatusNote      string     `json:"statusNote,omitempty"`
	StatusUpdatedAt *time.Time `json:"statusUpdatedAt,omitempty"`
	StatusUpdatedBy *string    `json:"statusUpdatedBy,omitempty"`
}

type Order struct {
	ID            uint         `json:"id"`
	OrderNumber   string       `json:"orderNumber"`
	CustomerName  string       `json:"customerName"`
	CustomerEmail string       `json:"customerEmail"`
	TotalAmount   int64        `json:"totalAmount"`
	Status        string       `json:"status"`
	Assignment    *Assignment  `json:"assignment"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
	Items         []*OrderItem `json:"items"`
}

type Assignment struct {
	OrderNumber             string     `json:"orderNumber"`
	OrderStatus             string     `json:"orderStatus"`
	AssignmentStatus        string     `json:"assignmentStatus"`
	AssignedOfficerID       *string    `json:"assignedOfficerId"`
	AssignedAt              *time.Time `json:"assignedAt"`
	AssignmentRespondedAt   *time.Time `json:"assignmentRespondedAt"`
	AssignmentNotes         string     `json:"assignmentNotes,omitempty"`
	RejectionReason         string     `json:"rejectionReason,omitempty"`
	ReassignmentAttempts    int        `json:"reassignmentAttempts"`
	NeedsManualIntervention bool       `json:"needsManualIntervention"`
}

type AutoAssignResult struct {
	Assigned                bool   `json:"assigned"`
	OfficerID               string `json:"officerId,omitempty"`
	NeedsManualIntervention bool   `json:"needsManualIntervention"`
	Message                 string `json:"message"`
	Order                   *Order `json:"order,omitempty"`
}

type Workload struct {
	OfficerID          string `json:"officerId"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	AvailabilityStatus string `json:"availabilityStatus"`
	MaxActiveOrders    int    `json:"maxActiveOrders"`
	ActiveOrders       int    `json:"activeOrders"`
	HasCapacity        bool   `json:"hasCapacity"`
}

type Officer struct {
	UserID             string    `json:"userId"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	AvailabilityStatus string    `json:"availabilityStatus"`
	MaxActiveOrders    int       `json:"maxActiveOrders"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type ItemResult struct {
	ItemID  uint       `json:"itemId"`
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Item    *OrderItem `json:"item,omitempty"`
}

type BulkItemResult struct {
	Total       int           `json:"total"`
	Succeeded   int           `json:"succeeded"`
	Failed      int           `json:"failed"`
	OrderStatus string        `json:"orderStatus"`
	Results     []*ItemResult `json:"results"`
}

type Invoice struct {
	Reference     string    `json:"reference"`
	TransactionID string    `json:"transactionId"`
	CheckoutURL   string    `json:"checkoutUrl"`
	AccountNumber string    `json:"accountNumber,omitempty"`
	AccountName   string    `json:"accountName,omitempty"`
	BankName      string    `json:"bankName,omitempty"`
	Amount        int64     `json:"amount"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

type PaymentResult struct {
	Processed   bool   `json:"processed"`
	OrderFound  bool   `json:"orderFound"`
	OrderNumber string `json:"orderNumber,omitempty"`
	Message     string `json:"message"`
}

type Metric struct {
	Name  string `json:"name"`
	Value uint64 `json:"value"`
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}
