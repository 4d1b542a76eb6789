package payment

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
	PaymentStatusExpired PaymentStatus = "EXPIRED"
)

// Payment is a completed payment against an order. TransactionID is the
// gateway's transaction reference and is unique.
type Payment struct {
	ID            uuid.UUID
	OrderID       uint
	OrderNumber   string
	TransactionID string
	Amount        int64
	Method        string
	Status        PaymentStatus
	PaidAt        time.Time
	CreatedAt     time.Time
}

// Confirmation is the "payment confirmed" event consumed from the gateway,
// whether pushed by webhook or pulled by verification.
type Confirmation struct {
	OrderReference string
	TransactionID  string
	Amount         int64
	PaidAt         time.Time
	Method         string
}

// Result of processing a Confirmation. Processed is false for duplicates and
// for unknown orders.
type Result struct {
	Processed   bool
	OrderFound  bool
	OrderNumber string
	Message     string
}

type Customer struct {
	Name  string
	Email string
}

type Invoice struct {
	Reference     string
	TransactionID string
	CheckoutURL   string
	AccountNumber string
	AccountName   string
	BankName      string
	Amount        int64
	ExpiresAt     time.Time
	CreatedAt     time.Time
}

type InvoiceStatus struct {
	Reference     string
	PaymentStatus PaymentStatus
	TransactionID string
	AmountPaid    int64
	PaidAt        *time.Time
	Method        string
}
