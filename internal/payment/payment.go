package payment

import "context"

// Gateway is the third-party payment provider.
type Gateway interface {
	CreateInvoice(ctx context.Context, amount int64, reference string, customer Customer) (*Invoice, error)
	GetInvoiceStatus(ctx context.Context, reference string) (*InvoiceStatus, error)
	VerifySignature(body []byte, signature string) error
}

// AssignmentTrigger schedules auto-assignment of a confirmed order without
// blocking the caller.
type AssignmentTrigger interface {
	TriggerAutoAssign(ctx context.Context, orderNumber string)
}
