package order

import (
	"fmt"

	"fulfillment-be/internal/apperr"
)

var (
	ErrOrderNotFound = fmt.Errorf("order %w", apperr.ErrNotFound)
	ErrItemNotFound  = fmt.Errorf("order item %w", apperr.ErrNotFound)
	ErrNotAssignee   = fmt.Errorf("%w: order is not assigned to you", apperr.ErrForbidden)
	ErrEmptyBatch    = apperr.Validation("no item updates supplied")
)
