package payment

import (
	"errors"
	"fmt"

	"fulfillment-be/internal/apperr"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrPaymentNotFound  = fmt.Errorf("payment %w", apperr.ErrNotFound)
)
