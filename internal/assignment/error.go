package assignment

import (
	"errors"

	"fulfillment-be/internal/apperr"
)

var (
	ErrInvalidDecision = apperr.Validation("decision must be ACCEPT or REJECT")
	ErrOfficerRequired = apperr.Validation("officer id is required")

	// errSkip aborts an order update whose preconditions no longer hold.
	errSkip = errors.New("assignment preconditions changed")
)
