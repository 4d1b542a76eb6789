package officer

import (
	"fmt"

	"fulfillment-be/internal/apperr"
)

var (
	ErrOfficerNotFound = fmt.Errorf("officer %w", apperr.ErrNotFound)
	ErrOfficerInactive = apperr.InvalidState("officer", "assign to", "INACTIVE")
)
