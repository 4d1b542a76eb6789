package user

import (
	"errors"
	"fmt"

	"fulfillment-be/internal/apperr"
)

var (
	ErrUserNotFound       = fmt.Errorf("user %w", apperr.ErrNotFound)
	ErrEmailExists        = apperr.Validation("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
