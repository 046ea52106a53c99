package errprocess

import (
	"errors"
	"fmt"

	"watch_earn_service/pkg/logger"
)

// Error kinds surfaced by the ledger. Match with errors.Is.
var (
	ErrDuplicateEmail      = errors.New("email already exists")
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation failed")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Wrap log errMsg and return it wrapped around kind
func Wrap(kind error, format string, args ...interface{}) error {
	errMsg := fmt.Sprintf(format, args...)
	logger.Log.Error(errMsg)
	return fmt.Errorf("%w: %s", kind, errMsg)
}
