package usecase

import (
	"errors"
	"fmt"

	"github.com/bibbank/creditrisk/internal/domain/port"
)

var (
	// ErrPersistence marks failures to write current state or ledgers. The
	// transaction was rolled back; no partial write is visible.
	ErrPersistence = errors.New("persistence failure")

	// ErrInvalidInput marks requests rejected before any work was done.
	ErrInvalidInput = errors.New("invalid input")
)

func persistenceError(op string, err error) error {
	if errors.Is(err, port.ErrCustomerNotFound) {
		return err
	}
	return fmt.Errorf("%w: failed to %s: %w", ErrPersistence, op, err)
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
