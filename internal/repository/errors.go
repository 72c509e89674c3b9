package repository

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable marks a transient storage fault. Callers abort the
	// current phase and retry on the next tick.
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrConflict         = errors.New("conflict")
)

// storeErr classifies a driver error. Constraint failures become ErrConflict;
// everything else is treated as the store being unavailable.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "constraint failed") {
		return fmt.Errorf("%s: %w: %v", op, ErrConflict, err)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}
