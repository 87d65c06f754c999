package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a referenced entity id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument marks input rejected before anything was persisted.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrReferentialConflict marks a delete of an entity still referenced elsewhere.
	ErrReferentialConflict = errors.New("referential conflict")
	// ErrInsufficientStock means a sale would drive a product's stock below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrStorage wraps failures of the backing store. The driver error stays in
	// the chain so callers can decide whether to retry the whole operation.
	ErrStorage = errors.New("storage error")
)

// StorageError wraps err as an ErrStorage failure of op.
func StorageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// NotFoundError reports that the entity kind with id does not exist.
func NotFoundError(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
}

// IsDomainError reports whether err already carries one of the sentinels above.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrReferentialConflict) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrStorage)
}
