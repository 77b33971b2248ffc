package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConstraintViolation is returned when a write violates a check constraint.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrForeignKeyViolation is returned when a write references a missing record.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
	// ErrWriteConflict is returned when a transaction could not be committed
	// after the configured number of retries against concurrent writers.
	ErrWriteConflict = errors.New("persistence: write conflict")
	// ErrInvalidKey is returned when an external key does not decode to a
	// well formed hierarchical key.
	ErrInvalidKey = errors.New("persistence: invalid key")
)
