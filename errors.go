package main

import "errors"

var (
	// ErrUnitNotFound is returned when a request references a unit that was
	// never seeded. Units are a closed set; nothing auto-creates them.
	ErrUnitNotFound = errors.New("there is no proper unit")

	// ErrInvalidDate is returned for date strings outside the expected format.
	ErrInvalidDate = errors.New("invalid date format, expected YYYY-MM-DD")

	// ErrNoItems is returned when a request carries an empty item list. A
	// committed transaction always has at least one item.
	ErrNoItems = errors.New("transaction needs at least one item")
)

// CreationError signals that the atomic transaction-creation sequence failed
// and was rolled back. The underlying cause is kept for logging but callers
// only see the generic message.
type CreationError struct {
	cause error
}

func (e *CreationError) Error() string {
	return "an error occurred while creating the transaction"
}

func (e *CreationError) Unwrap() error {
	return e.cause
}

// creationFailed wraps a storage-level failure, passing client errors through
// untouched so handlers can map them to their own status codes.
func creationFailed(err error) error {
	if errors.Is(err, ErrUnitNotFound) || errors.Is(err, ErrInvalidDate) || errors.Is(err, ErrNoItems) {
		return err
	}
	return &CreationError{cause: err}
}
