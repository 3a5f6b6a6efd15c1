package properties

import "errors"

var (
	// ErrNotFound is returned when a property does not exist
	ErrNotFound = errors.New("property not found")

	// ErrInvalidTitle is returned when the title is missing
	ErrInvalidTitle = errors.New("title is required")

	// ErrInvalidOperation is returned for an unknown operation
	ErrInvalidOperation = errors.New("operation must be sale or rent")

	// ErrInvalidStatus is returned for an unknown status
	ErrInvalidStatus = errors.New("status must be draft, published or archived")
)
