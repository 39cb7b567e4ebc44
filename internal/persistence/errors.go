package persistence

import "errors"

// Storage backends wrap these so services can map them without knowing the driver.
var (
	ErrNotFound  = errors.New("persistence: not found")
	ErrDuplicate = errors.New("persistence: duplicate")
	// ErrConstraintViolation covers rows the schema rejects, such as an empty
	// resource kind.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)
