package sovereign

import "errors"

// Sentinel errors returned by the library.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrStoreRequired is returned when the coordination store is nil.
	ErrStoreRequired = errors.New("coordination store is required")

	// ErrInstanceIDRequired is returned when the instance identity is empty.
	ErrInstanceIDRequired = errors.New("instance ID is required")

	// ErrUnknownBackend is returned by the factory when no backend is
	// registered for the configured backend name.
	ErrUnknownBackend = errors.New("unknown election backend")

	// ErrBackendRequired is returned by the factory when the configuration
	// does not name a backend.
	ErrBackendRequired = errors.New("election backend is required")
)
