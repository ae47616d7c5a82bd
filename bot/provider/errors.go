package provider

import "errors"

// Registry errors that can be checked with errors.Is.
var (
	// ErrNilProvider is returned when registering a nil provider.
	ErrNilProvider = errors.New("provider: nil provider")

	// ErrEmptyName is returned when a provider reports an empty name.
	ErrEmptyName = errors.New("provider: empty name")

	// ErrDuplicateProvider is returned when a provider name is already registered.
	ErrDuplicateProvider = errors.New("provider: already registered")
)
