// Package service hosts the lifecycle container that embeds the audio
// pipeline into a larger application alongside its other subsystems.
package service

// Service is the lifecycle contract for application subsystems
type Service interface {
	// Name returns the unique identifier for this service
	Name() string

	// Dependencies names services that must initialize first
	Dependencies() []string

	// Init prepares the service; arguments are service-specific
	Init(args ...any) error

	// Start begins operation, called after every service initialized
	Start() error

	// Stop halts operation and releases resources
	Stop() error
}
