// Package apperrors provides domain-specific error types for dockdeck.
// These error types carry the context needed to decide whether a failure is
// fatal for the process or must be folded into a result for the caller.
package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every NotFoundError via errors.Is.
var ErrNotFound = errors.New("container not found")

// ConfigurationError represents configuration-related errors.
// It includes the configuration file path and specific key that caused the error.
type ConfigurationError struct {
	ConfigPath string // Path to the configuration file
	Key        string // Configuration key that caused the error
	Err        error  // Underlying error
}

// Error implements the error interface for ConfigurationError.
func (e *ConfigurationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("configuration error in %s (key: %s): %v", e.ConfigPath, e.Key, e.Err)
	}
	return fmt.Sprintf("configuration error in %s: %v", e.ConfigPath, e.Err)
}

// Unwrap returns the underlying error for error wrapping chains.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// RuntimeConnectionError represents a failure to reach the container runtime.
// The runtime socket is a hard dependency, so this error class is fatal.
type RuntimeConnectionError struct {
	Backend    string // Runtime backend (docker, podman)
	SocketPath string // Control socket (e.g., unix:///var/run/docker.sock)
	Operation  string // Operation that failed (e.g., "Ping", "ListContainers")
	Err        error  // Underlying error
}

// Error implements the error interface for RuntimeConnectionError.
func (e *RuntimeConnectionError) Error() string {
	if e.SocketPath != "" {
		return fmt.Sprintf("%s %s failed (socket: %s): %v", e.Backend, e.Operation, e.SocketPath, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Backend, e.Operation, e.Err)
}

// Unwrap returns the underlying error for error wrapping chains.
func (e *RuntimeConnectionError) Unwrap() error {
	return e.Err
}

// NotFoundError reports an identifier that is absent from a snapshot.
type NotFoundError struct {
	ContainerID string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("container %s not found", e.ContainerID)
}

// Is makes errors.Is(err, ErrNotFound) hold for every NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StreamError represents a log stream that could not be opened or ended abnormally.
type StreamError struct {
	ContainerID string
	Err         error
}

// Error implements the error interface for StreamError.
func (e *StreamError) Error() string {
	return fmt.Sprintf("log stream for container %s failed: %v", e.ContainerID, e.Err)
}

// Unwrap returns the underlying error for error wrapping chains.
func (e *StreamError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err belongs to the class that must stop the process.
func IsFatal(err error) bool {
	var connErr *RuntimeConnectionError
	var cfgErr *ConfigurationError
	return errors.As(err, &connErr) || errors.As(err, &cfgErr)
}
