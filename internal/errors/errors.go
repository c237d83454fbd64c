// Package errors provides custom error types for the forecast chat client.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrNotConnected     = errors.New("not connected")
	ErrBlankInput       = errors.New("blank input")
	ErrAlreadyStarted   = errors.New("session already started")
	ErrSessionClosed    = errors.New("session closed")
	ErrConnectionFailed = errors.New("connection failed")
	ErrInvalidFrame     = errors.New("invalid frame")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// ConnectionError represents a transport-level failure on the socket
type ConnectionError struct {
	Endpoint string
	Op       string // "dial", "read" or "write"
	Err      error
}

func (e *ConnectionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("connection %s failed at %s", e.Op, e.Endpoint)
	}
	return fmt.Sprintf("connection %s failed at %s: %v", e.Op, e.Endpoint, e.Err)
}

// Unwrap returns the underlying transport error
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Is allows comparison with sentinel errors
func (e *ConnectionError) Is(target error) bool {
	if target == ErrConnectionFailed {
		return true
	}
	_, ok := target.(*ConnectionError)
	return ok
}

// NewConnectionError creates a new ConnectionError
func NewConnectionError(endpoint, op string, err error) *ConnectionError {
	return &ConnectionError{Endpoint: endpoint, Op: op, Err: err}
}

// FrameError represents an inbound frame that could not be decoded
type FrameError struct {
	Message string
	Path    string
}

func (e *FrameError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid frame: %s", e.Message)
	}
	return fmt.Sprintf("invalid frame at %s: %s", e.Path, e.Message)
}

// Is allows comparison with sentinel errors
func (e *FrameError) Is(target error) bool {
	if target == ErrInvalidFrame {
		return true
	}
	_, ok := target.(*FrameError)
	return ok
}

// NewFrameError creates a new FrameError
func NewFrameError(message, path string) *FrameError {
	return &FrameError{Message: message, Path: path}
}

// ConfigError represents a configuration value that failed validation
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config field %q: %s", e.Field, e.Message)
}

// Is allows comparison with sentinel errors
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// NewConfigError creates a new ConfigError
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// IsConnectionError reports whether err is a transport failure
func IsConnectionError(err error) bool {
	return errors.Is(err, ErrConnectionFailed)
}

// IsFrameError reports whether err is a frame decoding failure
func IsFrameError(err error) bool {
	return errors.Is(err, ErrInvalidFrame)
}

// IsRejected reports whether err is a local send rejection that must not
// surface to the user.
func IsRejected(err error) bool {
	return errors.Is(err, ErrBlankInput) || errors.Is(err, ErrNotConnected)
}
