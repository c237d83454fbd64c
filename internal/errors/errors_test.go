package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestConnectionError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewConnectionError("ws://localhost:8369/ws", "dial", cause)

	expected := "connection dial failed at ws://localhost:8369/ws: connection refused"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !errors.Is(err, ErrConnectionFailed) {
		t.Error("Expected error to match ErrConnectionFailed")
	}

	if !errors.Is(err, cause) {
		t.Error("Expected error to unwrap to its cause")
	}

	if errors.Is(err, ErrInvalidFrame) {
		t.Error("Expected error not to match ErrInvalidFrame")
	}
}

func TestConnectionErrorWithoutCause(t *testing.T) {
	err := NewConnectionError("ws://host/ws", "read", nil)

	expected := "connection read failed at ws://host/ws"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}
}

func TestFrameError(t *testing.T) {
	err := NewFrameError("not a JSON object", "")
	if err.Error() != "invalid frame: not a JSON object" {
		t.Errorf("Error() = %s", err.Error())
	}

	withPath := NewFrameError("not an array", "historical")
	if withPath.Error() != "invalid frame at historical: not an array" {
		t.Errorf("Error() = %s", withPath.Error())
	}

	if !errors.Is(withPath, ErrInvalidFrame) {
		t.Error("Expected error to match ErrInvalidFrame")
	}
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("endpoint", "must be a ws:// or wss:// URL")
	if !errors.Is(err, ErrInvalidConfig) {
		t.Error("Expected error to match ErrInvalidConfig")
	}
}

func TestHelpers(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		connection bool
		frame      bool
		rejected   bool
	}{
		{"nil", nil, false, false, false},
		{"connection", NewConnectionError("ws://x", "dial", nil), true, false, false},
		{"wrapped connection", fmt.Errorf("start: %w", NewConnectionError("ws://x", "read", nil)), true, false, false},
		{"frame", NewFrameError("bad", ""), false, true, false},
		{"blank", ErrBlankInput, false, false, true},
		{"not connected", fmt.Errorf("send: %w", ErrNotConnected), false, false, true},
		{"closed", ErrSessionClosed, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConnectionError(tt.err); got != tt.connection {
				t.Errorf("IsConnectionError() = %v, want %v", got, tt.connection)
			}
			if got := IsFrameError(tt.err); got != tt.frame {
				t.Errorf("IsFrameError() = %v, want %v", got, tt.frame)
			}
			if got := IsRejected(tt.err); got != tt.rejected {
				t.Errorf("IsRejected() = %v, want %v", got, tt.rejected)
			}
		})
	}
}
