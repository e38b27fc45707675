package core

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyMessage is returned when a chat call carries no content parts.
	ErrEmptyMessage = errors.New("chat requires at least one content part")

	// ErrUnsupportedPart is returned when a chat argument is neither a
	// string nor a content part.
	ErrUnsupportedPart = errors.New("unsupported content part")

	// ErrNodeNotFound is returned for operations on unknown node ids.
	ErrNodeNotFound = errors.New("node not found")

	// ErrInvalidSnapshot is returned when a persisted session document is
	// malformed or violates the history invariants.
	ErrInvalidSnapshot = errors.New("invalid session snapshot")
)

// RemoteError wraps a failure reported by the completion API or its
// transport. StatusCode is zero when the request never reached the server.
type RemoteError struct {
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("completion request failed (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("completion request failed: %v", e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
