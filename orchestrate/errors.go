package orchestrate

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration wraps every invalid-session-configuration failure.
	// It is returned before a conversation starts and never from inside the loop.
	ErrConfiguration = errors.New("invalid configuration")

	ErrNoParticipants       = errors.New("no participants")
	ErrInvalidMaxTurns      = errors.New("max turns must be at least 1")
	ErrConversationClosed   = errors.New("conversation already finished")
	ErrUnrecognizedResponse = errors.New("unrecognized response")
)

func configError(err error) error {
	return fmt.Errorf("%w: %w", ErrConfiguration, err)
}

// ToolError reports a tool failure during a persona turn. The conversation
// fails without retry; the transcript up to the failing turn is preserved.
type ToolError struct {
	Tool    string
	Persona string
	Turn    int
	Err     error
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s failed on turn %d (%s): %v", e.Tool, e.Turn, e.Persona, e.Err)
}

// Unwrap enables error unwrapping for errors.Is and errors.As.
func (e *ToolError) Unwrap() error {
	return e.Err
}

// BackendError reports a backend invocation failure or an unusable response.
type BackendError struct {
	Persona string
	Turn    int
	Err     error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	return fmt.Sprintf("backend failed for %s on turn %d: %v", e.Persona, e.Turn, e.Err)
}

// Unwrap enables error unwrapping for errors.Is and errors.As.
func (e *BackendError) Unwrap() error {
	return e.Err
}
