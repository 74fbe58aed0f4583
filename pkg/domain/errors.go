package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingConfiguration is returned when one or more configuration keys are absent.
// It is recoverable: fix the configuration and execute again.
var ErrMissingConfiguration = errors.New("missing configuration")

// ErrDirectiveFailed is returned when the remote session reported an error for a directive.
var ErrDirectiveFailed = errors.New("directive failed")

// ErrSessionFaulted is returned for every execution attempted after a fatal error.
var ErrSessionFaulted = errors.New("session faulted")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExists is returned when creating a session whose ID is already live.
var ErrSessionExists = errors.New("session already exists")

// ErrIllegalTransition is returned when a phase change is not allowed.
var ErrIllegalTransition = errors.New("illegal session transition")

// MissingConfigurationError lists the configuration keys that could not be resolved.
type MissingConfigurationError struct {
	Keys []string
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("missing configuration: %s", strings.Join(e.Keys, ", "))
}

func (e *MissingConfigurationError) Is(target error) bool {
	return target == ErrMissingConfiguration
}

// DirectiveError carries the composed fatal message of a failed dispatch.
type DirectiveError struct {
	Label   string
	Value   string
	Message string
}

func (e *DirectiveError) Error() string {
	return e.Message
}

func (e *DirectiveError) Is(target error) bool {
	return target == ErrDirectiveFailed
}

// FaultedError is returned when execution is attempted on a faulted session.
type FaultedError struct {
	Message string
}

func (e *FaultedError) Error() string {
	return "session faulted: " + e.Message
}

func (e *FaultedError) Is(target error) bool {
	return target == ErrSessionFaulted
}

// FatalMessage composes the message stored when a directive fails.
// Label and value are independent slots and may be equal.
func FatalMessage(label, value string) string {
	return fmt.Sprintf("%s\nException details:\n\t\"%s\"", label, value)
}
