package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure categories the assistant distinguishes.
var (
	// ErrUnknownSession - a session id was referenced before it was created.
	// Treated as a programming error at the call site.
	ErrUnknownSession = errors.New("unknown session")

	// ErrDuplicateTool - a tool name was registered twice. Configuration error,
	// fatal at process start.
	ErrDuplicateTool = errors.New("duplicate tool")

	// ErrUnknownTool - the reasoning engine requested a tool that is not registered.
	// Recovered locally: folded into history, never surfaced to the end user.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidArguments - tool arguments violate the declared parameter schema.
	// Recovered locally like ErrUnknownTool.
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrToolFailed - the tool implementation failed or timed out.
	// Recovered locally like ErrUnknownTool.
	ErrToolFailed = errors.New("tool execution failed")

	// ErrEngineUnavailable - the reasoning engine could not be reached or timed out.
	// Fatal to the turn; the caller gets a generic degraded reply.
	ErrEngineUnavailable = errors.New("reasoning engine unavailable")

	// ErrMalformedOutput - the reasoning engine returned output that is neither
	// a reply nor a usable set of tool calls. Fatal to the turn.
	ErrMalformedOutput = errors.New("malformed reasoning output")

	// ErrTurnBudgetExceeded - the reasoning/tool-dispatch cycle hit the
	// iteration cap without producing a final reply.
	ErrTurnBudgetExceeded = errors.New("turn budget exceeded")
)

// Wrap wraps an error with a message prefix, preserving the category.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapWithCategory attaches a sentinel category to an underlying cause.
func WrapWithCategory(cause error, message string, category error) error {
	if cause == nil {
		return fmt.Errorf("%s: %w", message, category)
	}
	return fmt.Errorf("%s: %w: %w", message, category, cause)
}

// IsCategory checks whether err belongs to the given sentinel category.
func IsCategory(err error, category error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, category)
}

// UnknownTool wraps a message as an unknown-tool error.
func UnknownTool(message string) error {
	return fmt.Errorf("%s: %w", message, ErrUnknownTool)
}

// InvalidArguments wraps a message as an invalid-arguments error.
func InvalidArguments(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInvalidArguments)
}

// ToolFailed wraps a tool failure with the tool name and underlying cause.
func ToolFailed(tool string, cause error) error {
	return fmt.Errorf("tool %s: %w: %w", tool, ErrToolFailed, cause)
}
