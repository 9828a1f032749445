package errors

import (
	"context"
	"errors"
	"strings"
)

// MapEngineError classifies a reasoning-engine failure into the taxonomy.
// Timeouts and transport failures become ErrEngineUnavailable; anything that
// indicates the engine answered with unusable output becomes ErrMalformedOutput.
func MapEngineError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return WrapWithCategory(err, "engine timeout", ErrEngineUnavailable)
	}
	if errors.Is(err, ErrMalformedOutput) || errors.Is(err, ErrEngineUnavailable) {
		return err
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "malformed"),
		strings.Contains(errStr, "invalid json"),
		strings.Contains(errStr, "unmarshal"),
		strings.Contains(errStr, "no choices"):
		return WrapWithCategory(err, "engine output", ErrMalformedOutput)
	default:
		return WrapWithCategory(err, "engine call", ErrEngineUnavailable)
	}
}

// Category returns a stable name for an error's taxonomy bucket, for logs
// and the observability sink.
func Category(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownSession):
		return "ErrUnknownSession"
	case errors.Is(err, ErrDuplicateTool):
		return "ErrDuplicateTool"
	case errors.Is(err, ErrUnknownTool):
		return "ErrUnknownTool"
	case errors.Is(err, ErrInvalidArguments):
		return "ErrInvalidArguments"
	case errors.Is(err, ErrToolFailed):
		return "ErrToolFailed"
	case errors.Is(err, ErrEngineUnavailable):
		return "ErrEngineUnavailable"
	case errors.Is(err, ErrMalformedOutput):
		return "ErrMalformedOutput"
	case errors.Is(err, ErrTurnBudgetExceeded):
		return "ErrTurnBudgetExceeded"
	default:
		return "Unknown"
	}
}
