package tool

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	salonErrors "github.com/ninhvo/salonmate/internal/errors"
	"github.com/ninhvo/salonmate/internal/model/contract"
)

// Runner executes tool calls against the registry: resolve, validate,
// run with a per-invocation timeout, and classify failures.
type Runner struct {
	registry *Registry
	timeout  time.Duration
}

func NewRunner(registry *Registry, timeout time.Duration) *Runner {
	return &Runner{
		registry: registry,
		timeout:  timeout,
	}
}

func (r *Runner) Descriptors() []contract.ToolDef {
	if r == nil || r.registry == nil {
		return nil
	}
	return r.registry.Descriptors()
}

func (r *Runner) Execute(ctx context.Context, toolName string, input json.RawMessage) (json.RawMessage, error) {
	t, ok := r.registry.Get(toolName)
	if !ok {
		return nil, salonErrors.UnknownTool(NormalizeToolName(toolName))
	}
	name := NormalizeToolName(t.Name())

	if err := ValidateInput(t.Parameters(), input); err != nil {
		slog.WarnContext(ctx, "Tool input validation failed", "tool", name, "error", err)
		return nil, salonErrors.InvalidArguments(err.Error())
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	slog.InfoContext(ctx, "Executing tool", "tool", name)

	result, err := t.Execute(ctx, input)

	duration := time.Since(start)
	if err != nil {
		slog.ErrorContext(ctx, "Tool execution failed", "tool", name, "error", err, "duration", duration)
		return nil, salonErrors.ToolFailed(name, err)
	}

	slog.InfoContext(ctx, "Tool execution success", "tool", name, "duration", duration)
	return result, nil
}
