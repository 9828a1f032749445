package tool

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	salonErrors "github.com/ninhvo/salonmate/internal/errors"
)

func newRunnerWith(t *testing.T, tools ...Tool) *Runner {
	t.Helper()
	r := NewRegistry()
	for _, tl := range tools {
		require.NoError(t, r.Register(tl))
	}
	return NewRunner(r, 200*time.Millisecond)
}

func TestRunnerExecuteSuccess(t *testing.T) {
	runner := newRunnerWith(t, &fakeTool{
		name: "search_salons",
		params: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{"type": "string"},
			},
		},
		execute: func(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
			return json.RawMessage(`{"salons":["Bella"]}`), nil
		},
	})

	out, err := runner.Execute(context.Background(), "search_salons", json.RawMessage(`{"query":"district 1"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"salons":["Bella"]}`, string(out))
}

func TestRunnerExecuteUnknownTool(t *testing.T) {
	runner := newRunnerWith(t)

	_, err := runner.Execute(context.Background(), "teleport", nil)
	require.Error(t, err)
	assert.True(t, salonErrors.IsCategory(err, salonErrors.ErrUnknownTool))
}

func TestRunnerExecuteInvalidArguments(t *testing.T) {
	runner := newRunnerWith(t, &fakeTool{
		name: "check_availability",
		params: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"service": map[string]interface{}{"type": "string"},
			},
			"required": []interface{}{"service"},
		},
	})

	_, err := runner.Execute(context.Background(), "check_availability", json.RawMessage(`{}`))
	require.Error(t, err)
	assert.True(t, salonErrors.IsCategory(err, salonErrors.ErrInvalidArguments))
}

func TestRunnerExecuteToolFailure(t *testing.T) {
	boom := errors.New("backend down")
	runner := newRunnerWith(t, &fakeTool{
		name: "book_appointment",
		execute: func(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
			return nil, boom
		},
	})

	_, err := runner.Execute(context.Background(), "book_appointment", nil)
	require.Error(t, err)
	assert.True(t, salonErrors.IsCategory(err, salonErrors.ErrToolFailed))
	assert.ErrorIs(t, err, boom)
}

func TestRunnerExecuteTimeout(t *testing.T) {
	runner := newRunnerWith(t, &fakeTool{
		name: "slow_tool",
		execute: func(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(2 * time.Second):
				return json.RawMessage(`{}`), nil
			}
		},
	})

	start := time.Now()
	_, err := runner.Execute(context.Background(), "slow_tool", nil)
	require.Error(t, err)
	assert.True(t, salonErrors.IsCategory(err, salonErrors.ErrToolFailed))
	assert.Less(t, time.Since(start), time.Second)
}
