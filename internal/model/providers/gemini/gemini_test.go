package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninhvo/salonmate/internal/model/contract"
)

func TestBuildContentsRoutesSystemInstruction(t *testing.T) {
	contents, system := buildContents([]contract.Message{
		{Role: "system", Content: "you are a salon assistant"},
		{Role: "user", Content: "when do you open?"},
	})

	require.NotNil(t, system)
	require.Len(t, system.Parts, 1)
	assert.Equal(t, "you are a salon assistant", system.Parts[0].Text)

	// The system prompt never leaks into the turn list.
	require.Len(t, contents, 1)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "when do you open?", contents[0].Parts[0].Text)
}

func TestBuildContentsJoinsMultipleSystemMessages(t *testing.T) {
	_, system := buildContents([]contract.Message{
		{Role: "system", Content: "first"},
		{Role: "system", Content: "second"},
	})

	require.NotNil(t, system)
	assert.Equal(t, "first\n\nsecond", system.Parts[0].Text)
}

func TestBuildContentsWithoutSystem(t *testing.T) {
	contents, system := buildContents([]contract.Message{
		{Role: "user", Content: "hello"},
	})

	assert.Nil(t, system)
	require.Len(t, contents, 1)
}

func TestBuildContentsMapsToolRoundTrip(t *testing.T) {
	contents, _ := buildContents([]contract.Message{
		{Role: "user", Content: "any slots tomorrow?"},
		{Role: "assistant", ToolCalls: []*contract.ToolCall{
			{ID: "req-1", Name: "check_availability", Input: `{"service":"haircut"}`},
		}},
		{Role: "tool", ToolCallID: "req-1", Content: `{"slots":["10:00"]}`},
		{Role: "assistant", Content: "10:00 is free."},
	})

	require.Len(t, contents, 4)

	assert.Equal(t, "model", contents[1].Role)
	call := contents[1].Parts[0].FunctionCall
	require.NotNil(t, call)
	assert.Equal(t, "check_availability", call.Name)
	assert.Equal(t, map[string]any{"service": "haircut"}, call.Args)

	assert.Equal(t, "function", contents[2].Role)
	response := contents[2].Parts[0].FunctionResponse
	require.NotNil(t, response)
	// The response is tagged with the function's name, resolved from the
	// requesting call.
	assert.Equal(t, "check_availability", response.Name)
	assert.Equal(t, "req-1", response.ID)

	assert.Equal(t, "model", contents[3].Role)
	assert.Equal(t, "10:00 is free.", contents[3].Parts[0].Text)
}

func TestBuildContentsWrapsNonJSONToolOutput(t *testing.T) {
	contents, _ := buildContents([]contract.Message{
		{Role: "tool", ToolCallID: "req-9", Content: "plain text result"},
	})

	require.Len(t, contents, 1)
	response := contents[0].Parts[0].FunctionResponse
	require.NotNil(t, response)
	assert.Equal(t, map[string]any{"output": "plain text result"}, response.Response)
}

func TestBuildTools(t *testing.T) {
	tools := buildTools([]contract.ToolDef{
		{
			Name:        "search_services",
			Description: "find services",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{"type": "string"},
				},
			},
		},
	})

	require.Len(t, tools, 1)
	require.Len(t, tools[0].FunctionDeclarations, 1)
	decl := tools[0].FunctionDeclarations[0]
	assert.Equal(t, "search_services", decl.Name)
	require.NotNil(t, decl.Parameters)

	assert.Nil(t, buildTools(nil))
}
