package tool

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookingSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"service": map[string]interface{}{"type": "string"},
			"date":    map[string]interface{}{"type": "string"},
			"guests":  map[string]interface{}{"type": "integer"},
			"confirm": map[string]interface{}{"type": "boolean"},
			"extras": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
		},
		"required": []interface{}{"service", "date"},
	}
}

func TestValidateInputAccepts(t *testing.T) {
	input := json.RawMessage(`{"service":"haircut","date":"2026-09-02","guests":2,"confirm":true,"extras":["headwash"]}`)
	assert.NoError(t, ValidateInput(bookingSchema(), input))
}

func TestValidateInputMissingRequired(t *testing.T) {
	err := ValidateInput(bookingSchema(), json.RawMessage(`{"service":"haircut"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required field: date")
}

func TestValidateInputUnknownField(t *testing.T) {
	err := ValidateInput(bookingSchema(), json.RawMessage(`{"service":"haircut","date":"2026-09-02","color":"red"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field: color")
}

func TestValidateInputTypeMismatch(t *testing.T) {
	cases := map[string]string{
		"string":  `{"service":42,"date":"2026-09-02"}`,
		"integer": `{"service":"haircut","date":"2026-09-02","guests":"two"}`,
		"boolean": `{"service":"haircut","date":"2026-09-02","confirm":"yes"}`,
		"array":   `{"service":"haircut","date":"2026-09-02","extras":"headwash"}`,
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, ValidateInput(bookingSchema(), json.RawMessage(input)))
		})
	}
}

func TestValidateInputArrayItemType(t *testing.T) {
	err := ValidateInput(bookingSchema(), json.RawMessage(`{"service":"haircut","date":"2026-09-02","extras":[1,2]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extras[0]")
}

func TestValidateInputInvalidJSON(t *testing.T) {
	assert.Error(t, ValidateInput(bookingSchema(), json.RawMessage(`{"service":`)))
}

func TestValidateInputEmptyBodyWithoutRequired(t *testing.T) {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{"type": "string"},
		},
	}
	assert.NoError(t, ValidateInput(schema, nil))
	assert.NoError(t, ValidateInput(schema, json.RawMessage(`{}`)))
}

func TestValidateInputRequiredAsStringSlice(t *testing.T) {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"topic": map[string]interface{}{"type": "string"},
		},
		"required": []string{"topic"},
	}
	assert.Error(t, ValidateInput(schema, json.RawMessage(`{}`)))
	assert.NoError(t, ValidateInput(schema, json.RawMessage(`{"topic":"skincare"}`)))
}
