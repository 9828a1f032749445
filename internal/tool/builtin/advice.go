package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	toolcore "github.com/ninhvo/salonmate/internal/tool"
)

func init() {
	toolcore.RegisterBuiltin("beauty_advice", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		if options.Adviser == nil {
			return nil, fmt.Errorf("beauty_advice requires an adviser")
		}
		return &AdviceTool{adviser: options.Adviser}, nil
	})
}

// AdviceTool produces personalized beauty consultation through the
// reasoning engine rather than the salon backend.
type AdviceTool struct {
	adviser toolcore.Adviser
}

func (t *AdviceTool) Name() string { return "beauty_advice" }

func (t *AdviceTool) Description() string {
	return "Get personalized beauty advice and treatment recommendations for a topic such as skincare, haircare or makeup."
}

func (t *AdviceTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"topic": map[string]interface{}{
				"type":        "string",
				"description": "Advice topic, e.g. 'skincare' or 'hair coloring'",
			},
			"concern": map[string]interface{}{
				"type":        "string",
				"description": "Optional specific concern, e.g. 'acne' or 'dry ends'",
			},
		},
		"required": []interface{}{"topic"},
	}
}

func (t *AdviceTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in struct {
		Topic   string `json:"topic"`
		Concern string `json:"concern"`
	}
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}
	if strings.TrimSpace(in.Topic) == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}

	advice, err := t.adviser.Advise(ctx, in.Topic, in.Concern)
	if err != nil {
		return nil, fmt.Errorf("consultation failed: %w", err)
	}

	return json.Marshal(map[string]string{
		"topic":  in.Topic,
		"advice": advice,
	})
}
