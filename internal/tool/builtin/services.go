package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	toolcore "github.com/ninhvo/salonmate/internal/tool"
)

func init() {
	toolcore.RegisterBuiltin("search_services", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		return &ServiceSearchTool{api: newSalonClient(options)}, nil
	})
}

// ServiceSearchTool searches the catalog of beauty services and prices.
type ServiceSearchTool struct {
	api *salonClient
}

func (t *ServiceSearchTool) Name() string { return "search_services" }

func (t *ServiceSearchTool) Description() string {
	return "Search beauty services, treatments and pricing information by free-text query."
}

func (t *ServiceSearchTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Search query, e.g. 'hair coloring' or 'facial under $50'",
			},
		},
		"required": []interface{}{"query"},
	}
}

func (t *ServiceSearchTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}
	if strings.TrimSpace(in.Query) == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	query := url.Values{}
	query.Set("query", in.Query)
	return t.api.get(ctx, "/services", query)
}
