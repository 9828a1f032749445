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
	toolcore.RegisterBuiltin("search_salons", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		return &SalonSearchTool{api: newSalonClient(options)}, nil
	})
	toolcore.RegisterBuiltin("get_salon_info", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		return &SalonInfoTool{api: newSalonClient(options)}, nil
	})
}

// SalonSearchTool finds salons and their branches in the directory.
type SalonSearchTool struct {
	api *salonClient
}

func (t *SalonSearchTool) Name() string { return "search_salons" }

func (t *SalonSearchTool) Description() string {
	return "Search the salon directory for salons and branches matching a query."
}

func (t *SalonSearchTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Salon name, neighborhood or city",
			},
		},
		"required": []interface{}{"query"},
	}
}

func (t *SalonSearchTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
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
	return t.api.get(ctx, "/salons", query)
}

// SalonInfoTool fetches hours, contact details and staff for one salon.
type SalonInfoTool struct {
	api *salonClient
}

func (t *SalonInfoTool) Name() string { return "get_salon_info" }

func (t *SalonInfoTool) Description() string {
	return "Get detailed information about a specific salon: opening hours, contact info and staff."
}

func (t *SalonInfoTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"salon": map[string]interface{}{
				"type":        "string",
				"description": "Salon name or id",
			},
		},
		"required": []interface{}{"salon"},
	}
}

func (t *SalonInfoTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in struct {
		Salon string `json:"salon"`
	}
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}

	salon := strings.TrimSpace(in.Salon)
	if salon == "" {
		return nil, fmt.Errorf("salon cannot be empty")
	}

	return t.api.get(ctx, "/salons/"+url.PathEscape(salon), nil)
}
