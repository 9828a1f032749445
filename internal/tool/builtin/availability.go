package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	toolcore "github.com/ninhvo/salonmate/internal/tool"
)

type availabilityInput struct {
	Service string `json:"service"`
	Date    string `json:"date"`
	Branch  string `json:"branch"`
}

func init() {
	toolcore.RegisterBuiltin("check_availability", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		return &AvailabilityTool{api: newSalonClient(options)}, nil
	})
}

// AvailabilityTool looks up open appointment slots for a service on a date.
type AvailabilityTool struct {
	api *salonClient
}

func (t *AvailabilityTool) Name() string { return "check_availability" }

func (t *AvailabilityTool) Description() string {
	return "Check appointment availability for beauty salon services. Returns open time slots for a service on a given date."
}

func (t *AvailabilityTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"service": map[string]interface{}{
				"type":        "string",
				"description": "Service to check, e.g. 'haircut' or 'facial'",
			},
			"date": map[string]interface{}{
				"type":        "string",
				"description": "Date to check, e.g. '2026-09-02' or 'tomorrow'",
			},
			"branch": map[string]interface{}{
				"type":        "string",
				"description": "Optional branch name or id to narrow the lookup",
			},
		},
		"required": []interface{}{"service", "date"},
	}
}

func (t *AvailabilityTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in availabilityInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}
	if strings.TrimSpace(in.Service) == "" {
		return nil, fmt.Errorf("service cannot be empty")
	}

	query := url.Values{}
	query.Set("service", in.Service)
	query.Set("date", in.Date)
	if in.Branch != "" {
		query.Set("branch", in.Branch)
	}

	return t.api.get(ctx, "/availability", query)
}
