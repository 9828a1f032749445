package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	toolcore "github.com/ninhvo/salonmate/internal/tool"
)

type bookingInput struct {
	Service       string `json:"service"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	Branch        string `json:"branch"`
}

func init() {
	toolcore.RegisterBuiltin("book_appointment", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		return &BookingTool{api: newSalonClient(options)}, nil
	})
	toolcore.RegisterBuiltin("retrieve_booking", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		return &BookingLookupTool{api: newSalonClient(options)}, nil
	})
}

// BookingTool creates a new appointment and returns the confirmation record.
type BookingTool struct {
	api *salonClient
}

func (t *BookingTool) Name() string { return "book_appointment" }

func (t *BookingTool) Description() string {
	return "Create a new appointment booking for a salon service. Requires service, date, time and customer contact details; returns a confirmation code."
}

func (t *BookingTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"service": map[string]interface{}{
				"type":        "string",
				"description": "Service to book",
			},
			"date": map[string]interface{}{
				"type":        "string",
				"description": "Appointment date",
			},
			"time": map[string]interface{}{
				"type":        "string",
				"description": "Appointment time, e.g. '14:30'",
			},
			"customer_name": map[string]interface{}{
				"type":        "string",
				"description": "Customer full name",
			},
			"customer_phone": map[string]interface{}{
				"type":        "string",
				"description": "Customer phone number",
			},
			"branch": map[string]interface{}{
				"type":        "string",
				"description": "Optional branch name or id",
			},
		},
		"required": []interface{}{"service", "date", "time", "customer_name", "customer_phone"},
	}
}

func (t *BookingTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in bookingInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}

	payload := map[string]string{
		"service":        in.Service,
		"date":           in.Date,
		"time":           in.Time,
		"customer_name":  in.CustomerName,
		"customer_phone": in.CustomerPhone,
	}
	if in.Branch != "" {
		payload["branch"] = in.Branch
	}

	return t.api.post(ctx, "/bookings", payload)
}

// BookingLookupTool retrieves an existing booking by confirmation code.
type BookingLookupTool struct {
	api *salonClient
}

func (t *BookingLookupTool) Name() string { return "retrieve_booking" }

func (t *BookingLookupTool) Description() string {
	return "Retrieve an existing booking by its confirmation code."
}

func (t *BookingLookupTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"code": map[string]interface{}{
				"type":        "string",
				"description": "Booking confirmation code",
			},
		},
		"required": []interface{}{"code"},
	}
}

func (t *BookingLookupTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}

	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, fmt.Errorf("code cannot be empty")
	}

	return t.api.get(ctx, "/bookings/"+url.PathEscape(code), nil)
}
