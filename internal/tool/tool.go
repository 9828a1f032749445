package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	salonErrors "github.com/ninhvo/salonmate/internal/errors"
	"github.com/ninhvo/salonmate/internal/model/contract"
)

// Tool represents an executable domain capability.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]interface{}
	Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error)
}

// Registry holds the fixed catalog of tools. Registration happens once at
// process start; the read path is safe for concurrent use without locking.
type Registry struct {
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the catalog. Registering the same name twice is a
// configuration error.
func (r *Registry) Register(t Tool) error {
	name := NormalizeToolName(t.Name())
	if name == "" {
		return fmt.Errorf("empty tool name: %w", salonErrors.ErrInvalidArguments)
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s: %w", name, salonErrors.ErrDuplicateTool)
	}

	r.tools[name] = t
	return nil
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[NormalizeToolName(name)]
	return t, ok
}

// Descriptors returns the catalog in the form presented to the reasoning
// engine: name, description and parameter schema, sorted by name.
func (r *Registry) Descriptors() []contract.ToolDef {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]contract.ToolDef, 0, len(names))
	for _, name := range names {
		t := r.tools[name]
		defs = append(defs, contract.ToolDef{
			Name:        name,
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}

func NormalizeToolName(name string) string {
	return strings.TrimSpace(name)
}
