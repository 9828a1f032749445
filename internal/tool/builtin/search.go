package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	toolcore "github.com/ninhvo/salonmate/internal/tool"
)

const defaultSemanticTopK = 5

func init() {
	toolcore.RegisterBuiltin("semantic_search", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		if options.Knowledge == nil {
			return nil, fmt.Errorf("semantic_search requires a knowledge index")
		}
		return &SemanticSearchTool{knowledge: options.Knowledge}, nil
	})
}

// SemanticSearchTool answers open-ended questions from the salon knowledge
// index by vector similarity.
type SemanticSearchTool struct {
	knowledge toolcore.KnowledgeSearcher
}

func (t *SemanticSearchTool) Name() string { return "semantic_search" }

func (t *SemanticSearchTool) Description() string {
	return "Search the salon knowledge base semantically for policies, tips and general information."
}

func (t *SemanticSearchTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Natural-language search query",
			},
			"top_k": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of results, default 5",
			},
		},
		"required": []interface{}{"query"},
	}
}

func (t *SemanticSearchTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in struct {
		Query string `json:"query"`
		TopK  int    `json:"top_k"`
	}
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}
	if strings.TrimSpace(in.Query) == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if in.TopK <= 0 {
		in.TopK = defaultSemanticTopK
	}

	hits, err := t.knowledge.Search(ctx, in.Query, in.TopK)
	if err != nil {
		return nil, fmt.Errorf("knowledge search failed: %w", err)
	}

	return json.Marshal(map[string]interface{}{
		"query":   in.Query,
		"results": hits,
	})
}
