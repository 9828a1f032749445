package main

import (
	"context"

	"github.com/ninhvo/salonmate/internal/model"
	"github.com/ninhvo/salonmate/internal/suggest"
	"github.com/ninhvo/salonmate/internal/tool"
)

// routerEmbedder exposes the model router's embedding path to the
// semantic indexes.
type routerEmbedder struct {
	router    model.Router
	modelName string
}

func (e *routerEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.router.RouteEmbedding(ctx, e.modelName, text)
}

// knowledgeAdapter bridges the knowledge index into the tool layer.
type knowledgeAdapter struct {
	index *suggest.KnowledgeIndex
}

func (a *knowledgeAdapter) Search(ctx context.Context, query string, topK int) ([]tool.KnowledgeHit, error) {
	hits, err := a.index.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	out := make([]tool.KnowledgeHit, 0, len(hits))
	for _, h := range hits {
		out = append(out, tool.KnowledgeHit{Content: h.Content, Score: h.Score})
	}
	return out, nil
}
