// Package suggest derives contextual follow-up questions from a semantic
// similarity index seeded with a curated question catalog.
package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/philippgille/chromem-go"
)

// Embedder turns text into a vector. Satisfied by the model router.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

const questionCollection = "suggested-questions"

// Engine ranks seeded follow-up questions by similarity to a topic.
// Failures never propagate to the caller: the engine degrades to an
// empty suggestion list.
type Engine struct {
	db       *chromem.DB
	embedder Embedder
	topK     int
	minScore float32
}

func NewEngine(embedder Embedder, topK int, minScore float64) *Engine {
	if topK <= 0 {
		topK = 5
	}

	return &Engine{
		db:       chromem.NewDB(),
		embedder: embedder,
		topK:     topK,
		minScore: float32(minScore),
	}
}

// Seed embeds and upserts the question catalog. Document ids carry the
// insertion index so equal-score results rank in seed order.
func (e *Engine) Seed(ctx context.Context, questions []Question) error {
	col, err := e.db.GetOrCreateCollection(questionCollection, nil, nil)
	if err != nil {
		return fmt.Errorf("create suggestion collection: %w", err)
	}

	seen := make(map[string]struct{}, len(questions))
	docs := make([]chromem.Document, 0, len(questions))
	for i, q := range questions {
		if q.Question == "" {
			continue
		}
		if _, dup := seen[q.ID]; q.ID != "" && dup {
			continue
		}
		seen[q.ID] = struct{}{}

		vector, err := e.embedder.Embed(ctx, q.Question)
		if err != nil {
			return fmt.Errorf("embed question %q: %w", q.ID, err)
		}

		docs = append(docs, chromem.Document{
			ID:        fmt.Sprintf("%06d/%s", i, q.ID),
			Embedding: vector,
			Content:   q.Question,
			Metadata:  map[string]string{"category": q.Category},
		})
	}

	if len(docs) == 0 {
		return nil
	}
	return col.AddDocuments(ctx, docs, 1)
}

// Suggest returns up to topK follow-up questions near topic, most relevant
// first. Returns an empty list when nothing scores above the threshold or
// the backend/embedder fails.
func (e *Engine) Suggest(ctx context.Context, topic string) []string {
	if topic == "" {
		return nil
	}

	col := e.db.GetCollection(questionCollection, nil)
	if col == nil || col.Count() == 0 {
		return nil
	}

	vector, err := e.embedder.Embed(ctx, topic)
	if err != nil {
		slog.Warn("Suggestion embedding failed, degrading to no suggestions", "error", err)
		return nil
	}

	// Over-fetch so threshold filtering can still fill topK.
	nResults := e.topK * 3
	if nResults > col.Count() {
		nResults = col.Count()
	}

	results, err := col.QueryEmbedding(ctx, vector, nResults, nil, nil)
	if err != nil {
		slog.Warn("Suggestion query failed, degrading to no suggestions", "error", err)
		return nil
	}

	type hit struct {
		id       string
		question string
		score    float32
	}

	hits := make([]hit, 0, len(results))
	for _, doc := range results {
		if doc.Similarity < e.minScore {
			continue
		}
		hits = append(hits, hit{id: doc.ID, question: doc.Content, score: doc.Similarity})
	}

	// Stable ranking: score descending, seed order on ties.
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].id < hits[j].id
	})

	if len(hits) > e.topK {
		hits = hits[:e.topK]
	}

	suggestions := make([]string, 0, len(hits))
	for _, h := range hits {
		suggestions = append(suggestions, h.question)
	}
	return suggestions
}
