package suggest

import (
	"context"
	"fmt"

	"github.com/philippgille/chromem-go"
)

const knowledgeCollection = "salon-knowledge"

// Hit is a single knowledge search result.
type Hit struct {
	Content string
	Score   float32
}

// KnowledgeIndex is a semantic index over salon knowledge snippets.
// Unlike the suggestion engine, search errors surface to the caller so
// the tool layer can report them.
type KnowledgeIndex struct {
	db       *chromem.DB
	embedder Embedder
}

func NewKnowledgeIndex(embedder Embedder) *KnowledgeIndex {
	return &KnowledgeIndex{db: chromem.NewDB(), embedder: embedder}
}

// Seed embeds and upserts knowledge snippets.
func (k *KnowledgeIndex) Seed(ctx context.Context, snippets []Snippet) error {
	col, err := k.db.GetOrCreateCollection(knowledgeCollection, nil, nil)
	if err != nil {
		return fmt.Errorf("create knowledge collection: %w", err)
	}

	docs := make([]chromem.Document, 0, len(snippets))
	for i, s := range snippets {
		if s.Content == "" {
			continue
		}

		vector, err := k.embedder.Embed(ctx, s.Content)
		if err != nil {
			return fmt.Errorf("embed snippet %q: %w", s.ID, err)
		}

		docs = append(docs, chromem.Document{
			ID:        fmt.Sprintf("%06d/%s", i, s.ID),
			Embedding: vector,
			Content:   s.Content,
			Metadata:  map[string]string{"topic": s.Topic},
		})
	}

	if len(docs) == 0 {
		return nil
	}
	return col.AddDocuments(ctx, docs, 1)
}

// Search returns the topK snippets most similar to query, best first.
func (k *KnowledgeIndex) Search(ctx context.Context, query string, topK int) ([]Hit, error) {
	if topK <= 0 {
		topK = 5
	}

	col := k.db.GetCollection(knowledgeCollection, nil)
	if col == nil || col.Count() == 0 {
		return nil, nil
	}

	vector, err := k.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	if topK > col.Count() {
		topK = col.Count()
	}

	results, err := col.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query knowledge index: %w", err)
	}

	hits := make([]Hit, 0, len(results))
	for _, doc := range results {
		hits = append(hits, Hit{Content: doc.Content, Score: doc.Similarity})
	}
	return hits, nil
}
