package model

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/ninhvo/salonmate/internal/config"
	"github.com/ninhvo/salonmate/internal/model/contract"
	anthropicProvider "github.com/ninhvo/salonmate/internal/model/providers/anthropic"
	geminiProvider "github.com/ninhvo/salonmate/internal/model/providers/gemini"
	openaiProvider "github.com/ninhvo/salonmate/internal/model/providers/openai"
)

// DefaultRouter maps model names to providers and retries the configured
// fallback model when the primary fails.
type DefaultRouter struct {
	cfg       config.ModelsConfig
	providers map[string]Provider
	mu        sync.RWMutex
}

func NewRouter(cfg config.ModelsConfig) (*DefaultRouter, error) {
	router := &DefaultRouter{
		cfg:       cfg,
		providers: make(map[string]Provider),
	}

	if err := router.initProviders(); err != nil {
		return nil, err
	}

	return router, nil
}

func (r *DefaultRouter) initProviders() error {
	for _, m := range r.cfg.Registry {
		switch strings.ToLower(strings.TrimSpace(m.Provider)) {
		case "openai":
			r.providers[m.Name] = openaiProvider.New(m.APIKey, m.BaseURL, m.Name)
		case "anthropic":
			r.providers[m.Name] = anthropicProvider.New(m.APIKey)
		case "gemini":
			p, err := geminiProvider.New(m.APIKey)
			if err != nil {
				slog.Warn("Skipping gemini model, client init failed", "model", m.Name, "error", err)
				continue
			}
			r.providers[m.Name] = p
		default:
			slog.Warn("Skipping model with unknown provider", "model", m.Name, "provider", m.Provider)
		}
	}

	if len(r.providers) == 0 {
		return fmt.Errorf("no usable models configured")
	}
	return nil
}

func (r *DefaultRouter) Route(ctx context.Context, model string, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	r.mu.RLock()
	provider, ok := r.providers[model]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("model %q is not configured", model)
	}

	req.Model = model
	resp, err := provider.Generate(ctx, req)
	if err == nil {
		return resp, nil
	}

	if ctx.Err() != nil {
		return nil, err
	}

	fallback := r.cfg.Fallback
	if fallback == "" || fallback == model {
		return nil, err
	}

	r.mu.RLock()
	fbProvider, ok := r.providers[fallback]
	r.mu.RUnlock()
	if !ok {
		return nil, err
	}

	slog.WarnContext(ctx, "Primary model failed, trying fallback", "model", model, "fallback", fallback, "error", err)
	req.Model = fallback
	resp, fbErr := fbProvider.Generate(ctx, req)
	if fbErr != nil {
		return nil, fmt.Errorf("fallback %s also failed: %w (primary: %v)", fallback, fbErr, err)
	}
	return resp, nil
}

func (r *DefaultRouter) RouteEmbedding(ctx context.Context, model string, text string) ([]float32, error) {
	var lastErr error

	for _, tryModel := range r.embeddingTryOrder(model) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		r.mu.RLock()
		provider, exists := r.providers[tryModel]
		r.mu.RUnlock()
		if !exists {
			continue
		}

		embedding, err := provider.Embed(ctx, text)
		if err == nil {
			return embedding, nil
		}

		lastErr = err
		slog.Debug("Embedding failed for model, trying next", "model", tryModel, "error", err)
	}

	if lastErr != nil {
		return nil, fmt.Errorf("embedding failed: %w", lastErr)
	}
	return nil, fmt.Errorf("no embedding-capable model configured")
}

func (r *DefaultRouter) embeddingTryOrder(requestedModel string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{}, len(r.providers)+2)
	order := make([]string, 0, len(r.providers)+2)

	appendUnique := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		order = append(order, name)
	}

	appendUnique(requestedModel)
	appendUnique(r.cfg.Embedding)

	registered := make([]string, 0, len(r.providers))
	for name := range r.providers {
		registered = append(registered, name)
	}
	sort.Strings(registered)

	for _, name := range registered {
		appendUnique(name)
	}

	return order
}

func (r *DefaultRouter) ListModels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
