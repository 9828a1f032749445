package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/ninhvo/salonmate/internal/model"
	"github.com/ninhvo/salonmate/internal/model/contract"
)

const adviserSystemPrompt = `You are an experienced beauty consultant. Give practical,
specific advice for the customer's concern. Keep it short, warm, and actionable.
Recommend a salon visit when a treatment genuinely calls for professional hands.`

// ModelAdviser answers beauty consultation requests with a dedicated
// engine call, separate from the main turn loop.
type ModelAdviser struct {
	router    model.Router
	modelName string
}

func NewModelAdviser(router model.Router, modelName string) *ModelAdviser {
	return &ModelAdviser{router: router, modelName: modelName}
}

func (a *ModelAdviser) Advise(ctx context.Context, topic, concern string) (string, error) {
	var sb strings.Builder
	sb.WriteString("Topic: ")
	sb.WriteString(topic)
	if concern != "" {
		sb.WriteString("\nConcern: ")
		sb.WriteString(concern)
	}

	resp, err := a.router.Route(ctx, a.modelName, contract.CompletionRequest{
		Model: a.modelName,
		Messages: []contract.Message{
			{Role: "system", Content: adviserSystemPrompt},
			{Role: "user", Content: sb.String()},
		},
	})
	if err != nil {
		return "", fmt.Errorf("advice generation: %w", err)
	}
	if resp.Content == "" {
		return "", fmt.Errorf("advice generation returned empty output")
	}
	return resp.Content, nil
}
