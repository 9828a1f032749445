// Package orchestrator drives a conversation turn end to end: replay history
// to the reasoning engine, dispatch requested tools, fold results back into
// the session, and repeat until the engine produces a final reply.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ninhvo/salonmate/internal/config"
	salonErrors "github.com/ninhvo/salonmate/internal/errors"
	"github.com/ninhvo/salonmate/internal/logger"
	"github.com/ninhvo/salonmate/internal/model"
	"github.com/ninhvo/salonmate/internal/model/contract"
	"github.com/ninhvo/salonmate/internal/session"
	"github.com/ninhvo/salonmate/internal/tool"
)

// Suggester produces follow-up questions for a topic.
type Suggester interface {
	Suggest(ctx context.Context, topic string) []string
}

const degradedReply = "I'm sorry, I'm having trouble responding right now. Please try again in a moment."

const (
	fallbackGreeting = "Hello! Welcome to our beauty salon. I can help you with beauty advice, appointment booking, and finding the right services. Type 'exit' anytime to leave."
	fallbackGoodbye  = "Thank you for visiting! Come back anytime for more beauty advice and bookings. Take care!"
)

// TurnResult is the outcome of one processed turn.
type TurnResult struct {
	TurnID   string `json:"turn_id"`
	Reply    string `json:"reply"`
	Degraded bool   `json:"degraded"`
}

// Orchestrator owns the reasoning/tool-dispatch cycle for every session.
type Orchestrator struct {
	router  model.Router
	runner  *tool.Runner
	store   *session.Store
	suggest Suggester

	modelName        string
	systemPrompt     string
	greetingPrompt   string
	goodbyePrompt    string
	maxPasses        int
	historyWindow    int
	maxToolsPerPass  int
	reasoningTimeout time.Duration
}

func New(router model.Router, runner *tool.Runner, store *session.Store, suggester Suggester, cfg *config.Config) (*Orchestrator, error) {
	reasoningTimeout, err := config.DurationOrDefault(cfg.Orchestrator.ReasoningTimeout, config.DefaultOrchestratorReasoningTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse reasoning timeout: %w", err)
	}

	maxPasses := cfg.Orchestrator.MaxPasses
	if maxPasses <= 0 {
		maxPasses = config.DefaultOrchestratorMaxPasses
	}

	return &Orchestrator{
		router:           router,
		runner:           runner,
		store:            store,
		suggest:          suggester,
		modelName:        cfg.Models.Default,
		systemPrompt:     cfg.Prompts.System,
		greetingPrompt:   cfg.Prompts.Greeting,
		goodbyePrompt:    cfg.Prompts.Goodbye,
		maxPasses:        maxPasses,
		historyWindow:    cfg.Orchestrator.HistoryWindow,
		maxToolsPerPass:  cfg.Orchestrator.MaxToolsPerPass,
		reasoningTimeout: reasoningTimeout,
	}, nil
}

// HandleTurn processes one user utterance for a session and returns the
// assistant reply. Turns on the same session run strictly one at a time.
// Engine failures and the pass budget degrade to a generic reply rather
// than surfacing an error.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID, utterance string) (*TurnResult, error) {
	utterance = strings.TrimSpace(utterance)
	if sessionID == "" || utterance == "" {
		return nil, salonErrors.InvalidArguments("session id and message are required")
	}

	turnID := ulid.Make().String()
	ctx = logger.WithTurnID(ctx, turnID)
	ctx = logger.WithSessionID(ctx, sessionID)

	o.store.Lock(sessionID)
	defer o.store.Unlock(sessionID)

	sess := o.store.GetOrCreate(sessionID)
	if err := o.store.Append(sessionID, session.NewUserTurn(utterance)); err != nil {
		return nil, salonErrors.Wrap(err, "record user turn")
	}

	start := time.Now()
	slog.InfoContext(ctx, "Turn started")

	for pass := 1; pass <= o.maxPasses; pass++ {
		resp, err := o.reason(ctx, sess)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			mapped := salonErrors.MapEngineError(err)
			slog.ErrorContext(ctx, "Reasoning failed, degrading turn",
				"pass", pass, "category", salonErrors.Category(mapped), "error", mapped)
			return &TurnResult{TurnID: turnID, Reply: degradedReply, Degraded: true}, nil
		}

		if len(resp.ToolCalls) == 0 {
			if resp.Content == "" {
				slog.ErrorContext(ctx, "Reasoning produced neither reply nor tool calls, degrading turn",
					"pass", pass, "category", salonErrors.Category(salonErrors.ErrMalformedOutput))
				return &TurnResult{TurnID: turnID, Reply: degradedReply, Degraded: true}, nil
			}

			o.store.Append(sessionID, session.NewAssistantTurn(resp.Content, nil))
			sess.CurrentTopic = utterance
			slog.InfoContext(ctx, "Turn completed", "passes", pass, "duration", time.Since(start))
			return &TurnResult{TurnID: turnID, Reply: resp.Content}, nil
		}

		o.store.Append(sessionID, session.NewAssistantTurn(resp.Content, resp.ToolCalls))
		o.dispatchTools(ctx, sessionID, resp.ToolCalls)
	}

	slog.ErrorContext(ctx, "Turn exceeded pass budget, degrading",
		"max_passes", o.maxPasses,
		"category", salonErrors.Category(salonErrors.ErrTurnBudgetExceeded))
	o.store.Append(sessionID, session.NewAssistantTurn(degradedReply, nil))
	return &TurnResult{TurnID: turnID, Reply: degradedReply, Degraded: true}, nil
}

func (o *Orchestrator) reason(ctx context.Context, sess *session.Session) (*contract.CompletionResponse, error) {
	messages := make([]contract.Message, 0, o.historyWindow+1)
	messages = append(messages, contract.Message{Role: "system", Content: o.systemPrompt})
	messages = append(messages, session.Messages(sess.Window(o.historyWindow))...)

	rctx := ctx
	if o.reasoningTimeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, o.reasoningTimeout)
		defer cancel()
	}

	return o.router.Route(rctx, o.modelName, contract.CompletionRequest{
		Model:    o.modelName,
		Messages: messages,
		Tools:    o.runner.Descriptors(),
	})
}

type toolDispatch struct {
	call   *contract.ToolCall
	skip   error
	result json.RawMessage
	err    error
}

// dispatchTools executes a batch of tool calls concurrently and appends one
// tool turn per call, in request order. Each request id runs at most once:
// later duplicates are folded as failures without invoking the tool. All
// failures fold into history; none abort the turn.
func (o *Orchestrator) dispatchTools(ctx context.Context, sessionID string, calls []*contract.ToolCall) {
	dispatches := make([]*toolDispatch, len(calls))
	seen := make(map[string]struct{}, len(calls))
	executable := 0

	for i, call := range calls {
		d := &toolDispatch{call: call}
		dispatches[i] = d

		if call.ID != "" {
			if _, dup := seen[call.ID]; dup {
				d.skip = salonErrors.InvalidArguments(fmt.Sprintf("duplicate tool request id %s", call.ID))
				continue
			}
			seen[call.ID] = struct{}{}
		}
		if o.maxToolsPerPass > 0 && executable >= o.maxToolsPerPass {
			d.skip = salonErrors.InvalidArguments(fmt.Sprintf("tool call limit of %d per pass exceeded", o.maxToolsPerPass))
			continue
		}
		executable++
	}

	var wg sync.WaitGroup
	for _, d := range dispatches {
		if d.skip != nil {
			continue
		}
		wg.Add(1)
		go func(d *toolDispatch) {
			defer wg.Done()
			d.result, d.err = o.runner.Execute(ctx, d.call.Name, json.RawMessage(d.call.Input))
		}(d)
	}
	wg.Wait()

	for _, d := range dispatches {
		err := d.err
		if d.skip != nil {
			err = d.skip
		}

		var content string
		if err != nil {
			content = toolErrorPayload(err)
		} else {
			content = string(d.result)
		}
		o.store.Append(sessionID, session.NewToolTurn(content, d.call.ID))
	}
}

// toolErrorPayload renders a tool failure as JSON the reasoning engine can
// read on the next pass.
func toolErrorPayload(err error) string {
	payload, marshalErr := json.Marshal(map[string]string{
		"error":    err.Error(),
		"category": salonErrors.Category(err),
	})
	if marshalErr != nil {
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	return string(payload)
}

// Suggestions returns follow-up questions for a session. An explicit topic
// hint overrides the session's current topic.
func (o *Orchestrator) Suggestions(ctx context.Context, sessionID, topicHint string) ([]string, error) {
	topic := strings.TrimSpace(topicHint)
	if topic == "" {
		sess, err := o.store.Get(sessionID)
		if err != nil {
			return nil, err
		}

		o.store.Lock(sessionID)
		topic = sess.CurrentTopic
		o.store.Unlock(sessionID)
	}

	if topic == "" || o.suggest == nil {
		return []string{}, nil
	}
	return o.suggest.Suggest(ctx, topic), nil
}

// ClearConversation discards a session's history and topic.
func (o *Orchestrator) ClearConversation(sessionID string) {
	o.store.Lock(sessionID)
	defer o.store.Unlock(sessionID)
	o.store.Clear(sessionID)
}

// Greeting generates the session-opening message, falling back to a canned
// greeting when the engine is unavailable.
func (o *Orchestrator) Greeting(ctx context.Context) string {
	return o.generateOrFallback(ctx, o.greetingPrompt, fallbackGreeting)
}

// Goodbye generates the session-closing message.
func (o *Orchestrator) Goodbye(ctx context.Context) string {
	return o.generateOrFallback(ctx, o.goodbyePrompt, fallbackGoodbye)
}

func (o *Orchestrator) generateOrFallback(ctx context.Context, prompt, fallback string) string {
	rctx := ctx
	if o.reasoningTimeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, o.reasoningTimeout)
		defer cancel()
	}

	resp, err := o.router.Route(rctx, o.modelName, contract.CompletionRequest{
		Model:    o.modelName,
		Messages: []contract.Message{{Role: "user", Content: prompt}},
	})
	if err != nil || resp.Content == "" {
		slog.WarnContext(ctx, "Canned message generation failed, using fallback", "error", err)
		return fallback
	}
	return resp.Content
}
