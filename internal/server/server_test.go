package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninhvo/salonmate/internal/config"
	"github.com/ninhvo/salonmate/internal/model/contract"
	"github.com/ninhvo/salonmate/internal/orchestrator"
	"github.com/ninhvo/salonmate/internal/session"
	"github.com/ninhvo/salonmate/internal/tool"
)

// scriptedRouter replays fixed engine responses.
type scriptedRouter struct {
	mu    sync.Mutex
	steps []func() (*contract.CompletionResponse, error)
}

func (r *scriptedRouter) Route(ctx context.Context, model string, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.steps) == 0 {
		return nil, errors.New("script exhausted")
	}
	step := r.steps[0]
	r.steps = r.steps[1:]
	return step()
}

func (r *scriptedRouter) RouteEmbedding(ctx context.Context, model string, text string) ([]float32, error) {
	return nil, errors.New("not scripted")
}

func (r *scriptedRouter) ListModels() []string { return nil }

func reply(content string) func() (*contract.CompletionResponse, error) {
	return func() (*contract.CompletionResponse, error) {
		return &contract.CompletionResponse{Content: content}, nil
	}
}

func newTestServer(t *testing.T, router *scriptedRouter) *Server {
	t.Helper()

	cfg := &config.Config{
		Models: config.ModelsConfig{Default: "test-model"},
		Orchestrator: config.OrchestratorConfig{
			MaxPasses:        3,
			HistoryWindow:    20,
			ReasoningTimeout: "5s",
		},
		Prompts: config.PromptsConfig{
			System:   "assistant",
			Greeting: "greet",
			Goodbye:  "farewell",
		},
	}

	runner := tool.NewRunner(tool.NewRegistry(), time.Second)
	orch, err := orchestrator.New(router, runner, session.NewStore(), nil, cfg)
	require.NoError(t, err)

	srv, err := New(orch, config.ServerConfig{Port: 0})
	require.NoError(t, err)
	return srv
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &scriptedRouter{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestChatEndpoint(t *testing.T) {
	router := &scriptedRouter{steps: []func() (*contract.CompletionResponse, error){
		reply("We open at 9am."),
	}}
	srv := newTestServer(t, router)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/chat", "application/json",
		strings.NewReader(`{"session_id":"visitor-1","message":"when do you open?"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body chatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "We open at 9am.", body.Reply)
	assert.NotEmpty(t, body.TurnID)
	assert.False(t, body.Degraded)
}

func TestChatEndpointRejectsBadRequests(t *testing.T) {
	srv := newTestServer(t, &scriptedRouter{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/chat", "application/json", strings.NewReader(`{not json`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/api/chat", "application/json",
		strings.NewReader(`{"session_id":"visitor-1","message":"  "}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatEndpointDegradesOnEngineFailure(t *testing.T) {
	router := &scriptedRouter{steps: []func() (*contract.CompletionResponse, error){
		func() (*contract.CompletionResponse, error) { return nil, errors.New("connection refused") },
	}}
	srv := newTestServer(t, router)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/chat", "application/json",
		strings.NewReader(`{"session_id":"visitor-1","message":"hello"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body chatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Degraded)
	assert.NotEmpty(t, body.Reply)
}

func TestSuggestionsEndpoint(t *testing.T) {
	router := &scriptedRouter{steps: []func() (*contract.CompletionResponse, error){
		reply("sure"),
	}}
	srv := newTestServer(t, router)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	// Unknown session is a 404.
	resp, err := http.Post(ts.URL+"/api/suggestions", "application/json",
		strings.NewReader(`{"session_id":"ghost"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Missing both session and topic is a 400.
	resp, err = http.Post(ts.URL+"/api/suggestions", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// With a chat turn behind it, suggestions resolve against the session.
	resp, err = http.Post(ts.URL+"/api/chat", "application/json",
		strings.NewReader(`{"session_id":"visitor-1","message":"haircut prices?"}`))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Post(ts.URL+"/api/suggestions", "application/json",
		strings.NewReader(`{"session_id":"visitor-1"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body suggestionsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotNil(t, body.Suggestions)
}

func TestClearSessionEndpoint(t *testing.T) {
	router := &scriptedRouter{steps: []func() (*contract.CompletionResponse, error){
		reply("hello"),
	}}
	srv := newTestServer(t, router)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/chat", "application/json",
		strings.NewReader(`{"session_id":"visitor-1","message":"hi"}`))
	require.NoError(t, err)
	resp.Body.Close()

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/session/visitor-1", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Clearing twice is fine.
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestWebSocketConversation(t *testing.T) {
	router := &scriptedRouter{steps: []func() (*contract.CompletionResponse, error){
		reply("Welcome to the salon!"),
		reply("A haircut is 45 minutes."),
		reply("See you soon!"),
	}}
	srv := newTestServer(t, router)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var greeting wsOutbound
	require.NoError(t, conn.ReadJSON(&greeting))
	assert.Equal(t, "greeting", greeting.Type)
	assert.Equal(t, "Welcome to the salon!", greeting.Reply)
	assert.NotEmpty(t, greeting.SessionID)

	require.NoError(t, conn.WriteJSON(wsInbound{Type: "chat_message", Message: "how long is a haircut?"}))

	var answer wsOutbound
	require.NoError(t, conn.ReadJSON(&answer))
	assert.Equal(t, "reply", answer.Type)
	assert.Equal(t, "A haircut is 45 minutes.", answer.Reply)
	assert.NotEmpty(t, answer.TurnID)

	require.NoError(t, conn.WriteJSON(wsInbound{Type: "chat_message", Message: "exit"}))

	var goodbye wsOutbound
	require.NoError(t, conn.ReadJSON(&goodbye))
	assert.Equal(t, "goodbye", goodbye.Type)
	assert.Equal(t, "See you soon!", goodbye.Reply)
}

func TestWebSocketClearFrame(t *testing.T) {
	router := &scriptedRouter{steps: []func() (*contract.CompletionResponse, error){
		reply("Welcome!"),
		reply("noted"),
	}}
	srv := newTestServer(t, router)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var greeting wsOutbound
	require.NoError(t, conn.ReadJSON(&greeting))

	require.NoError(t, conn.WriteJSON(wsInbound{Type: "chat_message", Message: "remember my name is Linh"}))
	var answer wsOutbound
	require.NoError(t, conn.ReadJSON(&answer))

	require.NoError(t, conn.WriteJSON(wsInbound{Type: "clear"}))
	var cleared wsOutbound
	require.NoError(t, conn.ReadJSON(&cleared))
	assert.Equal(t, "cleared", cleared.Type)
	assert.Equal(t, greeting.SessionID, cleared.SessionID)
}

func TestWebSocketRejectsUnknownFrameType(t *testing.T) {
	router := &scriptedRouter{steps: []func() (*contract.CompletionResponse, error){
		reply("Welcome!"),
	}}
	srv := newTestServer(t, router)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var greeting wsOutbound
	require.NoError(t, conn.ReadJSON(&greeting))

	require.NoError(t, conn.WriteJSON(wsInbound{Type: "audio", Message: "x"}))

	var out wsOutbound
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "error", out.Type)
}
