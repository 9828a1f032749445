package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsInbound struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message,omitempty"`
}

type wsOutbound struct {
	Type        string   `json:"type"`
	SessionID   string   `json:"session_id,omitempty"`
	TurnID      string   `json:"turn_id,omitempty"`
	Reply       string   `json:"reply,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// handleWebSocket runs one interactive conversation per connection. The
// session id is minted on connect unless the client supplies one via the
// session_id query parameter. Typing "exit" or "quit" closes the session.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = ulid.Make().String()
	}
	ctx := r.Context()

	conn.WriteJSON(wsOutbound{
		Type:      "greeting",
		SessionID: sessionID,
		Reply:     s.orch.Greeting(ctx),
	})

	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("WebSocket read failed", "session_id", sessionID, "error", err)
			}
			return
		}

		switch in.Type {
		case "chat_message":
		case "clear":
			s.orch.ClearConversation(sessionID)
			conn.WriteJSON(wsOutbound{Type: "cleared", SessionID: sessionID})
			continue
		default:
			conn.WriteJSON(wsOutbound{Type: "error", Error: "unsupported message type"})
			continue
		}

		text := strings.TrimSpace(in.Message)
		if isExitCommand(text) {
			conn.WriteJSON(wsOutbound{
				Type:      "goodbye",
				SessionID: sessionID,
				Reply:     s.orch.Goodbye(ctx),
			})
			s.orch.ClearConversation(sessionID)
			return
		}

		result, err := s.orch.HandleTurn(ctx, sessionID, text)
		if err != nil {
			conn.WriteJSON(wsOutbound{Type: "error", Error: err.Error()})
			continue
		}

		suggestions, _ := s.orch.Suggestions(ctx, sessionID, "")
		conn.WriteJSON(wsOutbound{
			Type:        "reply",
			SessionID:   sessionID,
			TurnID:      result.TurnID,
			Reply:       result.Reply,
			Suggestions: suggestions,
		})
	}
}

func isExitCommand(text string) bool {
	switch strings.ToLower(text) {
	case "exit", "quit", "bye":
		return true
	}
	return false
}
