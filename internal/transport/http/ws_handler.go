package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"personality-quiz/internal/app"
	"personality-quiz/internal/domain"
)

type WSHandler struct {
	sessions *app.SessionService
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(sessions *app.SessionService, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		sessions: sessions,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades the request and lets the connection drive one quiz session.
// The connection owns its engine for its whole lifetime; ?session= selects the
// persisted record to resume, a new id is issued when it is missing.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	engine, err := h.sessions.Open(ctx, sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: domain.ErrSessionNotReady.Error()}})
		return
	}

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", "session", sessionID, "error", err)
				return
			}
		}
	}()

	state := func() outboundMessage[any] {
		view := engine.View()
		view.SessionID = sessionID
		return outboundMessage[any]{Type: "state", Payload: view}
	}
	fail := func(msg string) outboundMessage[any] {
		return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
	}

	// push reports false once the writer has stopped.
	push := func(msg outboundMessage[any]) bool {
		select {
		case send <- msg:
			return true
		case <-writerDone:
			return false
		}
	}

	push(state())

read:
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		var out outboundMessage[any]
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				out = fail("invalid answer payload")
				break
			}
			if !engine.SubmitAnswer(ctx, payload.QuestionID, payload.OptionID) {
				out = fail("no question awaiting an answer")
				break
			}
			out = state()
		case "reset":
			engine.Reset(ctx)
			out = state()
		case "state":
			out = state()
		default:
			out = fail("unsupported message type")
		}
		if !push(out) {
			break read
		}
	}

	close(send)
	<-writerDone
}
