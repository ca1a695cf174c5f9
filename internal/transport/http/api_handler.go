package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"personality-quiz/internal/app"
	"personality-quiz/internal/domain"
)

// APIHandler serves session state over plain HTTP. Nothing is kept between
// requests except the persisted progress record.
type APIHandler struct {
	sessions *app.SessionService
	logger   *slog.Logger
}

func NewAPIHandler(sessions *app.SessionService, logger *slog.Logger) *APIHandler {
	return &APIHandler{sessions: sessions, logger: logger}
}

type answerPayload struct {
	QuestionID string `json:"questionId"`
	OptionID   string `json:"optionId"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func (h *APIHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessions.Snapshot(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *APIHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var payload answerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid answer payload"})
		return
	}
	if payload.QuestionID == "" || payload.OptionID == "" {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "questionId and optionId are required"})
		return
	}

	view, accepted, err := h.sessions.Answer(r.Context(), chi.URLParam(r, "sessionID"), payload.QuestionID, payload.OptionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !accepted {
		writeJSON(w, http.StatusConflict, view)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *APIHandler) Reset(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessions.Reset(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrQuizUnavailable) {
		writeJSON(w, http.StatusServiceUnavailable, errorPayload{Message: domain.ErrSessionNotReady.Error()})
		return
	}
	h.logger.Error("session request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorPayload{Message: "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
