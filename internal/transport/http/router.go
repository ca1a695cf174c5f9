package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"personality-quiz/internal/app"
)

// NewRouter wires the REST API, the websocket endpoint and health checks.
func NewRouter(sessions *app.SessionService, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	api := NewAPIHandler(sessions, logger)
	r.Route("/api/sessions/{sessionID}", func(sr chi.Router) {
		sr.Get("/", api.GetSession)
		sr.Post("/answers", api.SubmitAnswer)
		sr.Post("/reset", api.Reset)
	})

	ws := NewWSHandler(sessions, logger)
	r.Get("/ws", ws.ServeWS)
	return r
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
