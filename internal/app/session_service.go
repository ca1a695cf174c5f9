package app

import (
	"context"
	"log/slog"

	"personality-quiz/internal/domain"
)

// SessionService opens engines for session ids over shared quiz and progress
// stores. Every Open restores from the store, so a caller may open a fresh
// engine per request and still resume where the user left off.
type SessionService struct {
	quizzes   QuizRepository
	store     ProgressStore
	quizName  string
	keyPrefix string
	logger    *slog.Logger
}

func NewSessionService(quizzes QuizRepository, store ProgressStore, quizName, keyPrefix string, logger *slog.Logger) *SessionService {
	if keyPrefix == "" {
		keyPrefix = domain.StorageKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		quizzes:   quizzes,
		store:     store,
		quizName:  quizName,
		keyPrefix: keyPrefix,
		logger:    logger,
	}
}

// Key returns the persistence key for sessionID. An empty id maps to the bare prefix.
func (s *SessionService) Key(sessionID string) string {
	if sessionID == "" {
		return s.keyPrefix
	}
	return s.keyPrefix + ":" + sessionID
}

// Open loads the quiz and restores the session's progress. The returned engine
// is owned by the caller.
func (s *SessionService) Open(ctx context.Context, sessionID string) (*Engine, error) {
	engine := NewEngine(s.store, s.Key(sessionID), WithLogger(s.logger.With("session", sessionID)))
	if err := engine.Load(ctx, s.quizzes, s.quizName); err != nil {
		return engine, err
	}
	return engine, nil
}

// Snapshot opens the session and returns its view.
func (s *SessionService) Snapshot(ctx context.Context, sessionID string) (domain.View, error) {
	engine, err := s.Open(ctx, sessionID)
	if err != nil {
		return domain.View{}, err
	}
	return s.view(engine, sessionID), nil
}

// Answer applies one submission. accepted is false when the session had no
// question waiting (finished or empty quiz).
func (s *SessionService) Answer(ctx context.Context, sessionID, questionID, optionID string) (view domain.View, accepted bool, err error) {
	engine, err := s.Open(ctx, sessionID)
	if err != nil {
		return domain.View{}, false, err
	}
	accepted = engine.SubmitAnswer(ctx, questionID, optionID)
	return s.view(engine, sessionID), accepted, nil
}

// Reset starts the session over.
func (s *SessionService) Reset(ctx context.Context, sessionID string) (domain.View, error) {
	engine, err := s.Open(ctx, sessionID)
	if err != nil {
		return domain.View{}, err
	}
	engine.Reset(ctx)
	return s.view(engine, sessionID), nil
}

func (s *SessionService) view(engine *Engine, sessionID string) domain.View {
	v := engine.View()
	v.SessionID = sessionID
	return v
}
