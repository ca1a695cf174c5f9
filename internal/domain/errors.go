package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be located by name.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizUnavailable is returned when the quiz fetch failed and the session is not ready.
	ErrQuizUnavailable = errors.New("quiz unavailable")
	// ErrCorruptProgress marks a persisted progress record that could not be decoded.
	ErrCorruptProgress = errors.New("corrupt progress record")
	// ErrSessionNotReady is returned by transports when an operation needs a loaded quiz.
	ErrSessionNotReady = errors.New("quiz session not ready")
)
