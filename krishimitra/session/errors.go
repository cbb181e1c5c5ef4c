package session

import "errors"

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrEmptyQuery          = errors.New("query is empty")
	ErrInvalidRating       = errors.New("feedback rating must be between 1 and 5")
	ErrNoPendingPrediction = errors.New("no prediction awaiting feedback")
	ErrSpeechUnavailable   = errors.New("speech input unavailable")
	ErrNotListening        = errors.New("speech source is not listening")
)
