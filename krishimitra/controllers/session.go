// krishimitra/controllers/session.go
package controllers

import (
	"context"

	"krishimitra/krishimitra/i18n"
	"krishimitra/krishimitra/session"
	"krishimitra/krishimitra/types"
)

type SessionController struct {
	manager *session.Manager
}

func NewSessionController(manager *session.Manager) *SessionController {
	return &SessionController{manager: manager}
}

func (c *SessionController) Create(req types.CreateSessionRequest) session.Snapshot {
	speechAvailable := true
	if req.SpeechAvailable != nil {
		speechAvailable = *req.SpeechAvailable
	}
	s := c.manager.Create(req.Language, speechAvailable)
	return s.Snapshot()
}

func (c *SessionController) Get(sessionID string) (session.Snapshot, error) {
	s, err := c.manager.Get(sessionID)
	if err != nil {
		return session.Snapshot{}, err
	}
	return s.Snapshot(), nil
}

func (c *SessionController) Delete(sessionID string) {
	c.manager.Delete(sessionID)
}

// SubmitQuery kicks off one advisory round trip. The reply lands on the
// event stream; this returns as soon as the user message is appended.
func (c *SessionController) SubmitQuery(sessionID string, req types.QueryRequest) error {
	s, err := c.manager.Get(sessionID)
	if err != nil {
		return err
	}
	return s.SubmitQuery(req.Query)
}

func (c *SessionController) SetLanguage(sessionID string, req types.LanguageRequest) (session.Snapshot, error) {
	s, err := c.manager.Get(sessionID)
	if err != nil {
		return session.Snapshot{}, err
	}
	s.SetLanguage(req.Language)
	return s.Snapshot(), nil
}

// ToggleSpeech flips the recognizer. When the platform has no recognizer
// the notice text for the active language comes back instead.
func (c *SessionController) ToggleSpeech(sessionID string) (listening bool, notice string, err error) {
	s, err := c.manager.Get(sessionID)
	if err != nil {
		return false, "", err
	}
	listening, err = s.ToggleSpeech()
	if err == session.ErrSpeechUnavailable {
		return false, i18n.T(s.Language(), "speech_unsupported"), nil
	}
	return listening, "", err
}

func (c *SessionController) PushSpeechEvent(sessionID string, req types.SpeechEventRequest) error {
	s, err := c.manager.Get(sessionID)
	if err != nil {
		return err
	}
	return s.PushSpeechEvent(session.SpeechEvent{
		Kind:       session.SpeechEventKind(req.Type),
		Transcript: req.Transcript,
		Code:       req.Code,
	})
}

func (c *SessionController) SubmitFeedback(ctx context.Context, sessionID string, req types.FeedbackSubmitRequest) error {
	s, err := c.manager.Get(sessionID)
	if err != nil {
		return err
	}
	return s.SubmitFeedback(ctx, req.ActualResult, req.FeedbackRating, req.FeedbackText)
}

func (c *SessionController) DismissFeedback(sessionID string) error {
	s, err := c.manager.Get(sessionID)
	if err != nil {
		return err
	}
	s.DismissFeedback()
	return nil
}

// Subscribe exposes the session event stream for the websocket route.
func (c *SessionController) Subscribe(sessionID string) (<-chan session.Event, func(), error) {
	s, err := c.manager.Get(sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.Subscribe()
	return ch, cancel, nil
}
