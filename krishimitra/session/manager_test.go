package session

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"krishimitra/krishimitra/utils/logging"
)

func newTestManager() *Manager {
	logging.InitLogger()
	n := 0
	return NewManager(ManagerOptions{
		Advisory: &fakeAdvisory{},
		Feedback: &fakeFeedback{},
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	})
}

func TestManagerCreateAndGet(t *testing.T) {
	m := newTestManager()
	defer m.Close()

	s := m.Create("hi", true)
	if s.UserID() != "user_id-1" || s.SessionID() != "session_id-2" {
		t.Errorf("expected injected ids, got %q / %q", s.UserID(), s.SessionID())
	}
	if s.Language() != "hi" {
		t.Errorf("expected hi, got %q", s.Language())
	}
	if snap := s.Snapshot(); len(snap.Messages) != 1 {
		t.Errorf("new session must hold exactly the greeting, got %d messages", len(snap.Messages))
	}

	got, err := m.Get(s.SessionID())
	if err != nil || got != s {
		t.Errorf("Get returned %v, %v", got, err)
	}
}

func TestManagerGetUnknown(t *testing.T) {
	m := newTestManager()
	defer m.Close()

	if _, err := m.Get("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestManagerDelete(t *testing.T) {
	m := newTestManager()
	defer m.Close()

	s := m.Create("en", true)
	if m.Count() != 1 {
		t.Fatalf("expected 1 session, got %d", m.Count())
	}
	m.Delete(s.SessionID())
	if m.Count() != 0 {
		t.Errorf("expected 0 sessions after delete, got %d", m.Count())
	}
}

func TestManagerEvictsIdleSessions(t *testing.T) {
	logging.InitLogger()
	m := NewManager(ManagerOptions{
		Advisory:      &fakeAdvisory{},
		Feedback:      &fakeFeedback{},
		TTL:           20 * time.Millisecond,
		SweepInterval: 5 * time.Millisecond,
	})
	defer m.Close()

	s := m.Create("en", false)
	if _, err := m.Get(s.SessionID()); err != nil {
		t.Fatalf("fresh session must be reachable: %v", err)
	}

	waitUntil(t, func() bool {
		_, err := m.Get(s.SessionID())
		return errors.Is(err, ErrSessionNotFound)
	})
	if m.Count() != 0 {
		t.Errorf("expected empty registry after sweep, got %d", m.Count())
	}
}

func TestManagerSpeechAvailability(t *testing.T) {
	m := newTestManager()
	defer m.Close()

	s := m.Create("en", false)
	if _, err := s.ToggleSpeech(); !errors.Is(err, ErrSpeechUnavailable) {
		t.Errorf("expected ErrSpeechUnavailable for a no-recognizer client, got %v", err)
	}

	s = m.Create("en", true)
	listening, err := s.ToggleSpeech()
	if err != nil || !listening {
		t.Errorf("expected listening remote source, got %v %v", listening, err)
	}
	if err := s.PushSpeechEvent(SpeechEvent{Kind: SpeechResult, Transcript: "namaste"}); err != nil {
		t.Fatalf("push failed: %v", err)
	}
	waitUntil(t, func() bool { return s.Snapshot().InputBuffer == "namaste" })
}
