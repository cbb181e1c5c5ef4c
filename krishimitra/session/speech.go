package session

import "sync"

// SpeechEventKind is one of the three terminal events a recognizer
// activation can end with.
type SpeechEventKind string

const (
	SpeechResult SpeechEventKind = "result"
	SpeechError  SpeechEventKind = "error"
	SpeechEnd    SpeechEventKind = "end"
)

type SpeechEvent struct {
	Kind       SpeechEventKind
	Transcript string
	Code       string
}

// SpeechSource is a push source of transcribed text. Start hands back a
// channel that delivers exactly one terminal event per activation; Stop
// cancels the current activation.
type SpeechSource interface {
	Available() bool
	Start(lang string) (<-chan SpeechEvent, error)
	Stop()
}

// RemoteSource is fed by the browser: the widget runs the platform
// recognizer client-side and relays its terminal event to the gateway.
type RemoteSource struct {
	mu     sync.Mutex
	ch     chan SpeechEvent
	active bool
}

func NewRemoteSource() *RemoteSource {
	return &RemoteSource{}
}

func (s *RemoteSource) Available() bool { return true }

func (s *RemoteSource) Start(lang string) (<-chan SpeechEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// one pending slot so Push never blocks the HTTP handler
	s.ch = make(chan SpeechEvent, 1)
	s.active = true
	return s.ch, nil
}

func (s *RemoteSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.active = false
	// synthetic end so the consumer goroutine always terminates
	s.ch <- SpeechEvent{Kind: SpeechEnd}
}

// Push delivers the browser-reported terminal event. Events arriving after
// the activation settled are dropped.
func (s *RemoteSource) Push(ev SpeechEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return ErrNotListening
	}
	s.active = false
	s.ch <- ev
	return nil
}

// NoSpeech stands in when the client reported no recognizer capability.
type NoSpeech struct{}

func (NoSpeech) Available() bool { return false }

func (NoSpeech) Start(lang string) (<-chan SpeechEvent, error) {
	return nil, ErrSpeechUnavailable
}

func (NoSpeech) Stop() {}
