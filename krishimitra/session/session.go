// krishimitra/session/session.go
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"krishimitra/krishimitra/i18n"
	"krishimitra/krishimitra/types"
	"krishimitra/krishimitra/utils/logging"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one entry in the conversation log. Append-only; insertion
// order is display order.
type Message struct {
	Text       string    `json:"text"`
	Sender     Sender    `json:"sender"`
	MLEnhanced bool      `json:"ml_enhanced,omitempty"`
	SessionID  string    `json:"session_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// PendingPrediction is the at-most-one ML reply currently awaiting user
// feedback.
type PendingPrediction struct {
	PredictionType   string                `json:"prediction_type"`
	InputData        types.PredictionInput `json:"input_data"`
	SystemPrediction string                `json:"system_prediction"`
}

type AdvisoryClient interface {
	Ask(ctx context.Context, req types.AdvisoryRequest) (types.AdvisoryResponse, error)
}

type FeedbackClient interface {
	Submit(ctx context.Context, req types.FeedbackRequest) error
}

// Options configures a ChatSession. IDs come from the caller so tests can
// inject deterministic ones; Now and ThanksDelay exist for the same reason.
type Options struct {
	UserID      string
	SessionID   string
	Language    string
	Advisory    AdvisoryClient
	Feedback    FeedbackClient
	Speech      SpeechSource
	Now         func() time.Time
	ThanksDelay time.Duration
}

// ChatSession holds one widget-lifetime conversation. All state transitions
// are serialized by mu; outbound calls run outside the lock so the session
// stays responsive while a request is in flight.
type ChatSession struct {
	mu sync.Mutex

	userID    string
	sessionID string
	language  string

	messages []Message
	buffer   string
	pending  *PendingPrediction

	inflight  int
	listening bool
	speechGen int

	lastActive time.Time

	advisory    AdvisoryClient
	feedback    FeedbackClient
	speech      SpeechSource
	now         func() time.Time
	thanksDelay time.Duration

	subscribers map[int]chan Event
	nextSubID   int
}

func New(opts Options) *ChatSession {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ThanksDelay == 0 {
		opts.ThanksDelay = 3 * time.Second
	}
	lang := i18n.Normalize(opts.Language)
	s := &ChatSession{
		userID:      opts.UserID,
		sessionID:   opts.SessionID,
		language:    lang,
		advisory:    opts.Advisory,
		feedback:    opts.Feedback,
		speech:      opts.Speech,
		now:         opts.Now,
		thanksDelay: opts.ThanksDelay,
		subscribers: make(map[int]chan Event),
	}
	s.messages = []Message{s.greeting(lang)}
	s.lastActive = s.now()
	return s
}

func (s *ChatSession) greeting(lang string) Message {
	return Message{Text: i18n.T(lang, "greeting"), Sender: SenderBot, Timestamp: s.now()}
}

func (s *ChatSession) UserID() string    { return s.userID }
func (s *ChatSession) SessionID() string { return s.sessionID }

func (s *ChatSession) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Subscribe registers an event channel for the websocket push. The channel
// is buffered; slow consumers lose events rather than block the session.
func (s *ChatSession) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	ch := make(chan Event, 16)
	s.subscribers[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// emit must be called with mu held.
func (s *ChatSession) emit(ev Event) {
	for _, ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

// SubmitQuery appends the user message, clears the input buffer and issues
// one asynchronous advisory call. Exactly one bot message is appended when
// the call settles, success or not. Concurrent submissions are allowed;
// replies land in completion order.
func (s *ChatSession) SubmitQuery(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return ErrEmptyQuery
	}

	s.mu.Lock()
	lang := s.language
	msg := Message{Text: query, Sender: SenderUser, Timestamp: s.now()}
	s.messages = append(s.messages, msg)
	s.buffer = ""
	s.inflight++
	s.lastActive = s.now()
	s.emit(Event{Type: EventMessage, Message: &msg})
	s.emit(Event{Type: EventInputBuffer, Buffer: ""})
	s.mu.Unlock()

	req := types.AdvisoryRequest{
		Query:     query,
		Language:  lang,
		UserID:    s.userID,
		SessionID: s.sessionID,
	}

	// Fire and forget: the widget request that triggered this has already
	// been answered, and advisory calls are not cancellable once issued.
	go func() {
		resp, err := s.advisory.Ask(context.Background(), req)
		s.settle(query, lang, resp, err)
	}()
	return nil
}

// settle appends the bot message for one submitted query. The fallback is
// localized to the language captured at submission time, even if the
// session language changed while the request was in flight.
func (s *ChatSession) settle(query, lang string, resp types.AdvisoryResponse, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var msg Message
	if err != nil {
		logging.ErrorLogger.Error("advisory call failed",
			zap.String("session_id", s.sessionID), zap.Error(err))
		msg = Message{Text: i18n.T(lang, "fallback"), Sender: SenderBot, Timestamp: s.now()}
	} else {
		msg = Message{
			Text:       resp.Response,
			Sender:     SenderBot,
			MLEnhanced: resp.MLEnhanced,
			SessionID:  resp.SessionID,
			Timestamp:  s.now(),
		}
	}
	s.messages = append(s.messages, msg)
	s.inflight--
	s.lastActive = s.now()
	s.emit(Event{Type: EventMessage, Message: &msg})

	if err == nil && resp.MLEnhanced {
		if pt, ok := predictionType(query); ok {
			s.pending = &PendingPrediction{
				PredictionType:   pt,
				InputData:        types.PredictionInput{Query: query, Language: lang},
				SystemPrediction: resp.Response,
			}
			s.emit(Event{Type: EventFeedback, Visible: true, Text: i18n.T(lang, "feedback_prompt")})
		}
	}
}

// predictionType gates the feedback sub-flow on the query wording. Only
// crop and fertilizer recommendations collect feedback today.
func predictionType(query string) (string, bool) {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "crop"):
		return "crop_recommendation", true
	case strings.Contains(q, "fertilizer"):
		return "fertilizer_recommendation", true
	}
	return "", false
}

// SetLanguage resets the log to a single greeting in the new language.
// In-flight advisory calls are not cancelled.
func (s *ChatSession) SetLanguage(lang string) {
	lang = i18n.Normalize(lang)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = lang
	greeting := s.greeting(lang)
	s.messages = []Message{greeting}
	s.lastActive = s.now()
	s.emit(Event{Type: EventReset, Message: &greeting})
}

func (s *ChatSession) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// ToggleSpeech starts or cancels the speech recognizer. Returns whether the
// session is listening after the toggle.
func (s *ChatSession) ToggleSpeech() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.speech == nil || !s.speech.Available() {
		s.emit(Event{Type: EventNotice, Text: i18n.T(s.language, "speech_unsupported")})
		return false, ErrSpeechUnavailable
	}

	if s.listening {
		// supersede the activation before Stop delivers its synthetic end
		s.speechGen++
		s.listening = false
		s.speech.Stop()
		s.emit(Event{Type: EventSpeechState, Listening: false})
		return false, nil
	}

	ch, err := s.speech.Start(i18n.SpeechLang(s.language))
	if err != nil {
		s.emit(Event{Type: EventNotice, Text: i18n.T(s.language, "speech_unsupported")})
		return false, err
	}
	s.listening = true
	s.speechGen++
	gen := s.speechGen
	s.lastActive = s.now()
	s.emit(Event{Type: EventSpeechState, Listening: true})

	go s.consumeSpeech(gen, ch)
	return true, nil
}

// consumeSpeech waits for the single terminal event of one activation. A
// result fills the input buffer without auto-submitting; errors are logged
// only. Events from superseded activations are dropped.
func (s *ChatSession) consumeSpeech(gen int, ch <-chan SpeechEvent) {
	ev, ok := <-ch
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.speechGen {
		return
	}
	s.listening = false

	switch ev.Kind {
	case SpeechResult:
		s.buffer = ev.Transcript
		s.emit(Event{Type: EventInputBuffer, Buffer: s.buffer})
	case SpeechError:
		logging.ErrorLogger.Error("speech recognition failed",
			zap.String("session_id", s.sessionID), zap.String("code", ev.Code))
	}
	s.emit(Event{Type: EventSpeechState, Listening: false})
}

// PushSpeechEvent forwards a browser-reported recognizer event into the
// session's source, when the source supports remote feeding.
func (s *ChatSession) PushSpeechEvent(ev SpeechEvent) error {
	remote, ok := s.speech.(*RemoteSource)
	if !ok {
		return ErrSpeechUnavailable
	}
	return remote.Push(ev)
}

// SubmitFeedback relays the rating for the pending prediction. The rating
// is validated locally first; nothing leaves the gateway on a bad rating.
// On success the pending prediction clears and the thank-you state shows
// for the configured window.
func (s *ChatSession) SubmitFeedback(ctx context.Context, actual string, rating int, text string) error {
	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return ErrNoPendingPrediction
	}
	if rating < 1 || rating > 5 {
		s.mu.Unlock()
		return ErrInvalidRating
	}
	req := types.FeedbackRequest{
		UserID:           s.userID,
		SessionID:        s.sessionID,
		PredictionType:   s.pending.PredictionType,
		InputData:        s.pending.InputData,
		SystemPrediction: s.pending.SystemPrediction,
		ActualResult:     actual,
		FeedbackRating:   rating,
		FeedbackText:     text,
	}
	lang := s.language
	s.mu.Unlock()

	if err := s.feedback.Submit(ctx, req); err != nil {
		// panel stays open for retry
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	s.lastActive = s.now()
	s.emit(Event{Type: EventFeedback, Visible: false})
	s.emit(Event{Type: EventThanks, Text: i18n.T(lang, "feedback_thanks")})
	time.AfterFunc(s.thanksDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.emit(Event{Type: EventThanksDone})
	})
	return nil
}

// DismissFeedback drops the pending prediction without submitting.
func (s *ChatSession) DismissFeedback() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	s.emit(Event{Type: EventFeedback, Visible: false})
}

// Snapshot is the widget-facing view of the session.
type Snapshot struct {
	UserID          string             `json:"user_id"`
	SessionID       string             `json:"session_id"`
	Language        string             `json:"language"`
	Messages        []Message          `json:"messages"`
	InputBuffer     string             `json:"input_buffer"`
	Listening       bool               `json:"listening"`
	AwaitingReply   bool               `json:"awaiting_reply"`
	FeedbackVisible bool               `json:"feedback_visible"`
	Pending         *PendingPrediction `json:"pending_prediction,omitempty"`
}

func (s *ChatSession) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]Message, len(s.messages))
	copy(msgs, s.messages)
	var pending *PendingPrediction
	if s.pending != nil {
		p := *s.pending
		pending = &p
	}
	return Snapshot{
		UserID:          s.userID,
		SessionID:       s.sessionID,
		Language:        s.language,
		Messages:        msgs,
		InputBuffer:     s.buffer,
		Listening:       s.listening,
		AwaitingReply:   s.inflight > 0,
		FeedbackVisible: s.pending != nil,
		Pending:         pending,
	}
}
