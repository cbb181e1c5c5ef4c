package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"krishimitra/krishimitra/i18n"
	"krishimitra/krishimitra/types"
	"krishimitra/krishimitra/utils/logging"
)

// --- Fakes ---

type fakeAdvisory struct {
	mu    sync.Mutex
	calls []types.AdvisoryRequest
	fn    func(req types.AdvisoryRequest) (types.AdvisoryResponse, error)
}

func (f *fakeAdvisory) Ask(ctx context.Context, req types.AdvisoryRequest) (types.AdvisoryResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(req)
	}
	return types.AdvisoryResponse{Response: "ok"}, nil
}

func (f *fakeAdvisory) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeFeedback struct {
	mu    sync.Mutex
	calls []types.FeedbackRequest
	err   error
}

func (f *fakeFeedback) Submit(ctx context.Context, req types.FeedbackRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, req)
	return nil
}

func (f *fakeFeedback) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func setupTestEnv(t *testing.T, adv *fakeAdvisory, fb *fakeFeedback, src SpeechSource) *ChatSession {
	t.Helper()
	logging.InitLogger() // ensures ErrorLogger isn't nil
	return New(Options{
		UserID:      "user_test",
		SessionID:   "session_test",
		Language:    "en",
		Advisory:    adv,
		Feedback:    fb,
		Speech:      src,
		ThanksDelay: 25 * time.Millisecond,
	})
}

// waitUntil polls until cond holds or the deadline passes.
func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

// --- Submit query ---

func TestSubmitQueryAppendsExactlyOneUserAndOneBotMessage(t *testing.T) {
	release := make(chan struct{})
	adv := &fakeAdvisory{fn: func(req types.AdvisoryRequest) (types.AdvisoryResponse, error) {
		<-release
		return types.AdvisoryResponse{Response: "Sow in June", SessionID: "srv-1"}, nil
	}}
	s := setupTestEnv(t, adv, &fakeFeedback{}, nil)

	if err := s.SubmitQuery("When should I sow rice?"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Messages) != 2 {
		t.Fatalf("expected greeting + user message immediately, got %d messages", len(snap.Messages))
	}
	if snap.Messages[1].Sender != SenderUser || snap.Messages[1].Text != "When should I sow rice?" {
		t.Errorf("unexpected user message: %+v", snap.Messages[1])
	}
	if !snap.AwaitingReply {
		t.Error("expected awaiting_reply while the call is in flight")
	}

	close(release)
	waitUntil(t, func() bool { return len(s.Snapshot().Messages) == 3 })
	snap = s.Snapshot()
	if snap.Messages[2].Sender != SenderBot || snap.Messages[2].Text != "Sow in June" {
		t.Errorf("unexpected bot message: %+v", snap.Messages[2])
	}
	if snap.Messages[2].SessionID != "srv-1" {
		t.Errorf("expected server session id on bot message, got %q", snap.Messages[2].SessionID)
	}
	if snap.AwaitingReply {
		t.Error("expected idle after settle")
	}
	if adv.callCount() != 1 {
		t.Errorf("expected exactly one advisory call, got %d", adv.callCount())
	}
}

func TestSubmitQueryEmptyIsNoOp(t *testing.T) {
	adv := &fakeAdvisory{}
	s := setupTestEnv(t, adv, &fakeFeedback{}, nil)
	before := s.Snapshot()

	for _, q := range []string{"", "   ", "\n\t"} {
		if err := s.SubmitQuery(q); !errors.Is(err, ErrEmptyQuery) {
			t.Errorf("SubmitQuery(%q): expected ErrEmptyQuery, got %v", q, err)
		}
	}

	after := s.Snapshot()
	if len(after.Messages) != len(before.Messages) {
		t.Errorf("message log changed on empty submit")
	}
	if adv.callCount() != 0 {
		t.Errorf("empty submit must not reach the network, got %d calls", adv.callCount())
	}
}

func TestSubmitQueryFailureAppendsLocalizedFallback(t *testing.T) {
	adv := &fakeAdvisory{fn: func(req types.AdvisoryRequest) (types.AdvisoryResponse, error) {
		return types.AdvisoryResponse{}, errors.New("connection refused")
	}}
	s := setupTestEnv(t, adv, &fakeFeedback{}, nil)
	s.SetLanguage("hi")

	if err := s.SubmitQuery("मौसम कैसा है?"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	waitUntil(t, func() bool { return len(s.Snapshot().Messages) == 3 })

	got := s.Snapshot().Messages[2]
	if got.Sender != SenderBot {
		t.Fatalf("expected bot fallback, got %+v", got)
	}
	if got.Text != i18n.T("hi", "fallback") {
		t.Errorf("expected hindi fallback string, got %q", got.Text)
	}
	if s.Snapshot().FeedbackVisible {
		t.Error("fallback must never open the feedback panel")
	}
}

func TestRapidDoubleSubmitSettlesBoth(t *testing.T) {
	release := make(chan struct{})
	adv := &fakeAdvisory{fn: func(req types.AdvisoryRequest) (types.AdvisoryResponse, error) {
		<-release
		return types.AdvisoryResponse{Response: "reply to " + req.Query}, nil
	}}
	s := setupTestEnv(t, adv, &fakeFeedback{}, nil)

	if err := s.SubmitQuery("first"); err != nil {
		t.Fatal(err)
	}
	if err := s.SubmitQuery("second"); err != nil {
		t.Fatal(err)
	}
	waitUntil(t, func() bool { return adv.callCount() == 2 })
	close(release)

	waitUntil(t, func() bool { return len(s.Snapshot().Messages) == 5 })
	snap := s.Snapshot()
	bots := 0
	for _, m := range snap.Messages {
		if m.Sender == SenderBot && strings.HasPrefix(m.Text, "reply to ") {
			bots++
		}
	}
	if bots != 2 {
		t.Errorf("expected both in-flight queries to settle, got %d bot replies", bots)
	}
	if snap.AwaitingReply {
		t.Error("expected idle once both settled")
	}
}

// --- Language ---

func TestLanguageChangeResetsToSingleGreeting(t *testing.T) {
	s := setupTestEnv(t, &fakeAdvisory{}, &fakeFeedback{}, nil)
	if err := s.SubmitQuery("hello"); err != nil {
		t.Fatal(err)
	}
	waitUntil(t, func() bool { return len(s.Snapshot().Messages) == 3 })

	s.SetLanguage("hi")
	snap := s.Snapshot()
	if len(snap.Messages) != 1 {
		t.Fatalf("expected singleton log after language change, got %d", len(snap.Messages))
	}
	if snap.Messages[0].Text != i18n.T("hi", "greeting") {
		t.Errorf("expected hindi greeting, got %q", snap.Messages[0].Text)
	}
	if snap.Language != "hi" {
		t.Errorf("expected language hi, got %q", snap.Language)
	}
}

func TestLanguageChangeMidFlightKeepsSubmitTimeLocale(t *testing.T) {
	release := make(chan struct{})
	adv := &fakeAdvisory{fn: func(req types.AdvisoryRequest) (types.AdvisoryResponse, error) {
		<-release
		return types.AdvisoryResponse{}, errors.New("unreachable")
	}}
	s := setupTestEnv(t, adv, &fakeFeedback{}, nil)

	if err := s.SubmitQuery("market rates"); err != nil {
		t.Fatal(err)
	}
	s.SetLanguage("hi") // does not cancel the in-flight request
	close(release)

	waitUntil(t, func() bool { return len(s.Snapshot().Messages) == 2 })
	got := s.Snapshot().Messages[1]
	if got.Text != i18n.T("en", "fallback") {
		t.Errorf("fallback should use the submit-time language, got %q", got.Text)
	}
}

// --- Feedback trigger ---

func TestMLEnhancedCropQueryOpensFeedback(t *testing.T) {
	adv := &fakeAdvisory{fn: func(req types.AdvisoryRequest) (types.AdvisoryResponse, error) {
		return types.AdvisoryResponse{Response: "Try maize", MLEnhanced: true}, nil
	}}
	s := setupTestEnv(t, adv, &fakeFeedback{}, nil)

	if err := s.SubmitQuery("What crop should I plant?"); err != nil {
		t.Fatal(err)
	}
	waitUntil(t, func() bool { return len(s.Snapshot().Messages) == 3 })

	snap := s.Snapshot()
	if !snap.FeedbackVisible {
		t.Fatal("expected feedback panel visible")
	}
	if snap.Pending.PredictionType != "crop_recommendation" {
		t.Errorf("expected crop_recommendation, got %q", snap.Pending.PredictionType)
	}
	if snap.Pending.SystemPrediction != "Try maize" {
		t.Errorf("expected system prediction captured, got %q", snap.Pending.SystemPrediction)
	}
	if snap.Pending.InputData.Query != "What crop should I plant?" || snap.Pending.InputData.Language != "en" {
		t.Errorf("unexpected input data: %+v", snap.Pending.InputData)
	}
}

func TestMLEnhancedWithoutKeywordStaysHidden(t *testing.T) {
	adv := &fakeAdvisory{fn: func(req types.AdvisoryRequest) (types.AdvisoryResponse, error) {
		return types.AdvisoryResponse{Response: "Rain tomorrow", MLEnhanced: true}, nil
	}}
	s := setupTestEnv(t, adv, &fakeFeedback{}, nil)

	if err := s.SubmitQuery("Will it rain tomorrow?"); err != nil {
		t.Fatal(err)
	}
	waitUntil(t, func() bool { return len(s.Snapshot().Messages) == 3 })

	if s.Snapshot().FeedbackVisible {
		t.Error("feedback must stay hidden without a crop/fertilizer keyword")
	}
}

func TestFertilizerKeywordCaseInsensitive(t *testing.T) {
	adv := &fakeAdvisory{fn: func(req types.AdvisoryRequest) (types.AdvisoryResponse, error) {
		return types.AdvisoryResponse{Response: "Use urea", MLEnhanced: true}, nil
	}}
	s := setupTestEnv(t, adv, &fakeFeedback{}, nil)

	if err := s.SubmitQuery("Which FERTILIZER for wheat?"); err != nil {
		t.Fatal(err)
	}
	waitUntil(t, func() bool { return s.Snapshot().FeedbackVisible })

	if got := s.Snapshot().Pending.PredictionType; got != "fertilizer_recommendation" {
		t.Errorf("expected fertilizer_recommendation, got %q", got)
	}
}

// --- Feedback submission ---

func openFeedback(t *testing.T, s *ChatSession) {
	t.Helper()
	if err := s.SubmitQuery("best crop for black soil"); err != nil {
		t.Fatal(err)
	}
	waitUntil(t, func() bool { return s.Snapshot().FeedbackVisible })
}

func TestFeedbackRatingZeroNeverReachesNetwork(t *testing.T) {
	adv := &fakeAdvisory{fn: func(req types.AdvisoryRequest) (types.AdvisoryResponse, error) {
		return types.AdvisoryResponse{Response: "Try cotton", MLEnhanced: true}, nil
	}}
	fb := &fakeFeedback{}
	s := setupTestEnv(t, adv, fb, nil)
	openFeedback(t, s)

	err := s.SubmitFeedback(context.Background(), "", 0, "")
	if !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("expected ErrInvalidRating, got %v", err)
	}
	if fb.callCount() != 0 {
		t.Errorf("rating 0 must not issue a network call, got %d", fb.callCount())
	}
	if !s.Snapshot().FeedbackVisible {
		t.Error("panel must stay open after local rejection")
	}
}

func TestFeedbackSuccessClearsPendingAndShowsThanks(t *testing.T) {
	adv := &fakeAdvisory{fn: func(req types.AdvisoryRequest) (types.AdvisoryResponse, error) {
		return types.AdvisoryResponse{Response: "Try cotton", MLEnhanced: true}, nil
	}}
	fb := &fakeFeedback{}
	s := setupTestEnv(t, adv, fb, nil)
	openFeedback(t, s)

	events, cancel := s.Subscribe()
	defer cancel()

	if err := s.SubmitFeedback(context.Background(), "grew maize instead", 4, "helpful"); err != nil {
		t.Fatalf("feedback failed: %v", err)
	}
	if fb.callCount() != 1 {
		t.Fatalf("expected exactly one feedback POST, got %d", fb.callCount())
	}
	req := fb.calls[0]
	if req.FeedbackRating != 4 || req.PredictionType != "crop_recommendation" {
		t.Errorf("unexpected feedback payload: %+v", req)
	}
	if req.Latitude != nil || req.Longitude != nil {
		t.Errorf("widget feedback must carry null coordinates")
	}
	if s.Snapshot().FeedbackVisible {
		t.Error("pending prediction must clear on success")
	}

	sawThanks, sawDone := false, false
	deadline := time.After(2 * time.Second)
	for !(sawThanks && sawDone) {
		select {
		case ev := <-events:
			switch ev.Type {
			case EventThanks:
				sawThanks = true
			case EventThanksDone:
				sawDone = true
			}
		case <-deadline:
			t.Fatalf("missing thanks events: thanks=%v done=%v", sawThanks, sawDone)
		}
	}
}

func TestFeedbackFailureKeepsPanelOpen(t *testing.T) {
	adv := &fakeAdvisory{fn: func(req types.AdvisoryRequest) (types.AdvisoryResponse, error) {
		return types.AdvisoryResponse{Response: "Try cotton", MLEnhanced: true}, nil
	}}
	fb := &fakeFeedback{err: errors.New("503")}
	s := setupTestEnv(t, adv, fb, nil)
	openFeedback(t, s)

	if err := s.SubmitFeedback(context.Background(), "", 3, ""); err == nil {
		t.Fatal("expected relay error")
	}
	if !s.Snapshot().FeedbackVisible {
		t.Error("panel must stay open for retry after a relay failure")
	}
}

func TestDismissFeedback(t *testing.T) {
	adv := &fakeAdvisory{fn: func(req types.AdvisoryRequest) (types.AdvisoryResponse, error) {
		return types.AdvisoryResponse{Response: "Try cotton", MLEnhanced: true}, nil
	}}
	s := setupTestEnv(t, adv, &fakeFeedback{}, nil)
	openFeedback(t, s)

	s.DismissFeedback()
	if s.Snapshot().FeedbackVisible {
		t.Error("dismiss must hide the panel")
	}
	if err := s.SubmitFeedback(context.Background(), "", 5, ""); !errors.Is(err, ErrNoPendingPrediction) {
		t.Errorf("expected ErrNoPendingPrediction after dismiss, got %v", err)
	}
}

func TestFeedbackEventCarriesLocalizedPrompt(t *testing.T) {
	adv := &fakeAdvisory{fn: func(req types.AdvisoryRequest) (types.AdvisoryResponse, error) {
		return types.AdvisoryResponse{Response: "धान लगाएँ", MLEnhanced: true}, nil
	}}
	s := setupTestEnv(t, adv, &fakeFeedback{}, nil)
	s.SetLanguage("hi")

	events, cancel := s.Subscribe()
	defer cancel()

	if err := s.SubmitQuery("Which crop suits sandy soil?"); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type != EventFeedback {
				continue
			}
			if !ev.Visible {
				t.Errorf("expected a visible feedback event, got %+v", ev)
			}
			if ev.Text != i18n.T("hi", "feedback_prompt") {
				t.Errorf("expected the hindi prompt, got %q", ev.Text)
			}
			return
		case <-deadline:
			t.Fatal("no feedback event received")
		}
	}
}

// --- End to end scenario ---

func TestCropScenarioEndToEnd(t *testing.T) {
	adv := &fakeAdvisory{fn: func(req types.AdvisoryRequest) (types.AdvisoryResponse, error) {
		if req.Language != "en" || req.UserID != "user_test" || req.SessionID != "session_test" {
			t.Errorf("request missing session identity: %+v", req)
		}
		return types.AdvisoryResponse{Response: "Try maize", MLEnhanced: true}, nil
	}}
	s := setupTestEnv(t, adv, &fakeFeedback{}, nil)

	if err := s.SubmitQuery("What crop should I plant?"); err != nil {
		t.Fatal(err)
	}
	waitUntil(t, func() bool { return len(s.Snapshot().Messages) == 3 })

	snap := s.Snapshot()
	if snap.Messages[0].Text != i18n.T("en", "greeting") ||
		snap.Messages[1].Text != "What crop should I plant?" ||
		snap.Messages[2].Text != "Try maize" {
		t.Errorf("unexpected log: %+v", snap.Messages)
	}
	if !snap.FeedbackVisible {
		t.Error("expected feedback panel visible")
	}
}
