package session

// Event types pushed to the widget over the session websocket.
const (
	EventMessage     = "message"       // a message was appended
	EventReset       = "reset"         // log replaced after a language change
	EventInputBuffer = "input_buffer"  // speech result filled the input box
	EventSpeechState = "speech_state"  // listening started or stopped
	EventFeedback    = "feedback"      // feedback panel visibility changed
	EventThanks      = "thanks"        // thank-you state shown
	EventThanksDone  = "thanks_done"   // thank-you window elapsed
	EventNotice      = "notice"        // one-off localized notice
)

type Event struct {
	Type      string   `json:"type"`
	Message   *Message `json:"message,omitempty"`
	// Buffer, Listening and Visible always carry the new value, even when it
	// is the zero value: the widget applies them verbatim instead of
	// inferring state from absent fields.
	Buffer    string   `json:"buffer"`
	Listening bool     `json:"listening"`
	Visible   bool     `json:"visible"`
	Text      string   `json:"text,omitempty"`
}
