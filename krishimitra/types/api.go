// krishimitra/types/api.go
package types

// Requests the chat widget sends to this gateway.

// SpeechAvailable is reported by the widget at mount time: the browser
// knows whether it has a recognizer, the gateway does not.
type CreateSessionRequest struct {
	Language        string `json:"language"`
	SpeechAvailable *bool  `json:"speech_available,omitempty"`
}

type QueryRequest struct {
	Query string `json:"query"`
}

type LanguageRequest struct {
	Language string `json:"language"`
}

// SpeechEventRequest carries one terminal event from the browser's speech
// recognizer: "result", "error" or "end".
type SpeechEventRequest struct {
	Type       string `json:"type"`
	Transcript string `json:"transcript,omitempty"`
	Code       string `json:"code,omitempty"`
}

type FeedbackSubmitRequest struct {
	ActualResult   string `json:"actual_result"`
	FeedbackRating int    `json:"feedback_rating"`
	FeedbackText   string `json:"feedback_text"`
}

type SpeakRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}
