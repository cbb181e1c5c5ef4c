// krishimitra/types/chat.go
package types

// AdvisoryRequest is the body sent to the advisory backend.
type AdvisoryRequest struct {
	Query     string `json:"query"`
	Language  string `json:"language"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// AdvisoryResponse is what the advisory backend answers with. ml_enhanced
// marks replies produced by a predictive model eligible for user feedback.
type AdvisoryResponse struct {
	Response   string `json:"response"`
	MLEnhanced bool   `json:"ml_enhanced,omitempty"`
	SessionID  string `json:"session_id,omitempty"`
}

// PredictionInput is the input_data payload echoed back with feedback.
type PredictionInput struct {
	Query    string `json:"query"`
	Language string `json:"language"`
}

// FeedbackRequest is the body sent to the feedback backend. Latitude and
// longitude are always null for the chat widget; the fields exist because
// the backend shares the endpoint with location-aware callers.
type FeedbackRequest struct {
	UserID           string          `json:"user_id"`
	SessionID        string          `json:"session_id"`
	PredictionType   string          `json:"prediction_type"`
	InputData        PredictionInput `json:"input_data"`
	SystemPrediction string          `json:"system_prediction"`
	ActualResult     string          `json:"actual_result"`
	FeedbackRating   int             `json:"feedback_rating"`
	FeedbackText     string          `json:"feedback_text"`
	Latitude         *float64        `json:"latitude"`
	Longitude        *float64        `json:"longitude"`
}
