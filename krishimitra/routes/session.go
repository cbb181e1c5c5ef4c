// krishimitra/routes/session.go
package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"

	"krishimitra/krishimitra/controllers"
	"krishimitra/krishimitra/session"
	"krishimitra/krishimitra/types"
)

func SessionRoutes(ctrl *controllers.SessionController) chi.Router {
	r := chi.NewRouter()

	// POST /session : mount a new widget session
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		var req types.CreateSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		snap := ctrl.Create(req)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(snap)
	})

	r.Get("/{session_id}", func(w http.ResponseWriter, r *http.Request) {
		snap, err := ctrl.Get(chi.URLParam(r, "session_id"))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(snap)
	})

	r.Delete("/{session_id}", func(w http.ResponseWriter, r *http.Request) {
		ctrl.Delete(chi.URLParam(r, "session_id"))
		w.WriteHeader(http.StatusNoContent)
	})

	// POST /session/{id}/query : 202, the reply arrives on the event stream
	r.Post("/{session_id}/query", func(w http.ResponseWriter, r *http.Request) {
		var req types.QueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := ctrl.SubmitQuery(chi.URLParam(r, "session_id"), req); err != nil {
			writeSessionError(w, err)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})

	r.Put("/{session_id}/language", func(w http.ResponseWriter, r *http.Request) {
		var req types.LanguageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		snap, err := ctrl.SetLanguage(chi.URLParam(r, "session_id"), req)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(snap)
	})

	r.Post("/{session_id}/speech/toggle", func(w http.ResponseWriter, r *http.Request) {
		listening, notice, err := ctrl.ToggleSpeech(chi.URLParam(r, "session_id"))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"listening": listening,
			"notice":    notice,
		})
	})

	r.Post("/{session_id}/speech/event", func(w http.ResponseWriter, r *http.Request) {
		var req types.SpeechEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := ctrl.PushSpeechEvent(chi.URLParam(r, "session_id"), req); err != nil {
			writeSessionError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/{session_id}/feedback", func(w http.ResponseWriter, r *http.Request) {
		var req types.FeedbackSubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := ctrl.SubmitFeedback(r.Context(), chi.URLParam(r, "session_id"), req); err != nil {
			writeSessionError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Delete("/{session_id}/feedback", func(w http.ResponseWriter, r *http.Request) {
		if err := ctrl.DismissFeedback(chi.URLParam(r, "session_id")); err != nil {
			writeSessionError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	// GET /session/{id}/ws : event stream pushed to the widget
	r.HandleFunc("/{session_id}/ws", func(w http.ResponseWriter, r *http.Request) {
		events, cancel, err := ctrl.Subscribe(chi.URLParam(r, "session_id"))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		defer cancel()

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusInternalError, "internal error")

		ctx := r.Context()
		for {
			select {
			case <-ctx.Done():
				conn.Close(websocket.StatusNormalClosure, "")
				return
			case ev := <-events:
				data, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
					return
				}
			}
		}
	})

	return r
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, session.ErrEmptyQuery),
		errors.Is(err, session.ErrInvalidRating),
		errors.Is(err, session.ErrNotListening),
		errors.Is(err, session.ErrNoPendingPrediction),
		errors.Is(err, session.ErrSpeechUnavailable):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}
