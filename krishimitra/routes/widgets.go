// krishimitra/routes/widgets.go
package routes

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"krishimitra/krishimitra/controllers"
	"krishimitra/krishimitra/types"
)

const maxImageBytes = 10 << 20 // uploaded crop photos

func WidgetRoutes(ctrl *controllers.WidgetsController) chi.Router {
	r := chi.NewRouter()

	r.Get("/weather", func(w http.ResponseWriter, r *http.Request) {
		payload, err := ctrl.Weather(r.Context(),
			r.URL.Query().Get("lat"),
			r.URL.Query().Get("lon"),
			r.URL.Query().Get("language"),
		)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(payload)
	})

	r.Get("/market", func(w http.ResponseWriter, r *http.Request) {
		payload, err := ctrl.MarketPrices(r.Context(),
			r.URL.Query().Get("state"),
			r.URL.Query().Get("commodity"),
			r.URL.Query().Get("language"),
		)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(payload)
	})

	r.Post("/detect", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxImageBytes); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			http.Error(w, "missing image", http.StatusBadRequest)
			return
		}
		defer file.Close()
		image, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		payload, err := ctrl.Detect(r.Context(),
			header.Filename,
			header.Header.Get("Content-Type"),
			r.FormValue("language"),
			image,
		)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(payload)
	})

	r.Post("/speak", func(w http.ResponseWriter, r *http.Request) {
		var req types.SpeakRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		audio, contentType, err := ctrl.Speak(r.Context(), req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		if contentType == "" {
			contentType = "audio/mpeg"
		}
		w.Header().Set("Content-Type", contentType)
		w.Write(audio)
	})

	return r
}
