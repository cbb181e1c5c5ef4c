package controllers

import (
	"fmt"
	"net/http"

	"krishimitra/krishimitra/session"
)

type HealthController struct {
	manager *session.Manager
}

func NewHealthController(manager *session.Manager) *HealthController {
	return &HealthController{manager: manager}
}

func (h *HealthController) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status": "ok", "active_sessions": %d}`, h.manager.Count())
}
