package httpd

import (
	"net/http"
	"time"
)

var startTime = time.Now()

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "gradix",
	})
}

func (h *Handler) GetServiceStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "gradix",
		"status":  "running",
		"uptime":  time.Since(startTime).String(),
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
