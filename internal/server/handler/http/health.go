package http

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthHandler reports liveness of the viewer host.
type HealthHandler struct {
	Version   string
	StartTime time.Time
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  "ok",
		Version: h.Version,
		Uptime:  time.Since(h.StartTime).Round(time.Second).String(),
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
