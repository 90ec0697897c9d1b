package handler

import (
	"net/http"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Services map[string]string `json:"services"`
}

// Health returns the health status of the service. The only dependency to
// probe is the mail transport; a failed probe degrades the status but the
// service keeps accepting requests (deliveries will fail with a clean 500).
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	services := make(map[string]string)
	status := "healthy"

	if err := h.verifier.Verify(ctx); err != nil {
		services["mail"] = "unhealthy"
		status = "degraded"
	} else {
		services["mail"] = "healthy"
	}

	resp := HealthResponse{
		Status:   status,
		Version:  "0.1.0",
		Services: services,
	}

	if status != "healthy" {
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
