package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/portalnegocios/intake/internal/handler"
	"github.com/portalnegocios/intake/internal/middleware"
)

// New creates and configures the HTTP router
func New(h *handler.Handler, mw *middleware.Middleware) http.Handler {
	mux := http.NewServeMux()

	// Health and metrics (no CORS needed, same-origin operational routes)
	mux.HandleFunc("GET /health", h.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Consultation intake
	mux.HandleFunc("POST /api/consultations", h.CreateConsultation)

	// Any other method on the intake route gets a JSON 405 instead of the
	// mux's plain-text default. OPTIONS is answered by the CORS middleware
	// before reaching here.
	mux.HandleFunc("/api/consultations", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", "POST, OPTIONS")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte(`{"success":false,"error":"Método no permitido"}`))
	})

	// Middleware chain, outermost first
	var root http.Handler = mux
	root = mw.Metrics(root)
	root = mw.Logger(root)
	root = mw.CORS(root)
	root = mw.RequestID(root)
	root = mw.Recover(root)

	return root
}
