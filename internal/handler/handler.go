package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/portalnegocios/intake/internal/attachment"
	"github.com/portalnegocios/intake/internal/config"
	"github.com/portalnegocios/intake/internal/logger"
	"github.com/portalnegocios/intake/internal/model"
)

// Dispatcher runs the consultation pipeline for one request.
type Dispatcher interface {
	HandleConsultation(ctx context.Context, req model.ConsultationRequest) model.Outcome
}

// Verifier reports whether the mail transport is reachable.
type Verifier interface {
	Verify(ctx context.Context) error
}

// Handler holds all HTTP handlers
type Handler struct {
	log        *logger.Logger
	cfg        *config.Config
	dispatcher Dispatcher
	verifier   Verifier
	policy     attachment.Policy
}

// New creates a new Handler instance
func New(log *logger.Logger, cfg *config.Config, dispatcher Dispatcher, verifier Verifier) *Handler {
	return &Handler{
		log:        log,
		cfg:        cfg,
		dispatcher: dispatcher,
		verifier:   verifier,
		policy: attachment.Policy{
			MaxSizeBytes: cfg.Upload.MaxSizeBytes,
			AllowedTypes: cfg.Upload.AllowedTypes,
		},
	}
}

// JSON helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
