package middleware

import (
	"github.com/portalnegocios/intake/internal/config"
	"github.com/portalnegocios/intake/internal/logger"
)

// Middleware holds all HTTP middleware
type Middleware struct {
	log *logger.Logger
	cfg *config.Config
}

// New creates a new Middleware instance
func New(log *logger.Logger, cfg *config.Config) *Middleware {
	return &Middleware{
		log: log,
		cfg: cfg,
	}
}
