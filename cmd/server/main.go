package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/portalnegocios/intake/internal/compose"
	"github.com/portalnegocios/intake/internal/config"
	"github.com/portalnegocios/intake/internal/handler"
	"github.com/portalnegocios/intake/internal/logger"
	"github.com/portalnegocios/intake/internal/mail"
	"github.com/portalnegocios/intake/internal/middleware"
	"github.com/portalnegocios/intake/internal/router"
	"github.com/portalnegocios/intake/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("version", "0.1.0").Msg("starting consultation intake server")

	// Initialize mail transport
	sender, err := mail.New(context.Background(), cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize mail transport")
	}
	log.Info().Str("provider", cfg.Mail.Provider).Msg("mail transport initialized")

	if cfg.Mail.Provider != mail.ProviderSimulated && cfg.Mail.Recipient == "" {
		log.Fatal().Msg("mail.recipient must be configured for live delivery")
	}

	// Initialize dispatch pipeline
	composer := compose.New(cfg.Mail, time.Now)
	dispatchSvc := service.NewDispatchService(composer, sender, log)
	log.Info().Msg("dispatch service initialized")

	// Initialize handlers and middleware
	h := handler.New(log, cfg, dispatchSvc, sender)
	mw := middleware.New(log, cfg)

	// Set up router
	r := router.New(h, mw)

	// Create HTTP server
	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	// Release any open SMTP session
	if closer, ok := sender.(*mail.SMTPSender); ok {
		closer.Close()
	}

	log.Info().Msg("server stopped")
}
