package service

import (
	"context"
	"time"

	"github.com/portalnegocios/intake/internal/compose"
	"github.com/portalnegocios/intake/internal/logger"
	"github.com/portalnegocios/intake/internal/mail"
	"github.com/portalnegocios/intake/internal/metrics"
	"github.com/portalnegocios/intake/internal/model"
	"github.com/portalnegocios/intake/internal/validate"
)

// Email kinds, used in logs and metrics.
const (
	kindNotification = "notification"
	kindConfirmation = "confirmation"
)

// DispatchService orchestrates a consultation through validation,
// composition and delivery. The flow is strictly sequential: the mandatory
// business notification must succeed before the best-effort client
// confirmation is even attempted.
type DispatchService struct {
	composer *compose.Composer
	sender   mail.Sender
	log      *logger.Logger
}

// NewDispatchService creates a new DispatchService.
func NewDispatchService(composer *compose.Composer, sender mail.Sender, log *logger.Logger) *DispatchService {
	return &DispatchService{
		composer: composer,
		sender:   sender,
		log:      log.WithComponent("dispatch"),
	}
}

// HandleConsultation runs the full pipeline for one request.
//
// Validation failure short-circuits to a rejected outcome with no transport
// call. A failed notification fails the whole request; the confirmation is
// then never attempted. A failed confirmation is logged and absorbed: the
// requester still gets a success verdict, because the business already has
// the lead.
//
// The delivery context is detached from the caller: once dispatch has
// started it runs to completion or timeout regardless of the HTTP client
// disconnecting.
func (s *DispatchService) HandleConsultation(ctx context.Context, req model.ConsultationRequest) model.Outcome {
	if res := validate.Consultation(req); !res.OK {
		s.log.Info().Interface("field_errors", res.FieldErrors).Msg("consultation rejected by validation")
		metrics.ConsultationsTotal.WithLabelValues(string(model.StatusRejected)).Inc()
		return model.Outcome{
			Status:      model.StatusRejected,
			FieldErrors: res.FieldErrors,
		}
	}

	// Deliveries are not cancellable by the caller; each carries its own
	// bounded timeout inside the sender.
	sendCtx := context.WithoutCancel(ctx)

	notification := s.deliver(sendCtx, kindNotification, s.composer.Notification(req))
	if !notification.Success {
		s.log.Error().
			Err(notification.Err).
			Str("error_kind", string(notification.ErrorKind)).
			Str("requester", req.Email).
			Msg("mandatory notification failed, consultation not accepted")
		metrics.ConsultationsTotal.WithLabelValues(string(model.StatusFailed)).Inc()
		return model.Outcome{
			Status:       model.StatusFailed,
			Notification: notification,
		}
	}

	outcome := model.Outcome{
		Status:                model.StatusAccepted,
		Notification:          notification,
		ConfirmationAttempted: true,
	}

	confirmation := s.deliver(sendCtx, kindConfirmation, s.composer.Confirmation(req.Email, req.FullName()))
	if confirmation.Success {
		outcome.ConfirmationSent = true
	} else {
		// Best-effort only: never changes the verdict.
		s.log.Warn().
			Err(confirmation.Err).
			Str("error_kind", string(confirmation.ErrorKind)).
			Str("requester", req.Email).
			Msg("confirmation email failed (non-critical)")
	}

	metrics.ConsultationsTotal.WithLabelValues(string(model.StatusAccepted)).Inc()
	return outcome
}

// deliver runs one delivery attempt and records its metrics.
func (s *DispatchService) deliver(ctx context.Context, kind string, msg model.EmailMessage) model.DispatchResult {
	start := time.Now()
	res := s.sender.Deliver(ctx, msg)
	metrics.EmailSendDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	result := "success"
	if !res.Success {
		result = string(res.ErrorKind)
	}
	metrics.EmailSendsTotal.WithLabelValues(kind, result).Inc()
	return res
}
