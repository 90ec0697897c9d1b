package mail

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/portalnegocios/intake/internal/logger"
	"github.com/portalnegocios/intake/internal/model"
)

// SimulatedSender synthesizes deliveries without any network traffic. It is
// used when real mail delivery is not configured: every Deliver succeeds
// with a locally generated message id, and the message summary is logged so
// a developer can see what would have gone out.
type SimulatedSender struct {
	log *logger.Logger
}

// NewSimulatedSender creates a simulated sender.
func NewSimulatedSender(log *logger.Logger) *SimulatedSender {
	return &SimulatedSender{log: log.WithComponent("simulated_mail")}
}

// Verify always succeeds; there is nothing to reach.
func (s *SimulatedSender) Verify(ctx context.Context) error {
	return nil
}

// Deliver logs the message and returns a synthesized success result.
func (s *SimulatedSender) Deliver(ctx context.Context, msg model.EmailMessage) model.DispatchResult {
	messageID := fmt.Sprintf("simulated-%s", uuid.New().String())

	event := s.log.Info().
		Str("to", msg.To).
		Str("from", msg.From).
		Str("subject", msg.Subject).
		Str("message_id", messageID)
	if msg.Attachment != nil {
		event = event.Str("attachment", msg.Attachment.Filename).Int64("attachment_size", msg.Attachment.Size)
	}
	event.Msg("simulated email delivery")

	return model.DispatchResult{Success: true, MessageID: messageID}
}

var _ Sender = (*SimulatedSender)(nil)
