// Package mail owns outbound email delivery and its connection state.
//
// A single Sender interface fronts three providers selected by
// configuration: a session-reusing SMTP client, the Gmail API, and a
// simulated transport that synthesizes deliveries locally. Simulated mode is
// an explicit configuration choice; the live providers never silently
// degrade into it.
package mail

import (
	"context"
	"fmt"

	"github.com/portalnegocios/intake/internal/config"
	"github.com/portalnegocios/intake/internal/logger"
	"github.com/portalnegocios/intake/internal/model"
)

// Sender is the interface all delivery providers implement.
type Sender interface {
	// Deliver attempts exactly one delivery of the message. It never
	// retries internally and never blocks past the configured timeout;
	// failures come back as an unsuccessful DispatchResult, not a panic.
	Deliver(ctx context.Context, msg model.EmailMessage) model.DispatchResult

	// Verify checks that the provider can reach its backend. The SMTP
	// provider dials and authenticates; simulated mode always succeeds.
	Verify(ctx context.Context) error
}

// Provider names accepted by mail.provider.
const (
	ProviderSMTP      = "smtp"
	ProviderGmail     = "gmail"
	ProviderSimulated = "simulated"
)

// New builds the Sender selected by the configuration.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (Sender, error) {
	switch cfg.Mail.Provider {
	case ProviderSMTP:
		return NewSMTPSender(cfg.SMTP, cfg.Mail, log)
	case ProviderGmail:
		return NewGmailSender(ctx, cfg.Gmail, cfg.Mail, log)
	case ProviderSimulated:
		return NewSimulatedSender(log), nil
	default:
		return nil, fmt.Errorf("mail: unknown provider %q", cfg.Mail.Provider)
	}
}
