package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	gomail "github.com/wneessen/go-mail"

	"github.com/portalnegocios/intake/internal/config"
	"github.com/portalnegocios/intake/internal/logger"
	"github.com/portalnegocios/intake/internal/model"
)

// defaultDeliverTimeout bounds a delivery attempt when no timeout is
// configured. Single-digit seconds: a hung SMTP server must not hang the
// request that triggered the send.
const defaultDeliverTimeout = 8 * time.Second

// smtpClient is the slice of go-mail's Client the sender uses. Narrowed to
// an interface so the session lifecycle is testable without a live server.
type smtpClient interface {
	DialWithContext(ctx context.Context) error
	Send(msgs ...*gomail.Msg) error
	Close() error
}

// SMTPSender delivers email over SMTP with a lazily established, reused
// session. The session is process-wide shared state: creation, reuse and
// invalidation are serialized by a mutex since concurrent requests race on
// it.
type SMTPSender struct {
	cfg     config.SMTPConfig
	mailCfg config.MailConfig
	timeout time.Duration
	log     *logger.Logger

	newClient func() (smtpClient, error)

	mu       sync.Mutex
	client   smtpClient
	verified bool
}

// NewSMTPSender creates an SMTP sender. No connection is opened here; the
// session is dialed on the first delivery (or Verify call) and kept for
// reuse.
func NewSMTPSender(cfg config.SMTPConfig, mailCfg config.MailConfig, log *logger.Logger) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp: host is required")
	}

	timeout := mailCfg.DeliverTimeout
	if timeout <= 0 {
		timeout = defaultDeliverTimeout
	}

	s := &SMTPSender{
		cfg:     cfg,
		mailCfg: mailCfg,
		timeout: timeout,
		log:     log.WithComponent("smtp"),
	}
	s.newClient = s.dialableClient
	return s, nil
}

// dialableClient builds a go-mail client from the configuration.
func (s *SMTPSender) dialableClient() (smtpClient, error) {
	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTimeout(s.timeout),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	if s.cfg.SSL {
		opts = append(opts, gomail.WithSSLPort(false))
	} else {
		opts = append(opts, gomail.WithTLSPortPolicy(gomail.TLSOpportunistic))
	}

	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Verify establishes and keeps a session, reporting whether the server is
// reachable and accepts our credentials.
func (s *SMTPSender) Verify(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureSessionLocked(ctx)
}

// Deliver sends one message over the shared session. Exactly one attempt is
// made: a protocol failure invalidates the session so the next call dials a
// fresh one, but this call reports the failure.
func (s *SMTPSender) Deliver(ctx context.Context, msg model.EmailMessage) model.DispatchResult {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureSessionLocked(ctx); err != nil {
		kind := model.ErrorKindUnavailable
		if errors.Is(err, context.DeadlineExceeded) {
			kind = model.ErrorKindTimeout
		}
		s.log.Error().Err(err).Str("to", msg.To).Msg("SMTP session unavailable")
		return model.DispatchResult{ErrorKind: kind, Err: err}
	}

	m, messageID, err := buildMessage(msg, s.cfg.Host)
	if err != nil {
		return model.DispatchResult{ErrorKind: model.ErrorKindSendFailed, Err: err}
	}

	if err := s.client.Send(m); err != nil {
		// The session state after a failed send is unknown; drop it so
		// the next delivery starts clean.
		s.invalidateLocked()

		kind := model.ErrorKindSendFailed
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			kind = model.ErrorKindTimeout
		}
		s.log.MailEvent("smtp", msg.To, messageID, false, time.Since(start))
		return model.DispatchResult{ErrorKind: kind, Err: err}
	}

	s.log.MailEvent("smtp", msg.To, messageID, true, time.Since(start))
	return model.DispatchResult{Success: true, MessageID: messageID}
}

// ensureSessionLocked dials and verifies a session if none is active.
// Callers must hold s.mu.
func (s *SMTPSender) ensureSessionLocked(ctx context.Context) error {
	if s.client != nil && s.verified {
		return nil
	}

	client, err := s.newClient()
	if err != nil {
		return fmt.Errorf("smtp: create client: %w", err)
	}
	if err := client.DialWithContext(ctx); err != nil {
		return fmt.Errorf("smtp: dial %s:%d: %w", s.cfg.Host, s.cfg.Port, err)
	}

	s.client = client
	s.verified = true
	s.log.Debug().Str("host", s.cfg.Host).Int("port", s.cfg.Port).Msg("SMTP session established")
	return nil
}

// invalidateLocked tears down the current session. Callers must hold s.mu.
func (s *SMTPSender) invalidateLocked() {
	if s.client != nil {
		_ = s.client.Close()
	}
	s.client = nil
	s.verified = false
}

// Close releases the session if one is open.
func (s *SMTPSender) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidateLocked()
}

// buildMessage converts an EmailMessage into a go-mail message and returns
// the generated Message-ID.
func buildMessage(msg model.EmailMessage, host string) (*gomail.Msg, string, error) {
	m := gomail.NewMsg()

	if err := m.FromFormat(msg.FromName, msg.From); err != nil {
		return nil, "", fmt.Errorf("smtp: set from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, "", fmt.Errorf("smtp: set to: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return nil, "", fmt.Errorf("smtp: set reply-to: %w", err)
		}
	}

	messageID := fmt.Sprintf("%s@%s", uuid.New().String(), host)
	m.SetMessageIDWithValue(messageID)

	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.TextBody)
	m.AddAlternativeString(gomail.TypeTextHTML, msg.HTMLBody)

	if att := msg.Attachment; att != nil {
		err := m.AttachReader(att.Filename, bytes.NewReader(att.Content),
			gomail.WithFileContentType(gomail.ContentType(att.MimeType)))
		if err != nil {
			return nil, "", fmt.Errorf("smtp: attach %s: %w", att.Filename, err)
		}
	}

	return m, messageID, nil
}

var _ Sender = (*SMTPSender)(nil)
