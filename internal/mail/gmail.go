package mail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/portalnegocios/intake/internal/config"
	"github.com/portalnegocios/intake/internal/logger"
	"github.com/portalnegocios/intake/internal/model"
)

// GmailSender delivers email through the Gmail API. The API client manages
// its own connection pool, so unlike the SMTP sender there is no session to
// invalidate; each Deliver is a single bounded API call.
type GmailSender struct {
	service *gmail.Service
	timeout time.Duration
	log     *logger.Logger
}

// NewGmailSender creates a Gmail sender. It accepts either service account
// credentials with domain-wide delegation (impersonating the configured
// from address) or OAuth2 client credentials with a refresh token.
func NewGmailSender(ctx context.Context, cfg config.GmailConfig, mailCfg config.MailConfig, log *logger.Logger) (*GmailSender, error) {
	if mailCfg.FromAddress == "" {
		return nil, errors.New("gmail: mail.from_address is required")
	}

	var svc *gmail.Service
	var err error

	switch {
	case cfg.CredentialsJSON != "":
		jwtConfig, jerr := google.JWTConfigFromJSON([]byte(cfg.CredentialsJSON), gmail.GmailSendScope)
		if jerr != nil {
			return nil, fmt.Errorf("gmail: failed to parse credentials: %w", jerr)
		}
		// Domain-wide delegation: impersonate the sender mailbox.
		jwtConfig.Subject = mailCfg.FromAddress
		svc, err = gmail.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))

	case cfg.RefreshToken != "":
		oauthCfg := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{gmail.GmailSendScope},
		}
		token := &oauth2.Token{RefreshToken: cfg.RefreshToken}
		svc, err = gmail.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, token)))

	default:
		return nil, errors.New("gmail: credentials_json or refresh_token is required")
	}
	if err != nil {
		return nil, fmt.Errorf("gmail: failed to create service: %w", err)
	}

	timeout := mailCfg.DeliverTimeout
	if timeout <= 0 {
		timeout = defaultDeliverTimeout
	}

	return &GmailSender{
		service: svc,
		timeout: timeout,
		log:     log.WithComponent("gmail"),
	}, nil
}

// Verify confirms the Gmail profile is reachable with the configured
// credentials.
func (g *GmailSender) Verify(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if _, err := g.service.Users.GetProfile("me").Context(ctx).Do(); err != nil {
		return fmt.Errorf("gmail: profile check: %w", err)
	}
	return nil
}

// Deliver sends one message via the Gmail API.
func (g *GmailSender) Deliver(ctx context.Context, msg model.EmailMessage) model.DispatchResult {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw := buildMIME(msg)
	gmailMsg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}

	res, err := g.service.Users.Messages.Send("me", gmailMsg).Context(ctx).Do()
	if err != nil {
		kind := model.ErrorKindSendFailed
		if errors.Is(err, context.DeadlineExceeded) {
			kind = model.ErrorKindTimeout
		}
		g.log.MailEvent("gmail", msg.To, "", false, time.Since(start))
		return model.DispatchResult{ErrorKind: kind, Err: fmt.Errorf("gmail: send: %w", err)}
	}

	g.log.MailEvent("gmail", msg.To, res.Id, true, time.Since(start))
	return model.DispatchResult{Success: true, MessageID: res.Id}
}

// buildMIME renders the message as a raw RFC 2822 payload: multipart/mixed
// wrapping a multipart/alternative body, plus a base64 attachment part when
// present.
func buildMIME(msg model.EmailMessage) string {
	from := msg.From
	if msg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", msg.FromName, msg.From)
	}

	// Boundaries are randomized per message so body or attachment content
	// cannot collide with them.
	altBoundary := "alt_" + uuid.NewString()
	mixedBoundary := "mixed_" + uuid.NewString()

	headers := []string{
		"From: " + from,
		"To: " + msg.To,
	}
	if msg.ReplyTo != "" {
		headers = append(headers, "Reply-To: "+msg.ReplyTo)
	}
	headers = append(headers,
		"Subject: "+encodeSubject(msg.Subject),
		"MIME-Version: 1.0",
	)

	alternative := strings.Join([]string{
		"--" + altBoundary,
		"Content-Type: text/plain; charset=UTF-8",
		"Content-Transfer-Encoding: 8bit",
		"",
		msg.TextBody,
		"",
		"--" + altBoundary,
		"Content-Type: text/html; charset=UTF-8",
		"Content-Transfer-Encoding: 8bit",
		"",
		msg.HTMLBody,
		"",
		"--" + altBoundary + "--",
	}, "\r\n")

	if msg.Attachment == nil {
		parts := append(headers,
			"Content-Type: multipart/alternative; boundary="+altBoundary,
			"",
			alternative,
		)
		return strings.Join(parts, "\r\n")
	}

	att := msg.Attachment
	parts := append(headers,
		"Content-Type: multipart/mixed; boundary="+mixedBoundary,
		"",
		"--"+mixedBoundary,
		"Content-Type: multipart/alternative; boundary="+altBoundary,
		"",
		alternative,
		"",
		"--"+mixedBoundary,
		fmt.Sprintf("Content-Type: %s; name=%q", att.MimeType, att.Filename),
		fmt.Sprintf("Content-Disposition: attachment; filename=%q", att.Filename),
		"Content-Transfer-Encoding: base64",
		"",
		base64.StdEncoding.EncodeToString(att.Content),
		"",
		"--"+mixedBoundary+"--",
	)
	return strings.Join(parts, "\r\n")
}

// encodeSubject RFC 2047-encodes the subject when it contains non-ASCII
// characters (the Spanish templates always do).
func encodeSubject(s string) string {
	return mime.QEncoding.Encode("UTF-8", s)
}

var _ Sender = (*GmailSender)(nil)
