package mail

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/portalnegocios/intake/internal/config"
	"github.com/portalnegocios/intake/internal/logger"
	"github.com/portalnegocios/intake/internal/model"
)

type fakeClient struct {
	dialErr error
	sendErr error

	dials  int
	sends  int
	closes int
}

func (f *fakeClient) DialWithContext(ctx context.Context) error {
	f.dials++
	return f.dialErr
}

func (f *fakeClient) Send(msgs ...*gomail.Msg) error {
	f.sends += len(msgs)
	return f.sendErr
}

func (f *fakeClient) Close() error {
	f.closes++
	return nil
}

func testSMTPSender(t *testing.T, client *fakeClient) *SMTPSender {
	t.Helper()

	s, err := NewSMTPSender(
		config.SMTPConfig{Host: "smtp.test", Port: 465},
		config.MailConfig{},
		logger.New("disabled", "json"),
	)
	if err != nil {
		t.Fatalf("NewSMTPSender: %v", err)
	}
	s.newClient = func() (smtpClient, error) { return client, nil }
	return s
}

func testMessage() model.EmailMessage {
	return model.EmailMessage{
		To:       "leads@portalnegocios.test",
		From:     "info@portalnegocios.test",
		FromName: "Portal de Negocios",
		ReplyTo:  "ana@x.com",
		Subject:  "🔔 Nueva Consulta - Ana Gomez",
		HTMLBody: "<p>hola</p>",
		TextBody: "hola",
	}
}

func TestSMTPSender_LazySessionIsReused(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	s := testSMTPSender(t, client)

	if client.dials != 0 {
		t.Fatal("no dial should happen before the first delivery")
	}

	res := s.Deliver(context.Background(), testMessage())
	if !res.Success {
		t.Fatalf("first deliver failed: %v", res.Err)
	}
	if res.MessageID == "" || !strings.Contains(res.MessageID, "@smtp.test") {
		t.Errorf("unexpected message id %q", res.MessageID)
	}

	res = s.Deliver(context.Background(), testMessage())
	if !res.Success {
		t.Fatalf("second deliver failed: %v", res.Err)
	}

	if client.dials != 1 {
		t.Errorf("expected one dial for two deliveries, got %d", client.dials)
	}
	if client.sends != 2 {
		t.Errorf("expected two sends, got %d", client.sends)
	}
}

func TestSMTPSender_DialFailureIsUnavailable(t *testing.T) {
	t.Parallel()

	client := &fakeClient{dialErr: errors.New("connection refused")}
	s := testSMTPSender(t, client)

	res := s.Deliver(context.Background(), testMessage())

	if res.Success {
		t.Fatal("deliver should fail when dial fails")
	}
	if res.ErrorKind != model.ErrorKindUnavailable {
		t.Errorf("expected transport_unavailable, got %s", res.ErrorKind)
	}
	if client.sends != 0 {
		t.Error("nothing should be sent over a dead session")
	}
}

func TestSMTPSender_SendFailureInvalidatesSession(t *testing.T) {
	t.Parallel()

	client := &fakeClient{sendErr: errors.New("554 transaction failed")}
	s := testSMTPSender(t, client)

	res := s.Deliver(context.Background(), testMessage())
	if res.Success || res.ErrorKind != model.ErrorKindSendFailed {
		t.Fatalf("expected send_failed, got %+v", res)
	}
	if client.closes != 1 {
		t.Errorf("failed send should close the session, closes=%d", client.closes)
	}

	// One attempt per Deliver: the failing call must not have retried.
	if client.sends != 1 {
		t.Errorf("expected exactly one send attempt, got %d", client.sends)
	}

	// Next delivery starts a fresh session.
	client.sendErr = nil
	res = s.Deliver(context.Background(), testMessage())
	if !res.Success {
		t.Fatalf("recovery deliver failed: %v", res.Err)
	}
	if client.dials != 2 {
		t.Errorf("expected a re-dial after invalidation, dials=%d", client.dials)
	}
}

// slowDialClient hangs in DialWithContext until the delivery deadline fires.
type slowDialClient struct {
	fakeClient
}

func (f *slowDialClient) DialWithContext(ctx context.Context) error {
	f.dials++
	<-ctx.Done()
	return ctx.Err()
}

func TestSMTPSender_DialDeadlineIsTimeout(t *testing.T) {
	t.Parallel()

	client := &slowDialClient{}
	s, err := NewSMTPSender(
		config.SMTPConfig{Host: "smtp.test", Port: 465},
		config.MailConfig{DeliverTimeout: 5 * time.Millisecond},
		logger.New("disabled", "json"),
	)
	if err != nil {
		t.Fatalf("NewSMTPSender: %v", err)
	}
	s.newClient = func() (smtpClient, error) { return client, nil }

	res := s.Deliver(context.Background(), testMessage())

	if res.Success {
		t.Fatal("deliver should fail when the dial never completes")
	}
	if res.ErrorKind != model.ErrorKindTimeout {
		t.Errorf("expected transport_timeout, got %s", res.ErrorKind)
	}
	if client.sends != 0 {
		t.Error("nothing should be sent when the dial timed out")
	}
}

// slowSendClient dials fine but stalls in Send past the delivery deadline.
type slowSendClient struct {
	fakeClient
	stall time.Duration
}

func (f *slowSendClient) Send(msgs ...*gomail.Msg) error {
	f.sends += len(msgs)
	time.Sleep(f.stall)
	return errors.New("write: broken pipe")
}

func TestSMTPSender_SendDeadlineIsTimeout(t *testing.T) {
	t.Parallel()

	client := &slowSendClient{stall: 30 * time.Millisecond}
	s, err := NewSMTPSender(
		config.SMTPConfig{Host: "smtp.test", Port: 465},
		config.MailConfig{DeliverTimeout: 5 * time.Millisecond},
		logger.New("disabled", "json"),
	)
	if err != nil {
		t.Fatalf("NewSMTPSender: %v", err)
	}
	s.newClient = func() (smtpClient, error) { return client, nil }

	res := s.Deliver(context.Background(), testMessage())

	if res.Success {
		t.Fatal("deliver should fail when the send outlives the deadline")
	}
	if res.ErrorKind != model.ErrorKindTimeout {
		t.Errorf("expected transport_timeout, got %s", res.ErrorKind)
	}
	if client.closes != 1 {
		t.Errorf("timed-out send should drop the session, closes=%d", client.closes)
	}
}

func TestSMTPSender_Verify(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	s := testSMTPSender(t, client)

	if err := s.Verify(context.Background()); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if client.dials != 1 {
		t.Errorf("verify should dial once, got %d", client.dials)
	}

	// The verified session is reused by the next delivery.
	res := s.Deliver(context.Background(), testMessage())
	if !res.Success {
		t.Fatalf("deliver failed: %v", res.Err)
	}
	if client.dials != 1 {
		t.Errorf("deliver after verify should reuse the session, dials=%d", client.dials)
	}
}

func TestSMTPSender_RequiresHost(t *testing.T) {
	t.Parallel()

	_, err := NewSMTPSender(config.SMTPConfig{}, config.MailConfig{}, logger.New("disabled", "json"))
	if err == nil {
		t.Fatal("expected an error for missing host")
	}
}

func TestBuildMessage_WithAttachment(t *testing.T) {
	t.Parallel()

	msg := testMessage()
	msg.Attachment = &model.Attachment{
		Filename: "balance.pdf",
		MimeType: "application/pdf",
		Size:     4,
		Content:  []byte("%PDF"),
	}

	m, id, err := buildMessage(msg, "smtp.test")
	if err != nil {
		t.Fatalf("buildMessage: %v", err)
	}
	if m == nil {
		t.Fatal("nil message")
	}
	if !strings.HasSuffix(id, "@smtp.test") {
		t.Errorf("message id %q should be scoped to the host", id)
	}
}
