// Package compose builds the two outbound emails of the intake pipeline:
// the business-facing notification and the client-facing confirmation.
//
// Bodies are assembled with fmt templates in code. Every user-supplied value
// is HTML-escaped before embedding; the form is public and its fields are
// attacker-controlled. Composition is pure: for a fixed clock the same
// request yields byte-identical bodies.
package compose

import (
	"fmt"
	"html"
	"strings"
	"time"
	_ "time/tzdata" // stamp dates in the configured zone even on bare containers

	"github.com/portalnegocios/intake/internal/config"
	"github.com/portalnegocios/intake/internal/model"
)

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// Composer builds EmailMessages from consultation data.
type Composer struct {
	cfg config.MailConfig
	loc *time.Location
	now func() time.Time
}

// New creates a Composer. The now function is injected so notification
// bodies are deterministic under test; pass time.Now in production. An
// unknown timezone falls back to UTC.
func New(cfg config.MailConfig, now func() time.Time) *Composer {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return &Composer{cfg: cfg, loc: loc, now: now}
}

// Notification builds the mandatory business-facing email. The recipient is
// the configured business inbox and Reply-To is the requester, so the inbox
// can answer the lead directly.
func (c *Composer) Notification(req model.ConsultationRequest) model.EmailMessage {
	date := c.formatDate(c.now())

	return model.EmailMessage{
		To:         c.cfg.Recipient,
		From:       c.cfg.FromAddress,
		FromName:   c.cfg.FromName,
		ReplyTo:    req.Email,
		Subject:    sanitizeSubject(fmt.Sprintf("🔔 Nueva Consulta - %s", req.FullName())),
		HTMLBody:   c.notificationHTML(req, date),
		TextBody:   c.notificationText(req, date),
		Attachment: req.Attachment,
	}
}

// Confirmation builds the best-effort courtesy email sent back to the
// requester. No free text from the form is echoed except the name.
func (c *Composer) Confirmation(clientEmail, clientName string) model.EmailMessage {
	return model.EmailMessage{
		To:       clientEmail,
		From:     c.cfg.FromAddress,
		FromName: c.cfg.FromName,
		Subject:  sanitizeSubject(fmt.Sprintf("✅ Consulta recibida - %s", c.cfg.AppName)),
		HTMLBody: c.confirmationHTML(clientName),
		TextBody: c.confirmationText(clientName),
	}
}

func (c *Composer) notificationHTML(req model.ConsultationRequest, date string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;">
<div style="background:#123142;color:#ffffff;padding:20px;text-align:center;">
<h1 style="margin:0;">🏢 %s</h1>
<p style="margin:8px 0 0;">Nueva consulta recibida</p>
<small>%s</small>
</div>
<div style="background:#ffffff;padding:20px;border:1px solid #ddd;">
<p><strong>Nombre Completo:</strong> %s</p>
<p><strong>Email:</strong> <a href="mailto:%s">%s</a></p>
`,
		html.EscapeString(c.cfg.AppName),
		html.EscapeString(date),
		html.EscapeString(req.FullName()),
		html.EscapeString(req.Email),
		html.EscapeString(req.Email),
	))

	if req.Phone != "" {
		b.WriteString(fmt.Sprintf(`<p><strong>Teléfono:</strong> <a href="tel:%s">%s</a></p>
`,
			html.EscapeString(req.Phone), html.EscapeString(req.Phone)))
	}

	b.WriteString(fmt.Sprintf(`<div style="margin-top:16px;">
<p><strong>📝 Mensaje / Consulta:</strong></p>
<p>%s</p>
</div>
`, html.EscapeString(req.Message)))

	if req.HasAdditionalFields && req.AdditionalData != "" {
		b.WriteString(`<div style="margin-top:16px;border-top:1px solid #ddd;padding-top:12px;">
<h3 style="margin:0 0 8px;">📋 Información Adicional</h3>
`)
		if req.CUIT != "" {
			b.WriteString(fmt.Sprintf("<p><strong>CUIT:</strong> %s</p>\n", html.EscapeString(req.CUIT)))
		}
		b.WriteString(fmt.Sprintf("<p>%s</p>\n</div>\n", html.EscapeString(req.AdditionalData)))
	}

	if req.Attachment != nil {
		b.WriteString(fmt.Sprintf(`<p style="margin-top:16px;"><strong>📎 Documento:</strong> %s (ver archivo adjunto)</p>
`, html.EscapeString(req.Attachment.Filename)))
	}

	b.WriteString(fmt.Sprintf(`</div>
<footer style="padding:16px;background:#f9f9fc;font-size:12px;color:#666;">
<p style="margin:0;"><strong>%s</strong> - Servicios Financieros</p>
<p style="margin:4px 0 0;">%s</p>
<p style="margin:4px 0 0;">En colaboración con %s</p>
<p style="margin:8px 0 0;font-size:10px;">Este email fue enviado automáticamente desde el formulario de consultas.</p>
</footer>
</div>`,
		html.EscapeString(c.cfg.AppName),
		html.EscapeString(c.cfg.Tagline),
		html.EscapeString(c.cfg.Partner),
	))

	return b.String()
}

func (c *Composer) notificationText(req model.ConsultationRequest, date string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("NUEVA CONSULTA - %s\n", strings.ToUpper(c.cfg.AppName)))
	b.WriteString("=====================================\n\n")
	b.WriteString(fmt.Sprintf("Fecha: %s\n\n", date))
	b.WriteString("DATOS DEL CLIENTE:\n")
	b.WriteString(fmt.Sprintf("Nombre: %s\n", req.FullName()))
	b.WriteString(fmt.Sprintf("Email: %s\n", req.Email))
	if req.Phone != "" {
		b.WriteString(fmt.Sprintf("Teléfono: %s\n", req.Phone))
	}
	b.WriteString(fmt.Sprintf("\nCONSULTA:\n%s\n\n", req.Message))

	if req.HasAdditionalFields && req.AdditionalData != "" {
		if req.CUIT != "" {
			b.WriteString(fmt.Sprintf("CUIT: %s\n", req.CUIT))
		}
		b.WriteString(fmt.Sprintf("INFORMACIÓN ADICIONAL:\n%s\n\n", req.AdditionalData))
	}

	if req.Attachment != nil {
		b.WriteString(fmt.Sprintf("DOCUMENTO: %s (ver archivo adjunto)\n\n", req.Attachment.Filename))
	}

	b.WriteString(fmt.Sprintf("\n--\n%s - Servicios Financieros\n%s", c.cfg.AppName, c.cfg.Tagline))

	return b.String()
}

func (c *Composer) confirmationHTML(clientName string) string {
	name := html.EscapeString(clientName)

	return fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;padding:20px;">
<h2>¡Gracias por tu consulta!</h2>
<p>Hola <strong>%s</strong>,</p>
<p>Recibimos tu consulta exitosamente y nuestro equipo se pondrá en contacto contigo a la brevedad.</p>
<div style="background:#f4f5f7;padding:16px;border-radius:8px;">
<p style="margin:0 0 8px;"><strong>¿Qué sigue?</strong></p>
<ul style="margin:0;padding-left:20px;">
<li>📋 Revisaremos tu consulta en detalle</li>
<li>📞 Te contactaremos en las próximas 24-48 horas</li>
<li>💡 Te presentaremos las mejores opciones disponibles</li>
</ul>
</div>
<p style="text-align:center;font-style:italic;">"%s"</p>
<footer style="font-size:12px;color:#666;">
<p><strong>%s</strong><br>
Servicios Financieros<br>
En colaboración con %s</p>
</footer>
</div>`,
		name,
		html.EscapeString(c.cfg.Tagline),
		html.EscapeString(c.cfg.AppName),
		html.EscapeString(c.cfg.Partner),
	)
}

func (c *Composer) confirmationText(clientName string) string {
	return fmt.Sprintf(`Hola %s,

Recibimos tu consulta exitosamente y nuestro equipo se pondrá en contacto contigo a la brevedad.

¿Qué sigue?
- Revisaremos tu consulta en detalle
- Te contactaremos en las próximas 24-48 horas
- Te presentaremos las mejores opciones disponibles

"%s"

%s - En colaboración con %s`,
		clientName, c.cfg.Tagline, c.cfg.AppName, c.cfg.Partner)
}

// formatDate renders a timestamp the way the business inbox expects,
// e.g. "28 de agosto de 2026, 14:05".
func (c *Composer) formatDate(t time.Time) string {
	t = t.In(c.loc)
	return fmt.Sprintf("%d de %s de %d, %02d:%02d",
		t.Day(), spanishMonths[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

// sanitizeSubject strips CR/LF so form input can never inject mail headers.
func sanitizeSubject(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}
