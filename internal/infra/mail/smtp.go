package mail

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/avelir/registration-service/internal/core/port"
	"github.com/avelir/registration-service/internal/infra/config"
)

// SMTPMailer delivers messages over SMTP using gomail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer constructs a mailer from SMTP settings.
func NewSMTPMailer(cfg config.SMTPSettings) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Send delivers one message. Multi-line subjects are rejected outright; the
// renderer should have collapsed them already.
func (m *SMTPMailer) Send(ctx context.Context, msg port.Message) error {
	if strings.ContainsAny(msg.Subject, "\r\n") {
		return fmt.Errorf("refusing to send message with multi-line subject")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)
	if msg.HTMLBody != "" {
		gm.AddAlternative("text/html", msg.HTMLBody)
	}

	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

var _ port.Mailer = (*SMTPMailer)(nil)
