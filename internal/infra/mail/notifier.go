package mail

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/avelir/registration-service/internal/core/domain"
	"github.com/avelir/registration-service/internal/core/port"
)

// Notifier renders workflow emails and hands them to a Mailer for delivery.
type Notifier struct {
	mailer    port.Mailer
	templates *Templates
	siteName  string
	baseURL   string
}

// NewNotifier constructs a Notifier. templates may be nil to use the
// built-in set.
func NewNotifier(mailer port.Mailer, templates *Templates, siteName, baseURL string) *Notifier {
	if templates == nil {
		templates = DefaultTemplates()
	}
	return &Notifier{
		mailer:    mailer,
		templates: templates,
		siteName:  siteName,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// SendActivationEmail renders and delivers the activation instructions.
func (n *Notifier) SendActivationEmail(ctx context.Context, account domain.Account, activationKey string, window time.Duration) error {
	data := TemplateData{
		Username:       account.Username,
		SiteName:       n.siteName,
		ActivationKey:  activationKey,
		ActivationURL:  n.activationURL(activationKey),
		ExpirationDays: expirationDays(window),
	}
	msg, err := n.templates.RenderActivation(account, data)
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, msg)
}

// SendWelcomeEmail renders and delivers the one-step welcome message.
func (n *Notifier) SendWelcomeEmail(ctx context.Context, account domain.Account) error {
	data := TemplateData{
		Username: account.Username,
		SiteName: n.siteName,
	}
	msg, err := n.templates.RenderWelcome(account, data)
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, msg)
}

func (n *Notifier) activationURL(key string) string {
	return fmt.Sprintf("%s/api/v1/activate/%s", n.baseURL, url.PathEscape(key))
}

var _ port.Notifier = (*Notifier)(nil)
