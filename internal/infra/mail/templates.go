package mail

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/avelir/registration-service/internal/core/domain"
	"github.com/avelir/registration-service/internal/core/port"
)

// TemplateData is the context available to every mail template.
type TemplateData struct {
	Username       string
	SiteName       string
	ActivationURL  string
	ActivationKey  string
	ExpirationDays int
}

const (
	defaultActivationSubject = `Activate your {{.SiteName}} account`

	defaultActivationBody = `Hello {{.Username}},

Thank you for signing up at {{.SiteName}}. To activate your account,
visit the link below within {{.ExpirationDays}} days:

{{.ActivationURL}}

If you did not request this account, you can ignore this message and
the registration will expire on its own.
`

	defaultWelcomeSubject = `Welcome to {{.SiteName}}`

	defaultWelcomeBody = `Hello {{.Username}},

Your account at {{.SiteName}} is ready to use.
`
)

// Templates renders workflow emails. Subjects are forced onto a single line
// after rendering so template data can never smuggle extra SMTP headers.
type Templates struct {
	activationSubject *template.Template
	activationBody    *template.Template
	welcomeSubject    *template.Template
	welcomeBody       *template.Template
}

// DefaultTemplates returns the built-in template set.
func DefaultTemplates() *Templates {
	t, err := NewTemplates(defaultActivationSubject, defaultActivationBody, defaultWelcomeSubject, defaultWelcomeBody)
	if err != nil {
		panic(fmt.Sprintf("mail: built-in templates failed to parse: %v", err))
	}
	return t
}

// NewTemplates parses a custom template set.
func NewTemplates(activationSubject, activationBody, welcomeSubject, welcomeBody string) (*Templates, error) {
	parse := func(name, text string) (*template.Template, error) {
		tpl, err := template.New(name).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		return tpl, nil
	}

	var t Templates
	var err error
	if t.activationSubject, err = parse("activation_subject", activationSubject); err != nil {
		return nil, err
	}
	if t.activationBody, err = parse("activation_body", activationBody); err != nil {
		return nil, err
	}
	if t.welcomeSubject, err = parse("welcome_subject", welcomeSubject); err != nil {
		return nil, err
	}
	if t.welcomeBody, err = parse("welcome_body", welcomeBody); err != nil {
		return nil, err
	}
	return &t, nil
}

// RenderActivation produces the activation message for an account.
func (t *Templates) RenderActivation(account domain.Account, data TemplateData) (port.Message, error) {
	subject, err := render(t.activationSubject, data)
	if err != nil {
		return port.Message{}, err
	}
	body, err := render(t.activationBody, data)
	if err != nil {
		return port.Message{}, err
	}
	return port.Message{
		To:      account.Email,
		Subject: CollapseSubject(subject),
		Body:    body,
	}, nil
}

// RenderWelcome produces the welcome message for an account.
func (t *Templates) RenderWelcome(account domain.Account, data TemplateData) (port.Message, error) {
	subject, err := render(t.welcomeSubject, data)
	if err != nil {
		return port.Message{}, err
	}
	body, err := render(t.welcomeBody, data)
	if err != nil {
		return port.Message{}, err
	}
	return port.Message{
		To:      account.Email,
		Subject: CollapseSubject(subject),
		Body:    body,
	}, nil
}

func render(tpl *template.Template, data TemplateData) (string, error) {
	var sb strings.Builder
	if err := tpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tpl.Name(), err)
	}
	return sb.String(), nil
}

// CollapseSubject joins a rendered subject onto one line. Email subjects are
// headers; a newline in one terminates the header and injects whatever
// follows.
func CollapseSubject(subject string) string {
	subject = strings.ReplaceAll(subject, "\r\n", " ")
	subject = strings.ReplaceAll(subject, "\r", " ")
	subject = strings.ReplaceAll(subject, "\n", " ")
	return strings.TrimSpace(strings.Join(strings.Fields(subject), " "))
}

// expirationDays converts a window to whole days for display, rounding up so
// the email never promises more time than the service grants.
func expirationDays(window time.Duration) int {
	days := int(window / (24 * time.Hour))
	if window%(24*time.Hour) != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}
