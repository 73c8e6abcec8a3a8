package services

import (
	"errors"
	"fmt"
	"log"

	"shopmart/config"
	"shopmart/models"
	"shopmart/repositories"

	"gopkg.in/gomail.v2"
)

// LogMailer stands in for EmailService when SMTP is not configured. It logs
// instead of sending so order and notification flows keep working in dev.
type LogMailer struct{}

func (LogMailer) SendTemplate(name, locale, to string, variables map[string]string) error {
	log.Printf("email disabled: would send %q (%s) to %s", name, locale, to)
	return nil
}

// GenericTemplateName is the fallback used when no template is registered
// under a notification's type name.
const GenericTemplateName = "generic"

type TemplateStore interface {
	FindByNameAndLocale(name, locale string) (*models.EmailTemplate, error)
	Create(t *models.EmailTemplate) error
}

type EmailService struct {
	templates TemplateStore
	from      string
	locale    string

	// send is swapped out in tests; in production it dials SMTP.
	send func(m *gomail.Message) error
}

func NewEmailService(templates TemplateStore) (*EmailService, error) {
	cfg := config.AppConfig
	if cfg.SMTPHost == "" || cfg.SMTPUser == "" || cfg.SMTPPass == "" {
		return nil, fmt.Errorf("SMTP configuration missing")
	}

	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)

	return &EmailService{
		templates: templates,
		from:      cfg.SMTPFrom,
		locale:    cfg.DefaultLocale,
		send: func(m *gomail.Message) error {
			return dialer.DialAndSend(m)
		},
	}, nil
}

func (s *EmailService) Send(to, subject, htmlBody, textBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)

	if textBody != "" {
		m.SetBody("text/plain", textBody)
		m.AddAlternative("text/html", htmlBody)
	} else {
		m.SetBody("text/html", htmlBody)
	}

	if err := s.send(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendTemplate renders the named template and sends it. Lookup order:
// (name, locale), (name, default locale), then the generic fallback
// template. Unresolved placeholders stay verbatim in the rendered output.
func (s *EmailService) SendTemplate(name, locale, to string, variables map[string]string) error {
	tmpl, err := s.lookup(name, locale)
	if err != nil {
		return err
	}

	rendered := tmpl.ProcessContent(variables)
	return s.Send(to, rendered.Subject, rendered.HTMLBody, rendered.TextBody)
}

func (s *EmailService) lookup(name, locale string) (*models.EmailTemplate, error) {
	if locale == "" {
		locale = s.locale
	}

	tmpl, err := s.templates.FindByNameAndLocale(name, locale)
	if err == nil {
		return tmpl, nil
	}
	if !errors.Is(err, repositories.ErrTemplateNotFound) {
		return nil, err
	}

	if locale != s.locale {
		if tmpl, err := s.templates.FindByNameAndLocale(name, s.locale); err == nil {
			return tmpl, nil
		} else if !errors.Is(err, repositories.ErrTemplateNotFound) {
			return nil, err
		}
	}

	if name != GenericTemplateName {
		return s.lookup(GenericTemplateName, locale)
	}
	return nil, fmt.Errorf("no template registered for %q and no generic fallback: %w", name, repositories.ErrTemplateNotFound)
}

// SendBulkTemplate sends the same rendered template to every recipient in
// turn and reports the addresses that failed. Used for newsletter sends.
func (s *EmailService) SendBulkTemplate(name, locale string, recipients []string, variables map[string]string) (sent int, failed []string, err error) {
	tmpl, err := s.lookup(name, locale)
	if err != nil {
		return 0, nil, err
	}
	rendered := tmpl.ProcessContent(variables)

	for _, to := range recipients {
		if err := s.Send(to, rendered.Subject, rendered.HTMLBody, rendered.TextBody); err != nil {
			failed = append(failed, to)
			continue
		}
		sent++
	}
	return sent, failed, nil
}

// InitDefaultTemplates seeds the transactional templates the order and
// notification flows rely on, skipping any that already exist. Returns the
// number created.
func (s *EmailService) InitDefaultTemplates() (int, error) {
	return SeedDefaultTemplates(s.templates)
}

// SeedDefaultTemplates is the store-only variant used by the tasks CLI,
// where SMTP may not be configured.
func SeedDefaultTemplates(store TemplateStore) (int, error) {
	created := 0
	for i := range defaultTemplates {
		tmpl := defaultTemplates[i]
		_, err := store.FindByNameAndLocale(tmpl.Name, tmpl.Locale)
		if err == nil {
			continue
		}
		if !errors.Is(err, repositories.ErrTemplateNotFound) {
			return created, err
		}
		if err := store.Create(&tmpl); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

const emailWrapper = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
  <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 30px; border-radius: 10px;">
    <div style="text-align: center; margin-bottom: 30px;">
      <div style="font-size: 24px; font-weight: bold; color: #2563eb;">Shopmart</div>
    </div>
    %s
    <div style="text-align: center; margin-top: 30px; color: #666; font-size: 12px;">
      <p>This is an automated email. Please do not reply.</p>
    </div>
  </div>
</body>
</html>`

func wrapBody(inner string) string {
	return fmt.Sprintf(emailWrapper, inner)
}

var defaultTemplates = []models.EmailTemplate{
	{
		Name:      "order_confirmation",
		Locale:    "en",
		Subject:   "Order Confirmation {{ order_number }}",
		Preheader: "Thanks for your order, {{ customer_name }}",
		HTMLBody: wrapBody(`<h2 style="color: #333;">Thank you for your order!</h2>
    <p>Hi {{ customer_name }},</p>
    <div style="background-color: #eff6ff; padding: 20px; margin: 20px 0; border-radius: 8px;">
      <p><strong>Order Number:</strong> {{ order_number }}</p>
      <p><strong>Total:</strong> {{ total }}</p>
    </div>
    <p>Your order has been received and is being processed.</p>`),
		TextBody:  "Hi {{ customer_name }},\n\nYour order {{ order_number }} (total {{ total }}) has been received.",
		Variables: []string{"customer_name", "order_number", "total"},
	},
	{
		Name:    "order_status_changed",
		Locale:  "en",
		Subject: "Order {{ order_number }} is now {{ new_status }}",
		HTMLBody: wrapBody(`<p>Hi {{ customer_name }},</p>
    <p>Your order <strong>{{ order_number }}</strong> moved from {{ old_status }} to <strong>{{ new_status }}</strong>.</p>`),
		TextBody:  "Hi {{ customer_name }},\n\nOrder {{ order_number }} moved from {{ old_status }} to {{ new_status }}.",
		Variables: []string{"customer_name", "order_number", "old_status", "new_status"},
	},
	{
		Name:    "order_cancelled",
		Locale:  "en",
		Subject: "Order {{ order_number }} cancelled",
		HTMLBody: wrapBody(`<p>Hi {{ customer_name }},</p>
    <p>Your order <strong>{{ order_number }}</strong> has been cancelled.</p>
    <p>{{ reason }}</p>`),
		TextBody:  "Hi {{ customer_name }},\n\nOrder {{ order_number }} has been cancelled. {{ reason }}",
		Variables: []string{"customer_name", "order_number", "reason"},
	},
	{
		Name:    "order_shipped",
		Locale:  "en",
		Subject: "Order {{ order_number }} has shipped",
		HTMLBody: wrapBody(`<p>Hi {{ customer_name }},</p>
    <p>Your order <strong>{{ order_number }}</strong> is on its way.</p>
    <p><strong>Tracking number:</strong> {{ tracking_number }}</p>`),
		TextBody:  "Hi {{ customer_name }},\n\nOrder {{ order_number }} shipped. Tracking: {{ tracking_number }}.",
		Variables: []string{"customer_name", "order_number", "tracking_number"},
	},
	{
		Name:    "order_refunded",
		Locale:  "en",
		Subject: "Refund for order {{ order_number }}",
		HTMLBody: wrapBody(`<p>Hi {{ customer_name }},</p>
    <p>We refunded <strong>{{ amount }}</strong> for order {{ order_number }}.</p>`),
		TextBody:  "Hi {{ customer_name }},\n\nWe refunded {{ amount }} for order {{ order_number }}.",
		Variables: []string{"customer_name", "order_number", "amount"},
	},
	{
		Name:    "two_factor_code",
		Locale:  "en",
		Subject: "Your verification code",
		HTMLBody: wrapBody(`<p>Your verification code:</p>
    <div style="background-color: #eff6ff; border: 2px dashed #2563eb; padding: 20px; text-align: center; margin: 30px 0; border-radius: 8px;">
      <div style="font-size: 36px; font-weight: bold; color: #2563eb; letter-spacing: 8px;">{{ code }}</div>
    </div>
    <p><strong>This code will expire in 5 minutes.</strong></p>`),
		TextBody:  "Your verification code is {{ code }}. It expires in 5 minutes.",
		Variables: []string{"code"},
	},
	{
		Name:    GenericTemplateName,
		Locale:  "en",
		Subject: "{{ title }}",
		HTMLBody: wrapBody(`<h2 style="color: #333;">{{ title }}</h2>
    <p>{{ message }}</p>`),
		TextBody:  "{{ title }}\n\n{{ message }}",
		Variables: []string{"title", "message"},
	},
}
