package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopkg.in/gomail.v2"

	"shopmart/models"
)

type sentMessage struct {
	To      string
	Subject string
}

func newEmailFixture(t *testing.T) (*EmailService, *memTemplateStore, *[]sentMessage) {
	t.Helper()
	store := newMemTemplateStore()
	sent := &[]sentMessage{}
	svc := &EmailService{
		templates: store,
		from:      "noreply@shopmart.test",
		locale:    "en",
		send: func(m *gomail.Message) error {
			*sent = append(*sent, sentMessage{
				To:      m.GetHeader("To")[0],
				Subject: m.GetHeader("Subject")[0],
			})
			return nil
		},
	}
	return svc, store, sent
}

func TestSendTemplate(t *testing.T) {
	t.Run("renders the requested locale", func(t *testing.T) {
		svc, store, sent := newEmailFixture(t)
		require.NoError(t, store.Create(&models.EmailTemplate{
			Name: "welcome", Locale: "de", Subject: "Hallo {{ name }}", HTMLBody: "<p>Hallo {{ name }}</p>",
		}))

		require.NoError(t, svc.SendTemplate("welcome", "de", "jo@example.com", map[string]string{"name": "Jo"}))
		require.Len(t, *sent, 1)
		assert.Equal(t, "Hallo Jo", (*sent)[0].Subject)
		assert.Equal(t, "jo@example.com", (*sent)[0].To)
	})

	t.Run("missing locale falls back to the default", func(t *testing.T) {
		svc, store, sent := newEmailFixture(t)
		require.NoError(t, store.Create(&models.EmailTemplate{
			Name: "welcome", Locale: "en", Subject: "Hello {{ name }}", HTMLBody: "<p>Hello</p>",
		}))

		require.NoError(t, svc.SendTemplate("welcome", "fr", "jo@example.com", map[string]string{"name": "Jo"}))
		require.Len(t, *sent, 1)
		assert.Equal(t, "Hello Jo", (*sent)[0].Subject)
	})

	t.Run("unknown name falls back to the generic template", func(t *testing.T) {
		svc, store, sent := newEmailFixture(t)
		require.NoError(t, store.Create(&models.EmailTemplate{
			Name: GenericTemplateName, Locale: "en", Subject: "{{ title }}", HTMLBody: "<p>{{ message }}</p>",
		}))

		err := svc.SendTemplate("never_registered", "en", "jo@example.com", map[string]string{
			"title": "Heads up", "message": "hi",
		})
		require.NoError(t, err)
		require.Len(t, *sent, 1)
		assert.Equal(t, "Heads up", (*sent)[0].Subject)
	})

	t.Run("errors when nothing resolves", func(t *testing.T) {
		svc, _, _ := newEmailFixture(t)
		err := svc.SendTemplate("welcome", "en", "jo@example.com", nil)
		assert.Error(t, err)
	})
}

func TestSendBulkTemplate(t *testing.T) {
	svc, store, _ := newEmailFixture(t)
	require.NoError(t, store.Create(&models.EmailTemplate{
		Name: "newsletter", Locale: "en", Subject: "News", HTMLBody: "<p>hi</p>",
	}))

	calls := 0
	svc.send = func(m *gomail.Message) error {
		calls++
		if m.GetHeader("To")[0] == "bad@example.com" {
			return errors.New("mailbox full")
		}
		return nil
	}

	sent, failed, err := svc.SendBulkTemplate("newsletter", "en",
		[]string{"a@example.com", "bad@example.com", "c@example.com"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Equal(t, []string{"bad@example.com"}, failed)
	assert.Equal(t, 3, calls)
}

func TestInitDefaultTemplates(t *testing.T) {
	svc, store, _ := newEmailFixture(t)

	created, err := svc.InitDefaultTemplates()
	require.NoError(t, err)
	assert.Equal(t, len(defaultTemplates), created)

	for _, name := range []string{"order_confirmation", "order_shipped", "two_factor_code", GenericTemplateName} {
		_, err := store.FindByNameAndLocale(name, "en")
		assert.NoError(t, err, name)
	}

	// Seeding again skips everything that already exists.
	created, err = svc.InitDefaultTemplates()
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestTemplateRendering(t *testing.T) {
	tmpl := &models.EmailTemplate{
		Subject:   "Order {{ order_number }}",
		HTMLBody:  "<p>Hi {{ customer_name }}, total {{total}}</p>",
		TextBody:  "Hi {{ customer_name }}",
		Variables: []string{"order_number", "customer_name", "total"},
	}

	t.Run("substitutes both spacing styles", func(t *testing.T) {
		rendered := tmpl.ProcessContent(map[string]string{
			"order_number":  "ORD-1",
			"customer_name": "Jo",
			"total":         "59.49",
		})
		assert.Equal(t, "Order ORD-1", rendered.Subject)
		assert.Equal(t, "<p>Hi Jo, total 59.49</p>", rendered.HTMLBody)
	})

	t.Run("unresolved placeholders stay verbatim", func(t *testing.T) {
		rendered := tmpl.ProcessContent(map[string]string{"customer_name": "Jo"})
		assert.Equal(t, "Order {{ order_number }}", rendered.Subject)
		assert.Equal(t, "<p>Hi Jo, total {{total}}</p>", rendered.HTMLBody)
	})

	t.Run("validate reports the missing names", func(t *testing.T) {
		missing := tmpl.ValidateVariables(map[string]string{"customer_name": "Jo"})
		assert.Equal(t, []string{"order_number", "total"}, missing)

		missing = tmpl.ValidateVariables(map[string]string{
			"order_number": "x", "customer_name": "y", "total": "z",
		})
		assert.Empty(t, missing)
	})
}
