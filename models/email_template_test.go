package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyUpdate(t *testing.T) {
	base := func() EmailTemplate {
		return EmailTemplate{
			ID:        1,
			Name:      "order_confirmation",
			Locale:    "en",
			Subject:   "Order {{ order_number }}",
			HTMLBody:  "<p>Thanks</p>",
			TextBody:  "Thanks",
			Variables: []string{"order_number"},
			Version:   1,
			IsActive:  true,
		}
	}

	t.Run("version increments on every update", func(t *testing.T) {
		tmpl := base()
		tmpl.ApplyUpdate(UpdateTemplateRequest{Subject: "New subject"})
		assert.Equal(t, 2, tmpl.Version)
		tmpl.ApplyUpdate(UpdateTemplateRequest{TextBody: "Cheers"})
		assert.Equal(t, 3, tmpl.Version)
	})

	t.Run("empty fields keep their current values", func(t *testing.T) {
		tmpl := base()
		tmpl.ApplyUpdate(UpdateTemplateRequest{Subject: "New subject"})
		assert.Equal(t, "New subject", tmpl.Subject)
		assert.Equal(t, "<p>Thanks</p>", tmpl.HTMLBody)
		assert.Equal(t, "Thanks", tmpl.TextBody)
		assert.Equal(t, []string{"order_number"}, tmpl.Variables)
		assert.True(t, tmpl.IsActive)
	})

	t.Run("is_active only changes when the pointer is set", func(t *testing.T) {
		tmpl := base()
		tmpl.ApplyUpdate(UpdateTemplateRequest{Subject: "x"})
		assert.True(t, tmpl.IsActive)

		inactive := false
		tmpl.ApplyUpdate(UpdateTemplateRequest{IsActive: &inactive})
		assert.False(t, tmpl.IsActive)
	})
}
