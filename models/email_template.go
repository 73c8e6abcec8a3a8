package models

import (
	"strings"
	"time"
)

type EmailTemplate struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Locale    string    `json:"locale"`
	Subject   string    `json:"subject"`
	Preheader string    `json:"preheader,omitempty"`
	HTMLBody  string    `json:"html_body"`
	TextBody  string    `json:"text_body"`
	Variables []string  `json:"variables"`
	Version   int       `json:"version"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ApplyUpdate merges the non-empty request fields into the template and bumps
// the version. The bump is a lightweight change audit, not optimistic locking.
func (t *EmailTemplate) ApplyUpdate(req UpdateTemplateRequest) {
	if req.Subject != "" {
		t.Subject = req.Subject
	}
	if req.Preheader != "" {
		t.Preheader = req.Preheader
	}
	if req.HTMLBody != "" {
		t.HTMLBody = req.HTMLBody
	}
	if req.TextBody != "" {
		t.TextBody = req.TextBody
	}
	if req.Variables != nil {
		t.Variables = req.Variables
	}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}
	t.Version++
}

type RenderedEmail struct {
	Subject   string
	Preheader string
	HTMLBody  string
	TextBody  string
}

// ProcessContent substitutes literal "{{ name }}" placeholders in the subject,
// preheader and both bodies. Placeholders with no matching variable are left
// verbatim in the output.
func (t *EmailTemplate) ProcessContent(variables map[string]string) RenderedEmail {
	return RenderedEmail{
		Subject:   substitute(t.Subject, variables),
		Preheader: substitute(t.Preheader, variables),
		HTMLBody:  substitute(t.HTMLBody, variables),
		TextBody:  substitute(t.TextBody, variables),
	}
}

func substitute(content string, variables map[string]string) string {
	for name, value := range variables {
		content = strings.ReplaceAll(content, "{{ "+name+" }}", value)
		content = strings.ReplaceAll(content, "{{"+name+"}}", value)
	}
	return content
}

// ValidateVariables returns the declared variable names absent from the
// supplied map. Advisory only; sending proceeds regardless.
func (t *EmailTemplate) ValidateVariables(variables map[string]string) []string {
	missing := []string{}
	for _, name := range t.Variables {
		if _, ok := variables[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
