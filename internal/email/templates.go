package email

import (
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Template IDs rendered by the background workers.
const (
	TemplateInquiryNotify = "inquiry_notify"
	TemplateInquiryDigest = "inquiry_digest"
)

// Template is a subject and a body rendered with text/template.
type Template struct {
	ID      string
	Subject string
	Body    string
}

const inquiryBlock = `{{define "inquiry"}}From:    {{.Name}} <{{.Email}}>
{{- if .Phone}}
Phone:   {{.Phone}}{{end}}
{{- if .PropertyID}}
Property: #{{deref .PropertyID}}{{end}}
Received: {{rfc1123 .CreatedAt}}

{{.Message}}
{{end}}`

var defaultTemplates = map[string]Template{
	TemplateInquiryNotify: {
		ID:      TemplateInquiryNotify,
		Subject: "New inquiry from {{.Name}}",
		Body:    `{{template "inquiry" .}}`,
	},
	TemplateInquiryDigest: {
		ID:      TemplateInquiryDigest,
		Subject: "Inquiry digest: {{len .Inquiries}} new",
		Body: `{{len .Inquiries}} inquiries since {{rfc1123 .Since}}
{{range .Inquiries}}
----
{{template "inquiry" .}}{{end}}`,
	},
}

var funcs = template.FuncMap{
	"rfc1123": func(t time.Time) string { return t.UTC().Format(time.RFC1123) },
	"deref":   func(v *int64) int64 { return *v },
}

// Render executes the template with id against data and returns the subject
// and a CRLF body.
func Render(id string, data any) (subject, body string, err error) {
	tpl, ok := defaultTemplates[id]
	if !ok {
		return "", "", fmt.Errorf("template not found: %s", id)
	}

	subj, err := template.New(id + ".subject").Parse(tpl.Subject)
	if err != nil {
		return "", "", fmt.Errorf("error parsing subject of %s: %w", id, err)
	}
	b, err := template.New(id + ".body").Funcs(funcs).Parse(inquiryBlock + tpl.Body)
	if err != nil {
		return "", "", fmt.Errorf("error parsing body of %s: %w", id, err)
	}

	var sb strings.Builder
	if err := subj.Execute(&sb, data); err != nil {
		return "", "", fmt.Errorf("error rendering subject of %s: %w", id, err)
	}
	subject = sb.String()
	sb.Reset()
	if err := b.Execute(&sb, data); err != nil {
		return "", "", fmt.Errorf("error rendering body of %s: %w", id, err)
	}
	body = strings.ReplaceAll(sb.String(), "\n", "\r\n")
	return subject, body, nil
}
