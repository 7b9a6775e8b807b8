// Package notification holds the email templates sent to customers.
package notification

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Kind names a notification.
type Kind string

const (
	KindRenewalPayment Kind = "renewal_payment"
	KindPaymentReceipt Kind = "payment_receipt"
)

func (k Kind) IsValid() bool {
	return k == KindRenewalPayment || k == KindPaymentReceipt
}

// Template is a subject line and a Markdown body, both Go templates.
type Template struct {
	kind    Kind
	subject *template.Template
	body    *template.Template
}

func NewTemplate(kind Kind, subject, body string) (*Template, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid notification kind: %s", kind)
	}
	if strings.TrimSpace(subject) == "" {
		return nil, fmt.Errorf("subject is required")
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("body is required")
	}

	subj, err := template.New(string(kind) + ".subject").Option("missingkey=error").Parse(subject)
	if err != nil {
		return nil, fmt.Errorf("failed to parse subject template: %w", err)
	}
	b, err := template.New(string(kind) + ".body").Option("missingkey=error").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse body template: %w", err)
	}
	return &Template{kind: kind, subject: subj, body: b}, nil
}

func (t *Template) Kind() Kind { return t.kind }

// Render executes the template. The body is returned as Markdown.
func (t *Template) Render(data any) (subject, body string, err error) {
	var sb, bb bytes.Buffer
	if err := t.subject.Execute(&sb, data); err != nil {
		return "", "", fmt.Errorf("failed to render subject: %w", err)
	}
	if err := t.body.Execute(&bb, data); err != nil {
		return "", "", fmt.Errorf("failed to render body: %w", err)
	}
	return strings.TrimSpace(sb.String()), strings.TrimSpace(bb.String()), nil
}

const renewalPaymentBody = `Hi {{.CustomerName}},

Your membership is up for renewal. A new payment of **{{.Total}}** has been
created with reference {{.Reference}}.

[Pay now]({{.PaymentURL}})

If the link does not work, copy this address into your browser:
{{.PaymentURL}}
`

const paymentReceiptBody = `Hi {{.CustomerName}},

We received your payment of **{{.Total}}**. Thank you!

- Reference: {{.Reference}}
- Invoice: {{.InvoiceNumber}}
{{if .InvoiceURL}}
[View your invoice]({{.InvoiceURL}})
{{end}}`

// Defaults returns the built-in templates keyed by kind.
func Defaults() map[Kind]*Template {
	return map[Kind]*Template{
		KindRenewalPayment: mustTemplate(KindRenewalPayment, "Your renewal payment of {{.Total}} is ready", renewalPaymentBody),
		KindPaymentReceipt: mustTemplate(KindPaymentReceipt, "Payment received: {{.Reference}}", paymentReceiptBody),
	}
}

func mustTemplate(kind Kind, subject, body string) *Template {
	t, err := NewTemplate(kind, subject, body)
	if err != nil {
		panic(err)
	}
	return t
}
