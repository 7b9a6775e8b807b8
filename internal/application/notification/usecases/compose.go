package usecases

import (
	"fmt"

	"github.com/siteforge/siteforge/internal/domain/customer"
	"github.com/siteforge/siteforge/internal/domain/notification"
	"github.com/siteforge/siteforge/internal/shared/services/markdown"
)

// composer turns a template and its data into a multipart email.
type composer struct {
	template *notification.Template
	renderer *markdown.Renderer
}

func (c composer) compose(to *customer.Customer, data any) (Message, error) {
	subject, body, err := c.template.Render(data)
	if err != nil {
		return Message{}, err
	}
	html, err := c.renderer.ToHTML(body)
	if err != nil {
		return Message{}, fmt.Errorf("failed to render %s email: %w", c.template.Kind(), err)
	}
	return Message{
		To:      to.Email(),
		ToName:  to.Username(),
		Subject: subject,
		Text:    body,
		HTML:    html,
	}, nil
}
