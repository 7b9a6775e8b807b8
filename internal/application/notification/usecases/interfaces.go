package usecases

import (
	"context"

	"github.com/siteforge/siteforge/internal/application/payment/dto"
	"github.com/siteforge/siteforge/internal/domain/payment"
)

// Message is a rendered email ready to be sent.
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

type EmailSender interface {
	Send(ctx context.Context, msg Message) error
}

type InvoiceSettingsProvider interface {
	InvoiceSettings(ctx context.Context) payment.InvoiceSettings
}

type InvoiceLinker interface {
	Execute(ctx context.Context, hash string) (*dto.InvoiceLinkResponse, error)
}
