package usecases

import (
	"context"
	"time"

	"github.com/siteforge/siteforge/internal/application/checkout"
	"github.com/siteforge/siteforge/internal/application/payment/paymentgateway"
	"github.com/siteforge/siteforge/internal/domain/payment"
)

// GatewayLookup resolves a gateway by its ID.
type GatewayLookup interface {
	Get(id string) (paymentgateway.Gateway, error)
}

// BillingSettings exposes the options payment use cases read.
type BillingSettings interface {
	InvoiceSettings(ctx context.Context) payment.InvoiceSettings
	AssignInvoiceNumber(ctx context.Context, p *payment.Payment) (bool, error)
	RegistrationURL() string
}

// CartBuilder prices checkout carts.
type CartBuilder interface {
	Build(ctx context.Context, in checkout.Input, now time.Time) (*checkout.Cart, error)
}

// InvoiceTokens signs invoice link keys.
type InvoiceTokens interface {
	Issue(reference string) (string, time.Time, error)
	Verify(key, reference string) error
}
