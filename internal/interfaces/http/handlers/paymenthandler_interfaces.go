package handlers

import (
	"context"

	"github.com/siteforge/siteforge/internal/application/payment/dto"
)

// Use case interfaces for PaymentHandler

type getPaymentUseCase interface {
	Execute(ctx context.Context, hash string) (*dto.PaymentResponse, error)
}

type refundPaymentUseCase interface {
	Execute(ctx context.Context, hash string, req dto.RefundRequest) (*dto.PaymentResponse, error)
}

type processCheckoutUseCase interface {
	Execute(ctx context.Context, hash string, req dto.CheckoutRequest) (*dto.PaymentResponse, error)
}

type getInvoiceLinkUseCase interface {
	Execute(ctx context.Context, hash string) (*dto.InvoiceLinkResponse, error)
}

type viewInvoiceUseCase interface {
	Execute(ctx context.Context, reference, key string) (*dto.InvoiceResponse, error)
}
