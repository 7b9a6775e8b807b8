package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/siteforge/siteforge/internal/application/payment/dto"
	"github.com/siteforge/siteforge/internal/domain/payment"
	"github.com/siteforge/siteforge/internal/shared/biztime"
	apperrors "github.com/siteforge/siteforge/internal/shared/errors"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

type GetPaymentUseCase struct {
	paymentRepo payment.Repository
	settings    BillingSettings
	now         func() time.Time
	logger      logger.Interface
}

func NewGetPaymentUseCase(paymentRepo payment.Repository, settings BillingSettings, logger logger.Interface) *GetPaymentUseCase {
	return &GetPaymentUseCase{
		paymentRepo: paymentRepo,
		settings:    settings,
		now:         biztime.NowUTC,
		logger:      logger,
	}
}

func (uc *GetPaymentUseCase) Execute(ctx context.Context, hash string) (*dto.PaymentResponse, error) {
	p, err := loadPayment(ctx, uc.paymentRepo, hash)
	if err != nil {
		if !apperrors.IsNotFoundError(err) {
			uc.logger.Errorw("failed to get payment", "error", err, "payment_hash", hash)
		}
		return nil, err
	}
	return describePayment(ctx, p, uc.settings, uc.now()), nil
}

// describePayment adds the derived fields to the payment response.
func describePayment(ctx context.Context, p *payment.Payment, settings BillingSettings, now time.Time) *dto.PaymentResponse {
	resp := dto.ToPaymentResponse(p)
	resp.PaymentURL, _ = p.PaymentURL(settings.RegistrationURL())
	resp.InvoiceNumber = p.InvoiceNumber(settings.InvoiceSettings(ctx), now)
	if tb := p.TaxBreakthrough(); len(tb) > 0 {
		resp.TaxBreakthrough = tb
	}
	return resp
}

func loadPayment(ctx context.Context, repo payment.Repository, hash string) (*payment.Payment, error) {
	p, err := repo.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			return nil, apperrors.NewNotFoundError("payment not found")
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return p, nil
}
