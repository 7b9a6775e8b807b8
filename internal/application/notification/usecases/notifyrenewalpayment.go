package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/siteforge/siteforge/internal/domain/customer"
	"github.com/siteforge/siteforge/internal/domain/notification"
	"github.com/siteforge/siteforge/internal/domain/payment"
	"github.com/siteforge/siteforge/internal/shared/logger"
	"github.com/siteforge/siteforge/internal/shared/money"
	"github.com/siteforge/siteforge/internal/shared/services/markdown"
)

type RenewalPaymentNotice struct {
	PaymentHash string
	PaymentURL  string
}

// NotifyRenewalPaymentUseCase emails the customer the link to pay a renewal.
type NotifyRenewalPaymentUseCase struct {
	paymentRepo  payment.Repository
	customerRepo customer.Repository
	sender       EmailSender
	formatter    *money.Formatter
	composer     composer
	logger       logger.Interface
}

func NewNotifyRenewalPaymentUseCase(
	paymentRepo payment.Repository,
	customerRepo customer.Repository,
	sender EmailSender,
	tmpl *notification.Template,
	renderer *markdown.Renderer,
	formatter *money.Formatter,
	logger logger.Interface,
) *NotifyRenewalPaymentUseCase {
	return &NotifyRenewalPaymentUseCase{
		paymentRepo:  paymentRepo,
		customerRepo: customerRepo,
		sender:       sender,
		formatter:    formatter,
		composer:     composer{template: tmpl, renderer: renderer},
		logger:       logger,
	}
}

func (uc *NotifyRenewalPaymentUseCase) Execute(ctx context.Context, notice RenewalPaymentNotice) error {
	if notice.PaymentURL == "" {
		return fmt.Errorf("payment %s has no payment url", notice.PaymentHash)
	}

	p, err := uc.paymentRepo.GetByHash(ctx, notice.PaymentHash)
	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			uc.logger.Warnw("renewal payment disappeared before notification", "payment_hash", notice.PaymentHash)
			return nil
		}
		return fmt.Errorf("failed to load payment: %w", err)
	}
	if !p.IsPayable() {
		uc.logger.Infow("renewal payment no longer payable, skipping email",
			"payment_hash", p.Hash(),
			"status", p.Status().String(),
		)
		return nil
	}

	c, err := uc.customerRepo.GetByID(ctx, p.CustomerID())
	if err != nil {
		return fmt.Errorf("failed to load customer %d: %w", p.CustomerID(), err)
	}

	msg, err := uc.composer.compose(c, map[string]any{
		"CustomerName": c.Username(),
		"Total":        uc.formatter.Format(p.Total(), p.Currency()),
		"Reference":    p.Hash(),
		"PaymentURL":   notice.PaymentURL,
	})
	if err != nil {
		uc.logger.Errorw("failed to compose renewal email", "error", err, "payment_hash", p.Hash())
		return err
	}

	if err := uc.sender.Send(ctx, msg); err != nil {
		uc.logger.Errorw("failed to send renewal email",
			"error", err,
			"payment_hash", p.Hash(),
			"customer_id", c.ID(),
		)
		return fmt.Errorf("failed to send renewal email: %w", err)
	}

	uc.logger.Infow("renewal payment email sent",
		"payment_hash", p.Hash(),
		"customer_id", c.ID(),
	)
	return nil
}
