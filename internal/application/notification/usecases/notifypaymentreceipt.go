package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/siteforge/siteforge/internal/domain/customer"
	"github.com/siteforge/siteforge/internal/domain/notification"
	"github.com/siteforge/siteforge/internal/domain/payment"
	"github.com/siteforge/siteforge/internal/shared/biztime"
	"github.com/siteforge/siteforge/internal/shared/logger"
	"github.com/siteforge/siteforge/internal/shared/money"
	"github.com/siteforge/siteforge/internal/shared/services/markdown"
)

// NotifyPaymentReceiptUseCase emails a receipt once a payment completes.
type NotifyPaymentReceiptUseCase struct {
	paymentRepo  payment.Repository
	customerRepo customer.Repository
	sender       EmailSender
	settings     InvoiceSettingsProvider
	links        InvoiceLinker
	formatter    *money.Formatter
	composer     composer
	now          func() time.Time
	logger       logger.Interface
}

// NewNotifyPaymentReceiptUseCase creates the receipt notifier. links may be
// nil, in which case receipts carry no invoice link.
func NewNotifyPaymentReceiptUseCase(
	paymentRepo payment.Repository,
	customerRepo customer.Repository,
	sender EmailSender,
	settings InvoiceSettingsProvider,
	links InvoiceLinker,
	tmpl *notification.Template,
	renderer *markdown.Renderer,
	formatter *money.Formatter,
	logger logger.Interface,
) *NotifyPaymentReceiptUseCase {
	return &NotifyPaymentReceiptUseCase{
		paymentRepo:  paymentRepo,
		customerRepo: customerRepo,
		sender:       sender,
		settings:     settings,
		links:        links,
		formatter:    formatter,
		composer:     composer{template: tmpl, renderer: renderer},
		now:          biztime.NowUTC,
		logger:       logger,
	}
}

func (uc *NotifyPaymentReceiptUseCase) Execute(ctx context.Context, paymentID uint) error {
	p, err := uc.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("failed to load payment %d: %w", paymentID, err)
	}
	if !p.Total().IsPositive() {
		return nil
	}

	c, err := uc.customerRepo.GetByID(ctx, p.CustomerID())
	if err != nil {
		return fmt.Errorf("failed to load customer %d: %w", p.CustomerID(), err)
	}

	invoiceURL := ""
	if uc.links != nil {
		link, err := uc.links.Execute(ctx, p.Hash())
		if err != nil {
			uc.logger.Warnw("failed to issue invoice link for receipt", "error", err, "payment_hash", p.Hash())
		} else {
			invoiceURL = link.URL
		}
	}

	msg, err := uc.composer.compose(c, map[string]any{
		"CustomerName":  c.Username(),
		"Total":         uc.formatter.Format(p.Total(), p.Currency()),
		"Reference":     p.Hash(),
		"InvoiceNumber": p.InvoiceNumber(uc.settings.InvoiceSettings(ctx), uc.now()),
		"InvoiceURL":    invoiceURL,
	})
	if err != nil {
		uc.logger.Errorw("failed to compose receipt email", "error", err, "payment_hash", p.Hash())
		return err
	}

	if err := uc.sender.Send(ctx, msg); err != nil {
		uc.logger.Errorw("failed to send receipt email",
			"error", err,
			"payment_hash", p.Hash(),
			"customer_id", c.ID(),
		)
		return fmt.Errorf("failed to send receipt email: %w", err)
	}
	return nil
}
