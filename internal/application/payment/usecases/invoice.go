package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/siteforge/siteforge/internal/application/payment/dto"
	"github.com/siteforge/siteforge/internal/domain/customer"
	"github.com/siteforge/siteforge/internal/domain/payment"
	"github.com/siteforge/siteforge/internal/shared/biztime"
	apperrors "github.com/siteforge/siteforge/internal/shared/errors"
	"github.com/siteforge/siteforge/internal/shared/logger"
	"github.com/siteforge/siteforge/internal/shared/money"
)

const invoicePath = "/invoice"

// GetInvoiceLinkUseCase issues a signed link to the invoice of a payment.
type GetInvoiceLinkUseCase struct {
	paymentRepo payment.Repository
	tokens      InvoiceTokens
	baseURL     string
	logger      logger.Interface
}

func NewGetInvoiceLinkUseCase(paymentRepo payment.Repository, tokens InvoiceTokens, baseURL string, logger logger.Interface) *GetInvoiceLinkUseCase {
	return &GetInvoiceLinkUseCase{
		paymentRepo: paymentRepo,
		tokens:      tokens,
		baseURL:     strings.TrimRight(baseURL, "/"),
		logger:      logger,
	}
}

func (uc *GetInvoiceLinkUseCase) Execute(ctx context.Context, hash string) (*dto.InvoiceLinkResponse, error) {
	p, err := loadPayment(ctx, uc.paymentRepo, hash)
	if err != nil {
		return nil, err
	}

	key, expiresAt, err := uc.tokens.Issue(p.Hash())
	if err != nil {
		uc.logger.Errorw("failed to issue invoice token", "error", err, "payment_hash", p.Hash())
		return nil, fmt.Errorf("failed to issue invoice link: %w", err)
	}

	q := url.Values{}
	q.Set("reference", p.Hash())
	q.Set("key", key)
	return &dto.InvoiceLinkResponse{
		URL:       uc.baseURL + invoicePath + "?" + q.Encode(),
		ExpiresAt: expiresAt,
	}, nil
}

// ViewInvoiceUseCase renders the invoice of a payment for a signed link.
type ViewInvoiceUseCase struct {
	paymentRepo  payment.Repository
	customerRepo customer.Repository
	tokens       InvoiceTokens
	settings     BillingSettings
	formatter    *money.Formatter
	now          func() time.Time
	logger       logger.Interface
}

func NewViewInvoiceUseCase(
	paymentRepo payment.Repository,
	customerRepo customer.Repository,
	tokens InvoiceTokens,
	settings BillingSettings,
	formatter *money.Formatter,
	logger logger.Interface,
) *ViewInvoiceUseCase {
	return &ViewInvoiceUseCase{
		paymentRepo:  paymentRepo,
		customerRepo: customerRepo,
		tokens:       tokens,
		settings:     settings,
		formatter:    formatter,
		now:          biztime.NowUTC,
		logger:       logger,
	}
}

func (uc *ViewInvoiceUseCase) Execute(ctx context.Context, reference, key string) (*dto.InvoiceResponse, error) {
	if reference == "" || key == "" {
		return nil, apperrors.NewUnauthorizedError("invoice key is required")
	}
	if err := uc.tokens.Verify(key, reference); err != nil {
		uc.logger.Warnw("rejected invoice key", "payment_hash", reference, "error", err)
		return nil, apperrors.NewUnauthorizedError("invalid invoice key")
	}

	p, err := loadPayment(ctx, uc.paymentRepo, reference)
	if err != nil {
		return nil, err
	}

	c, err := uc.customerRepo.GetByID(ctx, p.CustomerID())
	if err != nil && !errors.Is(err, customer.ErrCustomerNotFound) {
		uc.logger.Errorw("failed to load invoice customer", "error", err, "customer_id", p.CustomerID())
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}

	return uc.render(ctx, p, c), nil
}

func (uc *ViewInvoiceUseCase) render(ctx context.Context, p *payment.Payment, c *customer.Customer) *dto.InvoiceResponse {
	now := uc.now()
	cur := p.Currency()
	f := uc.formatter

	resp := &dto.InvoiceResponse{
		InvoiceNumber: p.InvoiceNumber(uc.settings.InvoiceSettings(ctx), now),
		ReferenceCode: p.Hash(),
		Status:        p.Status().Label(),
		Date:          biztime.FormatDate(p.CreatedAt()),
		Subtotal:      f.Format(p.Subtotal(), cur),
		Discount:      f.Format(p.DiscountTotal(), cur),
		Tax:           f.Format(p.TaxTotal(), cur),
		Refunded:      f.Format(p.RefundTotal(), cur),
		Total:         f.Format(p.Total(), cur),
	}

	if c != nil {
		resp.CustomerName = c.Username()
		resp.CustomerEmail = c.Email()
		resp.BillTo = c.BillingAddress().Lines()
	}

	for _, li := range p.LineItems() {
		resp.Lines = append(resp.Lines, dto.InvoiceLine{
			Title:       li.Title,
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   f.Format(li.UnitPrice, cur),
			Tax:         f.Format(li.TaxTotal, cur),
			Total:       f.Format(li.Total, cur),
		})
	}

	brackets := p.TaxBreakthrough()
	rates := make([]string, 0, len(brackets))
	for rate := range brackets {
		rates = append(rates, rate)
	}
	sort.Slice(rates, func(i, j int) bool {
		return decimal.RequireFromString(rates[i]).LessThan(decimal.RequireFromString(rates[j]))
	})
	for _, rate := range rates {
		resp.TaxBrackets = append(resp.TaxBrackets, dto.TaxBracket{
			Rate:   f.Percent(decimal.RequireFromString(rate)),
			Amount: f.Format(brackets[rate], cur),
		})
	}

	if paymentURL, ok := p.PaymentURL(uc.settings.RegistrationURL()); ok {
		resp.PaymentURL = paymentURL
		resp.PaymentPending = true
	}
	return resp
}
