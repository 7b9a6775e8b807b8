package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/siteforge/siteforge/internal/application/setting/dto"
	"github.com/siteforge/siteforge/internal/domain/payment"
	paymentvo "github.com/siteforge/siteforge/internal/domain/payment/valueobjects"
	"github.com/siteforge/siteforge/internal/domain/setting"
	sharedConfig "github.com/siteforge/siteforge/internal/shared/config"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

// SettingProvider provides billing options with database-first, config-fallback logic
type SettingProvider struct {
	settingRepo setting.Repository
	billing     sharedConfig.BillingConfig
	logger      logger.Interface
}

// NewSettingProvider creates a new SettingProvider
func NewSettingProvider(
	settingRepo setting.Repository,
	billing sharedConfig.BillingConfig,
	logger logger.Interface,
) *SettingProvider {
	return &SettingProvider{
		settingRepo: settingRepo,
		billing:     billing,
		logger:      logger,
	}
}

// GetString retrieves a string setting value
// Database values take precedence over default
func (p *SettingProvider) GetString(ctx context.Context, category, key, defaultValue string) string {
	s, err := p.lookup(ctx, category, key)
	if err != nil || s == nil || !s.HasValue() {
		return defaultValue
	}
	return s.Value()
}

// GetInt retrieves an int setting value
// Database values take precedence over default
func (p *SettingProvider) GetInt(ctx context.Context, category, key string, defaultValue int) int {
	s, err := p.lookup(ctx, category, key)
	if err != nil || s == nil || !s.HasValue() {
		return defaultValue
	}
	val, err := s.IntValue()
	if err != nil {
		return defaultValue
	}
	return val
}

// GetBool retrieves a bool setting value
// Database values take precedence over default
func (p *SettingProvider) GetBool(ctx context.Context, category, key string, defaultValue bool) bool {
	s, err := p.lookup(ctx, category, key)
	if err != nil || s == nil || !s.HasValue() {
		return defaultValue
	}
	val, err := s.BoolValue()
	if err != nil {
		return defaultValue
	}
	return val
}

func (p *SettingProvider) lookup(ctx context.Context, category, key string) (*setting.Setting, error) {
	s, err := p.settingRepo.GetByKey(ctx, category, key)
	if err != nil && !errors.Is(err, setting.ErrSettingNotFound) {
		p.logger.Warnw("failed to read setting, using config value",
			"category", category,
			"key", key,
			"error", err,
		)
	}
	return s, err
}

func (p *SettingProvider) RegistrationEnabled(ctx context.Context) bool {
	return p.GetBool(ctx, setting.CategoryBilling, setting.KeyEnableRegistration, p.billing.EnableRegistration)
}

func (p *SettingProvider) RegistrationURL() string {
	return p.billing.RegistrationURL
}

func (p *SettingProvider) InvoiceScheme(ctx context.Context) paymentvo.InvoiceScheme {
	scheme := p.GetString(ctx, setting.CategoryBilling, setting.KeyInvoiceNumberingScheme, p.billing.InvoiceNumberingScheme)
	if paymentvo.InvoiceScheme(scheme) == paymentvo.InvoiceSchemeSequential {
		return paymentvo.InvoiceSchemeSequential
	}
	return paymentvo.InvoiceSchemeReferenceCode
}

// InvoiceSettings returns the settings used to render invoice numbers.
func (p *SettingProvider) InvoiceSettings(ctx context.Context) payment.InvoiceSettings {
	return payment.InvoiceSettings{
		Scheme:     p.InvoiceScheme(ctx),
		Prefix:     p.GetString(ctx, setting.CategoryBilling, setting.KeyInvoicePrefix, p.billing.InvoicePrefix),
		NextNumber: p.GetInt(ctx, setting.CategoryBilling, setting.KeyNextInvoiceNumber, 1),
	}
}

// ClaimInvoiceNumber reserves the next sequential invoice number.
func (p *SettingProvider) ClaimInvoiceNumber(ctx context.Context) (int, error) {
	n, err := p.settingRepo.Increment(ctx, setting.CategoryBilling, setting.KeyNextInvoiceNumber, 1)
	if err != nil {
		return 0, fmt.Errorf("failed to claim invoice number: %w", err)
	}
	return n, nil
}

// AssignInvoiceNumber gives a completed payment its sequential number when
// that scheme is active. It reports whether the payment changed.
func (p *SettingProvider) AssignInvoiceNumber(ctx context.Context, pay *payment.Payment) (bool, error) {
	if !pay.Status().IsCompleted() || pay.SavedInvoiceNumber() != nil {
		return false, nil
	}
	if p.InvoiceScheme(ctx) != paymentvo.InvoiceSchemeSequential {
		return false, nil
	}
	n, err := p.ClaimInvoiceNumber(ctx)
	if err != nil {
		return false, err
	}
	return pay.AssignInvoiceNumber(n), nil
}

// BillingSettings reports every billing option with its source.
func (p *SettingProvider) BillingSettings(ctx context.Context) dto.BillingSettingsResponse {
	return dto.BillingSettingsResponse{
		EnableRegistration:     p.withSource(ctx, setting.KeyEnableRegistration, p.billing.EnableRegistration),
		InvoiceNumberingScheme: p.withSource(ctx, setting.KeyInvoiceNumberingScheme, p.billing.InvoiceNumberingScheme),
		NextInvoiceNumber:      p.withSource(ctx, setting.KeyNextInvoiceNumber, 1),
		InvoicePrefix:          p.withSource(ctx, setting.KeyInvoicePrefix, p.billing.InvoicePrefix),
	}
}

func (p *SettingProvider) withSource(ctx context.Context, key string, fallback any) dto.SettingWithSource {
	s, err := p.lookup(ctx, setting.CategoryBilling, key)
	if err != nil || s == nil || !s.HasValue() {
		return dto.SettingWithSource{Value: fallback, Source: dto.SourceConfig}
	}

	var value any = s.Value()
	switch s.ValueType() {
	case setting.ValueTypeInt:
		if v, err := s.IntValue(); err == nil {
			value = v
		}
	case setting.ValueTypeBool:
		if v, err := s.BoolValue(); err == nil {
			value = v
		}
	}
	updatedAt := s.UpdatedAt()
	return dto.SettingWithSource{Value: value, Source: dto.SourceDatabase, UpdatedAt: &updatedAt}
}
