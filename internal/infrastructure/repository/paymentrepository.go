package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/siteforge/siteforge/internal/domain/payment"
	vo "github.com/siteforge/siteforge/internal/domain/payment/valueobjects"
	"github.com/siteforge/siteforge/internal/infrastructure/persistence/mappers"
	"github.com/siteforge/siteforge/internal/infrastructure/persistence/models"
	"github.com/siteforge/siteforge/internal/shared/db"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

type PaymentRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewPaymentRepository(db *gorm.DB, logger logger.Interface) *PaymentRepository {
	return &PaymentRepository{db: db, logger: logger}
}

var _ payment.Repository = (*PaymentRepository)(nil)

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	model := mappers.PaymentToModel(p)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create payment", "hash", model.Hash, "error", err)
		return fmt.Errorf("failed to create payment: %w", err)
	}

	// Write back the auto-generated ID to the domain object
	return p.SetID(model.ID)
}

func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	model := mappers.PaymentToModel(p)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version).
		Updates(map[string]any{
			"membership_id":               model.MembershipID,
			"line_items":                  model.LineItems,
			"subtotal":                    model.Subtotal,
			"refund_total":                model.RefundTotal,
			"tax_total":                   model.TaxTotal,
			"discount_total":              model.DiscountTotal,
			"total":                       model.Total,
			"discount_code":               model.DiscountCode,
			"status":                      model.Status,
			"gateway":                     model.Gateway,
			"gateway_payment_id":          model.GatewayPaymentID,
			"invoice_number":              model.InvoiceNumber,
			"cancel_membership_on_refund": model.CancelMembershipOnRefund,
			"version":                     model.Version + 1,
			"updated_at":                  model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update payment", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, model.ID); err != nil {
			return err
		}
		return payment.ErrVersionConflict
	}

	p.IncrementVersion()
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uint) (*payment.Payment, error) {
	return r.first(ctx, db.GetTxFromContext(ctx, r.db).Where("id = ?", id))
}

func (r *PaymentRepository) GetByHash(ctx context.Context, hash string) (*payment.Payment, error) {
	return r.first(ctx, db.GetTxFromContext(ctx, r.db).Where("hash = ?", hash))
}

func (r *PaymentRepository) GetByGatewayPaymentID(ctx context.Context, gateway, gatewayPaymentID string) (*payment.Payment, error) {
	return r.first(ctx, db.GetTxFromContext(ctx, r.db).
		Where("gateway = ? AND gateway_payment_id = ?", gateway, gatewayPaymentID))
}

func (r *PaymentRepository) GetLastPendingByMembership(ctx context.Context, membershipID uint) (*payment.Payment, error) {
	p, err := r.first(ctx, db.GetTxFromContext(ctx, r.db).
		Where("membership_id = ? AND status = ?", membershipID, vo.PaymentStatusPending.String()).
		Order("id DESC"))
	if errors.Is(err, payment.ErrPaymentNotFound) {
		return nil, nil
	}
	return p, err
}

func (r *PaymentRepository) ListByMembership(ctx context.Context, membershipID uint) ([]*payment.Payment, error) {
	var rows []models.PaymentModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("membership_id = ?", membershipID).
		Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments by membership: %w", err)
	}

	payments := make([]*payment.Payment, 0, len(rows))
	for i := range rows {
		p, err := mappers.PaymentToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, nil
}

func (r *PaymentRepository) first(_ context.Context, query *gorm.DB) (*payment.Payment, error) {
	var model models.PaymentModel
	if err := query.First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return mappers.PaymentToDomain(&model)
}
