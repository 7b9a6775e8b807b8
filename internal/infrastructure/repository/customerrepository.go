package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/siteforge/siteforge/internal/domain/customer"
	"github.com/siteforge/siteforge/internal/infrastructure/persistence/mappers"
	"github.com/siteforge/siteforge/internal/infrastructure/persistence/models"
	"github.com/siteforge/siteforge/internal/shared/db"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

type CustomerRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewCustomerRepository(db *gorm.DB, logger logger.Interface) *CustomerRepository {
	return &CustomerRepository{db: db, logger: logger}
}

var _ customer.Repository = (*CustomerRepository)(nil)

func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	model := mappers.CustomerToModel(c)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		if isDuplicate(err) {
			return customer.ErrCustomerExists
		}
		r.logger.Errorw("failed to create customer", "username", model.Username, "error", err)
		return fmt.Errorf("failed to create customer: %w", err)
	}

	// Customers with their own login use the row ID as user ID.
	if model.UserID == 0 {
		if err := tx.Model(model).Update("user_id", model.ID).Error; err != nil {
			return fmt.Errorf("failed to assign user id: %w", err)
		}
	}

	return c.SetID(model.ID)
}

func (r *CustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	model := mappers.CustomerToModel(c)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.CustomerModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version).
		Updates(map[string]any{
			"email":           model.Email,
			"password_hash":   model.PasswordHash,
			"billing_address": model.BillingAddress,
			"vip":             model.VIP,
			"last_login":      model.LastLogin,
			"ips":             model.IPs,
			"version":         model.Version + 1,
			"updated_at":      model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update customer", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update customer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, model.ID); err != nil {
			return err
		}
		return customer.ErrVersionConflict
	}

	c.IncrementVersion()
	return nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id uint) (*customer.Customer, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *CustomerRepository) GetByUserID(ctx context.Context, userID uint) (*customer.Customer, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *CustomerRepository) GetByUsername(ctx context.Context, username string) (*customer.Customer, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *CustomerRepository) first(ctx context.Context, query string, arg any) (*customer.Customer, error) {
	var model models.CustomerModel
	if err := db.GetTxFromContext(ctx, r.db).Where(query, arg).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, customer.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return mappers.CustomerToDomain(&model)
}
