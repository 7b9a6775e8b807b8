package mappers

import (
	"gorm.io/datatypes"

	"github.com/siteforge/siteforge/internal/domain/customer"
	vo "github.com/siteforge/siteforge/internal/domain/customer/valueobjects"
	"github.com/siteforge/siteforge/internal/infrastructure/persistence/models"
)

// CustomerToModel maps a customer to its row. A customer without an external
// user keeps UserID zero until the repository backfills it with the row ID.
func CustomerToModel(c *customer.Customer) *models.CustomerModel {
	addr := c.BillingAddress()
	return &models.CustomerModel{
		ID:           c.ID(),
		UserID:       c.UserID(),
		Username:     c.Username(),
		Email:        c.Email(),
		PasswordHash: c.PasswordHash(),
		BillingAddress: datatypes.NewJSONType(models.BillingAddress{
			CompanyName: addr.CompanyName,
			Email:       addr.Email,
			Address1:    addr.Address1,
			Address2:    addr.Address2,
			City:        addr.City,
			State:       addr.State,
			ZipCode:     addr.ZipCode,
			Country:     addr.Country,
		}),
		VIP:       c.IsVIP(),
		LastLogin: c.LastLogin(),
		IPs:       datatypes.NewJSONSlice(c.IPs()),
		Version:   c.Version(),
		CreatedAt: c.CreatedAt(),
		UpdatedAt: c.UpdatedAt(),
	}
}

func CustomerToDomain(m *models.CustomerModel) (*customer.Customer, error) {
	addr := m.BillingAddress.Data()
	return customer.ReconstructCustomer(
		m.ID, m.UserID,
		m.Username, m.Email, m.PasswordHash,
		vo.BillingAddress{
			CompanyName: addr.CompanyName,
			Email:       addr.Email,
			Address1:    addr.Address1,
			Address2:    addr.Address2,
			City:        addr.City,
			State:       addr.State,
			ZipCode:     addr.ZipCode,
			Country:     addr.Country,
		},
		m.VIP,
		m.LastLogin,
		[]string(m.IPs),
		m.Version,
		m.CreatedAt, m.UpdatedAt,
	)
}
