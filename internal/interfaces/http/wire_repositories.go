package http

import (
	"gorm.io/gorm"

	"github.com/siteforge/siteforge/internal/infrastructure/repository"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

// repositories holds all repository instances used by the application.
// Types match the return types of the repository constructors.
type repositories struct {
	customerRepo   *repository.CustomerRepository
	membershipRepo *repository.MembershipRepository
	paymentRepo    *repository.PaymentRepository
	siteRepo       *repository.SiteRepository
	productRepo    *repository.ProductRepository
	discountRepo   *repository.DiscountCodeRepository
	noteRepo       *repository.NoteRepository
	settingRepo    *repository.SettingRepository
}

// newRepositories creates all repository instances from the database connection.
func newRepositories(db *gorm.DB, log logger.Interface) *repositories {
	return &repositories{
		customerRepo:   repository.NewCustomerRepository(db, log),
		membershipRepo: repository.NewMembershipRepository(db, log),
		paymentRepo:    repository.NewPaymentRepository(db, log),
		siteRepo:       repository.NewSiteRepository(db, log),
		productRepo:    repository.NewProductRepository(db),
		discountRepo:   repository.NewDiscountCodeRepository(db),
		noteRepo:       repository.NewNoteRepository(db),
		settingRepo:    repository.NewSettingRepository(db, log),
	}
}
