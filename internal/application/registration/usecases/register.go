package usecases

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/siteforge/siteforge/internal/application/checkout"
	membershipdto "github.com/siteforge/siteforge/internal/application/membership/dto"
	paymentdto "github.com/siteforge/siteforge/internal/application/payment/dto"
	"github.com/siteforge/siteforge/internal/application/registration/dto"
	"github.com/siteforge/siteforge/internal/domain/customer"
	"github.com/siteforge/siteforge/internal/domain/discount"
	"github.com/siteforge/siteforge/internal/domain/membership"
	membershipvo "github.com/siteforge/siteforge/internal/domain/membership/valueobjects"
	"github.com/siteforge/siteforge/internal/domain/note"
	"github.com/siteforge/siteforge/internal/domain/payment"
	paymentvo "github.com/siteforge/siteforge/internal/domain/payment/valueobjects"
	"github.com/siteforge/siteforge/internal/domain/site"
	"github.com/siteforge/siteforge/internal/shared/biztime"
	"github.com/siteforge/siteforge/internal/shared/db"
	apperrors "github.com/siteforge/siteforge/internal/shared/errors"
	"github.com/siteforge/siteforge/internal/shared/logger"
	"github.com/siteforge/siteforge/internal/shared/utils"
)

const (
	ReasonRegistrationError = "registration_error"
	ReasonInvalidCart       = "invalid_cart"
	ReasonCustomerNotFound  = "customer_not_found"
	ReasonRegistrationOff   = "registration_closed"
	ReasonDiscountCode      = "discount_code"

	restAPINote = "Created via REST API"
)

// RegistrationSettings is the part of the settings provider registration reads.
type RegistrationSettings interface {
	RegistrationEnabled(ctx context.Context) bool
	AssignInvoiceNumber(ctx context.Context, p *payment.Payment) (bool, error)
}

// DiscountUsage records discount code redemptions.
type DiscountUsage interface {
	IncrementUses(ctx context.Context, id uint) error
}

// CartBuilder prices the requested products.
type CartBuilder interface {
	Build(ctx context.Context, in checkout.Input, now time.Time) (*checkout.Cart, error)
}

type RegisterUseCase struct {
	txMgr          db.Runner
	customerRepo   customer.Repository
	membershipRepo membership.Repository
	paymentRepo    payment.Repository
	siteRepo       site.Repository
	noteRepo       note.Repository
	carts          CartBuilder
	discounts      DiscountUsage
	settings       RegistrationSettings
	hasher         customer.PasswordHasher
	network        site.Network
	now            func() time.Time
	logger         logger.Interface
}

func NewRegisterUseCase(
	txMgr db.Runner,
	customerRepo customer.Repository,
	membershipRepo membership.Repository,
	paymentRepo payment.Repository,
	siteRepo site.Repository,
	noteRepo note.Repository,
	carts CartBuilder,
	discounts DiscountUsage,
	settings RegistrationSettings,
	hasher customer.PasswordHasher,
	network site.Network,
	logger logger.Interface,
) *RegisterUseCase {
	return &RegisterUseCase{
		txMgr:          txMgr,
		customerRepo:   customerRepo,
		membershipRepo: membershipRepo,
		paymentRepo:    paymentRepo,
		siteRepo:       siteRepo,
		noteRepo:       noteRepo,
		carts:          carts,
		discounts:      discounts,
		settings:       settings,
		hasher:         hasher,
		network:        network,
		now:            biztime.NowUTC,
		logger:         logger,
	}
}

// registration carries the records created so far inside the transaction.
type registration struct {
	customer   *customer.Customer
	membership *membership.Membership
	payment    *payment.Payment
	site       *site.Site
}

// Execute validates req and creates the customer, membership, payment and
// optional pending site in a single transaction.
func (uc *RegisterUseCase) Execute(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	if !uc.settings.RegistrationEnabled(ctx) {
		return nil, apperrors.NewForbiddenError("Registration is currently closed").WithReason(ReasonRegistrationOff)
	}

	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	membershipStatus := membershipvo.StatusPending
	if req.Membership != nil && req.Membership.Status != "" {
		membershipStatus = membershipvo.MembershipStatus(req.Membership.Status)
	}
	paymentStatus := paymentvo.PaymentStatusPending
	if req.Payment != nil && req.Payment.Status != "" {
		paymentStatus = paymentvo.PaymentStatus(req.Payment.Status)
	}

	var reg registration
	err := uc.txMgr.RunInTransaction(ctx, func(ctx context.Context) error {
		now := uc.now()

		c, err := uc.resolveCustomer(ctx, req, now)
		if err != nil {
			return err
		}
		reg.customer = c

		cart, err := uc.buildCart(ctx, req, now)
		if err != nil {
			return err
		}

		if reg.membership, err = uc.createMembership(ctx, req, c, cart, now); err != nil {
			return err
		}
		if reg.payment, err = uc.createPayment(ctx, req, c, reg.membership, cart, now); err != nil {
			return err
		}
		if err := uc.redeemDiscount(ctx, cart); err != nil {
			return err
		}

		if req.Site != nil {
			if reg.site, err = uc.createSite(ctx, req.Site, c, reg.membership, now); err != nil {
				return err
			}
		}

		return uc.applyStatuses(ctx, &reg, membershipStatus, paymentStatus, now)
	})
	if err != nil {
		if appErr := apperrors.GetAppError(err); appErr != nil {
			return nil, appErr
		}
		uc.logger.Errorw("registration failed", "error", err)
		return nil, apperrors.NewInternalError(err.Error()).WithReason(ReasonRegistrationError).WithCause(err)
	}

	uc.logger.Infow("registration completed",
		"customer_id", reg.customer.ID(),
		"membership_id", reg.membership.ID(),
		"payment_hash", reg.payment.Hash(),
		"membership_status", reg.membership.Status(),
	)

	resp := &dto.RegisterResponse{
		Customer:   dto.ToCustomerResponse(reg.customer),
		Membership: membershipdto.ToMembershipResponse(reg.membership),
		Payment:    paymentdto.ToPaymentResponse(reg.payment),
	}
	if reg.site != nil {
		resp.Site = dto.SiteResponse{
			ID:     reg.site.ID(),
			BlogID: reg.site.BlogID(),
			URL:    reg.site.URL(),
			Title:  reg.site.Title(),
			Status: string(reg.site.Status()),
		}
	}
	return resp, nil
}

func (uc *RegisterUseCase) resolveCustomer(ctx context.Context, req dto.RegisterRequest, now time.Time) (*customer.Customer, error) {
	var (
		c   *customer.Customer
		err error
	)

	switch {
	case req.CustomerID != 0:
		c, err = uc.customerRepo.GetByID(ctx, req.CustomerID)
		if err != nil {
			if errors.Is(err, customer.ErrCustomerNotFound) {
				return nil, apperrors.NewNotFoundError("Customer not found", strconv.FormatUint(uint64(req.CustomerID), 10)).
					WithReason(ReasonCustomerNotFound)
			}
			return nil, fmt.Errorf("failed to load customer: %w", err)
		}
	case req.Customer.UserID != 0:
		c, err = uc.customerRepo.GetByUserID(ctx, req.Customer.UserID)
		if err != nil && !errors.Is(err, customer.ErrCustomerNotFound) {
			return nil, fmt.Errorf("failed to load customer: %w", err)
		}
		if c == nil {
			c, err = customer.NewCustomerForUser(req.Customer.UserID, req.Customer.Username, req.Customer.Email, now)
			if err != nil {
				return nil, apperrors.NewValidationError(err.Error())
			}
			if err := uc.createCustomer(ctx, c, req.Customer); err != nil {
				return nil, err
			}
		}
	default:
		c, err = customer.NewCustomer(req.Customer.Username, req.Customer.Email, req.Customer.Password, uc.hasher, now)
		if err != nil {
			switch {
			case errors.Is(err, customer.ErrInvalidUsername):
				return nil, apperrors.NewValidationError(err.Error()).AddField("customer.username", err.Error())
			case errors.Is(err, customer.ErrInvalidPassword):
				return nil, apperrors.NewValidationError(err.Error()).AddField("customer.password", err.Error())
			}
			return nil, fmt.Errorf("failed to create customer: %w", err)
		}
		if err := uc.createCustomer(ctx, c, req.Customer); err != nil {
			return nil, err
		}
	}

	c.UpdateLastLogin(req.IP, now)
	if err := uc.customerRepo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	if err := uc.addNote(ctx, note.SubjectCustomer, c.ID(), now); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *RegisterUseCase) createCustomer(ctx context.Context, c *customer.Customer, params *dto.CustomerParams) error {
	if params.BillingAddress != nil {
		c.SetBillingAddress(*params.BillingAddress, c.CreatedAt())
	}
	if err := uc.customerRepo.Create(ctx, c); err != nil {
		if errors.Is(err, customer.ErrCustomerExists) {
			return apperrors.NewConflictError("A customer with this username or email already exists").
				WithReason("customer_exists")
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (uc *RegisterUseCase) buildCart(ctx context.Context, req dto.RegisterRequest, now time.Time) (*checkout.Cart, error) {
	cart, err := uc.carts.Build(ctx, checkout.Input{
		Type:         checkout.CartTypeNew,
		Products:     req.Products,
		Duration:     req.Duration,
		DurationUnit: req.DurationUnit,
		DiscountCode: req.DiscountCode,
		Country:      req.Country,
		Currency:     req.Currency,
	}, now)
	if err != nil {
		return nil, fmt.Errorf("failed to build cart: %w", err)
	}

	if !cart.IsValid() {
		errs := cart.Errors()
		appErr := apperrors.NewBadRequestError(errs[0].Message).WithReason(errs[0].Code)
		for _, e := range errs {
			appErr.AddField("products", e.Message)
		}
		return nil, appErr
	}
	if len(cart.LineItems()) == 0 {
		return nil, apperrors.NewBadRequestError("Products are required.").WithReason(ReasonInvalidCart)
	}
	return cart, nil
}

func (uc *RegisterUseCase) createMembership(
	ctx context.Context,
	req dto.RegisterRequest,
	c *customer.Customer,
	cart *checkout.Cart,
	now time.Time,
) (*membership.Membership, error) {
	data := cart.ToMembershipData(now)

	m, err := membership.NewMembership(c.ID(), data.Terms, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}
	m.ApplyDates(membership.DateOverrides{
		TrialEnd:   data.DateTrialEnd,
		Expiration: data.DateExpiration,
	}, now)
	if p := req.Membership; p != nil {
		m.ApplyDates(membership.DateOverrides{
			Activated:            p.DateActivated,
			TrialEnd:             p.DateTrialEnd,
			Renewed:              p.DateRenewed,
			Cancellation:         p.DateCancellation,
			Expiration:           p.DateExpiration,
			PaymentPlanCompleted: p.DatePaymentPlanCompleted,
		}, now)
	}
	m.SetDiscountCode(data.DiscountCode)
	if pm := req.PaymentMethod; pm != nil {
		m.SetGateway(pm.Gateway, pm.GatewayCustomerID, pm.GatewaySubscriptionID, now)
	}
	m.SetAutoRenew(req.AutoRenew, now)

	if err := uc.membershipRepo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to save membership: %w", err)
	}
	if err := uc.addNote(ctx, note.SubjectMembership, m.ID(), now); err != nil {
		return nil, err
	}
	return m, nil
}

func (uc *RegisterUseCase) createPayment(
	ctx context.Context,
	req dto.RegisterRequest,
	c *customer.Customer,
	m *membership.Membership,
	cart *checkout.Cart,
	now time.Time,
) (*payment.Payment, error) {
	p, err := cart.ToPaymentData().NewPayment(c.ID(), now)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	p.SetMembership(m.ID())
	if pm := req.PaymentMethod; pm != nil {
		p.SetGateway(pm.Gateway, pm.GatewayPaymentID, now)
	}

	if err := uc.paymentRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}
	if err := uc.addNote(ctx, note.SubjectPayment, p.ID(), now); err != nil {
		return nil, err
	}
	return p, nil
}

// redeemDiscount counts one use of the cart's discount code. A code that ran
// out of uses since the cart was priced fails the registration.
func (uc *RegisterUseCase) redeemDiscount(ctx context.Context, cart *checkout.Cart) error {
	dc := cart.DiscountCode()
	if dc == nil {
		return nil
	}

	err := uc.discounts.IncrementUses(ctx, dc.ID())
	switch {
	case err == nil:
		return nil
	case errors.Is(err, discount.ErrMaxUsesReached):
		return apperrors.NewBadRequestError(
			"This discount code was already redeemed the maximum amount of times allowed",
		).WithReason(ReasonDiscountCode)
	case errors.Is(err, discount.ErrDiscountNotFound):
		return apperrors.NewBadRequestError("This coupon code is not valid.").WithReason(ReasonDiscountCode)
	}
	return fmt.Errorf("failed to redeem discount code %s: %w", dc.Code(), err)
}

func (uc *RegisterUseCase) createSite(
	ctx context.Context,
	params *dto.SiteParams,
	c *customer.Customer,
	m *membership.Membership,
	now time.Time,
) (*site.Site, error) {
	s, err := uc.siteRepo.GetPendingByMembership(ctx, m.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to load pending site: %w", err)
	}

	if s == nil {
		domain, path := site.DomainAndPath(params.SiteURL, uc.network)
		taken, err := uc.siteRepo.ExistsByDomainPath(ctx, domain, path)
		if err != nil {
			return nil, fmt.Errorf("failed to check site URL: %w", err)
		}
		if taken {
			return nil, apperrors.NewValidationError(site.ErrSiteTaken.Error()).
				AddField("site.site_url", "site.site_url is already taken")
		}

		s, err = site.NewPendingSite(site.PendingSiteParams{
			CustomerID:    c.ID(),
			MembershipID:  m.ID(),
			Domain:        domain,
			Path:          path,
			Title:         params.SiteTitle,
			TemplateID:    params.TemplateID,
			SignupMeta:    params.SiteMeta,
			SignupOptions: params.SiteOption,
		}, now)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
		if err := uc.siteRepo.Create(ctx, s); err != nil {
			return nil, fmt.Errorf("failed to save pending site: %w", err)
		}
	}

	if params.Publish {
		if err := uc.publishSite(ctx, s, now); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (uc *RegisterUseCase) publishSite(ctx context.Context, s *site.Site, now time.Time) error {
	if !s.IsPending() {
		return nil
	}
	blogID, err := uc.siteRepo.NextBlogID(ctx)
	if err != nil {
		return fmt.Errorf("failed to allocate blog ID: %w", err)
	}
	if err := s.Publish(blogID, now); err != nil {
		return err
	}
	if err := uc.siteRepo.Update(ctx, s); err != nil {
		return fmt.Errorf("failed to publish site: %w", err)
	}
	return nil
}

func (uc *RegisterUseCase) applyStatuses(
	ctx context.Context,
	reg *registration,
	membershipStatus membershipvo.MembershipStatus,
	paymentStatus paymentvo.PaymentStatus,
	now time.Time,
) error {
	m := reg.membership
	if m.Status() != membershipStatus {
		if err := m.SetStatus(membershipStatus, now); err != nil {
			return fmt.Errorf("failed to set membership status: %w", err)
		}
		if membershipStatus.IsActive() {
			if err := uc.publishPendingSite(ctx, reg, now); err != nil {
				return err
			}
		}
		if err := uc.membershipRepo.Update(ctx, m); err != nil {
			return fmt.Errorf("failed to save membership: %w", err)
		}
	}

	p := reg.payment
	if p.Status() != paymentStatus {
		if err := p.SetStatus(paymentStatus, now); err != nil {
			return fmt.Errorf("failed to set payment status: %w", err)
		}
		if _, err := uc.settings.AssignInvoiceNumber(ctx, p); err != nil {
			return err
		}
		if err := uc.paymentRepo.Update(ctx, p); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
	}
	return nil
}

func (uc *RegisterUseCase) publishPendingSite(ctx context.Context, reg *registration, now time.Time) error {
	s := reg.site
	if s == nil {
		var err error
		s, err = uc.siteRepo.GetPendingByMembership(ctx, reg.membership.ID())
		if err != nil {
			return fmt.Errorf("failed to load pending site: %w", err)
		}
		if s == nil {
			return nil
		}
		reg.site = s
	}
	return uc.publishSite(ctx, s, now)
}

func (uc *RegisterUseCase) addNote(ctx context.Context, subjectType note.SubjectType, subjectID uint, now time.Time) error {
	n, err := note.NewNote(note.Subject{Type: subjectType, ID: subjectID}, restAPINote, 0, now)
	if err != nil {
		return err
	}
	if err := uc.noteRepo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to add %s note: %w", subjectType, err)
	}
	return nil
}
