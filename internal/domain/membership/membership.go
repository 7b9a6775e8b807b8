package membership

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	vo "github.com/siteforge/siteforge/internal/domain/membership/valueobjects"
	shared "github.com/siteforge/siteforge/internal/domain/shared/valueobjects"
	"github.com/siteforge/siteforge/internal/shared/id"
)

// Addon is an extra product billed alongside the plan.
type Addon struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// Terms describe what a membership bills and how often.
type Terms struct {
	PlanID        uint            `json:"plan_id"`
	Addons        []Addon         `json:"addons,omitempty"`
	Currency      string          `json:"currency"`
	Period        shared.Period   `json:"period"`
	Amount        decimal.Decimal `json:"amount"`
	InitialAmount decimal.Decimal `json:"initial_amount"`
	Recurring     bool            `json:"recurring"`
	BillingCycles int             `json:"billing_cycles"`
}

// ScheduledSwap holds terms that replace the current ones at Date.
type ScheduledSwap struct {
	Terms Terms     `json:"terms"`
	Date  time.Time `json:"date"`
}

// Snapshot is the full persisted state of a membership.
type Snapshot struct {
	ID                       uint
	Hash                     string
	CustomerID               uint
	Terms                    Terms
	AutoRenew                bool
	TimesBilled              int
	Status                   vo.MembershipStatus
	DateActivated            *time.Time
	DateTrialEnd             *time.Time
	DateRenewed              *time.Time
	DateCancellation         *time.Time
	DateExpiration           *time.Time
	DatePaymentPlanCompleted *time.Time
	Gateway                  string
	GatewayCustomerID        string
	GatewaySubscriptionID    string
	DiscountCode             string
	ScheduledSwap            *ScheduledSwap
	Version                  int
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// Membership links a customer to a plan and its addons over a billing lifecycle.
type Membership struct {
	s              Snapshot
	skipValidation bool
}

// NewMembership creates a pending membership for customerID billed by terms.
func NewMembership(customerID uint, terms Terms, now time.Time) (*Membership, error) {
	if customerID == 0 {
		return nil, ErrCustomerRequired
	}
	if !terms.Period.IsZero() && !terms.Period.IsValid() {
		return nil, ErrInvalidPeriod
	}

	hash, err := id.NewMembershipHash()
	if err != nil {
		return nil, fmt.Errorf("failed to generate membership hash: %w", err)
	}

	return &Membership{s: Snapshot{
		Hash:       hash,
		CustomerID: customerID,
		Terms:      terms,
		Status:     vo.StatusPending,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}}, nil
}

// ReconstructMembership rebuilds a membership from persistence.
func ReconstructMembership(s Snapshot) (*Membership, error) {
	if s.ID == 0 {
		return nil, fmt.Errorf("membership ID cannot be zero")
	}
	if !s.Status.IsValid() {
		return nil, fmt.Errorf("invalid membership status: %s", s.Status)
	}
	return &Membership{s: s}, nil
}

// Snapshot returns a copy of the membership state for persistence.
func (m *Membership) Snapshot() Snapshot {
	return m.s
}

func (m *Membership) ID() uint                             { return m.s.ID }
func (m *Membership) Hash() string                         { return m.s.Hash }
func (m *Membership) CustomerID() uint                     { return m.s.CustomerID }
func (m *Membership) Terms() Terms                         { return m.s.Terms }
func (m *Membership) PlanID() uint                         { return m.s.Terms.PlanID }
func (m *Membership) Currency() string                     { return m.s.Terms.Currency }
func (m *Membership) Period() shared.Period                { return m.s.Terms.Period }
func (m *Membership) Amount() decimal.Decimal              { return m.s.Terms.Amount }
func (m *Membership) InitialAmount() decimal.Decimal       { return m.s.Terms.InitialAmount }
func (m *Membership) IsRecurring() bool                    { return m.s.Terms.Recurring }
func (m *Membership) AutoRenew() bool                      { return m.s.AutoRenew }
func (m *Membership) TimesBilled() int                     { return m.s.TimesBilled }
func (m *Membership) Status() vo.MembershipStatus          { return m.s.Status }
func (m *Membership) DateActivated() *time.Time            { return m.s.DateActivated }
func (m *Membership) DateTrialEnd() *time.Time             { return m.s.DateTrialEnd }
func (m *Membership) DateRenewed() *time.Time              { return m.s.DateRenewed }
func (m *Membership) DateCancellation() *time.Time         { return m.s.DateCancellation }
func (m *Membership) DateExpiration() *time.Time           { return m.s.DateExpiration }
func (m *Membership) DatePaymentPlanCompleted() *time.Time { return m.s.DatePaymentPlanCompleted }
func (m *Membership) Gateway() string                      { return m.s.Gateway }
func (m *Membership) GatewayCustomerID() string            { return m.s.GatewayCustomerID }
func (m *Membership) GatewaySubscriptionID() string        { return m.s.GatewaySubscriptionID }
func (m *Membership) DiscountCode() string                 { return m.s.DiscountCode }
func (m *Membership) ScheduledSwap() *ScheduledSwap        { return m.s.ScheduledSwap }
func (m *Membership) Version() int                         { return m.s.Version }
func (m *Membership) CreatedAt() time.Time                 { return m.s.CreatedAt }
func (m *Membership) UpdatedAt() time.Time                 { return m.s.UpdatedAt }
func (m *Membership) IsActive() bool                       { return m.s.Status.IsActive() }
func (m *Membership) SkipValidation() bool                 { return m.skipValidation }

// SetID sets the membership ID (only for persistence layer use)
func (m *Membership) SetID(id uint) error {
	if m.s.ID != 0 {
		return fmt.Errorf("membership ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("membership ID cannot be zero")
	}
	m.s.ID = id
	return nil
}

// IncrementVersion is called by the repository after a successful update.
func (m *Membership) IncrementVersion() {
	m.s.Version++
}

// SetSkipValidation lets the next status change bypass the transition table.
func (m *Membership) SetSkipValidation(skip bool) {
	m.skipValidation = skip
}

func (m *Membership) SetAutoRenew(autoRenew bool, now time.Time) {
	m.s.AutoRenew = autoRenew
	m.s.UpdatedAt = now
}

func (m *Membership) SetGateway(gateway, customerID, subscriptionID string, now time.Time) {
	m.s.Gateway = gateway
	m.s.GatewayCustomerID = customerID
	m.s.GatewaySubscriptionID = subscriptionID
	m.s.UpdatedAt = now
}

func (m *Membership) SetDiscountCode(code string) {
	m.s.DiscountCode = code
}

// DateOverrides replaces lifecycle dates. Nil fields are left untouched.
type DateOverrides struct {
	Activated            *time.Time
	TrialEnd             *time.Time
	Renewed              *time.Time
	Cancellation         *time.Time
	Expiration           *time.Time
	PaymentPlanCompleted *time.Time
}

func (m *Membership) ApplyDates(d DateOverrides, now time.Time) {
	if d.Activated != nil {
		m.s.DateActivated = utcPtr(*d.Activated)
	}
	if d.TrialEnd != nil {
		m.s.DateTrialEnd = utcPtr(*d.TrialEnd)
	}
	if d.Renewed != nil {
		m.s.DateRenewed = utcPtr(*d.Renewed)
	}
	if d.Cancellation != nil {
		m.s.DateCancellation = utcPtr(*d.Cancellation)
	}
	if d.Expiration != nil {
		m.s.DateExpiration = utcPtr(*d.Expiration)
	}
	if d.PaymentPlanCompleted != nil {
		m.s.DatePaymentPlanCompleted = utcPtr(*d.PaymentPlanCompleted)
	}
	m.s.UpdatedAt = now
}

// SetStatus moves the membership to target. The first activation and the first
// cancellation stamp their dates unless they were already set.
func (m *Membership) SetStatus(target vo.MembershipStatus, now time.Time) error {
	if !target.IsValid() {
		return fmt.Errorf("invalid membership status: %s", target)
	}
	if m.s.Status == target {
		return nil
	}
	if !m.skipValidation && !m.s.Status.CanTransitionTo(target) {
		return ErrInvalidTransition(m.s.Status.String(), target.String())
	}

	switch target {
	case vo.StatusActive:
		if m.s.DateActivated == nil {
			m.s.DateActivated = utcPtr(now)
		}
	case vo.StatusCancelled:
		if m.s.DateCancellation == nil {
			m.s.DateCancellation = utcPtr(now)
		}
	}

	m.s.Status = target
	m.s.UpdatedAt = now
	return nil
}

// Renew extends the expiration by one period from the later of now and the
// current expiration, and counts a billed cycle. A membership whose payment
// plan is complete stops renewing automatically.
func (m *Membership) Renew(now time.Time) error {
	if !m.s.Terms.Period.IsValid() {
		return ErrInvalidPeriod
	}

	base := now
	if m.s.DateExpiration != nil && m.s.DateExpiration.After(now) {
		base = *m.s.DateExpiration
	}
	m.s.DateExpiration = utcPtr(m.s.Terms.Period.AddTo(base))

	if err := m.SetStatus(vo.StatusActive, now); err != nil {
		return err
	}

	m.s.TimesBilled++
	m.s.DateRenewed = utcPtr(now)

	if m.s.Terms.BillingCycles > 0 && m.s.TimesBilled >= m.s.Terms.BillingCycles {
		m.s.DatePaymentPlanCompleted = utcPtr(now)
		m.s.AutoRenew = false
	}
	m.s.UpdatedAt = now
	return nil
}

// Cancel marks the membership cancelled. Cancelling twice is a no-op.
func (m *Membership) Cancel(now time.Time) error {
	if m.s.Status == vo.StatusCancelled {
		return nil
	}
	m.s.DateCancellation = utcPtr(now)
	return m.SetStatus(vo.StatusCancelled, now)
}

// Swap replaces the billed terms immediately.
func (m *Membership) Swap(terms Terms, now time.Time) {
	m.s.Terms = terms
	m.s.ScheduledSwap = nil
	m.s.UpdatedAt = now
}

// ScheduleSwap stores terms to be applied at date, usually the next expiration.
func (m *Membership) ScheduleSwap(terms Terms, date time.Time, now time.Time) {
	m.s.ScheduledSwap = &ScheduledSwap{Terms: terms, Date: date.UTC()}
	m.s.UpdatedAt = now
}

// ApplyScheduledSwap swaps to the scheduled terms once their date has passed.
func (m *Membership) ApplyScheduledSwap(now time.Time) error {
	if m.s.ScheduledSwap == nil {
		return ErrNothingScheduled
	}
	if now.Before(m.s.ScheduledSwap.Date) {
		return nil
	}
	m.Swap(m.s.ScheduledSwap.Terms, now)
	return nil
}

// NextSwapDate is the expiration date, or now for memberships that never expire.
func (m *Membership) NextSwapDate(now time.Time) time.Time {
	if m.s.DateExpiration != nil {
		return *m.s.DateExpiration
	}
	return now
}

func utcPtr(t time.Time) *time.Time {
	u := t.UTC()
	return &u
}
