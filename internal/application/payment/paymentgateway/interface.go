package paymentgateway

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/siteforge/siteforge/internal/application/checkout"
	"github.com/siteforge/siteforge/internal/domain/customer"
	"github.com/siteforge/siteforge/internal/domain/membership"
	"github.com/siteforge/siteforge/internal/domain/payment"
)

var ErrGatewayNotFound = errors.New("payment gateway not found")

// Gateway defines the interface for payment processor integrations.
// Every Process* method signals failure by returning an error; callers run
// them inside a transaction and roll back on error.
type Gateway interface {
	ID() string
	SupportsRecurringPayments() bool
	SupportsFreeTrials() bool

	ProcessCheckout(ctx context.Context, p *payment.Payment, m *membership.Membership, c *customer.Customer, cart *checkout.Cart, cartType checkout.CartType) error
	ProcessCancellation(ctx context.Context, m *membership.Membership, c *customer.Customer) error
	// ProcessRefund refunds amount of p. A zero amount refunds the full total.
	ProcessRefund(ctx context.Context, amount decimal.Decimal, p *payment.Payment, m *membership.Membership, c *customer.Customer) error
	ProcessMembershipUpdate(ctx context.Context, m *membership.Membership, c *customer.Customer) error

	// AmountUpdateMessage explains what happens when a membership amount changes.
	AmountUpdateMessage(customerView bool) string
}

// Store saves the records a gateway changes. It must be called with the
// caller's transaction context.
type Store interface {
	SavePayment(ctx context.Context, p *payment.Payment) error
	SaveMembership(ctx context.Context, m *membership.Membership) error
}

type repositoryStore struct {
	payments    payment.Repository
	memberships membership.Repository
}

// NewRepositoryStore creates a Store that inserts new records and updates existing ones.
func NewRepositoryStore(payments payment.Repository, memberships membership.Repository) Store {
	return &repositoryStore{payments: payments, memberships: memberships}
}

func (s *repositoryStore) SavePayment(ctx context.Context, p *payment.Payment) error {
	if p.ID() == 0 {
		return s.payments.Create(ctx, p)
	}
	return s.payments.Update(ctx, p)
}

func (s *repositoryStore) SaveMembership(ctx context.Context, m *membership.Membership) error {
	if m.ID() == 0 {
		return s.memberships.Create(ctx, m)
	}
	return s.memberships.Update(ctx, m)
}

// Registry maps gateway IDs to gateways.
type Registry struct {
	mu       sync.RWMutex
	gateways map[string]Gateway
}

func NewRegistry(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[string]Gateway, len(gateways))}
	for _, g := range gateways {
		r.Register(g)
	}
	return r
}

func (r *Registry) Register(g Gateway) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gateways[g.ID()] = g
}

// Get returns the gateway registered as id.
func (r *Registry) Get(id string) (Gateway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.gateways[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrGatewayNotFound, id)
	}
	return g, nil
}

// IDs lists the registered gateway IDs in lexical order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.gateways))
	for id := range r.gateways {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
