// Package testutil provides in-memory repositories for testing the billing
// application layer.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/siteforge/siteforge/internal/domain/customer"
	"github.com/siteforge/siteforge/internal/domain/discount"
	"github.com/siteforge/siteforge/internal/domain/membership"
	"github.com/siteforge/siteforge/internal/domain/note"
	"github.com/siteforge/siteforge/internal/domain/payment"
	"github.com/siteforge/siteforge/internal/domain/product"
	"github.com/siteforge/siteforge/internal/domain/shared/events"
	"github.com/siteforge/siteforge/internal/domain/site"
)

// ErrInjected is returned by repositories configured to fail.
var ErrInjected = errors.New("injected failure")

// Tx runs fn without a database. Calls counts the transactions opened.
type Tx struct {
	Calls int
}

func (t *Tx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.Calls++
	return fn(ctx)
}

// PlainHasher prefixes passwords instead of hashing them.
type PlainHasher struct{}

func (PlainHasher) Hash(password string) (string, error) { return "plain:" + password, nil }

func (PlainHasher) Verify(password, hash string) error {
	if hash != "plain:"+password {
		return customer.ErrWrongPassword
	}
	return nil
}

type CustomerRepository struct {
	mu        sync.Mutex
	customers map[uint]*customer.Customer
	nextID    uint
	nextUser  uint

	CreateErr error
}

func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{customers: make(map[uint]*customer.Customer), nextUser: 1000}
}

func (r *CustomerRepository) Create(_ context.Context, c *customer.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateErr != nil {
		return r.CreateErr
	}
	for _, existing := range r.customers {
		if (c.Username() != "" && existing.Username() == c.Username()) ||
			(c.Email() != "" && existing.Email() == c.Email()) {
			return customer.ErrCustomerExists
		}
	}
	r.nextID++
	if err := c.SetID(r.nextID); err != nil {
		return err
	}
	r.customers[c.ID()] = c
	return nil
}

// Add stores an already built customer, assigning an ID when it has none.
func (r *CustomerRepository) Add(c *customer.Customer) *customer.Customer {
	if c.ID() == 0 {
		_ = r.Create(context.Background(), c)
		return c
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers[c.ID()] = c
	if c.ID() > r.nextID {
		r.nextID = c.ID()
	}
	return c
}

func (r *CustomerRepository) Update(_ context.Context, c *customer.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.customers[c.ID()]; !ok {
		return customer.ErrCustomerNotFound
	}
	r.customers[c.ID()] = c
	return nil
}

func (r *CustomerRepository) GetByID(_ context.Context, id uint) (*customer.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.customers[id]; ok {
		return c, nil
	}
	return nil, customer.ErrCustomerNotFound
}

func (r *CustomerRepository) GetByUserID(_ context.Context, userID uint) (*customer.Customer, error) {
	return r.find(func(c *customer.Customer) bool { return c.UserID() == userID })
}

func (r *CustomerRepository) GetByEmail(_ context.Context, email string) (*customer.Customer, error) {
	return r.find(func(c *customer.Customer) bool { return c.Email() == email })
}

func (r *CustomerRepository) GetByUsername(_ context.Context, username string) (*customer.Customer, error) {
	return r.find(func(c *customer.Customer) bool { return c.Username() == username })
}

func (r *CustomerRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.customers)
}

func (r *CustomerRepository) find(match func(*customer.Customer) bool) (*customer.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if match(c) {
			return c, nil
		}
	}
	return nil, customer.ErrCustomerNotFound
}

type MembershipRepository struct {
	mu          sync.Mutex
	memberships map[uint]*membership.Membership
	nextID      uint

	UpdateErr error
}

func NewMembershipRepository() *MembershipRepository {
	return &MembershipRepository{memberships: make(map[uint]*membership.Membership)}
}

func (r *MembershipRepository) Create(_ context.Context, m *membership.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	if err := m.SetID(r.nextID); err != nil {
		return err
	}
	r.memberships[m.ID()] = m
	return nil
}

// Add stores an already built membership, assigning an ID when it has none.
func (r *MembershipRepository) Add(m *membership.Membership) *membership.Membership {
	if m.ID() == 0 {
		_ = r.Create(context.Background(), m)
		return m
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.memberships[m.ID()] = m
	if m.ID() > r.nextID {
		r.nextID = m.ID()
	}
	return m
}

func (r *MembershipRepository) Update(_ context.Context, m *membership.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	if _, ok := r.memberships[m.ID()]; !ok {
		return membership.ErrMembershipNotFound
	}
	m.IncrementVersion()
	r.memberships[m.ID()] = m
	return nil
}

func (r *MembershipRepository) GetByID(_ context.Context, id uint) (*membership.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.memberships[id]; ok {
		return m, nil
	}
	return nil, membership.ErrMembershipNotFound
}

func (r *MembershipRepository) GetByHash(_ context.Context, hash string) (*membership.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.memberships {
		if m.Hash() == hash {
			return m, nil
		}
	}
	return nil, membership.ErrMembershipNotFound
}

func (r *MembershipRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.memberships)
}

func (r *MembershipRepository) Find(_ context.Context, f membership.Filter) ([]*membership.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]uint, 0, len(r.memberships))
	for id := range r.memberships {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var out []*membership.Membership
	for _, id := range ids {
		m := r.memberships[id]
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, m.Status()) {
			continue
		}
		if f.AutoRenew != nil && m.AutoRenew() != *f.AutoRenew {
			continue
		}
		if f.CustomerID != 0 && m.CustomerID() != f.CustomerID {
			continue
		}
		if f.ExpirationNotNull && m.DateExpiration() == nil {
			continue
		}
		if !inRange(m.DateExpiration(), f.ExpirationAfter, f.ExpirationBefore) {
			continue
		}
		if !inRange(m.DateTrialEnd(), nil, f.TrialEndBefore) {
			continue
		}
		out = append(out, m)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func inRange(t, after, before *time.Time) bool {
	if after == nil && before == nil {
		return true
	}
	if t == nil {
		return false
	}
	if after != nil && t.Before(*after) {
		return false
	}
	if before != nil && t.After(*before) {
		return false
	}
	return true
}

type PaymentRepository struct {
	mu       sync.Mutex
	payments map[uint]*payment.Payment
	nextID   uint

	UpdateErr error
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{payments: make(map[uint]*payment.Payment)}
}

func (r *PaymentRepository) Create(_ context.Context, p *payment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	if err := p.SetID(r.nextID); err != nil {
		return err
	}
	r.payments[p.ID()] = p
	return nil
}

// Add stores an already built payment, assigning an ID when it has none.
func (r *PaymentRepository) Add(p *payment.Payment) *payment.Payment {
	if p.ID() == 0 {
		_ = r.Create(context.Background(), p)
		return p
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[p.ID()] = p
	if p.ID() > r.nextID {
		r.nextID = p.ID()
	}
	return p
}

func (r *PaymentRepository) Update(_ context.Context, p *payment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	if _, ok := r.payments[p.ID()]; !ok {
		return payment.ErrPaymentNotFound
	}
	p.IncrementVersion()
	r.payments[p.ID()] = p
	return nil
}

func (r *PaymentRepository) GetByID(_ context.Context, id uint) (*payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.payments[id]; ok {
		return p, nil
	}
	return nil, payment.ErrPaymentNotFound
}

func (r *PaymentRepository) GetByHash(_ context.Context, hash string) (*payment.Payment, error) {
	return r.find(func(p *payment.Payment) bool { return p.Hash() == hash })
}

func (r *PaymentRepository) GetByGatewayPaymentID(_ context.Context, gateway, gatewayPaymentID string) (*payment.Payment, error) {
	return r.find(func(p *payment.Payment) bool {
		return p.Gateway() == gateway && p.GatewayPaymentID() == gatewayPaymentID
	})
}

func (r *PaymentRepository) GetLastPendingByMembership(_ context.Context, membershipID uint) (*payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var last *payment.Payment
	for _, p := range r.payments {
		if p.MembershipID() != membershipID || !p.Status().IsPending() {
			continue
		}
		if last == nil || p.ID() > last.ID() {
			last = p
		}
	}
	return last, nil
}

func (r *PaymentRepository) ListByMembership(_ context.Context, membershipID uint) ([]*payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*payment.Payment
	for _, p := range r.payments {
		if p.MembershipID() == membershipID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b *payment.Payment) int { return int(a.ID()) - int(b.ID()) })
	return out, nil
}

func (r *PaymentRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payments)
}

func (r *PaymentRepository) find(match func(*payment.Payment) bool) (*payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if match(p) {
			return p, nil
		}
	}
	return nil, payment.ErrPaymentNotFound
}

type SiteRepository struct {
	mu         sync.Mutex
	sites      map[uint]*site.Site
	nextID     uint
	nextBlogID uint
}

func NewSiteRepository() *SiteRepository {
	return &SiteRepository{sites: make(map[uint]*site.Site), nextBlogID: 1}
}

func (r *SiteRepository) Create(_ context.Context, s *site.Site) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s.SetID(r.nextID)
	r.sites[s.ID()] = s
	return nil
}

func (r *SiteRepository) Update(_ context.Context, s *site.Site) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sites[s.ID()]; !ok {
		return site.ErrSiteNotFound
	}
	r.sites[s.ID()] = s
	return nil
}

func (r *SiteRepository) GetByID(_ context.Context, id uint) (*site.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sites[id]; ok {
		return s, nil
	}
	return nil, site.ErrSiteNotFound
}

func (r *SiteRepository) GetPendingByMembership(_ context.Context, membershipID uint) (*site.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sites {
		if s.MembershipID() == membershipID && s.IsPending() {
			return s, nil
		}
	}
	return nil, nil
}

func (r *SiteRepository) ListByMembership(_ context.Context, membershipID uint) ([]*site.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*site.Site
	for _, s := range r.sites {
		if s.MembershipID() == membershipID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *SiteRepository) ExistsByDomainPath(_ context.Context, domain, path string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sites {
		if s.Domain() == domain && s.Path() == path {
			return true, nil
		}
	}
	return false, nil
}

func (r *SiteRepository) NextBlogID(_ context.Context) (uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextBlogID++
	return r.nextBlogID, nil
}

type NoteRepository struct {
	mu    sync.Mutex
	notes []*note.Note
}

func NewNoteRepository() *NoteRepository {
	return &NoteRepository{}
}

func (r *NoteRepository) Create(_ context.Context, n *note.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.SetID(uint(len(r.notes) + 1))
	r.notes = append(r.notes, n)
	return nil
}

func (r *NoteRepository) List(_ context.Context, subject note.Subject) ([]*note.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*note.Note
	for i := len(r.notes) - 1; i >= 0; i-- {
		if r.notes[i].Subject() == subject {
			out = append(out, r.notes[i])
		}
	}
	return out, nil
}

func (r *NoteRepository) Clear(_ context.Context, subject note.Subject) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.notes[:0]
	var removed int64
	for _, n := range r.notes {
		if n.Subject() == subject {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	r.notes = kept
	return removed, nil
}

func (r *NoteRepository) Delete(_ context.Context, subject note.Subject, noteID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.notes {
		if n.Subject() == subject && n.NoteID() == noteID {
			r.notes = append(r.notes[:i], r.notes[i+1:]...)
			return nil
		}
	}
	return note.ErrNoteNotFound
}

// Texts returns the note texts of subject, oldest first.
func (r *NoteRepository) Texts(subject note.Subject) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.notes {
		if n.Subject() == subject {
			out = append(out, n.Text())
		}
	}
	return out
}

// Catalog is an in-memory product catalog.
type Catalog map[uint]*product.Product

func (c Catalog) GetByID(_ context.Context, id uint) (*product.Product, error) {
	if p, ok := c[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s", product.ErrProductNotFound, strconv.FormatUint(uint64(id), 10))
}

func (c Catalog) GetBySlug(_ context.Context, slug string) (*product.Product, error) {
	for _, p := range c {
		if p.Slug() == slug {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", product.ErrProductNotFound, slug)
}

// NoDiscounts knows no discount codes.
type NoDiscounts struct{}

func (NoDiscounts) GetByCode(context.Context, string) (*discount.DiscountCode, error) {
	return nil, discount.ErrDiscountNotFound
}

// DiscountRepository keeps discount codes and their redemption counts.
type DiscountRepository struct {
	mu    sync.Mutex
	codes map[uint]*discount.DiscountCode
}

func NewDiscountRepository(codes ...*discount.DiscountCode) *DiscountRepository {
	r := &DiscountRepository{codes: make(map[uint]*discount.DiscountCode)}
	for _, d := range codes {
		_ = r.Upsert(context.Background(), d)
	}
	return r
}

func (r *DiscountRepository) GetByCode(_ context.Context, code string) (*discount.DiscountCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	code = discount.NormalizeCode(code)
	for _, d := range r.codes {
		if d.Code() == code {
			return discount.ReconstructDiscountCode(d.ID(), d.Attributes(), d.Uses(), d.CreatedAt(), d.UpdatedAt()), nil
		}
	}
	return nil, discount.ErrDiscountNotFound
}

func (r *DiscountRepository) IncrementUses(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.codes[id]
	if !ok {
		return discount.ErrDiscountNotFound
	}
	attrs := d.Attributes()
	if attrs.MaxUses > 0 && d.Uses() >= attrs.MaxUses {
		return discount.ErrMaxUsesReached
	}
	r.codes[id] = discount.ReconstructDiscountCode(id, attrs, d.Uses()+1, d.CreatedAt(), d.UpdatedAt())
	return nil
}

func (r *DiscountRepository) Upsert(_ context.Context, d *discount.DiscountCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID() == 0 {
		d.SetID(uint(len(r.codes) + 1))
	}
	r.codes[d.ID()] = d
	return nil
}

// Uses returns the redemption count of the code with the given id.
func (r *DiscountRepository) Uses(id uint) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.codes[id]; ok {
		return d.Uses()
	}
	return 0
}

// Queue records enqueued actions.
type Queue struct {
	mu    sync.Mutex
	Tasks []QueuedTask
	Err   error
}

type QueuedTask struct {
	Action  string
	Payload any
}

func (q *Queue) Enqueue(_ context.Context, action string, payload any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.Err != nil {
		return q.Err
	}
	q.Tasks = append(q.Tasks, QueuedTask{Action: action, Payload: payload})
	return nil
}

// Publisher records published domain events.
type Publisher struct {
	mu     sync.Mutex
	Events []events.DomainEvent
}

func (p *Publisher) Publish(event events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return nil
}

func (p *Publisher) PublishAll(evts []events.DomainEvent) error {
	for _, e := range evts {
		if err := p.Publish(e); err != nil {
			return err
		}
	}
	return nil
}
