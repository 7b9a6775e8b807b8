package customer

import (
	"fmt"
	"slices"
	"strings"
	"time"

	vo "github.com/siteforge/siteforge/internal/domain/customer/valueobjects"
)

const (
	minUsernameLength = 4
	minPasswordLength = 6
	maxTrackedIPs     = 10
)

// PasswordHasher hashes and verifies customer passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) error
}

// Customer is the billing identity behind memberships and payments.
type Customer struct {
	id             uint
	userID         uint
	username       string
	email          vo.Email
	passwordHash   string
	billingAddress vo.BillingAddress
	vip            bool
	lastLogin      *time.Time
	ips            []string
	version        int
	createdAt      time.Time
	updatedAt      time.Time
}

// NewCustomer creates a customer with its own login. The external user ID is
// assigned on save.
func NewCustomer(username, email, password string, hasher PasswordHasher, now time.Time) (*Customer, error) {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLength {
		return nil, ErrInvalidUsername
	}
	if len(password) < minPasswordLength {
		return nil, ErrInvalidPassword
	}
	addr, err := vo.NewEmail(email)
	if err != nil {
		return nil, err
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return &Customer{
		username:     username,
		email:        addr,
		passwordHash: hash,
		version:      1,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// NewCustomerForUser creates a customer bound to an existing external user.
func NewCustomerForUser(userID uint, username, email string, now time.Time) (*Customer, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	c := &Customer{
		userID:    userID,
		username:  strings.TrimSpace(username),
		version:   1,
		createdAt: now,
		updatedAt: now,
	}
	if email != "" {
		addr, err := vo.NewEmail(email)
		if err != nil {
			return nil, err
		}
		c.email = addr
	}
	return c, nil
}

// ReconstructCustomer rebuilds a customer from persistence.
func ReconstructCustomer(
	id, userID uint,
	username, email, passwordHash string,
	billingAddress vo.BillingAddress,
	vip bool,
	lastLogin *time.Time,
	ips []string,
	version int,
	createdAt, updatedAt time.Time,
) (*Customer, error) {
	if id == 0 {
		return nil, fmt.Errorf("customer ID cannot be zero")
	}
	return &Customer{
		id:             id,
		userID:         userID,
		username:       username,
		email:          vo.Email(email),
		passwordHash:   passwordHash,
		billingAddress: billingAddress,
		vip:            vip,
		lastLogin:      lastLogin,
		ips:            ips,
		version:        version,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}, nil
}

func (c *Customer) ID() uint                          { return c.id }
func (c *Customer) Username() string                  { return c.username }
func (c *Customer) Email() string                     { return c.email.String() }
func (c *Customer) PasswordHash() string              { return c.passwordHash }
func (c *Customer) BillingAddress() vo.BillingAddress { return c.billingAddress }
func (c *Customer) IsVIP() bool                       { return c.vip }
func (c *Customer) LastLogin() *time.Time             { return c.lastLogin }
func (c *Customer) IPs() []string                     { return slices.Clone(c.ips) }
func (c *Customer) Version() int                      { return c.version }
func (c *Customer) CreatedAt() time.Time              { return c.createdAt }
func (c *Customer) UpdatedAt() time.Time              { return c.updatedAt }

// UserID is the external user reference. Customers created with their own
// login use their customer ID.
func (c *Customer) UserID() uint {
	if c.userID == 0 {
		return c.id
	}
	return c.userID
}

// SetID sets the customer ID (only for persistence layer use)
func (c *Customer) SetID(id uint) error {
	if c.id != 0 {
		return fmt.Errorf("customer ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("customer ID cannot be zero")
	}
	c.id = id
	return nil
}

func (c *Customer) IncrementVersion() {
	c.version++
}

func (c *Customer) SetVIP(vip bool, now time.Time) {
	c.vip = vip
	c.updatedAt = now
}

func (c *Customer) SetBillingAddress(addr vo.BillingAddress, now time.Time) {
	c.billingAddress = addr.Normalize()
	c.updatedAt = now
}

// UpdateLastLogin records a login and remembers the client IP.
func (c *Customer) UpdateLastLogin(ip string, now time.Time) {
	t := now.UTC()
	c.lastLogin = &t
	c.updatedAt = now

	if ip == "" || slices.Contains(c.ips, ip) {
		return
	}
	c.ips = append(c.ips, ip)
	if len(c.ips) > maxTrackedIPs {
		c.ips = c.ips[len(c.ips)-maxTrackedIPs:]
	}
}

func (c *Customer) CheckPassword(password string, hasher PasswordHasher) error {
	if c.passwordHash == "" {
		return ErrWrongPassword
	}
	if err := hasher.Verify(password, c.passwordHash); err != nil {
		return ErrWrongPassword
	}
	return nil
}
