package site

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPublished Status = "published"
)

type Type string

const (
	TypeCustomerOwned Type = "customer_owned"
)

// Network describes how customer sites are addressed.
type Network struct {
	Domain    string
	Subdomain bool
}

// DomainAndPath returns where a site named siteURL lives on the network:
// "<name>.<domain>" at "/" for subdomain networks, or "<domain>" at
// "/<name>/" for subdirectory networks.
func DomainAndPath(siteURL string, network Network) (domain, path string) {
	name := strings.ToLower(strings.Trim(strings.TrimSpace(siteURL), "/"))
	if network.Subdomain {
		return name + "." + network.Domain, "/"
	}
	return network.Domain, "/" + name + "/"
}

// Site is a customer site, pending until its membership starts.
type Site struct {
	id           uint
	blogID       uint
	customerID   uint
	membershipID uint
	domain       string
	path         string
	title        string
	templateID   uint
	siteType     Type
	status       Status
	signupMeta   map[string]any
	signupOpts   map[string]any
	createdAt    time.Time
	publishedAt  *time.Time
}

// PendingSiteParams carries what the registration call asks for.
type PendingSiteParams struct {
	CustomerID    uint
	MembershipID  uint
	Domain        string
	Path          string
	Title         string
	TemplateID    uint
	SignupMeta    map[string]any
	SignupOptions map[string]any
}

func NewPendingSite(p PendingSiteParams, now time.Time) (*Site, error) {
	if p.CustomerID == 0 || p.MembershipID == 0 {
		return nil, fmt.Errorf("customer and membership are required")
	}
	if p.Domain == "" || p.Path == "" {
		return nil, fmt.Errorf("domain and path are required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return nil, fmt.Errorf("site title is required")
	}
	return &Site{
		customerID:   p.CustomerID,
		membershipID: p.MembershipID,
		domain:       p.Domain,
		path:         p.Path,
		title:        strings.TrimSpace(p.Title),
		templateID:   p.TemplateID,
		siteType:     TypeCustomerOwned,
		status:       StatusPending,
		signupMeta:   p.SignupMeta,
		signupOpts:   p.SignupOptions,
		createdAt:    now,
	}, nil
}

// ReconstructSite rebuilds a site from persistence.
func ReconstructSite(
	id, blogID, customerID, membershipID uint,
	domain, path, title string,
	templateID uint,
	siteType Type,
	status Status,
	signupMeta, signupOptions map[string]any,
	createdAt time.Time,
	publishedAt *time.Time,
) *Site {
	return &Site{
		id:           id,
		blogID:       blogID,
		customerID:   customerID,
		membershipID: membershipID,
		domain:       domain,
		path:         path,
		title:        title,
		templateID:   templateID,
		siteType:     siteType,
		status:       status,
		signupMeta:   signupMeta,
		signupOpts:   signupOptions,
		createdAt:    createdAt,
		publishedAt:  publishedAt,
	}
}

func (s *Site) ID() uint                      { return s.id }
func (s *Site) BlogID() uint                  { return s.blogID }
func (s *Site) CustomerID() uint              { return s.customerID }
func (s *Site) MembershipID() uint            { return s.membershipID }
func (s *Site) Domain() string                { return s.domain }
func (s *Site) Path() string                  { return s.path }
func (s *Site) Title() string                 { return s.title }
func (s *Site) TemplateID() uint              { return s.templateID }
func (s *Site) Type() Type                    { return s.siteType }
func (s *Site) Status() Status                { return s.status }
func (s *Site) SignupMeta() map[string]any    { return s.signupMeta }
func (s *Site) SignupOptions() map[string]any { return s.signupOpts }
func (s *Site) CreatedAt() time.Time          { return s.createdAt }
func (s *Site) PublishedAt() *time.Time       { return s.publishedAt }
func (s *Site) IsPending() bool               { return s.status == StatusPending }

// SetID sets the site ID (only for persistence layer use)
func (s *Site) SetID(id uint) {
	s.id = id
}

// URL is the public address of the site.
func (s *Site) URL() string {
	return "https://" + s.domain + s.path
}

// Publish marks the site live under blogID. Publishing twice is a no-op.
func (s *Site) Publish(blogID uint, now time.Time) error {
	if s.status == StatusPublished {
		return nil
	}
	if blogID == 0 {
		return fmt.Errorf("blog ID is required to publish a site")
	}
	t := now.UTC()
	s.blogID = blogID
	s.status = StatusPublished
	s.publishedAt = &t
	return nil
}
