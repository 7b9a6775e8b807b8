package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	membershipdto "github.com/siteforge/siteforge/internal/application/membership/dto"
	paymentdto "github.com/siteforge/siteforge/internal/application/payment/dto"
	"github.com/siteforge/siteforge/internal/domain/customer"
	customervo "github.com/siteforge/siteforge/internal/domain/customer/valueobjects"
	"github.com/siteforge/siteforge/internal/shared/utils"
)

func init() {
	utils.Validator().RegisterStructValidation(validateCustomerRules, RegisterRequest{})
}

// ProductRefs accepts product IDs and slugs, as numbers or strings.
type ProductRefs []string

func (r *ProductRefs) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("products must be a list: %w", err)
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		item = bytes.TrimSpace(item)
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var n uint64
		if err := json.Unmarshal(item, &n); err != nil {
			return fmt.Errorf("invalid product reference %s", item)
		}
		out = append(out, strconv.FormatUint(n, 10))
	}
	*r = out
	return nil
}

type CustomerParams struct {
	UserID         uint                       `json:"user_id"`
	Username       string                     `json:"username" validate:"omitempty,min=4"`
	Password       string                     `json:"password" validate:"omitempty,min=6"`
	Email          string                     `json:"email" validate:"omitempty,email"`
	BillingAddress *customervo.BillingAddress `json:"billing_address"`
}

type MembershipParams struct {
	Status                   string     `json:"status" validate:"omitempty,oneof=pending trialing active on-hold expired cancelled"`
	DateExpiration           *time.Time `json:"date_expiration"`
	DateTrialEnd             *time.Time `json:"date_trial_end"`
	DateActivated            *time.Time `json:"date_activated"`
	DateRenewed              *time.Time `json:"date_renewed"`
	DateCancellation         *time.Time `json:"date_cancellation"`
	DatePaymentPlanCompleted *time.Time `json:"date_payment_plan_completed"`
}

type PaymentParams struct {
	Status string `json:"status" validate:"omitempty,oneof=pending completed refunded partially-refunded partially-paid failed cancelled"`
}

type PaymentMethodParams struct {
	Gateway               string `json:"gateway" validate:"omitempty,max=80"`
	GatewayCustomerID     string `json:"gateway_customer_id" validate:"omitempty,max=255"`
	GatewaySubscriptionID string `json:"gateway_subscription_id" validate:"omitempty,max=255"`
	GatewayPaymentID      string `json:"gateway_payment_id" validate:"omitempty,max=255"`
}

type SiteParams struct {
	SiteURL    string         `json:"site_url" validate:"required,alphanum,min=4,lowercase"`
	SiteTitle  string         `json:"site_title" validate:"required,min=4"`
	Publish    bool           `json:"publish"`
	TemplateID uint           `json:"template_id"`
	SiteMeta   map[string]any `json:"site_meta"`
	SiteOption map[string]any `json:"site_option"`
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	CustomerID    uint                 `json:"customer_id"`
	Customer      *CustomerParams      `json:"customer"`
	Membership    *MembershipParams    `json:"membership"`
	Payment       *PaymentParams       `json:"payment"`
	PaymentMethod *PaymentMethodParams `json:"payment_method"`
	Products      ProductRefs          `json:"products" validate:"omitempty,unique,dive,required"`
	Duration      int                  `json:"duration" validate:"omitempty,gte=1"`
	DurationUnit  string               `json:"duration_unit" validate:"duration_unit"`
	DiscountCode  string               `json:"discount_code" validate:"omitempty,max=64"`
	AutoRenew     bool                 `json:"auto_renew"`
	Country       string               `json:"country" validate:"omitempty,len=2"`
	Currency      string               `json:"currency" validate:"omitempty,len=3"`
	Site          *SiteParams          `json:"site"`

	// IP is the caller address, filled by the handler.
	IP string `json:"-"`
}

// validateCustomerRules enforces the rules that span customer_id and the
// nested customer object.
func validateCustomerRules(sl validator.StructLevel) {
	req := sl.Current().Interface().(RegisterRequest)

	if req.CustomerID != 0 {
		return
	}
	if req.Customer == nil {
		sl.ReportError(req.CustomerID, "customer_id", "CustomerID", "required_without", "customer")
		sl.ReportError(req.Customer, "customer", "Customer", "required_without", "customer_id")
		return
	}

	c := req.Customer
	if c.UserID != 0 {
		return
	}
	if c.Username == "" {
		sl.ReportError(c.Username, "customer.username", "Username", "required_without", "customer_id")
	}
	if c.Password == "" {
		sl.ReportError(c.Password, "customer.password", "Password", "required_without", "customer_id")
	}
	if c.Email == "" {
		sl.ReportError(c.Email, "customer.email", "Email", "required_without", "customer_id")
	}
	if c.Username == "" && c.Password == "" && c.Email == "" {
		sl.ReportError(c.UserID, "customer.user_id", "UserID", "required_without_all", "username password email")
	}
}

type CustomerResponse struct {
	ID             uint                      `json:"id"`
	UserID         uint                      `json:"user_id"`
	Username       string                    `json:"username"`
	Email          string                    `json:"email"`
	VIP            bool                      `json:"vip"`
	BillingAddress customervo.BillingAddress `json:"billing_address"`
	LastLogin      *time.Time                `json:"last_login"`
	CreatedAt      time.Time                 `json:"date_registered"`
}

func ToCustomerResponse(c *customer.Customer) *CustomerResponse {
	return &CustomerResponse{
		ID:             c.ID(),
		UserID:         c.UserID(),
		Username:       c.Username(),
		Email:          c.Email(),
		VIP:            c.IsVIP(),
		BillingAddress: c.BillingAddress(),
		LastLogin:      c.LastLogin(),
		CreatedAt:      c.CreatedAt(),
	}
}

type SiteResponse struct {
	ID     uint   `json:"id"`
	BlogID uint   `json:"blog_id,omitempty"`
	URL    string `json:"url,omitempty"`
	Title  string `json:"title,omitempty"`
	Status string `json:"status,omitempty"`
}

type RegisterResponse struct {
	Membership *membershipdto.MembershipResponse `json:"membership"`
	Customer   *CustomerResponse                 `json:"customer"`
	Payment    *paymentdto.PaymentResponse       `json:"payment"`
	Site       SiteResponse                      `json:"site"`
}
