package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/siteforge/siteforge/internal/shared/biztime"
)

const invoiceTokenIssuer = "siteforge-invoice"

var ErrInvoiceTokenMismatch = errors.New("invoice token does not match the payment")

// InvoiceClaims authorize viewing the invoice of one payment.
type InvoiceClaims struct {
	Reference string `json:"ref"`
	jwt.RegisteredClaims
}

// InvoiceTokenService signs and verifies invoice link keys.
type InvoiceTokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewInvoiceTokenService(secret string, ttl time.Duration) (*InvoiceTokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("invoice token secret is required")
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &InvoiceTokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    biztime.NowUTC,
	}, nil
}

// Issue returns a key for the invoice of the payment with reference.
func (s *InvoiceTokenService) Issue(reference string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)

	claims := &InvoiceClaims{
		Reference: reference,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    invoiceTokenIssuer,
			Subject:   reference,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign invoice token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks key and that it was issued for reference.
func (s *InvoiceTokenService) Verify(key, reference string) error {
	token, err := jwt.ParseWithClaims(key, &InvoiceClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(invoiceTokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("failed to parse invoice token: %w", err)
	}

	claims, ok := token.Claims.(*InvoiceClaims)
	if !ok || !token.Valid {
		return fmt.Errorf("invalid invoice token")
	}
	if claims.Reference != reference {
		return ErrInvoiceTokenMismatch
	}
	return nil
}
