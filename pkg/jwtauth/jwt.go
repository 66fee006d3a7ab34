// Package jwtauth verifies the bearer tokens issued by the identity provider and turns
// them into tenancy identities.
package jwtauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iota-uz/fieldops/pkg/tenancy"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Role       string `json:"role"`
	TenantID   string `json:"tenant_id,omitempty"`
	EmployeeID *int64 `json:"employee_id,omitempty"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Parse validates raw (HS256, exp required) and maps its claims onto an Identity.
func (v *Verifier) Parse(raw string) (*tenancy.Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims.Identity()
}

// Identity converts the claims. Role validity is checked later, when the session is resolved.
func (c *Claims) Identity() (*tenancy.Identity, error) {
	if c.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	identity := &tenancy.Identity{
		ID:         c.Subject,
		Role:       tenancy.Role(c.Role),
		EmployeeID: c.EmployeeID,
	}
	if c.TenantID != "" {
		id, err := uuid.Parse(c.TenantID)
		if err != nil {
			return nil, fmt.Errorf("%w: tenant_id: %w", ErrInvalidToken, err)
		}
		identity.TenantID = &id
	}
	return identity, nil
}

// Sign issues a token for identity. Used by the dev CLI and tests; production tokens
// come from the identity provider.
func Sign(secret, issuer string, identity *tenancy.Identity, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Role:       string(identity.Role),
		EmployeeID: identity.EmployeeID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if identity.TenantID != nil {
		claims.TenantID = identity.TenantID.String()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
