package jwtauth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/fieldops/pkg/tenancy"
)

func TestSignParseRoundTrip(t *testing.T) {
	tenantID := uuid.New()
	employeeID := int64(42)
	token, err := Sign("secret", "fieldops", &tenancy.Identity{
		ID:         "user-1",
		Role:       tenancy.RoleManager,
		TenantID:   &tenantID,
		EmployeeID: &employeeID,
	}, time.Minute)
	require.NoError(t, err)

	identity, err := NewVerifier("secret", "fieldops").Parse(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", identity.ID)
	require.Equal(t, tenancy.RoleManager, identity.Role)
	require.Equal(t, tenantID, *identity.TenantID)
	require.Equal(t, int64(42), *identity.EmployeeID)
}

func TestParseRejects(t *testing.T) {
	superadmin := &tenancy.Identity{ID: "root", Role: tenancy.RoleSuperadmin}

	wrongSecret, err := Sign("other", "", superadmin, time.Minute)
	require.NoError(t, err)
	expired, err := Sign("secret", "", superadmin, -time.Minute)
	require.NoError(t, err)
	wrongIssuer, err := Sign("secret", "someone-else", superadmin, time.Minute)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "root", "role": "superadmin"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	v := NewVerifier("secret", "fieldops")
	for name, token := range map[string]string{
		"wrong secret": wrongSecret,
		"expired":      expired,
		"wrong issuer": wrongIssuer,
		"alg none":     none,
		"garbage":      "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := v.Parse(token)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestClaimsIdentity(t *testing.T) {
	_, err := (&Claims{Role: "admin"}).Identity()
	require.ErrorIs(t, err, ErrInvalidToken)

	c := &Claims{Role: "admin", TenantID: "nope"}
	c.Subject = "u"
	_, err = c.Identity()
	require.ErrorIs(t, err, ErrInvalidToken)

	c.TenantID = ""
	identity, err := c.Identity()
	require.NoError(t, err)
	require.Nil(t, identity.TenantID)
}
