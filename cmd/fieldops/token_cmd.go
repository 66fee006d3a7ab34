package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iota-uz/fieldops/pkg/configuration"
	"github.com/iota-uz/fieldops/pkg/jwtauth"
	"github.com/iota-uz/fieldops/pkg/tenancy"
)

type tokenFlags struct {
	subject    string
	role       string
	tenantID   string
	employeeID int64
	ttl        time.Duration
}

// newTokenCmd signs a development token with JWT_SECRET. Production tokens come from the
// identity provider.
func newTokenCmd() *cobra.Command {
	flags := &tokenFlags{}
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a development bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := configuration.Use()
			if conf.GoAppEnvironment == configuration.Production {
				return errors.New("token: refusing to sign tokens in production")
			}
			if conf.Auth.JWTSecret == "" {
				return errors.New("token: JWT_SECRET is not set")
			}
			identity, err := flags.identity()
			if err != nil {
				return err
			}
			token, err := jwtauth.Sign(conf.Auth.JWTSecret, conf.Auth.JWTIssuer, identity, flags.ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&flags.subject, "sub", "dev", "token subject")
	cmd.Flags().StringVar(&flags.role, "role", string(tenancy.RoleManager), "employee|manager|admin|superadmin")
	cmd.Flags().StringVar(&flags.tenantID, "tenant", "", "tenant id (omit for a superadmin god-mode token)")
	cmd.Flags().Int64Var(&flags.employeeID, "employee", 0, "linked employee id")
	cmd.Flags().DurationVar(&flags.ttl, "ttl", 12*time.Hour, "token lifetime")
	return cmd
}

func (f *tokenFlags) identity() (*tenancy.Identity, error) {
	role := tenancy.Role(f.role)
	if !role.Valid() {
		return nil, fmt.Errorf("token: unknown role %q", f.role)
	}
	identity := &tenancy.Identity{ID: f.subject, Role: role}
	if f.tenantID != "" {
		id, err := uuid.Parse(f.tenantID)
		if err != nil {
			return nil, fmt.Errorf("token: tenant: %w", err)
		}
		identity.TenantID = &id
	} else if role != tenancy.RoleSuperadmin {
		return nil, errors.New("token: --tenant is required for tenant roles")
	}
	if f.employeeID > 0 {
		identity.EmployeeID = &f.employeeID
	}
	return identity, nil
}
