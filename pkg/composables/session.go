package composables

import (
	"context"
	"errors"

	"github.com/iota-uz/fieldops/pkg/constants"
	"github.com/iota-uz/fieldops/pkg/tenancy"
)

var (
	ErrNoIdentity = errors.New("identity not found in context")
	ErrNoSession  = errors.New("tenant session not found in context")
)

func WithIdentity(ctx context.Context, identity *tenancy.Identity) context.Context {
	return context.WithValue(ctx, constants.IdentityKey, identity)
}

func UseIdentity(ctx context.Context) (*tenancy.Identity, error) {
	identity, ok := ctx.Value(constants.IdentityKey).(*tenancy.Identity)
	if !ok || identity == nil {
		return nil, ErrNoIdentity
	}
	return identity, nil
}

func WithSession(ctx context.Context, s tenancy.Session) context.Context {
	return context.WithValue(ctx, constants.SessionKey, s)
}

// UseSession returns the tenant session stamped on the current transaction.
func UseSession(ctx context.Context) (tenancy.Session, error) {
	s, ok := ctx.Value(constants.SessionKey).(tenancy.Session)
	if !ok {
		return tenancy.Session{}, ErrNoSession
	}
	return s, nil
}
