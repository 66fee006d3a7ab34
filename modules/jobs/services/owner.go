package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/iota-uz/fieldops/pkg/composables"
)

// ownerTenant picks the tenant that owns a new row. A tenant-bound session always owns
// what it creates; god mode must name the tenant explicitly, otherwise missing is
// returned.
func ownerTenant(ctx context.Context, requested uuid.UUID, missing error) (uuid.UUID, error) {
	session, err := composables.UseSession(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if session.HasTenant() {
		return session.TenantID, nil
	}
	if requested == uuid.Nil {
		return uuid.Nil, missing
	}
	return requested, nil
}
