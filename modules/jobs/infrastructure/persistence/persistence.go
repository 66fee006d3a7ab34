// Package persistence holds the pgx repositories of the jobs module. Every statement
// runs on the request transaction and carries the tenancy.Visible predicate for each
// tenant-owned table it touches, so isolation does not depend on RLS alone.
package persistence

import (
	"context"

	gerrors "github.com/go-faster/errors"

	"github.com/iota-uz/fieldops/pkg/composables"
	"github.com/iota-uz/fieldops/pkg/repo"
)

func useTx(ctx context.Context) (repo.Tx, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, gerrors.Wrap(err, "jobs persistence requires a tenant transaction")
	}
	return tx, nil
}
