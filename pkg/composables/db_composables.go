package composables

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/fieldops/pkg/constants"
	"github.com/iota-uz/fieldops/pkg/repo"
)

var (
	ErrNoTx = errors.New("no transaction found in context")
)

func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, constants.TxKey, tx)
}

// UseTx returns the request transaction. There is deliberately no fallback to the
// pool: statements issued outside the tenant transaction would miss the session context.
func UseTx(ctx context.Context) (repo.Tx, error) {
	tx, ok := ctx.Value(constants.TxKey).(repo.Tx)
	if !ok || tx == nil {
		return nil, ErrNoTx
	}
	return tx, nil
}
