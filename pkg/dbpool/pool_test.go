package dbpool

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/fieldops/pkg/tenancy"
)

func TestOptionsValidate(t *testing.T) {
	valid := Options{DSN: "postgres://localhost/db", MaxConns: 10, MinConns: 1, AcquireTimeout: time.Second}
	require.NoError(t, valid.validate())

	missingDSN := valid
	missingDSN.DSN = ""
	require.Error(t, missingDSN.validate())

	zeroConns := valid
	zeroConns.MaxConns = 0
	require.Error(t, zeroConns.validate())

	minAboveMax := valid
	minAboveMax.MinConns = 11
	require.Error(t, minAboveMax.validate())

	noTimeout := valid
	noTimeout.AcquireTimeout = 0
	require.Error(t, noTimeout.validate())
}

func TestClassifyAcquireError(t *testing.T) {
	acquireErr := errors.New("context deadline exceeded")

	acquireCtx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-acquireCtx.Done()

	err := classifyAcquireError(context.Background(), acquireCtx, acquireErr)
	require.ErrorIs(t, err, tenancy.ErrPoolExhausted)

	parent, cancelParent := context.WithCancel(context.Background())
	cancelParent()
	err = classifyAcquireError(parent, acquireCtx, acquireErr)
	require.NotErrorIs(t, err, tenancy.ErrPoolExhausted)

	err = classifyAcquireError(context.Background(), context.Background(), acquireErr)
	require.NotErrorIs(t, err, tenancy.ErrPoolExhausted)
	require.ErrorIs(t, err, acquireErr)
}
