package tenancy

import "errors"

var (
	ErrUnauthenticated       = errors.New("no authenticated identity")
	ErrUnknownRole           = errors.New("unknown role")
	ErrTenantRequired        = errors.New("identity is not bound to a tenant")
	ErrInvalidTenantSelector = errors.New("invalid tenant selector")

	// ErrPoolExhausted is returned when no connection could be acquired within the
	// configured wait. Callers should treat it as retryable.
	ErrPoolExhausted = errors.New("database pool exhausted")
)
