package authz

import (
	"errors"
	"fmt"
)

const ErrorCodeForbidden = "AUTHZ_FORBIDDEN"

var ErrForbidden = errors.New("permission denied")

// ForbiddenError carries the denied request. It matches ErrForbidden with errors.Is.
type ForbiddenError struct {
	Request Request
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("permission denied: %s %s on %s", e.Request.Subject, e.Request.Action, e.Request.Object)
}

func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}

func forbiddenError(req Request) error {
	return &ForbiddenError{Request: req}
}
