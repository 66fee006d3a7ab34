package authz

import (
	"fmt"
	"strings"

	"github.com/iota-uz/fieldops/pkg/tenancy"
)

const (
	rolePrefix            = "role"
	subjectSeparator      = ":"
	defaultActionWildcard = "*"
)

// Objects guarded by the API.
const (
	ObjectJobs        = "jobs"
	ObjectAssignments = "assignments"
	ObjectLabour      = "labour"
	ObjectActivities  = "activities"
	ObjectEmployees   = "employees"
)

// Actions understood by the policy.
const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionDelete = "delete"
)

// Request encapsulates all parameters required to evaluate a Casbin rule.
type Request struct {
	Subject string
	Object  string
	Action  string
}

// NewRequest constructs a Request with normalized parts.
func NewRequest(subject, object, action string) Request {
	return Request{
		Subject: subject,
		Object:  strings.ToLower(strings.TrimSpace(object)),
		Action:  NormalizeAction(action),
	}
}

// RequestForRole builds a request for the role subject of r.
func RequestForRole(r tenancy.Role, object, action string) Request {
	return NewRequest(SubjectForRole(string(r)), object, action)
}

// SubjectForRole returns the canonical identifier for a role-based subject.
func SubjectForRole(roleSlug string) string {
	roleSlug = strings.TrimSpace(roleSlug)
	if roleSlug == "" {
		roleSlug = "unnamed"
	}
	if strings.HasPrefix(roleSlug, rolePrefix+subjectSeparator) {
		return roleSlug
	}
	return fmt.Sprintf("%s%s%s", rolePrefix, subjectSeparator, strings.ToLower(roleSlug))
}

// NormalizeAction returns a normalized action string.
func NormalizeAction(action string) string {
	action = strings.ToLower(strings.TrimSpace(action))
	if action == "" {
		return defaultActionWildcard
	}
	return action
}
