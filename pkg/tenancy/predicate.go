package tenancy

// Visible renders the access predicate for the tenant-owned table aliased as alias.
// The check is evaluated by the database against the session settings stamped by Apply,
// so callers never pass a tenant id into the filter themselves.
func Visible(alias string) string {
	if alias == "" {
		return "row_visible(tenant_id)"
	}
	return "row_visible(" + alias + ".tenant_id)"
}

// VisibleOwner renders the access predicate for an arbitrary owner expression, such as
// a bound parameter on INSERT ... SELECT.
func VisibleOwner(expr string) string {
	return "row_visible(" + expr + ")"
}
