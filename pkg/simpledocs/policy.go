package simpledocs

// Access policy. These two checks are the only tenant-isolation
// enforcement in the system; the store itself has no per-tenant access
// control. Every read or mutation of a document must pass through
// AssertAccess with the loaded document's tenant and owner.

// RequireRole succeeds iff the context holds at least one of the allowed
// roles. Used as a coarse pre-check before any resource is touched.
func RequireRole(ctx AuthContext, allowed ...Role) error {
	for _, role := range allowed {
		if ctx.Roles.Has(role) {
			return nil
		}
	}
	return NewError(KindForbidden, "insufficient role")
}

// AssertAccess decides whether the context may act on a resource owned by
// (resourceTenant, resourceOwner). Evaluated in precedence order, first
// match wins:
//
//  1. Admin: always allowed, regardless of tenant or owner.
//  2. Tenant-Operator whose tenant matches a non-empty resourceTenant.
//  3. The owner itself (non-empty resourceOwner equal to the identity).
//
// Anything else is Forbidden. Tenant-Operator access is scoped strictly
// to the tenant: an operator from another tenant is rejected even when
// it happens to be the resource owner.
func AssertAccess(ctx AuthContext, resourceTenant, resourceOwner string) error {
	if ctx.Roles.Has(RoleAdmin) {
		return nil
	}
	if ctx.Roles.Has(RoleTenantOperator) {
		if resourceTenant != "" && ctx.Tenant == resourceTenant {
			return nil
		}
		return NewError(KindForbidden, "access denied")
	}
	if resourceOwner != "" && ctx.Identity == resourceOwner {
		return nil
	}
	return NewError(KindForbidden, "access denied")
}
