package simpledocs

import (
	"fmt"
	"strings"
)

// Claim names as they arrive from the upstream identity provider. The
// gateway has already verified signature and expiry; this layer only
// extracts and normalizes.
const (
	ClaimSubject = "sub"
	ClaimTenant  = "tenant_id"
	ClaimRoles   = "roles"
	ClaimEmail   = "email"
)

// ResolveAuthContext turns a verified claim set into a typed AuthContext.
//
// The subject claim is required; resolution fails closed with an
// Unauthorized error when it is missing or empty. Tenant and email fall
// back to empty strings. The role claim may be absent, a single string,
// a comma-separated string, or a list; any of those normalize to a
// RoleSet. Unknown role tags are dropped rather than carried along.
func ResolveAuthContext(claims map[string]any) (AuthContext, error) {
	subject, _ := claims[ClaimSubject].(string)
	if subject == "" {
		return AuthContext{}, NewError(KindUnauthorized, "missing identity claims")
	}

	roles, err := normalizeRoleClaim(claims[ClaimRoles])
	if err != nil {
		return AuthContext{}, err
	}

	tenant, _ := claims[ClaimTenant].(string)
	email, _ := claims[ClaimEmail].(string)

	return AuthContext{
		Identity: subject,
		Tenant:   tenant,
		Roles:    roles,
		Email:    email,
	}, nil
}

// normalizeRoleClaim accepts the role claim shapes seen in the wild:
// absent, scalar string (possibly comma-separated), or a list of strings.
// Any other shape is a validation failure, not a silent coercion.
func normalizeRoleClaim(raw any) (RoleSet, error) {
	set := make(RoleSet)
	switch v := raw.(type) {
	case nil:
		return set, nil
	case string:
		for _, tag := range strings.Split(v, ",") {
			addRoleTag(set, tag)
		}
		return set, nil
	case []string:
		for _, tag := range v {
			addRoleTag(set, tag)
		}
		return set, nil
	case []any:
		for _, item := range v {
			tag, ok := item.(string)
			if !ok {
				return nil, NewValidationError("malformed role claim", map[string]any{
					"roles": fmt.Sprintf("unexpected element type %T", item),
				})
			}
			addRoleTag(set, tag)
		}
		return set, nil
	default:
		return nil, NewValidationError("malformed role claim", map[string]any{
			"roles": fmt.Sprintf("unexpected claim type %T", raw),
		})
	}
}

func addRoleTag(set RoleSet, tag string) {
	switch Role(strings.TrimSpace(tag)) {
	case RoleAdmin:
		set[RoleAdmin] = struct{}{}
	case RoleTenantOperator:
		set[RoleTenantOperator] = struct{}{}
	case RoleMember:
		set[RoleMember] = struct{}{}
	}
}
