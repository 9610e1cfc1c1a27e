package authz

import (
	"lifeline-backend/apperr"
)

// Identity is the authenticated caller, as established by the middleware.
type Identity struct {
	PartyID uint
	Role    string
}

// RequireRole fails unless the caller holds the required role.
func RequireRole(id Identity, role string) error {
	if id.Role != role {
		return apperr.Forbidden("Access forbidden: requires role " + role + ".")
	}
	return nil
}

// RequireOwner fails unless the caller holds the required role AND is the
// owner of the resource. This is the single capability check replacing
// scattered per-endpoint role/id comparisons.
func RequireOwner(id Identity, role string, ownerID uint) error {
	if err := RequireRole(id, role); err != nil {
		return err
	}
	if id.PartyID != ownerID {
		return apperr.Forbidden("Access forbidden: resource belongs to another " + role + ".")
	}
	return nil
}
