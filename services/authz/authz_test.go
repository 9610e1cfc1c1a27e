package authz

import (
	"testing"

	"lifeline-backend/apperr"
	"lifeline-backend/constants"
)

func TestRequireRole(t *testing.T) {
	id := Identity{PartyID: 7, Role: constants.RoleHospital}

	if err := RequireRole(id, constants.RoleHospital); err != nil {
		t.Errorf("matching role rejected: %v", err)
	}
	err := RequireRole(id, constants.RoleDriver)
	ae, ok := apperr.As(err)
	if !ok || ae.Kind != apperr.KindForbidden {
		t.Errorf("mismatched role error = %v, want forbidden", err)
	}
}

func TestRequireOwner(t *testing.T) {
	id := Identity{PartyID: 7, Role: constants.RoleHospital}

	if err := RequireOwner(id, constants.RoleHospital, 7); err != nil {
		t.Errorf("owner rejected: %v", err)
	}

	// Right role, wrong resource.
	err := RequireOwner(id, constants.RoleHospital, 8)
	ae, ok := apperr.As(err)
	if !ok || ae.Kind != apperr.KindForbidden {
		t.Errorf("non-owner error = %v, want forbidden", err)
	}

	// Wrong role entirely, even with a matching id.
	err = RequireOwner(id, constants.RoleDriver, 7)
	ae, ok = apperr.As(err)
	if !ok || ae.Kind != apperr.KindForbidden {
		t.Errorf("wrong-role owner error = %v, want forbidden", err)
	}
}
