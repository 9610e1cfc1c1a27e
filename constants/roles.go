package constants

// Party roles carried in the JWT "role" claim.
const (
	RoleUser     = "user"
	RoleHospital = "hospital"
	RoleDriver   = "driver"
	RoleAdmin    = "admin"
)

// AllRoles returns every known role.
func AllRoles() []string {
	return []string{RoleUser, RoleHospital, RoleDriver, RoleAdmin}
}

// IsValidRole reports whether role is one of the known party roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleUser, RoleHospital, RoleDriver, RoleAdmin:
		return true
	default:
		return false
	}
}
