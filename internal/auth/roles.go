package auth

// Admin role constants. Moderators work the review queue; admins can also
// apply sanctions directly.
const (
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// AllAdminRoles returns all valid admin roles.
func AllAdminRoles() []string {
	return []string{RoleModerator, RoleAdmin}
}

// SanctionRoles returns roles allowed to resolve reports with sanctions.
func SanctionRoles() []string {
	return []string{RoleAdmin}
}
