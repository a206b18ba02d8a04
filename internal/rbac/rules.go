package rbac

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
)

// RolePermissions is the default console policy. Managers review and decide;
// payouts, refunds, bans and account management are admin only.
var RolePermissions = map[string][]string{
	RoleManager: {
		"evaluation:view",
		"evaluation:score",
		"project:decide",
		"phase:view",
		"audit:view",
		"settings:view",
		"user:change_password",
	},
	RoleAdmin: {
		"*", // everything
	},
}

// ValidRole reports whether role is known to the default policy.
func ValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}
