package domain

type Role string

const (
	// RoleUser is the default access level for every registered account.
	RoleUser Role = "USER"
	// RoleAdmin grants access to administrative surfaces.
	RoleAdmin Role = "ADMIN"
)

func IsValidRole(r string) bool {
	return r == string(RoleUser) || r == string(RoleAdmin)
}

// RoleRank: bigger => higher privilege
func RoleRank(r Role) int {
	switch r {
	case RoleUser:
		return 1
	case RoleAdmin:
		return 2
	default:
		return 0
	}
}
