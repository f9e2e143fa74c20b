package auth

import "github.com/nees-commerce/admin-gateway/internal/enum"

// slipRoles are the roles permitted to generate dispatch slips.
var slipRoles = map[string]bool{
	enum.RoleCEO:     true,
	enum.RoleManager: true,
	enum.RoleAdmin:   true,
}

func CanPrintSlips(role string) bool {
	return slipRoles[role]
}

// CanManageStaff reports whether an actor may modify a target staff
// account. The CEO manages everyone, a Manager manages Admins only,
// and Admins manage nobody.
func CanManageStaff(actorRole, targetRole string) bool {
	switch actorRole {
	case enum.RoleCEO:
		return true
	case enum.RoleManager:
		return targetRole == enum.RoleAdmin
	default:
		return false
	}
}
