package auth

import "pos-backend/internal/models"

type Permission string

const (
	PermSalesView     Permission = "sales:view"
	PermSalesCreate   Permission = "sales:create"
	PermInventoryView Permission = "inventory:view"
	PermInventoryEdit Permission = "inventory:edit"
	PermUsersManage   Permission = "users:manage"
)

// rolePermissions is the authoritative role -> permission mapping. Core
// packages never consult it; routes are gated by RequirePermission and the
// core only receives the already-authorized Operator.
var rolePermissions = map[models.UserRole][]Permission{
	models.RoleCashier: {
		PermSalesView,
		PermSalesCreate,
		PermInventoryView,
	},
	models.RoleManager: {
		PermSalesView,
		PermSalesCreate,
		PermInventoryView,
		PermInventoryEdit,
	},
	models.RoleAdmin: {
		PermSalesView,
		PermSalesCreate,
		PermInventoryView,
		PermInventoryEdit,
		PermUsersManage,
	},
}

func RoleHasPermission(role models.UserRole, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

func PermissionsForRole(role models.UserRole) []Permission {
	return rolePermissions[role]
}
