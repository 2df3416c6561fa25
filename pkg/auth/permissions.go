package auth

import "github.com/angelmondragon/pdv-backend/pkg/enums"

// Module is a back-office area guarded by permissions.
type Module string

// Action is a verb allowed on a module.
type Action string

const (
	ModulePDV       Module = "pdv"
	ModuleInventory Module = "estoque"

	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

type permission struct {
	module Module
	action Action
}

var defaultPermissions = map[enums.OperatorRole][]permission{
	enums.OperatorRoleAdmin: {
		{ModulePDV, ActionView}, {ModulePDV, ActionCreate}, {ModulePDV, ActionEdit}, {ModulePDV, ActionDelete},
		{ModuleInventory, ActionView}, {ModuleInventory, ActionCreate}, {ModuleInventory, ActionEdit}, {ModuleInventory, ActionDelete},
	},
	enums.OperatorRoleManager: {
		{ModulePDV, ActionView}, {ModulePDV, ActionCreate},
		{ModuleInventory, ActionView}, {ModuleInventory, ActionCreate}, {ModuleInventory, ActionEdit},
	},
	enums.OperatorRoleCashier: {
		{ModulePDV, ActionView}, {ModulePDV, ActionCreate},
	},
	enums.OperatorRoleStockManager: {
		{ModuleInventory, ActionView}, {ModuleInventory, ActionCreate}, {ModuleInventory, ActionEdit}, {ModuleInventory, ActionDelete},
	},
	enums.OperatorRoleSales: {
		{ModulePDV, ActionView}, {ModulePDV, ActionCreate},
	},
}

// Allowed reports whether role grants action on module.
func Allowed(role enums.OperatorRole, module Module, action Action) bool {
	for _, p := range defaultPermissions[role] {
		if p.module == module && p.action == action {
			return true
		}
	}
	return false
}
