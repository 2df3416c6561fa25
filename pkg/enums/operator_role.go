package enums

import (
	"fmt"
	"strings"
)

// OperatorRole is the back-office role carried in the operator's token.
type OperatorRole string

const (
	OperatorRoleAdmin        OperatorRole = "ADMIN"
	OperatorRoleManager      OperatorRole = "MANAGER"
	OperatorRoleCashier      OperatorRole = "CASHIER"
	OperatorRoleStockManager OperatorRole = "STOCK_MANAGER"
	OperatorRoleSales        OperatorRole = "SALES"
)

var validOperatorRoles = []OperatorRole{
	OperatorRoleAdmin,
	OperatorRoleManager,
	OperatorRoleCashier,
	OperatorRoleStockManager,
	OperatorRoleSales,
}

// String implements fmt.Stringer.
func (r OperatorRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known OperatorRole.
func (r OperatorRole) IsValid() bool {
	for _, candidate := range validOperatorRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseOperatorRole converts raw input into an OperatorRole.
func ParseOperatorRole(value string) (OperatorRole, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validOperatorRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid operator role %q", value)
}
