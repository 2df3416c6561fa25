package enums

import (
	"fmt"
	"strings"
)

// ProductUnit is the selling unit printed next to each line.
type ProductUnit string

const (
	ProductUnitPiece      ProductUnit = "UN"
	ProductUnitKilogram   ProductUnit = "KG"
	ProductUnitGram       ProductUnit = "G"
	ProductUnitLiter      ProductUnit = "L"
	ProductUnitMilliliter ProductUnit = "ML"
	ProductUnitBox        ProductUnit = "CX"
)

// DefaultProductUnit applies when the catalog omits a unit.
const DefaultProductUnit = ProductUnitPiece

var validProductUnits = []ProductUnit{
	ProductUnitPiece,
	ProductUnitKilogram,
	ProductUnitGram,
	ProductUnitLiter,
	ProductUnitMilliliter,
	ProductUnitBox,
}

// String implements fmt.Stringer.
func (u ProductUnit) String() string {
	return string(u)
}

// IsValid reports whether the value matches a known ProductUnit.
func (u ProductUnit) IsValid() bool {
	for _, candidate := range validProductUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseProductUnit converts raw input into a ProductUnit. Empty input yields
// DefaultProductUnit.
func ParseProductUnit(value string) (ProductUnit, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	if normalized == "" {
		return DefaultProductUnit, nil
	}
	for _, candidate := range validProductUnits {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product unit %q", value)
}
