package checkout

import "strings"

// BuyerIDLength is the digit count of a CPF.
const BuyerIDLength = 11

var buyerIDSeparators = strings.NewReplacer(".", "", "-", "", " ", "")

// NormalizeBuyerID strips the usual CPF punctuation and reports whether the
// rest is exactly BuyerIDLength digits.
func NormalizeBuyerID(raw string) (string, bool) {
	digits := buyerIDSeparators.Replace(strings.TrimSpace(raw))
	if len(digits) != BuyerIDLength {
		return "", false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return digits, true
}
