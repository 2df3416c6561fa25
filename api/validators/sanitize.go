package validators

import (
	"strings"
	"unicode"
)

// SanitizeText trims input, turns control characters and whitespace runs into
// a single space and cuts the result to maxRunes characters, never inside a
// multi-byte character. maxRunes <= 0 disables the cut.
func SanitizeText(input string, maxRunes int) string {
	var b strings.Builder
	b.Grow(len(input))
	count := 0
	pendingSpace := false
	for _, r := range strings.TrimSpace(input) {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			pendingSpace = count > 0
			continue
		}
		if maxRunes > 0 && count+boolInt(pendingSpace) >= maxRunes {
			break
		}
		if pendingSpace {
			b.WriteByte(' ')
			count++
			pendingSpace = false
		}
		b.WriteRune(r)
		count++
	}
	return b.String()
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
