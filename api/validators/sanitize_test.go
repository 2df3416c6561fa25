package validators

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	cases := map[string]struct {
		in   string
		max  int
		want string
	}{
		"trims":             {in: "  mesa 4  ", want: "mesa 4"},
		"collapses":         {in: "entrega\n\n\tna   loja", want: "entrega na loja"},
		"drops control":     {in: "pão\x00doce", want: "pão doce"},
		"cuts by character": {in: "Pão de Açúcar", max: 3, want: "Pão"},
		"no trailing space": {in: "Pão de Açúcar", max: 4, want: "Pão"},
		"unlimited":         {in: "Pão de Açúcar", want: "Pão de Açúcar"},
		"blank":             {in: " \n ", max: 10, want: ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := SanitizeText(tc.in, tc.max)
			assert.Equal(t, tc.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
