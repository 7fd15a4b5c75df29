package export

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ToSnakeCase puts an underscore before every ASCII uppercase letter except a
// leading one, then lowercases ("ODESolver" -> "o_d_e_solver", "Foo_Bar" -> "foo__bar").
func ToSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}

// ModuleName is the synthetic destination module of an entity: a leading dot
// (sibling in the flat output directory) followed by the snake_case name.
func ModuleName(declaredName string) string {
	return "." + ToSnakeCase(declaredName)
}

// FileStem is the output file name of a destination module, without extension.
func FileStem(module string) string {
	return strings.TrimPrefix(module, ".")
}

// collisionKey folds a destination module name so that names a case-insensitive
// or accent-insensitive filesystem would treat as one file compare equal.
func collisionKey(module string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, FileStem(module))
	if err != nil {
		folded = FileStem(module)
	}
	return strings.ToLower(folded)
}
