package validation

import "strings"

var escaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&#x27;",
	"<", "&lt;",
	">", "&gt;",
	"/", "&#x2F;",
	`\`, "&#x5C;",
	"`", "&#96;",
)

// Sanitize trims s and escapes characters that could form markup when rendered.
func Sanitize(s string) string {
	return escaper.Replace(strings.TrimSpace(s))
}

// NormalizeEmail trims and lowercases an address for storage and comparison.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
