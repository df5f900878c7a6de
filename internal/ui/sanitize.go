package ui

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// Sanitize makes server-supplied text safe to print: escape sequences are
// removed and any other control character becomes a space. This is the
// terminal counterpart of HTML-escaping record fields.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, ansi.Strip(s))
}
