package locator

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// EscapeIdent serializes s as a CSS identifier, following CSS.escape().
func EscapeIdent(s string) string {
	var b strings.Builder
	first := true
	for i, r := range s {
		switch {
		case r == 0:
			b.WriteRune(utf8.RuneError)
		case (r >= 0x1 && r <= 0x1f) || r == 0x7f:
			writeCodePoint(&b, r)
		case first && r >= '0' && r <= '9':
			writeCodePoint(&b, r)
		case i == 1 && r >= '0' && r <= '9' && s[0] == '-':
			writeCodePoint(&b, r)
		case first && r == '-' && len(s) == 1:
			b.WriteString(`\-`)
		case r >= 0x80 || r == '-' || r == '_' ||
			(r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z'):
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
		first = false
	}
	return b.String()
}

func writeCodePoint(b *strings.Builder, r rune) {
	b.WriteByte('\\')
	b.WriteString(strconv.FormatInt(int64(r), 16))
	b.WriteByte(' ')
}
