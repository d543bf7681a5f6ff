package scanner

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/raysh454/vertex/internal/dom"
	"github.com/raysh454/vertex/internal/locator"
)

const ellipsis = "…"

// truncate keeps the first max runes of s and marks the cut.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	i := 0
	for n := 0; n < max; n++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i] + ellipsis
}

// prefix keeps the first max runes of s without a marker.
func prefix(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

func (s *Scanner) markupSnippet(n *html.Node) string {
	return truncate(dom.OuterHTML(n), s.cfg.SnippetMaxRunes)
}

// textSnippet prefers rendered text and falls back to markup.
func (s *Scanner) textSnippet(doc *dom.Document, n *html.Node) string {
	if t := prefix(strings.TrimSpace(doc.InnerText(n)), s.cfg.TextSnippetMaxRunes); t != "" {
		return t
	}
	return s.markupSnippet(n)
}

func pathOf(n *html.Node) string {
	p, _ := locator.Locate(n)
	return p
}
