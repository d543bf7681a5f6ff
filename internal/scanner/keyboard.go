package scanner

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/raysh454/vertex/internal/dom"
)

const (
	msgKeyboard = "Element appears interactive but is not focusable via keyboard (missing semantic tag or tabindex)."
	tipKeyboard = "Use a <button> or add role='button' and tabindex='0' plus keyboard handlers."
)

var nativeInteractive = map[string]bool{
	"a": true, "button": true, "input": true, "select": true, "textarea": true, "summary": true,
}

// checkKeyboard flags elements that look clickable but cannot take focus.
func (s *Scanner) checkKeyboard(doc *dom.Document) Contribution {
	t := tally{rule: "keyboard"}
	for _, n := range s.keyboardCandidates(doc) {
		if nativeInteractive[dom.TagName(n)] || focusable(doc, n) {
			t.pass()
			continue
		}
		t.fail(s.newIssue(CategoryKeyboard, SeverityMedium, msgKeyboard,
			s.markupSnippet(n), tipKeyboard, pathOf(n), true))
	}
	return t.contribution()
}

func (s *Scanner) keyboardCandidates(doc *dom.Document) []*html.Node {
	var out []*html.Node
	for _, n := range doc.Find("div,span,li,svg").Nodes {
		if len(out) >= s.cfg.KeyboardCandidateCap {
			break
		}
		if looksClickable(doc, n) && doc.Visible(n) {
			out = append(out, n)
		}
	}
	return out
}

func looksClickable(doc *dom.Document, n *html.Node) bool {
	if doc.Style(n).Cursor == "pointer" {
		return true
	}
	if role, _ := doc.Attr(n, "role"); role == "button" {
		return true
	}
	_, onclick := doc.Attr(n, "onclick")
	return onclick
}

// focusable: an integer tabindex >= 0, or a link with an href.
func focusable(doc *dom.Document, n *html.Node) bool {
	if v, ok := doc.Attr(n, "tabindex"); ok {
		if i, ok := parseHTMLInt(v); ok && i >= 0 {
			return true
		}
	}
	if dom.TagName(n) == "a" {
		_, ok := doc.Attr(n, "href")
		return ok
	}
	return false
}

// parseHTMLInt reads a leading integer the way browsers parse tabindex:
// surrounding whitespace and an optional sign are allowed and anything after
// the digits is ignored, so "1abc" is 1.
func parseHTMLInt(v string) (int, bool) {
	v = strings.TrimLeft(v, " \t\n\f\r")
	end := 0
	if end < len(v) && (v[end] == '-' || v[end] == '+') {
		end++
	}
	digits := end
	for end < len(v) && v[end] >= '0' && v[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(v[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
