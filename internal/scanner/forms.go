package scanner

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/raysh454/vertex/internal/dom"
)

const (
	msgFormLabel = "Form control is missing an associated label."
	tipFormLabel = "Add <label for='id'>…</label> or aria-label / aria-labelledby."
)

func (s *Scanner) checkFormLabels(doc *dom.Document) Contribution {
	t := tally{rule: "forms"}
	for _, n := range doc.Find("input,textarea,select").Nodes {
		if dom.TagName(n) == "input" {
			if typ, _ := doc.Attr(n, "type"); strings.EqualFold(strings.TrimSpace(typ), "hidden") {
				continue
			}
		}
		if !doc.Visible(n) {
			continue
		}
		if hasAccessibleLabel(doc, n) {
			t.pass()
			continue
		}
		t.fail(s.newIssue(CategoryForms, SeverityHigh, msgFormLabel,
			s.markupSnippet(n), tipFormLabel, pathOf(n), true))
	}
	return t.contribution()
}

// hasAccessibleLabel accepts label[for], a wrapping label, aria-label or an
// aria-labelledby that names at least one existing element.
func hasAccessibleLabel(doc *dom.Document, n *html.Node) bool {
	if id, _ := doc.Attr(n, "id"); id != "" {
		for _, l := range doc.Find("label").Nodes {
			if f, ok := doc.Attr(l, "for"); ok && f == id {
				return true
			}
		}
	}
	for p := dom.ParentElement(n); p != nil; p = dom.ParentElement(p) {
		if dom.TagName(p) == "label" {
			return true
		}
	}
	if v, _ := doc.Attr(n, "aria-label"); v != "" {
		return true
	}
	if v, _ := doc.Attr(n, "aria-labelledby"); v != "" {
		for _, id := range strings.Fields(v) {
			if doc.ElementByID(id) != nil {
				return true
			}
		}
	}
	return false
}
