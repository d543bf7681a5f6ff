package scanner

import (
	"fmt"

	"github.com/raysh454/vertex/internal/dom"
)

const (
	msgHeadingOrder = "Heading levels skip order (e.g., H2 directly to H4)."
	tipHeadingOrder = "Use headings without skipping levels to preserve structure."
)

// Landmarks are checked in this order.
var Landmarks = []string{"main", "nav", "header", "footer"}

func (s *Scanner) checkLandmarks(doc *dom.Document) Contribution {
	t := tally{rule: "landmarks"}
	for _, tag := range Landmarks {
		if doc.Find(tag).Length() > 0 {
			t.pass()
			continue
		}
		t.fail(s.newIssue(CategorySemantic, SeverityLow,
			fmt.Sprintf("Missing landmark <%s>.", tag), "",
			fmt.Sprintf("Add a <%s> landmark to improve screen reader navigation.", tag),
			"", false))
	}
	return t.contribution()
}

// checkHeadingOrder is one page-level check: a heading may go at most one
// level deeper than the previous heading. Pages without headings contribute
// nothing.
func (s *Scanner) checkHeadingOrder(doc *dom.Document) Contribution {
	headings := doc.Find("h1,h2,h3,h4,h5,h6").Nodes
	if len(headings) == 0 {
		return Contribution{}
	}
	t := tally{rule: "headings"}
	last := 0
	for _, h := range headings {
		level := int(dom.TagName(h)[1] - '0')
		if last != 0 && level > last+1 {
			t.fail(s.newIssue(CategorySemantic, SeverityLow, msgHeadingOrder, "", tipHeadingOrder, "", false))
			return t.contribution()
		}
		last = level
	}
	t.pass()
	return t.contribution()
}
