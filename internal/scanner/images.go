package scanner

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/raysh454/vertex/internal/dom"
)

const (
	msgImageAlt = "Image missing alt text. Add a concise description of what the image conveys."
)

// checkImages requires a non-empty alt on every img. aria-hidden images are
// decorative and count as passes.
func (s *Scanner) checkImages(doc *dom.Document) Contribution {
	t := tally{rule: "images"}
	for _, n := range doc.Find("img").Nodes {
		o := imageOutcome(doc, n)
		var is Issue
		if o == OutcomeFail {
			src, _ := doc.Attr(n, "src")
			src, _, _ = strings.Cut(src, "?")
			is = s.newIssue(CategoryImages, SeverityHigh, msgImageAlt,
				s.markupSnippet(n),
				`Add an alt: <img src="`+src+`" alt="describe image">`,
				pathOf(n), true)
		}
		t.record(o, is)
	}
	return t.contribution()
}

func imageOutcome(doc *dom.Document, n *html.Node) Outcome {
	if v, _ := doc.Attr(n, "aria-hidden"); v == "true" {
		return OutcomePass
	}
	if alt, ok := doc.Attr(n, "alt"); ok && strings.TrimSpace(alt) != "" {
		return OutcomePass
	}
	return OutcomeFail
}
