package scanner

import (
	"regexp"

	"github.com/raysh454/vertex/internal/dom"
)

const (
	msgZoom = "Viewport prevents zoom (user-scalable=no or maximum-scale=1)."
	tipZoom = "Remove user-scalable=no and allow scaling so users can zoom up to 200%."
)

// zoomBlocked matches viewport content that disables scaling. maximum-scale
// must be exactly 1 (1.0, 1.00 ...) so values like 1.5 or 10 are allowed;
// any separator may follow, including plain whitespace.
var zoomBlocked = regexp.MustCompile(`(?i)user-scalable\s*=\s*no|maximum-scale\s*=\s*1(\.0+)?([^0-9.]|$)`)

// BlocksZoom reports whether a viewport content string disables zooming.
func BlocksZoom(content string) bool {
	return zoomBlocked.MatchString(content)
}

func (s *Scanner) checkZoom(doc *dom.Document) Contribution {
	t := tally{rule: "zoom"}
	meta := doc.Find(`meta[name="viewport"]`).First()
	if meta.Length() > 0 {
		content, _ := meta.Attr("content")
		if BlocksZoom(content) {
			t.fail(s.newIssue(CategoryZoom, SeverityHigh, msgZoom,
				dom.OuterHTML(meta.Nodes[0]), tipZoom, "", false))
			return t.contribution()
		}
	}
	t.pass()
	return t.contribution()
}
