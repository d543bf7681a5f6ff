package scanner

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/raysh454/vertex/internal/contrast"
	"github.com/raysh454/vertex/internal/dom"
)

const (
	textSelector   = "p,li,span,small,button,a,div,h1,h2,h3,h4,h5,h6"
	tipContrast    = "Increase contrast by darkening text color or lightening background to meet WCAG ratios."
	fallbackFontPx = 14
	fallbackWeight = 400
	opaqueAlpha    = 0.01
)

// checkContrast samples visible text elements and compares text color with
// the effective background. Candidates whose text color cannot be parsed are
// inapplicable.
func (s *Scanner) checkContrast(doc *dom.Document) Contribution {
	t := tally{rule: "contrast"}
	for _, n := range s.textSample(doc) {
		o, ratio, min := contrastOutcome(doc, n)
		var is Issue
		if o == OutcomeFail {
			is = s.newIssue(CategoryContrast, SeverityHigh,
				fmt.Sprintf("Text contrast %.2f:1 is below %s:1.", ratio, strconv.FormatFloat(min, 'f', -1, 64)),
				s.textSnippet(doc, n), tipContrast, pathOf(n), false)
		}
		t.record(o, is)
	}
	return t.contribution()
}

// textSample returns visible text-bearing elements in document order, capped.
func (s *Scanner) textSample(doc *dom.Document) []*html.Node {
	var out []*html.Node
	for _, n := range doc.Find(textSelector).Nodes {
		if len(out) >= s.cfg.ContrastSampleCap {
			break
		}
		if utf8.RuneCountInString(strings.TrimSpace(doc.InnerText(n))) < s.cfg.MinTextRunes {
			continue
		}
		if !doc.Visible(n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func contrastOutcome(doc *dom.Document, n *html.Node) (Outcome, float64, float64) {
	st := doc.Style(n)
	fg, ok := contrast.ParseColor(st.Color)
	if !ok {
		return OutcomeInapplicable, 0, 0
	}
	bg := EffectiveBackground(doc, n)
	ratio := contrast.ContrastRatio(fg, bg)

	fontPx, ok := dom.ParsePx(st.FontSize)
	if !ok || fontPx == 0 {
		fontPx = fallbackFontPx
	}
	large := contrast.IsLargeText(fontPx, parseWeight(st.FontWeight))
	min := contrast.MinimumRatio(large)
	if !contrast.Passes(ratio, large) {
		return OutcomeFail, ratio, min
	}
	return OutcomePass, ratio, min
}

// EffectiveBackground walks from n up to the root and returns the first
// background that is not (nearly) transparent, made opaque. The canvas is
// white.
func EffectiveBackground(doc *dom.Document, n *html.Node) contrast.Color {
	for cur := n; cur != nil; cur = dom.ParentElement(cur) {
		if bg, ok := contrast.ParseColor(doc.Style(cur).BackgroundColor); ok && bg.A > opaqueAlpha {
			return bg.Opaque()
		}
	}
	return contrast.White
}

// parseWeight reads the leading integer of a computed font-weight.
func parseWeight(v string) int {
	v = strings.TrimSpace(v)
	i := 0
	for i < len(v) && v[i] >= '0' && v[i] <= '9' {
		i++
	}
	w, err := strconv.Atoi(v[:i])
	if err != nil || w == 0 {
		return fallbackWeight
	}
	return w
}
