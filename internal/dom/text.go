package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// staticInnerText approximates HTMLElement.innerText from computed styles:
// display:none subtrees and visibility:hidden text are skipped, block boxes
// and <br> break lines, and whitespace collapses within a line.
func (d *Document) staticInnerText(n *html.Node) string {
	if n == nil {
		return ""
	}
	if d.styles[n].Display == "none" {
		return collapse(textContent(n))
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		switch c.Type {
		case html.TextNode:
			if p := c.Parent; p != nil && d.styles[p].Visibility == "hidden" {
				return
			}
			b.WriteString(c.Data)
		case html.ElementNode:
			st := d.styles[c]
			if st.Display == "none" {
				return
			}
			if TagName(c) == "br" {
				b.WriteByte('\n')
				return
			}
			block := st.Display != "inline" && st.Display != "inline-block" && st.Display != ""
			if block {
				b.WriteByte('\n')
			}
			for k := c.FirstChild; k != nil; k = k.NextSibling {
				walk(k)
			}
			if block {
				b.WriteByte('\n')
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}

	lines := strings.Split(b.String(), "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = collapse(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

// textContent concatenates every descendant text node.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		for k := c.FirstChild; k != nil; k = k.NextSibling {
			walk(k)
		}
	}
	walk(n)
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
