// Package locator derives selector-like paths for elements and resolves them
// back. Paths are best-effort: after the document changes a path may resolve
// to a different element or to nothing.
package locator

import (
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// MaxDepth bounds the number of segments in a path.
const MaxDepth = 10

// Separator joins path segments.
const Separator = " > "

// Locate builds a path for n. Elements without a parent element (the root
// html element, detached nodes) have no path.
func Locate(n *html.Node) (string, bool) {
	if n == nil || n.Type != html.ElementNode || parentElement(n) == nil {
		return "", false
	}

	var segs []string
	for cur := n; cur != nil && len(segs) < MaxDepth; cur = parentElement(cur) {
		tag, named := typeSelector(cur)
		if id := attr(cur, "id"); id != "" {
			segs = append(segs, tag+"#"+EscapeIdent(id))
			break
		}
		seg := tag
		if p := parentElement(cur); p != nil {
			if !named {
				seg += ":nth-child(" + strconv.Itoa(childIndex(p, cur)) + ")"
			} else if idx, count := sameTagIndex(p, cur); count > 1 {
				seg += ":nth-of-type(" + strconv.Itoa(idx) + ")"
			}
		}
		segs = append(segs, seg)
	}

	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return strings.Join(segs, Separator), true
}

// Resolve finds the first element in document order under root matching
// path. Invalid or non-matching paths yield nil.
func Resolve(root *html.Node, path string) *html.Node {
	if root == nil || strings.TrimSpace(path) == "" {
		return nil
	}
	sel, err := cascadia.Compile(path)
	if err != nil {
		return nil
	}
	return cascadia.Query(root, sel)
}

// typeSelector returns the type selector for n. cascadia lowercases type
// selectors before comparing them to the node name, so foreign elements with
// mixed-case names (SVG foreignObject, linearGradient ...) cannot be named
// and fall back to "*".
func typeSelector(n *html.Node) (string, bool) {
	if n.Data != strings.ToLower(n.Data) {
		return "*", false
	}
	return n.Data, true
}

// childIndex returns the 1-based position of n among p's element children.
func childIndex(p, n *html.Node) int {
	idx := 0
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		idx++
		if c == n {
			break
		}
	}
	return idx
}

// sameTagIndex returns the 1-based position of n among p's children with the
// same tag, and how many such children there are.
func sameTagIndex(p, n *html.Node) (idx, count int) {
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || !strings.EqualFold(c.Data, n.Data) {
			continue
		}
		count++
		if c == n {
			idx = count
		}
	}
	return idx, count
}

func parentElement(n *html.Node) *html.Node {
	if n.Parent == nil || n.Parent.Type != html.ElementNode {
		return nil
	}
	return n.Parent
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val
		}
	}
	return ""
}
