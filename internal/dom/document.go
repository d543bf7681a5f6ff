// Package dom holds the read-only document model the scanner walks: an HTML
// tree plus, per element, the computed style, layout box and innerText that a
// browser would report. Documents come either from raw HTML run through a
// simplified cascade (Parse) or from a live browser snapshot (FromSnapshot).
package dom

import (
	"errors"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Style is the subset of computed style the rules look at. Values are the
// strings getComputedStyle would return, e.g. "rgb(0, 0, 0)" or "16px".
type Style struct {
	Color           string `json:"color"`
	BackgroundColor string `json:"backgroundColor"`
	FontSize        string `json:"fontSize"`
	FontWeight      string `json:"fontWeight"`
	Cursor          string `json:"cursor"`
	Display         string `json:"display"`
	Visibility      string `json:"visibility"`
}

// Box is an element's layout size in CSS pixels.
type Box struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Empty reports whether the box has no area.
func (b Box) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

var ErrNoDocument = errors.New("dom: no document element")

// Document is safe for concurrent reads once constructed.
type Document struct {
	source string
	doc    *goquery.Document

	styles map[*html.Node]Style
	boxes  map[*html.Node]Box
	texts  map[*html.Node]string
	ids    map[string]*html.Node
}

func newDocument(root *html.Node, source string) *Document {
	d := &Document{
		source: source,
		doc:    goquery.NewDocumentFromNode(root),
		styles: make(map[*html.Node]Style),
		boxes:  make(map[*html.Node]Box),
		texts:  make(map[*html.Node]string),
		ids:    make(map[string]*html.Node),
	}
	walkElements(root, func(n *html.Node) {
		if id, ok := attr(n, "id"); ok && id != "" {
			if _, seen := d.ids[id]; !seen {
				d.ids[id] = n
			}
		}
	})
	return d
}

// Parse reads raw HTML and computes styles with the static cascade.
func Parse(r io.Reader, source string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	if documentElement(root) == nil {
		return nil, ErrNoDocument
	}
	d := newDocument(root, source)
	computeStatic(d)
	return d, nil
}

// ParseString is Parse over an in-memory string.
func ParseString(s, source string) (*Document, error) {
	return Parse(strings.NewReader(s), source)
}

// Source is the URL or label the document was loaded from.
func (d *Document) Source() string { return d.source }

// Root returns the document node.
func (d *Document) Root() *html.Node { return d.doc.Nodes[0] }

// Find runs a CSS selector over the whole document. Invalid selectors match
// nothing.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// Selection wraps n for goquery traversal.
func (d *Document) Selection(n *html.Node) *goquery.Selection {
	return d.doc.FindNodes(n)
}

func (d *Document) Style(n *html.Node) Style { return d.styles[n] }

func (d *Document) Box(n *html.Node) Box { return d.boxes[n] }

// Visible mirrors the usual content-script check: not visibility:hidden, not
// display:none and a non-empty layout box.
func (d *Document) Visible(n *html.Node) bool {
	st := d.styles[n]
	return st.Visibility != "hidden" && st.Display != "none" && !d.boxes[n].Empty()
}

// InnerText returns the rendered text of n. Snapshot documents report what the
// browser measured; parsed documents approximate it.
func (d *Document) InnerText(n *html.Node) string {
	if t, ok := d.texts[n]; ok {
		return t
	}
	return d.staticInnerText(n)
}

// ElementByID returns the first element in document order with the id.
func (d *Document) ElementByID(id string) *html.Node {
	return d.ids[id]
}

// Attr returns an attribute value and whether it is present.
func (d *Document) Attr(n *html.Node, name string) (string, bool) {
	return attr(n, name)
}

// OuterHTML serializes n and its subtree.
func (d *Document) OuterHTML(n *html.Node) string {
	return OuterHTML(n)
}

// HTML serializes the whole document.
func (d *Document) HTML() string {
	return OuterHTML(d.Root())
}

// OuterHTML serializes n and its subtree; rendering errors yield "".
func OuterHTML(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return ""
	}
	return b.String()
}

// ParentElement returns n's parent when it is an element, else nil.
func ParentElement(n *html.Node) *html.Node {
	if n == nil || n.Parent == nil || n.Parent.Type != html.ElementNode {
		return nil
	}
	return n.Parent
}

// TagName is the lower-cased element name.
func TagName(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(n.Data)
}

func attr(n *html.Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

func documentElement(root *html.Node) *html.Node {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// walkElements visits every element under root in document order.
func walkElements(root *html.Node, fn func(*html.Node)) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			fn(n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
}
