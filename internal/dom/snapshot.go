package dom

import (
	"errors"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Snapshot is the serialized form of a rendered page produced by the browser
// snapshot script.
type Snapshot struct {
	URL   string        `json:"url"`
	Title string        `json:"title"`
	Root  *SnapshotNode `json:"root"`
}

// SnapshotNode is either an element (Tag set) or a text node (Tag empty).
type SnapshotNode struct {
	Tag       string          `json:"tag,omitempty"`
	Text      string          `json:"text,omitempty"`
	Attrs     [][2]string     `json:"attrs,omitempty"`
	Style     *Style          `json:"style,omitempty"`
	Box       *Box            `json:"box,omitempty"`
	InnerText *string         `json:"innerText,omitempty"`
	Children  []*SnapshotNode `json:"children,omitempty"`
}

var ErrBadSnapshot = errors.New("dom: snapshot root must be an html element")

// FromSnapshot rebuilds a Document from a browser snapshot. Measured values
// are taken as-is; elements without a style fall back to the static cascade
// values of the rebuilt tree.
func FromSnapshot(snap *Snapshot) (*Document, error) {
	if snap == nil || snap.Root == nil || !strings.EqualFold(snap.Root.Tag, "html") {
		return nil, ErrBadSnapshot
	}

	root := &html.Node{Type: html.DocumentNode}
	measured := make(map[*html.Node]*SnapshotNode)

	var build func(parent *html.Node, sn *SnapshotNode)
	build = func(parent *html.Node, sn *SnapshotNode) {
		if sn == nil {
			return
		}
		if sn.Tag == "" {
			parent.AppendChild(&html.Node{Type: html.TextNode, Data: sn.Text})
			return
		}
		tag := strings.ToLower(sn.Tag)
		n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
		for _, kv := range sn.Attrs {
			n.Attr = append(n.Attr, html.Attribute{Key: strings.ToLower(kv[0]), Val: kv[1]})
		}
		parent.AppendChild(n)
		measured[n] = sn
		for _, c := range sn.Children {
			build(n, c)
		}
	}
	build(root, snap.Root)

	d := newDocument(root, snap.URL)
	computeStatic(d)
	for n, sn := range measured {
		if sn.Style != nil {
			d.styles[n] = *sn.Style
		}
		if sn.Box != nil {
			d.boxes[n] = *sn.Box
		}
		if sn.InnerText != nil {
			d.texts[n] = *sn.InnerText
		}
	}
	return d, nil
}
