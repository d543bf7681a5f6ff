package dom

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/raysh454/vertex/internal/contrast"
)

const (
	initialColor      = "rgb(0, 0, 0)"
	initialBackground = "rgba(0, 0, 0, 0)"
	initialFontSize   = 16.0
	initialWeight     = 400
)

// replacedTags render something even without text content.
var replacedTags = map[string]bool{
	"img": true, "input": true, "select": true, "textarea": true, "button": true,
	"video": true, "audio": true, "iframe": true, "canvas": true, "svg": true,
	"object": true, "embed": true, "hr": true, "meter": true, "progress": true,
}

type computed struct {
	Style
	fontPx float64
	weight int
}

// computeStatic fills styles and boxes for a parsed document.
func computeStatic(d *Document) {
	rules := append(append([]styleRule(nil), uaRules...), authorRules(d)...)

	root := computed{
		Style: Style{
			Color:           initialColor,
			BackgroundColor: initialBackground,
			FontSize:        formatPx(initialFontSize),
			FontWeight:      strconv.Itoa(initialWeight),
			Cursor:          "auto",
			Display:         "inline",
			Visibility:      "visible",
		},
		fontPx: initialFontSize,
		weight: initialWeight,
	}
	rootPx := initialFontSize
	zeroSized := make(map[*html.Node]bool)

	var walk func(n *html.Node, parent computed, hidden bool)
	walk = func(n *html.Node, parent computed, hidden bool) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			spec := specifiedValues(c, rules)
			cs := resolve(spec, parent, rootPx)
			if c.Parent != nil && c.Parent.Type == html.DocumentNode {
				rootPx = cs.fontPx
			}
			d.styles[c] = cs.Style
			if isZeroLength(spec["width"]) || isZeroLength(spec["height"]) {
				zeroSized[c] = true
			}
			childHidden := hidden || cs.Display == "none"
			if childHidden {
				d.boxes[c] = Box{}
			}
			walk(c, cs, childHidden)
		}
	}
	walk(d.Root(), root, false)

	// Boxes for rendered elements: empty unless the element renders text or a
	// replaced element somewhere below it.
	var content func(n *html.Node) bool
	content = func(n *html.Node) bool {
		has := false
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				if strings.TrimSpace(c.Data) != "" {
					has = true
				}
			case html.ElementNode:
				if content(c) && d.styles[c].Display != "none" {
					has = true
				}
			}
		}
		if n.Type != html.ElementNode {
			return has
		}
		has = has || replacedTags[TagName(n)]
		if _, done := d.boxes[n]; !done {
			if has && !zeroSized[n] {
				d.boxes[n] = Box{Width: 1, Height: 1}
			} else {
				d.boxes[n] = Box{}
			}
		}
		return has
	}
	content(d.Root())
}

// resolve turns specified values into computed values given the parent.
func resolve(spec map[string]string, parent computed, rootPx float64) computed {
	cs := computed{
		Style: Style{
			Color:           parent.Color,
			BackgroundColor: initialBackground,
			FontSize:        parent.FontSize,
			FontWeight:      parent.FontWeight,
			Cursor:          parent.Cursor,
			Display:         "inline",
			Visibility:      parent.Visibility,
		},
		fontPx: parent.fontPx,
		weight: parent.weight,
	}

	if v, ok := keywordValue(spec, "color"); ok {
		switch v {
		case "inherit", "unset", "currentcolor", "revert":
		case "initial":
			cs.Color = initialColor
		default:
			cs.Color = v
		}
	}

	if v, ok := keywordValue(spec, "font-size"); ok {
		switch v {
		case "inherit", "unset", "revert":
		case "initial":
			cs.fontPx = initialFontSize
		default:
			if px, ok := resolveFontSize(v, parent.fontPx, rootPx); ok {
				cs.fontPx = px
			}
		}
		cs.FontSize = formatPx(cs.fontPx)
	}

	if v, ok := keywordValue(spec, "font-weight"); ok {
		switch v {
		case "inherit", "unset", "revert":
		case "initial":
			cs.weight = initialWeight
		default:
			if w, ok := resolveFontWeight(v, parent.weight); ok {
				cs.weight = w
			}
		}
		cs.FontWeight = strconv.Itoa(cs.weight)
	}

	if v, ok := keywordValue(spec, "cursor"); ok {
		switch v {
		case "inherit", "unset", "revert":
		case "initial":
			cs.Cursor = "auto"
		default:
			cs.Cursor = cursorKeyword(v)
		}
	}

	if v, ok := keywordValue(spec, "visibility"); ok {
		switch v {
		case "inherit", "unset", "revert":
		case "initial":
			cs.Visibility = "visible"
		default:
			cs.Visibility = v
		}
	}

	if v, ok := keywordValue(spec, "display"); ok {
		switch v {
		case "inherit":
			cs.Display = parent.Display
		case "initial", "unset", "revert":
		default:
			cs.Display = strings.Fields(v)[0]
		}
	}

	if bg, ok := keywordValue(spec, "background-color"); ok {
		switch bg {
		case "initial", "unset", "revert":
		case "inherit":
			cs.BackgroundColor = parent.BackgroundColor
		case "currentcolor":
			cs.BackgroundColor = cs.Color
		default:
			cs.BackgroundColor = bg
		}
	}
	return cs
}

func keywordValue(spec map[string]string, prop string) (string, bool) {
	v, ok := spec[prop]
	if !ok || v == "" {
		return "", false
	}
	return strings.ToLower(v), true
}

// backgroundColorFromShorthand extracts the color layer of a background
// shorthand. A shorthand without a color resets it to transparent.
func backgroundColorFromShorthand(v string) string {
	switch v {
	case "inherit", "initial", "unset", "revert":
		return v
	}
	for _, tok := range splitTopLevel(v) {
		if tok == "currentcolor" {
			return tok
		}
		if _, ok := contrast.ParseColor(tok); ok {
			return tok
		}
	}
	return initialBackground
}

// splitTopLevel splits on whitespace outside parentheses.
func splitTopLevel(v string) []string {
	var out []string
	depth, start := 0, -1
	for i, r := range v {
		switch {
		case r == '(':
			depth++
		case r == ')':
			depth--
		case (r == ' ' || r == '\t' || r == '\n' || r == ',' || r == '/') && depth == 0:
			if start >= 0 {
				out = append(out, v[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, v[start:])
	}
	return out
}

// cursorKeyword drops url() fallbacks: "url(a.cur), pointer" -> "pointer".
func cursorKeyword(v string) string {
	parts := strings.Split(v, ",")
	return strings.TrimSpace(parts[len(parts)-1])
}
