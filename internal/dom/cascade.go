package dom

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
)

// userAgentCSS is the part of a browser's default stylesheet that changes what
// the rules can observe.
const userAgentCSS = `
head, script, style, template, title, meta, link, base, noscript, datalist,
param, area, [hidden], input[type="hidden"] { display: none }
html, body, div, p, ul, ol, li, main, nav, header, footer, section, article,
aside, form, fieldset, table, h1, h2, h3, h4, h5, h6, blockquote, pre,
figure, figcaption, details, summary, dl, dt, dd, address, hr { display: block }
li { display: list-item }
h1 { font-size: 2em; font-weight: bold }
h2 { font-size: 1.5em; font-weight: bold }
h3 { font-size: 1.17em; font-weight: bold }
h4 { font-size: 1em; font-weight: bold }
h5 { font-size: 0.83em; font-weight: bold }
h6 { font-size: 0.67em; font-weight: bold }
b, strong, th { font-weight: bold }
small { font-size: smaller }
a[href] { cursor: pointer; color: #0000ee }
`

type origin int

// Precedence levels, lowest first.
const (
	originUA origin = iota
	originAuthor
	originInline
	originAuthorImportant
	originInlineImportant
	originUAImportant
)

type declaration struct {
	prop  string
	value string
}

type styleRule struct {
	sel   cascadia.Sel
	spec  cascadia.Specificity
	order int
	ua    bool
	decls []*css.Declaration
}

type matched struct {
	declaration
	level origin
	spec  cascadia.Specificity
	order int
}

var uaRules = compileSheet(userAgentCSS, true, 0)

// compileSheet parses a stylesheet and compiles every selector. Rules inside
// print-only @media blocks are dropped; unsupported selectors are skipped.
func compileSheet(text string, ua bool, orderBase int) []styleRule {
	sheet, err := parser.Parse(text)
	if err != nil {
		return nil
	}
	var out []styleRule
	order := orderBase
	var add func(rules []*css.Rule)
	add = func(rules []*css.Rule) {
		for _, r := range rules {
			if r.Kind == css.AtRule {
				name := strings.TrimPrefix(strings.ToLower(r.Name), "@")
				if name == "media" && !printOnly(r.Prelude) {
					add(r.Rules)
				}
				continue
			}
			for _, s := range r.Selectors {
				sel, err := cascadia.Parse(s)
				if err != nil {
					continue
				}
				out = append(out, styleRule{
					sel:   sel,
					spec:  sel.Specificity(),
					order: order,
					ua:    ua,
					decls: r.Declarations,
				})
				order++
			}
		}
	}
	add(sheet.Rules)
	return out
}

func printOnly(media string) bool {
	media = strings.ToLower(media)
	return strings.Contains(media, "print") && !strings.Contains(media, "screen") && !strings.Contains(media, "all")
}

// authorRules collects <style> elements in document order.
func authorRules(d *Document) []styleRule {
	var out []styleRule
	d.Find("style").Each(func(_ int, s *goquery.Selection) {
		if media, ok := s.Attr("media"); ok && printOnly(media) {
			return
		}
		out = append(out, compileSheet(s.Text(), false, len(out))...)
	})
	return out
}

// specifiedValues returns the winning specified value per property for n.
func specifiedValues(n *html.Node, rules []styleRule) map[string]string {
	var ms []matched
	for _, r := range rules {
		if !r.sel.Match(n) {
			continue
		}
		for _, decl := range r.decls {
			level := originAuthor
			switch {
			case r.ua && decl.Important:
				level = originUAImportant
			case r.ua:
				level = originUA
			case decl.Important:
				level = originAuthorImportant
			}
			ms = append(ms, matched{
				declaration: declaration{prop: strings.ToLower(decl.Property), value: decl.Value},
				level:       level,
				spec:        r.spec,
				order:       r.order,
			})
		}
	}
	if inline, ok := attr(n, "style"); ok && strings.TrimSpace(inline) != "" {
		if decls, err := parser.ParseDeclarations(inline); err == nil {
			for i, decl := range decls {
				level := originInline
				if decl.Important {
					level = originInlineImportant
				}
				ms = append(ms, matched{
					declaration: declaration{prop: strings.ToLower(decl.Property), value: decl.Value},
					level:       level,
					order:       i,
				})
			}
		}
	}

	sort.SliceStable(ms, func(i, j int) bool {
		a, b := ms[i], ms[j]
		if a.level != b.level {
			return a.level < b.level
		}
		if a.spec != b.spec {
			return a.spec.Less(b.spec)
		}
		return a.order < b.order
	})

	out := make(map[string]string, len(ms))
	for _, m := range ms {
		v := strings.TrimSpace(m.value)
		out[m.prop] = v
		if m.prop == "background" {
			out["background-color"] = backgroundColorFromShorthand(strings.ToLower(v))
		}
	}
	return out
}
