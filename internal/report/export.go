package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/raysh454/vertex/internal/reportstore"
	"github.com/raysh454/vertex/internal/scanner"
)

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	policy   = bluemonday.UGCPolicy()
)

var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Accessibility report: {{.Source}}</title>
<style>
body { font: 15px/1.5 system-ui, sans-serif; color: #1a1a1a; background: #fff; max-width: 60rem; margin: 2rem auto; padding: 0 1rem; }
h1 { font-size: 1.6rem; }
h2 { font-size: 1.1rem; margin-top: 1.6rem; border-top: 1px solid #ddd; padding-top: 1rem; }
pre { background: #f5f5f5; padding: .6rem; overflow-x: auto; white-space: pre-wrap; word-break: break-all; }
code { font-family: ui-monospace, monospace; font-size: .9em; }
.tier { display: inline-block; padding: .1rem .5rem; border: 1px solid #1a1a1a; border-radius: 4px; }
@media print { body { margin: 0; max-width: none; } h2 { break-after: avoid; } pre { break-inside: avoid; } }
</style>
</head>
<body>
<main>
<p class="tier">{{.Tier}}</p>
{{.Body}}
</main>
<footer><p>Generated {{.Generated}}</p></footer>
</body>
</html>
`))

type page struct {
	Source    string
	Tier      string
	Generated string
	Body      template.HTML
}

// Export renders rec as a standalone, print-friendly HTML document listing
// the issues selected by view.
func Export(rec *reportstore.Record, view View) ([]byte, error) {
	if rec == nil || rec.Report == nil {
		return nil, fmt.Errorf("export: empty record")
	}
	md := Markdown(rec, view)

	var rendered bytes.Buffer
	if err := markdown.Convert([]byte(md), &rendered); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	body := policy.SanitizeBytes(rendered.Bytes())

	p := page{
		Source:    rec.Source,
		Generated: rec.ScannedAt.UTC().Format(time.RFC3339),
		Body:      template.HTML(body),
	}
	if rec.Report.Error == "" {
		p.Tier = Tier(rec.Report.Score)
	} else {
		p.Tier = "Scan failed"
	}

	var out bytes.Buffer
	if err := pageTemplate.Execute(&out, p); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return out.Bytes(), nil
}

// Markdown is the summary Export renders.
func Markdown(rec *reportstore.Record, view View) string {
	var b strings.Builder
	r := rec.Report

	b.WriteString("# Accessibility report\n\n")
	fmt.Fprintf(&b, "- **Source:** %s\n", escapeMarkdown(rec.Source))
	if !rec.ScannedAt.IsZero() {
		fmt.Fprintf(&b, "- **Scanned:** %s\n", rec.ScannedAt.UTC().Format(time.RFC1123))
	}
	if rec.Mode != "" {
		fmt.Fprintf(&b, "- **Mode:** %s\n", escapeMarkdown(rec.Mode))
	}
	if r.Error != "" {
		fmt.Fprintf(&b, "\n**Scan failed:** %s\n", escapeMarkdown(r.Error))
		return b.String()
	}

	issues := Apply(r.Issues, view)
	counts := Counts(issues)
	fmt.Fprintf(&b, "- **Score:** %.0f (%s)\n", r.Score, Tier(r.Score))
	fmt.Fprintf(&b, "- **Checks passed:** %d of %d\n", r.Passed, r.Checked)
	fmt.Fprintf(&b, "- **Issues:** %d (high %d, medium %d, low %d)\n",
		len(issues), counts[scanner.SeverityHigh], counts[scanner.SeverityMedium], counts[scanner.SeverityLow])

	if len(issues) == 0 {
		b.WriteString("\nNo issues match this view.\n")
		return b.String()
	}

	for i, is := range issues {
		fmt.Fprintf(&b, "\n## %d. %s (%s)\n\n", i+1, escapeMarkdown(string(is.Type)), is.Severity)
		fmt.Fprintf(&b, "%s\n\n", escapeMarkdown(is.Message))
		if is.Tip != "" {
			fmt.Fprintf(&b, "**Tip:** %s\n\n", escapeMarkdown(is.Tip))
		}
		if is.Path != "" {
			fmt.Fprintf(&b, "**Path:** %s\n\n", inlineCode(is.Path))
		}
		if is.Fixable {
			b.WriteString("Fixable: yes\n\n")
		}
		if is.Snippet != "" {
			b.WriteString(fence(is.Snippet))
		}
	}
	return b.String()
}

const markdownSpecials = "\\`*_{}[]()<>#+-.!|~&"

// escapeMarkdown backslash-escapes punctuation so text renders literally.
func escapeMarkdown(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' {
			b.WriteByte(' ')
			continue
		}
		if strings.ContainsRune(markdownSpecials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// inlineCode wraps s in a backtick run longer than any run inside it.
func inlineCode(s string) string {
	ticks := strings.Repeat("`", longestRun(s, '`')+1)
	return ticks + " " + s + " " + ticks
}

// fence wraps s in a fenced code block that s cannot close.
func fence(s string) string {
	n := longestRun(s, '`') + 1
	if n < 3 {
		n = 3
	}
	ticks := strings.Repeat("`", n)
	return ticks + "html\n" + strings.TrimRight(s, "\n") + "\n" + ticks + "\n"
}

func longestRun(s string, c rune) int {
	best, cur := 0, 0
	for _, r := range s {
		if r == c {
			cur++
			if cur > best {
				best = cur
			}
		} else {
			cur = 0
		}
	}
	return best
}
