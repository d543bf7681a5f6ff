package report_test

import (
	"strings"
	"testing"
	"time"

	"github.com/raysh454/vertex/internal/report"
	"github.com/raysh454/vertex/internal/reportstore"
	"github.com/raysh454/vertex/internal/scanner"
)

func issue(id string, typ scanner.Category, sev scanner.Severity, fixable bool) scanner.Issue {
	return scanner.Issue{ID: id, Type: typ, Severity: sev, Fixable: fixable, Message: string(typ) + " problem"}
}

func ids(issues []scanner.Issue) string {
	var out []string
	for _, is := range issues {
		out = append(out, is.ID)
	}
	return strings.Join(out, ",")
}

var sample = []scanner.Issue{
	issue("1", scanner.CategoryKeyboard, scanner.SeverityMedium, true),
	issue("2", scanner.CategorySemantic, scanner.SeverityLow, false),
	issue("3", scanner.CategoryContrast, scanner.SeverityHigh, false),
	issue("4", scanner.CategoryImages, scanner.SeverityHigh, true),
	issue("5", scanner.CategorySemantic, scanner.SeverityLow, false),
	issue("6", scanner.CategoryForms, scanner.SeverityHigh, true),
}

func TestTier(t *testing.T) {
	t.Parallel()
	cases := map[float64]string{
		100: "AAA", 90: "AAA", 89.9: "AA", 50: "AA", 49: "A", 30: "A", 29.99: "Needs Work", 0: "Needs Work",
	}
	for score, want := range cases {
		if got := report.Tier(score); got != want {
			t.Errorf("Tier(%v) = %q, want %q", score, got, want)
		}
	}
}

func TestApply_Sorts(t *testing.T) {
	t.Parallel()
	cases := map[report.SortKey]string{
		report.SortDefault:  "1,2,3,4,5,6",
		report.SortType:     "3,6,4,1,2,5",
		report.SortSeverity: "3,4,6,1,2,5",
		report.SortFixable:  "1,4,6,2,3,5",
	}
	for key, want := range cases {
		if got := ids(report.Apply(sample, report.View{Sort: key})); got != want {
			t.Errorf("sort %q = %s, want %s", key, got, want)
		}
	}
	if ids(sample) != "1,2,3,4,5,6" {
		t.Fatalf("Apply mutated its input: %s", ids(sample))
	}
}

func TestApply_Filters(t *testing.T) {
	t.Parallel()
	cases := []struct {
		f    report.Filter
		want string
	}{
		{report.Filter{}, "1,2,3,4,5,6"},
		{report.Filter{FixableOnly: true}, "1,4,6"},
		{report.Filter{Type: scanner.CategorySemantic}, "2,5"},
		{report.Filter{Severity: scanner.SeverityHigh}, "3,4,6"},
		{report.Filter{Severity: scanner.SeverityHigh, FixableOnly: true}, "4,6"},
	}
	for _, tc := range cases {
		if got := ids(report.Apply(sample, report.View{Filter: tc.f})); got != tc.want {
			t.Errorf("filter %+v = %s, want %s", tc.f, got, tc.want)
		}
	}
}

func TestParseSortKey(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"", "default", "Type", "severity", " fixable "} {
		if _, err := report.ParseSortKey(s); err != nil {
			t.Errorf("ParseSortKey(%q): %v", s, err)
		}
	}
	if _, err := report.ParseSortKey("score"); err == nil {
		t.Errorf("expected error for unknown key")
	}
}

func exportRecord() *reportstore.Record {
	return &reportstore.Record{
		ID:        "r1",
		Source:    "https://example.com/<script>",
		Mode:      "static",
		ScannedAt: time.Date(2026, 5, 2, 9, 30, 0, 0, time.UTC),
		Report: &scanner.Report{
			Checked: 10,
			Passed:  6,
			Score:   60,
			Issues: []scanner.Issue{
				{
					ID: "a", Type: scanner.CategoryImages, Severity: scanner.SeverityHigh, Fixable: true,
					Message: "Image missing alt text. Add a concise description of what the image conveys.",
					Snippet: `<img src="x.png" onerror="alert(1)"/>`,
					Tip:     `Add an alt: <img src="x.png" alt="describe image">`,
					Path:    "html > body > img",
				},
				{
					ID: "b", Type: scanner.CategorySemantic, Severity: scanner.SeverityLow,
					Message: "Missing landmark <main>.",
					Tip:     "Add a <main> landmark to improve screen reader navigation.",
				},
			},
		},
	}
}

func TestExport(t *testing.T) {
	t.Parallel()
	out, err := report.Export(exportRecord(), report.View{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	page := string(out)

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<h1>Accessibility report</h1>",
		"Missing landmark &lt;main&gt;.",
		"Image missing alt text.",
		"AA",
		"@media print",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("export missing %q", want)
		}
	}
	for _, bad := range []string{"<script>", `<img src="x.png"`, "onerror=\"alert"} {
		if strings.Contains(page, bad) {
			t.Errorf("export contains unescaped page markup %q", bad)
		}
	}
}

func TestExport_RespectsView(t *testing.T) {
	t.Parallel()
	out, err := report.Export(exportRecord(), report.View{Filter: report.Filter{FixableOnly: true}})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if strings.Contains(string(out), "Missing landmark") {
		t.Errorf("fixable-only export should drop the landmark issue")
	}
}

func TestExport_FailedScan(t *testing.T) {
	t.Parallel()
	rec := &reportstore.Record{ID: "f", Source: "about:blank", Report: &scanner.Report{Error: "input unavailable"}}
	out, err := report.Export(rec, report.View{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	page := string(out)
	if !strings.Contains(page, "Scan failed") || strings.Contains(page, "Score:") {
		t.Errorf("failed export should show the error and no score:\n%s", page)
	}
}

func TestMarkdown_Escaping(t *testing.T) {
	t.Parallel()
	md := report.Markdown(exportRecord(), report.View{})
	if !strings.Contains(md, `Missing landmark \<main\>\.`) {
		t.Errorf("message not escaped:\n%s", md)
	}
	if !strings.Contains(md, "```html\n<img src=\"x.png\" onerror=\"alert(1)\"/>\n```") {
		t.Errorf("snippet not fenced:\n%s", md)
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()
	a := func(id string) scanner.Issue {
		return scanner.Issue{ID: id, Type: scanner.CategoryImages, Severity: scanner.SeverityHigh, Message: "alt", Path: "html > body > img"}
	}
	b := scanner.Issue{ID: "b", Type: scanner.CategoryZoom, Severity: scanner.SeverityHigh, Message: "zoom"}
	c := scanner.Issue{ID: "c", Type: scanner.CategoryForms, Severity: scanner.SeverityHigh, Message: "label", Path: "html > body > input"}

	base := &reportstore.Record{
		ID:     "base",
		HTML:   "<html><body><p>old copy</p></body></html>",
		Report: &scanner.Report{Score: 40, Issues: []scanner.Issue{a("a1"), a("a2"), b}},
	}
	head := &reportstore.Record{
		ID:     "head",
		HTML:   "<html><body><p>new text</p></body></html>",
		Report: &scanner.Report{Score: 70, Issues: []scanner.Issue{a("a3"), c}},
	}

	d := report.Compare(base, head)
	if d.ScoreDelta != 30 {
		t.Errorf("ScoreDelta = %v, want 30", d.ScoreDelta)
	}
	if ids(d.New) != "c" {
		t.Errorf("New = %s, want c", ids(d.New))
	}
	if ids(d.Resolved) != "a1,b" {
		t.Errorf("Resolved = %s, want a1,b", ids(d.Resolved))
	}
	if d.Unchanged != 1 {
		t.Errorf("Unchanged = %d, want 1", d.Unchanged)
	}

	var added, removed string
	for _, ch := range d.Chunks {
		switch ch.Type {
		case "added":
			added += ch.Content
		case "removed":
			removed += ch.Content
		}
	}
	if !strings.Contains(added, "new") || !strings.Contains(removed, "old") {
		t.Errorf("chunks = %+v", d.Chunks)
	}
}

func TestCompare_IdenticalDocuments(t *testing.T) {
	t.Parallel()
	rec := exportRecord()
	rec.HTML = "<html></html>"
	d := report.Compare(rec, rec)
	if len(d.New) != 0 || len(d.Resolved) != 0 || len(d.Chunks) != 0 || d.Unchanged != len(rec.Report.Issues) {
		t.Fatalf("self-compare = %+v", d)
	}
}
