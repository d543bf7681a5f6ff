package scanner_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/raysh454/vertex/internal/dom"
	"github.com/raysh454/vertex/internal/scanner"
	"github.com/raysh454/vertex/internal/testutil"
)

func newScanner() *scanner.Scanner {
	return scanner.New(scanner.DefaultConfig(), &testutil.DummyLogger{})
}

func scan(t *testing.T, src string) *scanner.Report {
	t.Helper()
	doc, err := dom.ParseString(src, "test://page")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	rep, err := newScanner().Scan(doc)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	checkInvariants(t, rep)
	return rep
}

func checkInvariants(t *testing.T, rep *scanner.Report) {
	t.Helper()
	if rep.Score < 0 || rep.Score > 100 {
		t.Errorf("score %v out of range", rep.Score)
	}
	if rep.Passed < 0 || rep.Checked < rep.Passed {
		t.Errorf("checked=%d passed=%d violates checked >= passed >= 0", rep.Checked, rep.Passed)
	}
	for _, is := range rep.Issues {
		if !is.Type.Valid() || !is.Severity.Valid() {
			t.Errorf("issue has invalid type/severity: %+v", is)
		}
		if is.ID == "" {
			t.Errorf("issue without id: %+v", is)
		}
	}
}

func ofType(rep *scanner.Report, c scanner.Category) []scanner.Issue {
	var out []scanner.Issue
	for _, is := range rep.Issues {
		if is.Type == c {
			out = append(out, is)
		}
	}
	return out
}

const landmarks = `<header>h</header><nav>n</nav><main>m</main><footer>f</footer>`

func TestScan_ImageAlt(t *testing.T) {
	t.Parallel()
	missing := scan(t, `<html><body><img src="a.png?size=2"></body></html>`)
	imgs := ofType(missing, scanner.CategoryImages)
	if len(imgs) != 1 {
		t.Fatalf("expected 1 Images issue, got %d", len(imgs))
	}
	is := imgs[0]
	if is.Severity != scanner.SeverityHigh || !is.Fixable {
		t.Errorf("unexpected severity/fixable: %+v", is)
	}
	if is.Tip != `Add an alt: <img src="a.png" alt="describe image">` {
		t.Errorf("tip = %q", is.Tip)
	}
	if is.Path != "html > body > img" {
		t.Errorf("path = %q", is.Path)
	}
	if is.Snippet != `<img src="a.png?size=2"/>` {
		t.Errorf("snippet = %q", is.Snippet)
	}

	with := scan(t, `<html><body><img src="a.png" alt="a cat"></body></html>`)
	if n := len(ofType(with, scanner.CategoryImages)); n != 0 {
		t.Fatalf("expected no Images issues, got %d", n)
	}
	if with.Passed != missing.Passed+1 || with.Checked != missing.Checked {
		t.Errorf("alt image should add one pass: missing=%d/%d with=%d/%d",
			missing.Passed, missing.Checked, with.Passed, with.Checked)
	}

	hidden := scan(t, `<html><body><img src="a.png" aria-hidden="true"></body></html>`)
	if hidden.Passed != with.Passed || len(ofType(hidden, scanner.CategoryImages)) != 0 {
		t.Errorf("aria-hidden image should count as a pass")
	}
}

func TestScan_EmptyPageScoring(t *testing.T) {
	t.Parallel()
	rep := scan(t, `<html><body></body></html>`)
	// images, contrast, keyboard, forms and media each count one empty check;
	// four landmarks and the zoom check make up the rest. No headings, no check.
	if rep.Checked != 10 || rep.Passed != 1 {
		t.Fatalf("checked/passed = %d/%d, want 10/1", rep.Checked, rep.Passed)
	}
	if rep.Score != 10 {
		t.Fatalf("score = %v, want 10", rep.Score)
	}
}

func TestScan_Landmarks(t *testing.T) {
	t.Parallel()
	rep := scan(t, `<html><body><div>plain page</div></body></html>`)
	sem := ofType(rep, scanner.CategorySemantic)
	if len(sem) != 4 {
		t.Fatalf("expected 4 Semantic issues, got %d", len(sem))
	}
	for i, tag := range scanner.Landmarks {
		want := fmt.Sprintf("Missing landmark <%s>.", tag)
		if sem[i].Message != want || sem[i].Severity != scanner.SeverityLow || sem[i].Path != "" || sem[i].Fixable {
			t.Errorf("issue %d = %+v, want page-level low %q", i, sem[i], want)
		}
	}

	all := scan(t, `<html><body>`+landmarks+`</body></html>`)
	if n := len(ofType(all, scanner.CategorySemantic)); n != 0 {
		t.Fatalf("expected no Semantic issues, got %d", n)
	}
}

func TestScan_Contrast(t *testing.T) {
	t.Parallel()
	rep := scan(t, `<html><body>
		<p style="color:#777">grey body text</p>
		<p style="color:#000">black body text</p>
		<div style="background:#000;color:#fff"><p>inverted text</p></div>
	</body></html>`)
	issues := ofType(rep, scanner.CategoryContrast)
	if len(issues) != 1 {
		t.Fatalf("expected 1 Contrast issue, got %d: %+v", len(issues), issues)
	}
	is := issues[0]
	if is.Message != "Text contrast 4.48:1 is below 4.5:1." {
		t.Errorf("message = %q", is.Message)
	}
	if is.Snippet != "grey body text" || is.Fixable || is.Severity != scanner.SeverityHigh {
		t.Errorf("unexpected issue %+v", is)
	}
}

func TestScan_ContrastLargeText(t *testing.T) {
	t.Parallel()
	// #909090 on white is about 3.19:1.
	large := scan(t, `<html><body><p style="color:#909090;font-size:24px">large text</p></body></html>`)
	if n := len(ofType(large, scanner.CategoryContrast)); n != 0 {
		t.Errorf("24px text at 3.19:1 should pass, got %d issues", n)
	}
	bold := scan(t, `<html><body><p style="color:#909090;font-size:19px;font-weight:bold">bold text</p></body></html>`)
	if n := len(ofType(bold, scanner.CategoryContrast)); n != 0 {
		t.Errorf("19px bold text at 3.19:1 should pass, got %d issues", n)
	}
	small := scan(t, `<html><body><p style="color:#909090;font-size:16px">small text</p></body></html>`)
	issues := ofType(small, scanner.CategoryContrast)
	if len(issues) != 1 || !strings.HasSuffix(issues[0].Message, "is below 4.5:1.") {
		t.Errorf("16px text at 3.19:1 should fail against 4.5, got %+v", issues)
	}
}

func TestScan_ContrastUnparseableColorIsExcluded(t *testing.T) {
	t.Parallel()
	base := scan(t, `<html><body><p>short</p></body></html>`)
	odd := scan(t, `<html><body><p style="color: notacolor">unknown color text</p></body></html>`)
	// The empty sample counts one check; an inapplicable candidate counts none.
	if odd.Checked != base.Checked-1 || odd.Passed != base.Passed {
		t.Fatalf("checked/passed base=%d/%d odd=%d/%d", base.Checked, base.Passed, odd.Checked, odd.Passed)
	}
	if n := len(ofType(odd, scanner.CategoryContrast)); n != 0 {
		t.Fatalf("unparseable color must not produce issues, got %d", n)
	}
}

func TestScan_Keyboard(t *testing.T) {
	t.Parallel()
	rep := scan(t, `<html><body>
		<div onclick="go()">Click me</div>
		<div role="button" tabindex="0">Fine</div>
		<span style="cursor:pointer" tabindex="-1">Pointer</span>
		<div onclick="go()" style="display:none">Hidden</div>
		<a href="/x"><span>inherits pointer</span></a>
		<div onclick="go()" tabindex=" 1abc">Leading digits</div>
		<div onclick="go()" tabindex="abc">No digits</div>
	</body></html>`)
	issues := ofType(rep, scanner.CategoryKeyboard)
	// The span inside the link inherits cursor:pointer and is flagged too.
	if len(issues) != 4 {
		t.Fatalf("expected 4 Keyboard issues, got %d: %+v", len(issues), issues)
	}
	for _, is := range issues {
		if is.Severity != scanner.SeverityMedium || !is.Fixable || is.Path == "" {
			t.Errorf("unexpected keyboard issue %+v", is)
		}
	}
}

func TestScan_HeadingOrder(t *testing.T) {
	t.Parallel()
	cases := []struct {
		body string
		want int
	}{
		{"<h1>a</h1><h2>b</h2><h4>c</h4><h6>d</h6>", 1},
		{"<h1>a</h1><h2>b</h2><h3>c</h3><h2>d</h2>", 0},
		{"<h3>start deep</h3>", 0},
		{"<h2>a</h2><h1>b</h1><h3>c</h3>", 1},
	}
	for _, tc := range cases {
		rep := scan(t, "<html><body>"+landmarks+tc.body+"</body></html>")
		if got := len(ofType(rep, scanner.CategorySemantic)); got != tc.want {
			t.Errorf("%s: got %d heading issues, want %d", tc.body, got, tc.want)
		}
	}
}

func TestScan_FormLabels(t *testing.T) {
	t.Parallel()
	rep := scan(t, `<html><body>
		<label for="a">A</label><input id="a">
		<label>B <input type="text"></label>
		<input aria-label="C">
		<span id="lbl">D</span><input aria-labelledby="missing lbl">
		<input aria-labelledby="missing">
		<input type="hidden" name="token">
		<input type="text" style="display:none">
		<textarea></textarea>
		<select><option>1</option></select>
	</body></html>`)
	issues := ofType(rep, scanner.CategoryForms)
	if len(issues) != 3 {
		t.Fatalf("expected 3 Forms issues, got %d: %+v", len(issues), issues)
	}
	for _, is := range issues {
		if is.Severity != scanner.SeverityHigh || !is.Fixable {
			t.Errorf("unexpected forms issue %+v", is)
		}
	}
	if !strings.HasPrefix(issues[1].Snippet, "<textarea") || !strings.HasPrefix(issues[2].Snippet, "<select") {
		t.Errorf("issues out of document order: %q, %q", issues[1].Snippet, issues[2].Snippet)
	}
}

func TestScan_MediaCaptions(t *testing.T) {
	t.Parallel()
	rep := scan(t, `<html><body>
		<video src="a.mp4"><track kind="captions" src="a.vtt"></video>
		<video src="b.mp4"><track kind="subtitles" src="b.vtt"></video>
		<video src="c.mp4"></video>
	</body></html>`)
	issues := ofType(rep, scanner.CategoryMedia)
	if len(issues) != 1 {
		t.Fatalf("expected 1 Media issue, got %d", len(issues))
	}
	if issues[0].Fixable || !strings.Contains(issues[0].Snippet, "c.mp4") {
		t.Errorf("unexpected media issue %+v", issues[0])
	}
}

func TestScan_Zoom(t *testing.T) {
	t.Parallel()
	blocked := scan(t, `<html><head><meta name="viewport" content="width=device-width, user-scalable=no"></head><body></body></html>`)
	issues := ofType(blocked, scanner.CategoryZoom)
	if len(issues) != 1 {
		t.Fatalf("expected 1 Zoom issue, got %d", len(issues))
	}
	if issues[0].Severity != scanner.SeverityHigh || issues[0].Path != "" || !strings.HasPrefix(issues[0].Snippet, "<meta") {
		t.Errorf("unexpected zoom issue %+v", issues[0])
	}

	ok := scan(t, `<html><head><meta name="viewport" content="width=device-width"></head><body></body></html>`)
	if n := len(ofType(ok, scanner.CategoryZoom)); n != 0 {
		t.Fatalf("expected no Zoom issues, got %d", n)
	}
}

func TestBlocksZoom(t *testing.T) {
	t.Parallel()
	cases := map[string]bool{
		"width=device-width, user-scalable=no":  true,
		"USER-SCALABLE = NO":                    true,
		"maximum-scale=1":                       true,
		"maximum-scale=1.0, width=device-width": true,
		"initial-scale=1; maximum-scale=1.00;":  true,
		"maximum-scale=1 ":                      true,
		"maximum-scale=1 user-scalable=yes":     true,
		"maximum-scale=1.0\twidth=device-width": true,
		"maximum-scale=1.5":                     false,
		"maximum-scale=1.05 user-scalable=yes":  false,
		"maximum-scale=10":                      false,
		"width=device-width":                    false,
		"width=device-width, user-scalable=yes": false,
		"width=device-width, initial-scale=1":   false,
	}
	for content, want := range cases {
		if got := scanner.BlocksZoom(content); got != want {
			t.Errorf("BlocksZoom(%q) = %v, want %v", content, got, want)
		}
	}
}

func TestScan_Idempotent(t *testing.T) {
	t.Parallel()
	src := `<html><head><meta name="viewport" content="maximum-scale=1"></head><body>
		<img src="x.png"><p style="color:#aaa">faint paragraph</p>
		<div onclick="x()">clickable</div><input><video></video><h1>a</h1><h3>b</h3>
	</body></html>`
	doc, err := dom.ParseString(src, "test://page")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	s := newScanner()
	a, err := s.Scan(doc)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	b, err := s.Scan(doc)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if a.Checked != b.Checked || a.Passed != b.Passed || a.Score != b.Score {
		t.Fatalf("reports differ: %d/%d/%v vs %d/%d/%v", a.Checked, a.Passed, a.Score, b.Checked, b.Passed, b.Score)
	}
	if fmt.Sprint(issueKeys(a)) != fmt.Sprint(issueKeys(b)) {
		t.Fatalf("issue multisets differ:\n%v\n%v", issueKeys(a), issueKeys(b))
	}
	if len(a.Issues) > 0 && a.Issues[0].ID == b.Issues[0].ID {
		t.Errorf("expected fresh ids per scan")
	}
}

func issueKeys(r *scanner.Report) []string {
	var out []string
	for _, is := range r.Issues {
		out = append(out, strings.Join([]string{string(is.Type), string(is.Severity), is.Message, is.Path, is.Snippet}, "|"))
	}
	sort.Strings(out)
	return out
}

func TestScan_IssueOrderFollowsRules(t *testing.T) {
	t.Parallel()
	rep := scan(t, `<html><head><meta name="viewport" content="user-scalable=no"></head><body>
		<video></video><input><h1>a</h1><h3>b</h3><div onclick="x()">clickable</div>
		<p style="color:#aaa">faint paragraph</p><img src="x.png">
	</body></html>`)
	order := map[scanner.Category]int{}
	for i, c := range scanner.Categories {
		order[c] = i
	}
	for i := 1; i < len(rep.Issues); i++ {
		if order[rep.Issues[i].Type] < order[rep.Issues[i-1].Type] {
			t.Fatalf("issue %d (%s) after %s breaks rule order", i, rep.Issues[i].Type, rep.Issues[i-1].Type)
		}
	}
}

func TestScan_CustomIDs(t *testing.T) {
	t.Parallel()
	n := 0
	cfg := scanner.DefaultConfig()
	cfg.IDFunc = func() string { n++; return fmt.Sprintf("issue-%d", n) }
	doc, err := dom.ParseString(`<html><body><img src="a.png"></body></html>`, "")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	rep, err := scanner.New(cfg, &testutil.DummyLogger{}).Scan(doc)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if rep.Issues[0].ID != "issue-1" || rep.Issues[len(rep.Issues)-1].ID != fmt.Sprintf("issue-%d", len(rep.Issues)) {
		t.Fatalf("ids not taken from IDFunc: %+v", rep.Issues)
	}
}

func TestScan_SnippetTruncation(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("x", 400)
	rep := scan(t, `<html><body><img src="`+long+`"></body></html>`)
	snip := ofType(rep, scanner.CategoryImages)[0].Snippet
	if got := len([]rune(snip)); got != 261 || !strings.HasSuffix(snip, "…") {
		t.Fatalf("snippet has %d runes, want 260 plus ellipsis", got)
	}
}

func TestScan_NilDocument(t *testing.T) {
	t.Parallel()
	if _, err := newScanner().Scan(nil); !errors.Is(err, scanner.ErrScanAborted) {
		t.Fatalf("err = %v, want ErrScanAborted", err)
	}
}

func TestReportJSON(t *testing.T) {
	t.Parallel()
	failed, err := json.Marshal(scanner.Failed(errors.New("scripting not permitted")))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(failed) != `{"error":"scripting not permitted"}` {
		t.Fatalf("failed report JSON = %s", failed)
	}

	rep := scan(t, `<html><body></body></html>`)
	raw, err := json.Marshal(rep)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"checked", "passed", "score", "issues"} {
		if _, ok := generic[k]; !ok {
			t.Errorf("missing %q in %s", k, raw)
		}
	}
	if _, ok := generic["error"]; ok {
		t.Errorf("unexpected error field in %s", raw)
	}
	first := generic["issues"].([]any)[0].(map[string]any)
	if _, ok := first["path"]; ok {
		t.Errorf("page-level issue should omit path: %v", first)
	}
}

func TestScore(t *testing.T) {
	t.Parallel()
	cases := []struct {
		passed, checked int
		want            float64
	}{
		{0, 0, 0},
		{3, 4, 75},
		{4, 4, 100},
		{0, 7, 0},
	}
	for _, tc := range cases {
		if got := scanner.Score(tc.passed, tc.checked); got != tc.want {
			t.Errorf("Score(%d, %d) = %v, want %v", tc.passed, tc.checked, got, tc.want)
		}
	}
}
