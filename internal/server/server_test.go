package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/raysh454/vertex/internal/app"
	"github.com/raysh454/vertex/internal/reportstore"
	"github.com/raysh454/vertex/internal/server"
	"github.com/raysh454/vertex/internal/testutil"
)

const v1Page = `<!doctype html><html><head><title>v1</title></head>
<body><div><img src="hero.png"><div onclick="buy()">Buy <script>alert(1)</script></div></div></body></html>`

const v2Page = `<!doctype html><html lang="en"><head><title>v2</title></head>
<body><header>Shop</header><main><h1>Shop</h1><img src="hero.png" alt="Hero">
<button onclick="buy()">Buy</button></main><footer>f</footer></body></html>`

func newTestServer(t *testing.T) *server.Server {
	t.Helper()

	logger := &testutil.DummyLogger{}
	store, err := reportstore.NewSQLiteStore("", logger)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	pages := map[string]string{
		"https://shop.test/v1": v1Page,
		"https://shop.test/v2": v2Page,
	}
	wc := &testutil.DummyWebClient{Pages: pages}
	factory := func(ctx context.Context) (app.LiveSession, error) {
		return &testutil.DummySession{Pages: pages}, nil
	}

	cfg := app.DefaultConfig()
	cfg.JobRetentionTime = 5 * time.Second
	orch := app.NewOrchestrator(cfg, store, wc, logger, app.WithSessionFactory(factory))

	s, err := server.NewServer(server.Config{ListenAddr: ":0", Logger: logger}, orch)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func doJSON(t *testing.T, s http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON response: %v (body: %s)", err, rec.Body.String())
	}
}

func createScan(t *testing.T, s http.Handler, body string) server.ReportResponse {
	t.Helper()
	rec := doJSON(t, s, "POST", "/scans", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /scans: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var out server.ReportResponse
	decodeJSON(t, rec, &out)
	return out
}

// ─── CORS / health ─────────────────────────────────────────────────────

func TestServer_CORS_HeaderPresent(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "GET", "/reports", "")

	origin := rec.Header().Get("Access-Control-Allow-Origin")
	if origin != "*" {
		t.Errorf("expected CORS origin *, got %q", origin)
	}
}

func TestServer_Preflight(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "OPTIONS", "/reports/abc/highlight", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "POST" {
		t.Errorf("allow methods = %q", got)
	}
}

func TestServer_Healthz(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "GET", "/healthz", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("healthz = %d %s", rec.Code, rec.Body.String())
	}
}

func TestServer_SwaggerDoc(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "GET", "/swagger/doc.json", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/reports/{id}/compare/{otherID}") {
		t.Error("swagger doc does not describe the compare route")
	}
}

// ─── Scans ─────────────────────────────────────────────────────────────

func TestServer_CreateScan_HTML(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rep := createScan(t, s, `{"html":"<html><body><img src=\"a.png\"></body></html>"}`)
	if rep.ID == "" || rep.Source != "inline" || rep.Mode != "static" {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if rep.Tier == "" || rep.Checked == 0 || len(rep.Issues) == 0 {
		t.Errorf("report not populated: %+v", rep)
	}
}

func TestServer_CreateScan_URLStripsMarkup(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "POST", "/scans", `{"url":"https://shop.test/v1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var raw map[string]any
	decodeJSON(t, rec, &raw)
	if _, ok := raw["html"]; ok {
		t.Error("response carries the scanned markup")
	}
	if raw["source"] != "https://shop.test/v1" {
		t.Errorf("source = %v", raw["source"])
	}
}

func TestServer_CreateScan_InputErrors(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	cases := map[string]int{
		`{invalid}`:                                 http.StatusBadRequest,
		`{}`:                                        http.StatusUnprocessableEntity,
		`{"url":"chrome://extensions"}`:             http.StatusUnprocessableEntity,
		`{"url":"https://shop.test/missing"}`:       http.StatusUnprocessableEntity,
		`{"url":"https://shop.test/v1","mode":"x"}`: http.StatusUnprocessableEntity,
	}
	for body, want := range cases {
		rec := doJSON(t, s, "POST", "/scans", body)
		if rec.Code != want {
			t.Errorf("POST /scans %s: expected %d, got %d", body, want, rec.Code)
			continue
		}
		var e server.ErrorResponse
		decodeJSON(t, rec, &e)
		if e.Error == "" {
			t.Errorf("POST /scans %s: empty error message", body)
		}
	}
}

// ─── Reports ───────────────────────────────────────────────────────────

func TestServer_GetReport_ViewAndNotFound(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	rep := createScan(t, s, `{"url":"https://shop.test/v1"}`)

	rec := doJSON(t, s, "GET", "/reports/"+rep.ID+"?type=images&sort=severity", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got server.ReportResponse
	decodeJSON(t, rec, &got)
	if len(got.Issues) != 1 || got.Issues[0].Type != "Images" {
		t.Errorf("filtered issues = %+v", got.Issues)
	}

	for _, q := range []string{"?sort=random", "?severity=urgent", "?type=Fonts", "?fixable=maybe"} {
		if rec := doJSON(t, s, "GET", "/reports/"+rep.ID+q, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s: expected 400, got %d", q, rec.Code)
		}
	}

	if rec := doJSON(t, s, "GET", "/reports/does-not-exist", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestServer_ListReports(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "GET", "/reports", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("empty list = %d %q", rec.Code, rec.Body.String())
	}

	createScan(t, s, `{"url":"https://shop.test/v1"}`)
	createScan(t, s, `{"url":"https://shop.test/v2"}`)

	rec = doJSON(t, s, "GET", "/reports?limit=1", "")
	var list []reportstore.Summary
	decodeJSON(t, rec, &list)
	if len(list) != 1 || list[0].Source != "https://shop.test/v2" {
		t.Errorf("limited list = %+v", list)
	}
}

func TestServer_ExportReport(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	rep := createScan(t, s, `{"url":"https://shop.test/v1"}`)

	rec := doJSON(t, s, "GET", "/reports/"+rep.ID+"/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	body := rec.Body.String()
	if strings.Contains(body, "<script>alert(1)</script>") {
		t.Error("export contains page script")
	}
	if !strings.Contains(body, "Image missing alt text") {
		t.Error("export misses the image issue")
	}

	if rec := doJSON(t, s, "GET", "/reports/nope/export", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestServer_CompareReports(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	base := createScan(t, s, `{"url":"https://shop.test/v1"}`)
	head := createScan(t, s, `{"url":"https://shop.test/v2"}`)

	rec := doJSON(t, s, "GET", "/reports/"+base.ID+"/compare/"+head.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var delta struct {
		ScoreDelta float64          `json:"score_delta"`
		Resolved   []map[string]any `json:"resolved"`
	}
	decodeJSON(t, rec, &delta)
	if delta.ScoreDelta <= 0 || len(delta.Resolved) == 0 {
		t.Errorf("delta = %+v", delta)
	}

	if rec := doJSON(t, s, "GET", "/reports/"+base.ID+"/compare/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestServer_HighlightAndFocus(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	rep := createScan(t, s, `{"url":"https://shop.test/v1","mode":"rendered"}`)
	if rep.Mode != "rendered" {
		t.Fatalf("mode = %q", rep.Mode)
	}
	path := rep.Issues[0].Path

	for _, action := range []string{"highlight", "focus"} {
		rec := doJSON(t, s, "POST", "/reports/"+rep.ID+"/"+action, `{"path":"`+path+`"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", action, rec.Code, rec.Body.String())
		}
		var pr server.PointResponse
		decodeJSON(t, rec, &pr)
		if !pr.OK || !pr.Found {
			t.Errorf("%s: %+v", action, pr)
		}
	}

	rec := doJSON(t, s, "POST", "/reports/"+rep.ID+"/highlight", `{"path":"body > nav"}`)
	var pr server.PointResponse
	decodeJSON(t, rec, &pr)
	if rec.Code != http.StatusOK || !pr.OK || pr.Found {
		t.Errorf("missing path: %d %+v", rec.Code, pr)
	}

	if rec := doJSON(t, s, "POST", "/reports/nope/highlight", `{"path":"body"}`); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

// ─── Jobs ──────────────────────────────────────────────────────────────

func TestServer_ScanJob_Lifecycle(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "POST", "/jobs/scan", `{"url":"https://shop.test/v2"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var job app.Job
	decodeJSON(t, rec, &job)
	if job.ID == "" {
		t.Fatal("expected job id")
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		rec = doJSON(t, s, "GET", "/jobs/"+job.ID, "")
		var got app.Job
		decodeJSON(t, rec, &got)
		if got.Status == app.JobDone {
			if got.ReportID == "" {
				t.Fatal("done job has no report id")
			}
			break
		}
		if got.Status == app.JobFailed || time.Now().After(deadline) {
			t.Fatalf("job did not finish: %+v", got)
		}
		time.Sleep(10 * time.Millisecond)
	}

	rec = doJSON(t, s, "GET", "/jobs", "")
	var jobs []app.Job
	decodeJSON(t, rec, &jobs)
	if len(jobs) != 1 {
		t.Errorf("expected 1 job, got %d", len(jobs))
	}

	if rec := doJSON(t, s, "DELETE", "/jobs/"+job.ID, ""); rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec := doJSON(t, s, "GET", "/jobs/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestServer_ScanJob_BadRequest(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	if rec := doJSON(t, s, "POST", "/jobs/scan", `{}`); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
	if rec := doJSON(t, s, "POST", "/jobs/scan", `{"url":"https://shop.test/v1","mode":"x"}`); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
}

func TestServer_ScanWebSocket_StreamsEvents(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	ts := httptest.NewServer(s)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/scan?url=https://shop.test/v1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var job app.Job
	if err := conn.ReadJSON(&job); err != nil || job.ID == "" {
		t.Fatalf("first message: %+v, %v", job, err)
	}

	var last app.JobEvent
	for {
		var ev app.JobEvent
		if err := conn.ReadJSON(&ev); err != nil {
			break
		}
		last = ev
	}
	if last.Type != app.JobEventResult || last.Status != app.JobDone || last.ReportID == "" {
		t.Errorf("last event = %+v", last)
	}
}
