// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/raysh454/vertex/internal/dom"
	"github.com/raysh454/vertex/internal/locator"
	"github.com/raysh454/vertex/internal/logging"
	"github.com/raysh454/vertex/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// ErrorCount returns how many errors were logged.
func (l *DummyLogger) ErrorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Errors)
}

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyWebClient implements webclient.WebClient.
// Pages maps URL to an HTML body served with status 200 and a text/html
// content type. Unknown URLs get a 404. Set FailURLs[url] = true to force a
// transport error for a specific URL.
type DummyWebClient struct {
	ResponseDelay time.Duration
	Pages         map[string]string
	ContentTypes  map[string]string
	FailURLs      map[string]bool
	mu            sync.Mutex
	Requests      []*webclient.Request
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if d.FailURLs != nil && d.FailURLs[req.URL] {
		return nil, &errString{"dummy fetch fail for " + req.URL}
	}

	body, ok := d.Pages[req.URL]
	if !ok {
		return &webclient.Response{
			Request:    req,
			Headers:    http.Header{"Content-Type": {"text/plain"}},
			Body:       []byte("not found"),
			StatusCode: http.StatusNotFound,
			FetchedAt:  time.Now(),
		}, nil
	}
	ct := "text/html; charset=utf-8"
	if v, ok := d.ContentTypes[req.URL]; ok {
		ct = v
	}
	return &webclient.Response{
		Request:    req,
		Headers:    http.Header{"Content-Type": {ct}},
		Body:       []byte(body),
		StatusCode: http.StatusOK,
		FetchedAt:  time.Now(),
	}, nil
}

func (d *DummyWebClient) Get(ctx context.Context, url string) (*webclient.Response, error) {
	return d.Do(ctx, &webclient.Request{Method: "GET", URL: url})
}

func (d *DummyWebClient) Close() error { return nil }

// RequestCount returns how many requests were made.
func (d *DummyWebClient) RequestCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Requests)
}

// ─── LiveSession ───────────────────────────────────────────────────────

// DummySession stands in for a browser tab. Navigate loads the markup from
// Pages and Snapshot returns it with statically resolved styles. Highlight and
// Focus resolve paths against the loaded markup and record them.
type DummySession struct {
	Pages map[string]string
	// FailPoint makes Highlight and Focus return an error.
	FailPoint bool

	mu         sync.Mutex
	url        string
	Highlights []string
	Focused    []string
	closed     bool
}

func (s *DummySession) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &errString{"session closed"}
	}
	if _, ok := s.Pages[url]; !ok {
		return &errString{"navigation failed for " + url}
	}
	s.url = url
	return nil
}

func (s *DummySession) Snapshot(ctx context.Context) (*dom.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.url == "" {
		return nil, &errString{"nothing loaded"}
	}
	return dom.ParseString(s.Pages[s.url], s.url)
}

func (s *DummySession) Highlight(ctx context.Context, path string) (bool, error) {
	return s.point(path, &s.Highlights)
}

func (s *DummySession) Focus(ctx context.Context, path string) (bool, error) {
	return s.point(path, &s.Focused)
}

func (s *DummySession) point(path string, log *[]string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.FailPoint {
		return false, &errString{"session unavailable"}
	}
	*log = append(*log, path)
	doc, err := dom.ParseString(s.Pages[s.url], s.url)
	if err != nil {
		return false, err
	}
	return locator.Resolve(doc.Root(), path) != nil, nil
}

func (s *DummySession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (s *DummySession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// ─── helpers ───────────────────────────────────────────────────────────

type errString struct{ s string }

func (e *errString) Error() string { return e.s }
