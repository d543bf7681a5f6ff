// Package app wires fetching, scanning, report storage and live browser
// sessions behind the Orchestrator used by the CLI and the HTTP API.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raysh454/vertex/internal/browser"
	"github.com/raysh454/vertex/internal/dom"
	"github.com/raysh454/vertex/internal/locator"
	"github.com/raysh454/vertex/internal/logging"
	"github.com/raysh454/vertex/internal/report"
	"github.com/raysh454/vertex/internal/reportstore"
	"github.com/raysh454/vertex/internal/scanner"
	"github.com/raysh454/vertex/internal/webclient"
)

var (
	// ErrInputUnavailable means there is no scannable document: the target
	// uses a scheme other than http(s), could not be fetched, or is not HTML.
	ErrInputUnavailable = errors.New("input unavailable")
	ErrClosed           = errors.New("orchestrator closed")
)

type Option func(*Orchestrator)

// WithSessionFactory replaces the browser used for rendered scans.
func WithSessionFactory(f SessionFactory) Option {
	return func(o *Orchestrator) { o.newSession = f }
}

type Orchestrator struct {
	cfg     *Config
	logger  logging.Logger
	store   reportstore.Store
	web     webclient.WebClient
	scanner *scanner.Scanner

	newSession SessionFactory
	sessions   *sessionCache

	jobsMu     sync.Mutex
	jobs       map[string]*Job
	jobCancels map[string]context.CancelFunc
	jobsWG     sync.WaitGroup

	closeMu sync.RWMutex
	closed  bool
}

// NewOrchestrator takes ownership of store and web; both are closed by Close.
func NewOrchestrator(cfg *Config, store reportstore.Store, web webclient.WebClient, logger logging.Logger, opts ...Option) *Orchestrator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	componentLogger := logger.With(logging.Field{Key: "component", Value: "orchestrator"})
	o := &Orchestrator{
		cfg:        cfg,
		logger:     componentLogger,
		store:      store,
		web:        web,
		scanner:    scanner.New(cfg.Scanner, logger),
		sessions:   newSessionCache(cfg.MaxLiveSessions),
		jobs:       make(map[string]*Job),
		jobCancels: make(map[string]context.CancelFunc),
	}
	o.newSession = func(ctx context.Context) (LiveSession, error) {
		return browser.NewSession(cfg.Browser, logger)
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) isClosed() bool {
	o.closeMu.RLock()
	defer o.closeMu.RUnlock()
	return o.closed
}

// ScanHTML scans markup supplied by the caller. Styles come from the
// document's own style elements and attributes.
func (o *Orchestrator) ScanHTML(ctx context.Context, html, source string) (*reportstore.Record, error) {
	if o.isClosed() {
		return nil, ErrClosed
	}
	if strings.TrimSpace(html) == "" {
		return nil, fmt.Errorf("%w: empty document", ErrInputUnavailable)
	}
	doc, err := dom.ParseString(html, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputUnavailable, err)
	}
	return o.record(ctx, doc, source, ModeStatic, html)
}

// ScanURL scans an http or https page. In rendered mode the browser tab is
// kept open for later Highlight and Focus calls on the returned report.
func (o *Orchestrator) ScanURL(ctx context.Context, target string, mode Mode) (*reportstore.Record, error) {
	if o.isClosed() {
		return nil, ErrClosed
	}
	target, err := canonicalTarget(target)
	if err != nil {
		return nil, err
	}
	if mode == "" {
		mode = o.cfg.DefaultMode
	}

	switch mode {
	case ModeRendered:
		return o.scanRendered(ctx, target)
	case ModeStatic, "":
		return o.scanStatic(ctx, target)
	}
	return nil, fmt.Errorf("unknown scan mode %q", mode)
}

func (o *Orchestrator) scanStatic(ctx context.Context, target string) (*reportstore.Record, error) {
	resp, err := o.web.Get(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", ErrInputUnavailable, target, err)
	}
	if !resp.IsHTML() {
		return nil, fmt.Errorf("%w: %s is %s, not HTML", ErrInputUnavailable, target, resp.Headers.Get("Content-Type"))
	}
	if resp.StatusCode >= 400 {
		o.logger.Warn("scanning error page",
			logging.Field{Key: "url", Value: target},
			logging.Field{Key: "status", Value: resp.StatusCode})
	}

	markup := string(resp.Body)
	doc, err := dom.ParseString(markup, target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputUnavailable, err)
	}
	return o.record(ctx, doc, target, ModeStatic, markup)
}

func (o *Orchestrator) scanRendered(ctx context.Context, target string) (*reportstore.Record, error) {
	sess, err := o.newSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("open browser: %w", err)
	}
	keep := false
	defer func() {
		if !keep {
			_ = sess.Close()
		}
	}()

	if err := sess.Navigate(ctx, target); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputUnavailable, err)
	}
	doc, err := sess.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputUnavailable, err)
	}
	rec, err := o.record(ctx, doc, target, ModeRendered, doc.HTML())
	if err != nil {
		return nil, err
	}

	keep = true
	for _, old := range o.sessions.put(rec.ID, sess) {
		if err := old.Close(); err != nil {
			o.logger.Warn("failed to close evicted session", logging.Field{Key: "error", Value: err.Error()})
		}
	}
	return rec, nil
}

// record scans doc and saves the result. An aborted scan is not saved.
func (o *Orchestrator) record(ctx context.Context, doc *dom.Document, source string, mode Mode, markup string) (*reportstore.Record, error) {
	rep, err := o.scanner.Scan(doc)
	if err != nil {
		return nil, err
	}
	rec := &reportstore.Record{
		ID:        uuid.NewString(),
		Source:    source,
		Mode:      string(mode),
		ScannedAt: time.Now().UTC(),
		HTML:      markup,
		Report:    rep,
	}
	if err := o.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}
	o.logger.Info("scan complete",
		logging.Field{Key: "report_id", Value: rec.ID},
		logging.Field{Key: "source", Value: source},
		logging.Field{Key: "mode", Value: rec.Mode},
		logging.Field{Key: "score", Value: rep.Score},
		logging.Field{Key: "issues", Value: len(rep.Issues)})
	return rec, nil
}

// ReportView is a stored record seen through a sort and filter.
type ReportView struct {
	Record *reportstore.Record
	Tier   string
	Issues []scanner.Issue
	Counts map[scanner.Severity]int
}

// ViewOf applies view to rec without touching the stored issues.
func ViewOf(rec *reportstore.Record, view report.View) *ReportView {
	rv := &ReportView{Record: rec, Issues: []scanner.Issue{}}
	if rec.Report != nil {
		rv.Tier = report.Tier(rec.Report.Score)
		rv.Issues = report.Apply(rec.Report.Issues, view)
		rv.Counts = report.Counts(rec.Report.Issues)
	}
	return rv
}

func (o *Orchestrator) GetReport(ctx context.Context, id string, view report.View) (*ReportView, error) {
	rec, err := o.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return ViewOf(rec, view), nil
}

func (o *Orchestrator) ListReports(ctx context.Context, limit int) ([]reportstore.Summary, error) {
	return o.store.List(ctx, limit)
}

// ExportReport renders the stored report as a standalone HTML page.
func (o *Orchestrator) ExportReport(ctx context.Context, id string, view report.View) ([]byte, error) {
	rec, err := o.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return report.Export(rec, view)
}

func (o *Orchestrator) CompareReports(ctx context.Context, baseID, headID string) (*report.Delta, error) {
	base, err := o.store.Get(ctx, baseID)
	if err != nil {
		return nil, fmt.Errorf("base %s: %w", baseID, err)
	}
	head, err := o.store.Get(ctx, headID)
	if err != nil {
		return nil, fmt.Errorf("head %s: %w", headID, err)
	}
	return report.Compare(base, head), nil
}

// Highlight points at the element with the given path. With a live session
// the page shows an overlay; otherwise the path is only resolved against the
// stored markup. A path that does not resolve yields false, not an error.
func (o *Orchestrator) Highlight(ctx context.Context, reportID, path string) (bool, error) {
	return o.point(ctx, reportID, path, LiveSession.Highlight)
}

// Focus moves keyboard focus to the element with the given path, with the
// same fallback as Highlight.
func (o *Orchestrator) Focus(ctx context.Context, reportID, path string) (bool, error) {
	return o.point(ctx, reportID, path, LiveSession.Focus)
}

func (o *Orchestrator) point(ctx context.Context, reportID, path string, act func(LiveSession, context.Context, string) (bool, error)) (bool, error) {
	if sess, ok := o.sessions.get(reportID); ok {
		found, err := act(sess, ctx, path)
		if err == nil {
			return found, nil
		}
		o.logger.Warn("live session failed, falling back to stored markup",
			logging.Field{Key: "report_id", Value: reportID},
			logging.Field{Key: "error", Value: err.Error()})
		if dead := o.sessions.remove(reportID); dead != nil {
			_ = dead.Close()
		}
	}

	rec, err := o.store.Get(ctx, reportID)
	if err != nil {
		return false, err
	}
	if rec.HTML == "" || path == "" {
		return false, nil
	}
	doc, err := dom.ParseString(rec.HTML, rec.Source)
	if err != nil {
		return false, nil
	}
	return locator.Resolve(doc.Root(), path) != nil, nil
}

// Close cancels running jobs, closes live sessions and releases the store
// and web client. It is safe to call more than once.
func (o *Orchestrator) Close() error {
	o.closeMu.Lock()
	if o.closed {
		o.closeMu.Unlock()
		return nil
	}
	o.closed = true
	o.closeMu.Unlock()

	o.jobsMu.Lock()
	for _, cancel := range o.jobCancels {
		cancel()
	}
	o.jobsMu.Unlock()
	o.jobsWG.Wait()

	var errs []error
	for _, sess := range o.sessions.drain() {
		errs = append(errs, sess.Close())
	}
	if o.web != nil {
		errs = append(errs, o.web.Close())
	}
	if o.store != nil {
		errs = append(errs, o.store.Close())
	}
	o.logger.Info("orchestrator closed")
	return errors.Join(errs...)
}
