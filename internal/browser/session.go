// Package browser drives a live Chrome tab: it loads a page, captures a
// rendered snapshot for the scanner and points at elements on request.
package browser

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/chromedp"
	"github.com/raysh454/vertex/internal/dom"
	"github.com/raysh454/vertex/internal/logging"
	"github.com/raysh454/vertex/internal/webclient"
)

var (
	//go:embed scripts/snapshot.js
	snapshotScript string
	//go:embed scripts/highlight.js
	highlightScript string
	//go:embed scripts/focus.js
	focusScript string
)

var ErrClosed = errors.New("browser: session closed")

// Session owns one browser process with a single tab.
type Session struct {
	cfg    Config
	logger logging.Logger

	mu          sync.Mutex
	closed      bool
	url         string
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
}

// NewSession starts Chrome and opens a blank tab.
func NewSession(cfg Config, logger logging.Logger) (*Session, error) {
	cfg = cfg.withDefaults()
	opts := webclient.AllocatorOptions(webclient.Config{Headless: cfg.Headless, UserAgent: cfg.UserAgent})
	opts = append(opts, chromedp.WindowSize(int(cfg.ViewportWidth), int(cfg.ViewportHeight)))

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(tabCtx, chromedp.EmulateViewport(cfg.ViewportWidth, cfg.ViewportHeight)); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("browser: start: %w", err)
	}

	s := &Session{
		cfg:         cfg,
		logger:      logger.With(logging.Field{Key: "component", Value: "browser"}),
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
	}
	s.logger.Info("browser session started", logging.Field{Key: "headless", Value: cfg.Headless})
	return s, nil
}

// run executes actions on the tab, bounded by ctx and the session timeout.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	tabCtx := s.tabCtx
	s.mu.Unlock()

	runCtx, cancel := context.WithTimeout(tabCtx, s.cfg.Timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url and returns once the network has been idle for the
// configured quiet period.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	tabCtx := s.tabCtx
	s.mu.Unlock()

	navCtx, cancel := context.WithTimeout(tabCtx, s.cfg.Timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	idle := webclient.WaitNetworkIdle(navCtx, s.cfg.IdleAfter)
	if err := chromedp.Run(navCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	select {
	case <-idle:
	case <-navCtx.Done():
		return fmt.Errorf("browser: wait for idle: %w", navCtx.Err())
	}

	s.mu.Lock()
	s.url = url
	s.mu.Unlock()
	s.logger.Debug("navigated", logging.Field{Key: "url", Value: url})
	return nil
}

// URL returns the last navigated address.
func (s *Session) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

// Snapshot captures the rendered page with computed styles, layout boxes
// and rendered text.
func (s *Session) Snapshot(ctx context.Context) (*dom.Document, error) {
	var raw json.RawMessage
	if err := s.run(ctx, chromedp.Evaluate(snapshotScript, &raw)); err != nil {
		return nil, fmt.Errorf("browser: snapshot: %w", err)
	}
	var snap dom.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("browser: decode snapshot: %w", err)
	}
	doc, err := dom.FromSnapshot(&snap)
	if err != nil {
		return nil, fmt.Errorf("browser: %w", err)
	}
	return doc, nil
}

// Highlight outlines the element at path for HighlightDuration. It reports
// false when the path does not resolve.
func (s *Session) Highlight(ctx context.Context, path string) (bool, error) {
	return s.call(ctx, highlightScript, path, HighlightDuration.Milliseconds())
}

// Focus scrolls the element at path into view and focuses it.
func (s *Session) Focus(ctx context.Context, path string) (bool, error) {
	return s.call(ctx, focusScript, path)
}

func (s *Session) call(ctx context.Context, fn string, args ...any) (bool, error) {
	encoded, err := json.Marshal(args)
	if err != nil {
		return false, err
	}
	// fn is a function expression; args are spread from a JSON array.
	expr := fmt.Sprintf("(%s)(...%s)", fn, encoded)
	var found bool
	if err := s.run(ctx, chromedp.Evaluate(expr, &found)); err != nil {
		return false, fmt.Errorf("browser: evaluate: %w", err)
	}
	return found, nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.tabCancel()
	s.allocCancel()
	s.logger.Info("browser session closed")
	return nil
}
