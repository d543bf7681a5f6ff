package webclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/raysh454/vertex/internal/logging"
)

// ChromedpClient renders pages in headless Chrome and returns the markup
// after the network has gone quiet. The browser is started on first use.
type ChromedpClient struct {
	cfg    Config
	logger logging.Logger

	mu          sync.Mutex
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

func NewChromedpClient(cfg Config, logger logging.Logger) (*ChromedpClient, error) {
	if cfg.IdleAfter <= 0 {
		cfg.IdleAfter = 2 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	componentLogger := logger.With(logging.Field{Key: "backend", Value: "chromedp"})
	componentLogger.Info("created chromedp webclient",
		logging.Field{Key: "headless", Value: cfg.Headless},
		logging.Field{Key: "idle_after", Value: cfg.IdleAfter.String()})
	return &ChromedpClient{cfg: cfg, logger: componentLogger}, nil
}

// AllocatorOptions returns the exec allocator options for the given config.
func AllocatorOptions(cfg Config) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.DisableGPU,
		chromedp.NoSandbox,
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	return opts
}

func (cdc *ChromedpClient) allocator() context.Context {
	cdc.mu.Lock()
	defer cdc.mu.Unlock()
	if cdc.allocCtx == nil {
		cdc.allocCtx, cdc.allocCancel = chromedp.NewExecAllocator(context.Background(), AllocatorOptions(cdc.cfg)...)
	}
	return cdc.allocCtx
}

// WaitNetworkIdle returns a channel that is closed once no request has been
// in flight for idleAfter. It must be called before the navigation starts.
func WaitNetworkIdle(ctx context.Context, idleAfter time.Duration) <-chan struct{} {
	idle := make(chan struct{})
	var (
		mu     sync.Mutex
		active = map[network.RequestID]struct{}{}
		timer  *time.Timer
		once   sync.Once
	)

	// caller holds mu
	startTimer := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(idleAfter, func() {
			mu.Lock()
			quiet := len(active) == 0
			mu.Unlock()
			if quiet {
				once.Do(func() { close(idle) })
			}
		})
	}

	chromedp.ListenTarget(ctx, func(ev any) {
		mu.Lock()
		defer mu.Unlock()
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			active[e.RequestID] = struct{}{}
		case *network.EventLoadingFinished:
			delete(active, e.RequestID)
			if len(active) == 0 {
				startTimer()
			}
		case *network.EventLoadingFailed:
			delete(active, e.RequestID)
			if len(active) == 0 {
				startTimer()
			}
		}
	})

	mu.Lock()
	startTimer()
	mu.Unlock()
	return idle
}

// Do navigates to req.URL and returns the rendered document. Only GET is
// supported.
func (cdc *ChromedpClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	method := strings.ToUpper(req.Method)
	if method != "" && method != http.MethodGet {
		return nil, fmt.Errorf("chromedp: method %s not supported", method)
	}

	tabCtx, cancel := chromedp.NewContext(cdc.allocator())
	defer cancel()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, cdc.cfg.Timeout)
	defer cancelTimeout()
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	// The first Run starts the tab; listeners attach to it afterwards.
	if err := chromedp.Run(tabCtx); err != nil {
		return nil, fmt.Errorf("chromedp: start tab: %w", err)
	}

	var (
		docMu   sync.Mutex
		status  int
		headers = http.Header{}
	)
	chromedp.ListenTarget(tabCtx, func(ev any) {
		e, ok := ev.(*network.EventResponseReceived)
		if !ok || e.Type != network.ResourceTypeDocument || e.Response == nil {
			return
		}
		docMu.Lock()
		defer docMu.Unlock()
		if status != 0 {
			return
		}
		status = int(e.Response.Status)
		for k, v := range e.Response.Headers {
			headers.Set(k, fmt.Sprint(v))
		}
		if headers.Get("Content-Type") == "" && e.Response.MimeType != "" {
			headers.Set("Content-Type", e.Response.MimeType)
		}
	})
	idle := WaitNetworkIdle(tabCtx, cdc.cfg.IdleAfter)

	cdc.logger.Debug("navigating", logging.Field{Key: "url", Value: req.URL})
	if err := chromedp.Run(tabCtx, chromedp.Navigate(req.URL)); err != nil {
		cdc.logger.Warn("navigation failed",
			logging.Field{Key: "url", Value: req.URL},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("chromedp: navigate: %w", err)
	}

	select {
	case <-idle:
	case <-tabCtx.Done():
		return nil, fmt.Errorf("chromedp: wait for idle: %w", tabCtx.Err())
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("chromedp: read document: %w", err)
	}

	docMu.Lock()
	defer docMu.Unlock()
	if status == 0 {
		status = http.StatusOK
	}
	return &Response{
		Request:    req,
		Headers:    headers,
		Body:       []byte(html),
		StatusCode: status,
		FetchedAt:  time.Now(),
	}, nil
}

func (cdc *ChromedpClient) Get(ctx context.Context, url string) (*Response, error) {
	return cdc.Do(ctx, &Request{Method: http.MethodGet, URL: url})
}

func (cdc *ChromedpClient) Close() error {
	cdc.mu.Lock()
	defer cdc.mu.Unlock()
	if cdc.allocCancel != nil {
		cdc.allocCancel()
		cdc.allocCtx, cdc.allocCancel = nil, nil
	}
	cdc.logger.Info("closing chromedp webclient")
	return nil
}
