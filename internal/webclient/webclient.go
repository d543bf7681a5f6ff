// Package webclient fetches documents for static scans. Backends are
// registered by name; nethttp returns the server's markup and chromedp the
// markup after the page has rendered.
package webclient

import "context"

type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)
	Get(ctx context.Context, url string) (*Response, error)
	Close() error
}
