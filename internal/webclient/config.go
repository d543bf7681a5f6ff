package webclient

import "time"

type Client string

const (
	ClientNetHTTP  Client = "nethttp"
	ClientChromedp Client = "chromedp"
)

type Config struct {
	Client Client

	// Timeout bounds a whole fetch.
	Timeout time.Duration
	// IdleAfter is how long the network must stay quiet before a rendered
	// page counts as loaded (chromedp only).
	IdleAfter time.Duration
	// Headless runs Chrome without a window (chromedp only).
	Headless  bool
	UserAgent string
}

func DefaultConfig() Config {
	return Config{
		Client:    ClientNetHTTP,
		Timeout:   30 * time.Second,
		IdleAfter: 2 * time.Second,
		Headless:  true,
		UserAgent: "vertex-a11y/1.0",
	}
}
