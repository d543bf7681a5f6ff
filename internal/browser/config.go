package browser

import "time"

// HighlightDuration is how long a highlight overlay stays on the page.
const HighlightDuration = 2200 * time.Millisecond

type Config struct {
	Headless  bool
	UserAgent string
	// IdleAfter is the network quiet period that ends a navigation.
	IdleAfter time.Duration
	// Timeout bounds a navigation including the idle wait.
	Timeout        time.Duration
	ViewportWidth  int64
	ViewportHeight int64
}

func DefaultConfig() Config {
	return Config{
		Headless:       true,
		UserAgent:      "vertex-a11y/1.0",
		IdleAfter:      time.Second,
		Timeout:        45 * time.Second,
		ViewportWidth:  1280,
		ViewportHeight: 800,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.IdleAfter <= 0 {
		c.IdleAfter = d.IdleAfter
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		c.ViewportWidth, c.ViewportHeight = d.ViewportWidth, d.ViewportHeight
	}
	return c
}
