package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/raysh454/vertex/internal/browser"
	"github.com/raysh454/vertex/internal/reportstore"
	"github.com/raysh454/vertex/internal/scanner"
	"github.com/raysh454/vertex/internal/webclient"
)

// Mode selects how a URL is turned into a document.
type Mode string

const (
	// ModeStatic fetches the markup and resolves styles from the page's own
	// stylesheets.
	ModeStatic Mode = "static"
	// ModeRendered loads the page in a browser and scans measured styles.
	ModeRendered Mode = "rendered"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return "", nil
	case ModeStatic:
		return ModeStatic, nil
	case ModeRendered:
		return ModeRendered, nil
	}
	return "", fmt.Errorf("unknown scan mode %q", s)
}

// Config contains the runtime options shared by the orchestrator and the
// components it builds.
type Config struct {
	// Addr is the listen address for the HTTP API.
	Addr string

	Store     reportstore.Config
	WebClient webclient.Config
	Browser   browser.Config
	Scanner   scanner.Config

	// DefaultMode applies when a scan request names no mode.
	DefaultMode Mode

	// MaxLiveSessions bounds how many rendered pages are kept open for
	// highlight and focus requests. The least recently used is closed first.
	MaxLiveSessions int

	// JobRetentionTime is how long finished jobs stay listed.
	JobRetentionTime time.Duration
}

// DefaultConfig returns a Config populated with sensible development defaults.
func DefaultConfig() *Config {
	return &Config{
		Addr:             ":8080",
		Store:            reportstore.DefaultConfig(),
		WebClient:        webclient.DefaultConfig(),
		Browser:          browser.DefaultConfig(),
		Scanner:          scanner.DefaultConfig(),
		DefaultMode:      ModeStatic,
		MaxLiveSessions:  4,
		JobRetentionTime: 30 * time.Minute,
	}
}
