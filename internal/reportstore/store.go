// Package reportstore keeps scan records between the scan request and later
// highlight, export and compare requests. Nothing here is needed by the
// scanner itself.
package reportstore

import (
	"context"
	"errors"
	"time"

	"github.com/raysh454/vertex/internal/logging"
	"github.com/raysh454/vertex/internal/scanner"
)

var ErrNotFound = errors.New("report not found")

// Record is one stored scan: the report plus the markup it was computed on.
type Record struct {
	ID        string          `json:"id"`
	Source    string          `json:"source"`
	Mode      string          `json:"mode"`
	ScannedAt time.Time       `json:"scanned_at"`
	HTML      string          `json:"html,omitempty"`
	Report    *scanner.Report `json:"report"`
}

// Summary is the listing form of a Record.
type Summary struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Mode      string    `json:"mode"`
	ScannedAt time.Time `json:"scanned_at"`
	Score     float64   `json:"score"`
	Checked   int       `json:"checked"`
	Passed    int       `json:"passed"`
	Issues    int       `json:"issues"`
	Error     string    `json:"error,omitempty"`
}

// Summarize derives the listing form of rec.
func Summarize(rec *Record) Summary {
	s := Summary{
		ID:        rec.ID,
		Source:    rec.Source,
		Mode:      rec.Mode,
		ScannedAt: rec.ScannedAt,
	}
	if r := rec.Report; r != nil {
		s.Score = r.Score
		s.Checked = r.Checked
		s.Passed = r.Passed
		s.Issues = len(r.Issues)
		s.Error = r.Error
	}
	return s
}

// Store holds records. Implementations are safe for concurrent use.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	// List returns newest first; limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]Summary, error)
	Close() error
}

type Config struct {
	// DSN is a sqlite data source name. Empty keeps records in a private
	// in-memory database that dies with the process.
	DSN string

	// RedisURL selects the Redis backend when set.
	// Format: redis://[:password@]host:port/db
	RedisURL    string
	RedisPrefix string
	// TTL bounds how long Redis keeps a record. Zero keeps it forever.
	TTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		RedisPrefix: "vertex:",
		TTL:         24 * time.Hour,
	}
}

// Open returns the Redis store when a URL is configured and sqlite otherwise.
func Open(ctx context.Context, cfg Config, logger logging.Logger) (Store, error) {
	if cfg.RedisURL != "" {
		return NewRedisStore(ctx, cfg, logger)
	}
	return NewSQLiteStore(cfg.DSN, logger)
}
