package reportstore

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/raysh454/vertex/internal/logging"
	"github.com/raysh454/vertex/internal/scanner"
)

//go:embed schema.sql
var schemaFS embed.FS

const memoryDSN = ":memory:"

// SQLiteStore keeps records in one sqlite database. The pool is pinned to a
// single connection so an in-memory database is not lost or split between
// connections.
type SQLiteStore struct {
	db     *sql.DB
	logger logging.Logger
}

func NewSQLiteStore(dsn string, logger logging.Logger) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = memoryDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	componentLogger := logger.With(logging.Field{Key: "component", Value: "reportstore"})
	componentLogger.Info("opened sqlite report store", logging.Field{Key: "dsn", Value: dsn})
	return &SQLiteStore{db: db, logger: componentLogger}, nil
}

// applySchema sets pragmas and creates tables.
func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, rec *Record) error {
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("save report: missing id")
	}
	if rec.Report == nil {
		return fmt.Errorf("save report %s: missing report", rec.ID)
	}
	body, err := json.Marshal(rec.Report)
	if err != nil {
		return fmt.Errorf("marshal report %s: %w", rec.ID, err)
	}
	sum := Summarize(rec)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reports (id, source, mode, scanned_at, score, checked, passed, issue_count, error, html, report_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			mode = excluded.mode,
			scanned_at = excluded.scanned_at,
			score = excluded.score,
			checked = excluded.checked,
			passed = excluded.passed,
			issue_count = excluded.issue_count,
			error = excluded.error,
			html = excluded.html,
			report_json = excluded.report_json`,
		rec.ID, rec.Source, rec.Mode, rec.ScannedAt.UnixNano(),
		sum.Score, sum.Checked, sum.Passed, sum.Issues, sum.Error,
		rec.HTML, string(body))
	if err != nil {
		return fmt.Errorf("insert report %s: %w", rec.ID, err)
	}
	s.logger.Debug("saved report", logging.Field{Key: "id", Value: rec.ID})
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	var (
		rec     Record
		scanned int64
		body    string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source, mode, scanned_at, html, report_json FROM reports WHERE id = ?`, id).
		Scan(&rec.ID, &rec.Source, &rec.Mode, &scanned, &rec.HTML, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query report %s: %w", id, err)
	}
	rec.ScannedAt = time.Unix(0, scanned).UTC()
	var rep scanner.Report
	if err := json.Unmarshal([]byte(body), &rep); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	rec.Report = &rep
	return &rec, nil
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, mode, scanned_at, score, checked, passed, issue_count, error
		FROM reports ORDER BY scanned_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	out := make([]Summary, 0)
	for rows.Next() {
		var (
			sum     Summary
			scanned int64
		)
		if err := rows.Scan(&sum.ID, &sum.Source, &sum.Mode, &scanned, &sum.Score, &sum.Checked, &sum.Passed, &sum.Issues, &sum.Error); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		sum.ScannedAt = time.Unix(0, scanned).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
