package server

import (
	"time"

	"github.com/raysh454/vertex/internal/app"
	"github.com/raysh454/vertex/internal/scanner"
)

// ScanRequest is the payload for POST /scans and POST /jobs/scan. Exactly one
// of URL and HTML is expected.
type ScanRequest struct {
	URL    string `json:"url,omitempty" example:"http://localhost:9999/images"`
	HTML   string `json:"html,omitempty" example:"<html><body><img src=\"a.png\"></body></html>"`
	Source string `json:"source,omitempty" example:"pasted"`
	Mode   string `json:"mode,omitempty" example:"static"`
}

// PathRequest names an element by the path carried on an issue.
type PathRequest struct {
	Path string `json:"path" example:"main > img:nth-of-type(2)"`
}

// PointResponse reports whether a highlight or focus found its element.
type PointResponse struct {
	OK    bool `json:"ok" example:"true"`
	Found bool `json:"found" example:"true"`
}

// ReportResponse is a stored report as returned by the API. The scanned
// markup is left out.
type ReportResponse struct {
	ID        string                   `json:"id"`
	Source    string                   `json:"source"`
	Mode      string                   `json:"mode"`
	ScannedAt time.Time                `json:"scanned_at"`
	Tier      string                   `json:"tier,omitempty" example:"AA"`
	Checked   int                      `json:"checked"`
	Passed    int                      `json:"passed"`
	Score     float64                  `json:"score"`
	Counts    map[scanner.Severity]int `json:"counts,omitempty"`
	Issues    []scanner.Issue          `json:"issues"`
	Error     string                   `json:"error,omitempty"`
}

func newReportResponse(rv *app.ReportView) ReportResponse {
	rec := rv.Record
	out := ReportResponse{
		ID:        rec.ID,
		Source:    rec.Source,
		Mode:      rec.Mode,
		ScannedAt: rec.ScannedAt,
		Tier:      rv.Tier,
		Counts:    rv.Counts,
		Issues:    rv.Issues,
	}
	if r := rec.Report; r != nil {
		out.Checked = r.Checked
		out.Passed = r.Passed
		out.Score = r.Score
		out.Error = r.Error
	}
	if out.Issues == nil {
		out.Issues = []scanner.Issue{}
	}
	return out
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"report not found"`
}
