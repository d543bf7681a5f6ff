// Package scanner runs the accessibility rules over a dom.Document and folds
// their contributions into a scored Report.
package scanner

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/raysh454/vertex/internal/dom"
	"github.com/raysh454/vertex/internal/logging"
)

// ErrScanAborted wraps a failure inside a rule. No partial report is
// produced when it is returned.
var ErrScanAborted = errors.New("scan aborted")

type rule struct {
	name string
	eval func(*Scanner, *dom.Document) Contribution
}

// defaultRules run in this order; issue order in a report follows it.
var defaultRules = []rule{
	{"images", (*Scanner).checkImages},
	{"contrast", (*Scanner).checkContrast},
	{"keyboard", (*Scanner).checkKeyboard},
	{"landmarks", (*Scanner).checkLandmarks},
	{"headings", (*Scanner).checkHeadingOrder},
	{"forms", (*Scanner).checkFormLabels},
	{"media", (*Scanner).checkCaptions},
	{"zoom", (*Scanner).checkZoom},
}

// Scanner is stateless between scans and safe for concurrent use.
type Scanner struct {
	cfg    Config
	logger logging.Logger
	rules  []rule
}

func New(cfg Config, logger logging.Logger) *Scanner {
	return &Scanner{
		cfg:    cfg.withDefaults(),
		logger: logger.With(logging.Field{Key: "component", Value: "scanner"}),
		rules:  defaultRules,
	}
}

// Scan evaluates every rule once, in order, and scores the result. The
// document is only read.
func (s *Scanner) Scan(doc *dom.Document) (*Report, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: %w", ErrScanAborted, dom.ErrNoDocument)
	}
	start := time.Now()

	contribs := make([]Contribution, 0, len(s.rules))
	for _, r := range s.rules {
		c, err := s.run(r, doc)
		if err != nil {
			s.logger.Error("rule failed", logging.Field{Key: "rule", Value: r.name}, logging.Field{Key: "error", Value: err.Error()})
			return nil, err
		}
		contribs = append(contribs, c)
	}

	report := Fold(contribs)
	s.logger.Debug("scan complete",
		logging.Field{Key: "source", Value: doc.Source()},
		logging.Field{Key: "checked", Value: report.Checked},
		logging.Field{Key: "passed", Value: report.Passed},
		logging.Field{Key: "issues", Value: len(report.Issues)},
		logging.Field{Key: "elapsed_ms", Value: time.Since(start).Milliseconds()},
	)
	return report, nil
}

func (s *Scanner) run(r rule, doc *dom.Document) (c Contribution, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: rule %s: %v", ErrScanAborted, r.name, rec)
		}
	}()
	c = r.eval(s, doc)
	c.Rule = r.name
	return c, nil
}

// Fold sums contributions in order and computes the score.
func Fold(contribs []Contribution) *Report {
	report := &Report{Issues: []Issue{}}
	for _, c := range contribs {
		report.Checked += c.Checked
		report.Passed += c.Passed
		report.Issues = append(report.Issues, c.Issues...)
	}
	report.Score = Score(report.Passed, report.Checked)
	return report
}

// Score is 100*passed/checked clamped to [0, 100]; zero checks score 0.
func Score(passed, checked int) float64 {
	if checked <= 0 {
		return 0
	}
	return math.Max(0, math.Min(100, 100*float64(passed)/float64(checked)))
}

func (s *Scanner) newIssue(cat Category, sev Severity, msg, snippet, tip, path string, fixable bool) Issue {
	return Issue{
		ID:       s.cfg.IDFunc(),
		Type:     cat,
		Severity: sev,
		Message:  msg,
		Snippet:  snippet,
		Tip:      tip,
		Path:     path,
		Fixable:  fixable,
	}
}
