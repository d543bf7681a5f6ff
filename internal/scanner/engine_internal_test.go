package scanner

import (
	"errors"
	"testing"

	"github.com/raysh454/vertex/internal/dom"
	"github.com/raysh454/vertex/internal/testutil"
)

func TestScan_PanicAbortsWithoutPartialReport(t *testing.T) {
	t.Parallel()
	logger := &testutil.DummyLogger{}
	s := New(DefaultConfig(), logger)
	s.rules = []rule{
		{"landmarks", (*Scanner).checkLandmarks},
		{"boom", func(*Scanner, *dom.Document) Contribution { panic("selector engine exploded") }},
		{"zoom", (*Scanner).checkZoom},
	}
	doc, err := dom.ParseString("<html><body></body></html>", "")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	rep, err := s.Scan(doc)
	if !errors.Is(err, ErrScanAborted) {
		t.Fatalf("err = %v, want ErrScanAborted", err)
	}
	if rep != nil {
		t.Fatalf("expected no report, got %+v", rep)
	}
	if logger.ErrorCount() != 1 {
		t.Fatalf("expected the failure to be logged once, got %d", logger.ErrorCount())
	}
}

func TestTally_EmptyCandidatesCountOneCheck(t *testing.T) {
	t.Parallel()
	empty := (&tally{rule: "x"}).contribution()
	if empty.Checked != 1 || empty.Passed != 0 {
		t.Fatalf("empty = %+v, want checked=1 passed=0", empty)
	}

	skipped := tally{rule: "x"}
	skipped.record(OutcomeInapplicable, Issue{})
	if c := skipped.contribution(); c.Checked != 0 {
		t.Fatalf("all-inapplicable = %+v, want checked=0", c)
	}

	mixed := tally{rule: "x"}
	mixed.record(OutcomePass, Issue{})
	mixed.record(OutcomeFail, Issue{ID: "a"})
	mixed.record(OutcomeInapplicable, Issue{})
	c := mixed.contribution()
	if c.Checked != 2 || c.Passed != 1 || len(c.Issues) != 1 {
		t.Fatalf("mixed = %+v", c)
	}
}

func TestParseHTMLInt(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"0", 0, true},
		{" 2 ", 2, true},
		{"1abc", 1, true},
		{"+3", 3, true},
		{"-1", -1, true},
		{"\n-4px", -4, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-", 0, false},
		{"+-1", 0, false},
	}
	for _, c := range cases {
		got, ok := parseHTMLInt(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("parseHTMLInt(%q) = %d, %v; want %d, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}
