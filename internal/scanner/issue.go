package scanner

import "encoding/json"

// Category groups issues by the rule family that found them.
type Category string

const (
	CategoryImages   Category = "Images"
	CategoryContrast Category = "Contrast"
	CategoryKeyboard Category = "Keyboard"
	CategorySemantic Category = "Semantic"
	CategoryForms    Category = "Forms"
	CategoryMedia    Category = "Media"
	CategoryZoom     Category = "Zoom"
)

// Categories lists every category in rule order.
var Categories = []Category{
	CategoryImages, CategoryContrast, CategoryKeyboard, CategorySemantic,
	CategoryForms, CategoryMedia, CategoryZoom,
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Rank orders severities high (0) to low (2). Unknown values sort last.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 2
	default:
		return 3
	}
}

func (s Severity) Valid() bool { return s.Rank() < 3 }

// Issue is a single finding. Path is empty for page-level issues.
type Issue struct {
	ID       string   `json:"id"`
	Type     Category `json:"type"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Snippet  string   `json:"snippet"`
	Tip      string   `json:"tip"`
	Path     string   `json:"path,omitempty"`
	Fixable  bool     `json:"fixable"`
}

// Report is the result of one scan. A report with Error set carries nothing
// else and must not be scored.
type Report struct {
	Checked int     `json:"checked"`
	Passed  int     `json:"passed"`
	Score   float64 `json:"score"`
	Issues  []Issue `json:"issues"`
	Error   string  `json:"error,omitempty"`
}

// Failed wraps err as an error-only report.
func Failed(err error) *Report {
	msg := "scan failed"
	if err != nil {
		msg = err.Error()
	}
	return &Report{Error: msg}
}

func (r Report) MarshalJSON() ([]byte, error) {
	if r.Error != "" {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{r.Error})
	}
	type plain Report
	p := plain(r)
	if p.Issues == nil {
		p.Issues = []Issue{}
	}
	return json.Marshal(p)
}

// Outcome is the per-candidate result of a rule.
type Outcome int

const (
	OutcomeInapplicable Outcome = iota
	OutcomePass
	OutcomeFail
)

func (o Outcome) String() string {
	switch o {
	case OutcomePass:
		return "pass"
	case OutcomeFail:
		return "fail"
	default:
		return "inapplicable"
	}
}

// Contribution is what one rule adds to a report.
type Contribution struct {
	Rule    string
	Checked int
	Passed  int
	Issues  []Issue
}

// tally accumulates candidate outcomes for a rule.
type tally struct {
	rule       string
	candidates int
	checked    int
	passed     int
	issues     []Issue
}

func (t *tally) pass() {
	t.candidates++
	t.checked++
	t.passed++
}

func (t *tally) fail(is Issue) {
	t.candidates++
	t.checked++
	t.issues = append(t.issues, is)
}

func (t *tally) skip() { t.candidates++ }

// record applies an outcome; issue is only used for OutcomeFail.
func (t *tally) record(o Outcome, is Issue) {
	switch o {
	case OutcomePass:
		t.pass()
	case OutcomeFail:
		t.fail(is)
	default:
		t.skip()
	}
}

// contribution freezes the tally. A rule with no candidates still counts one
// check so the score denominator is never zero.
func (t *tally) contribution() Contribution {
	checked := t.checked
	if t.candidates == 0 {
		checked = 1
	}
	return Contribution{
		Rule:    t.rule,
		Checked: checked,
		Passed:  t.passed,
		Issues:  append([]Issue(nil), t.issues...),
	}
}
