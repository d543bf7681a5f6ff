package report

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/raysh454/vertex/internal/reportstore"
	"github.com/raysh454/vertex/internal/scanner"
)

// Chunk is one changed run of markup between two scans.
type Chunk struct {
	Type    string `json:"type"` // "added" or "removed"
	Content string `json:"content"`
}

// Delta describes what changed from base to head.
type Delta struct {
	BaseID     string          `json:"base_id"`
	HeadID     string          `json:"head_id"`
	BaseScore  float64         `json:"base_score"`
	HeadScore  float64         `json:"head_score"`
	ScoreDelta float64         `json:"score_delta"`
	New        []scanner.Issue `json:"new"`
	Resolved   []scanner.Issue `json:"resolved"`
	Unchanged  int             `json:"unchanged"`
	Chunks     []Chunk         `json:"chunks"`
}

// issueKey identifies an issue across scans; ids are per scan and ignored.
func issueKey(is scanner.Issue) string {
	return strings.Join([]string{string(is.Type), string(is.Severity), is.Message, is.Path}, "\x00")
}

// Compare diffs two records. Issues are matched as a multiset, so two
// identical findings in base and one in head leave one resolved.
func Compare(base, head *reportstore.Record) *Delta {
	d := &Delta{
		BaseID:   base.ID,
		HeadID:   head.ID,
		New:      []scanner.Issue{},
		Resolved: []scanner.Issue{},
		Chunks:   []Chunk{},
	}
	baseIssues := issuesOf(base)
	headIssues := issuesOf(head)
	if base.Report != nil {
		d.BaseScore = base.Report.Score
	}
	if head.Report != nil {
		d.HeadScore = head.Report.Score
	}
	d.ScoreDelta = d.HeadScore - d.BaseScore

	remaining := make(map[string]int, len(baseIssues))
	for _, is := range baseIssues {
		remaining[issueKey(is)]++
	}
	for _, is := range headIssues {
		k := issueKey(is)
		if remaining[k] > 0 {
			remaining[k]--
			d.Unchanged++
			continue
		}
		d.New = append(d.New, is)
	}
	for _, is := range baseIssues {
		k := issueKey(is)
		if remaining[k] > 0 {
			remaining[k]--
			d.Resolved = append(d.Resolved, is)
		}
	}

	d.Chunks = htmlChunks(base.HTML, head.HTML)
	return d
}

func issuesOf(rec *reportstore.Record) []scanner.Issue {
	if rec == nil || rec.Report == nil {
		return nil
	}
	return rec.Report.Issues
}

// htmlChunks diffs the two documents and keeps non-blank insertions and
// deletions after semantic cleanup.
func htmlChunks(base, head string) []Chunk {
	chunks := make([]Chunk, 0)
	if base == head {
		return chunks
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(base, head, true)
	diffs = dmp.DiffCleanupSemantic(diffs)
	for _, df := range diffs {
		var typ string
		switch df.Type {
		case diffmatchpatch.DiffInsert:
			typ = "added"
		case diffmatchpatch.DiffDelete:
			typ = "removed"
		default:
			continue
		}
		if strings.TrimSpace(df.Text) != "" {
			chunks = append(chunks, Chunk{Type: typ, Content: df.Text})
		}
	}
	return chunks
}
