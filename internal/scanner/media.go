package scanner

import "github.com/raysh454/vertex/internal/dom"

const (
	msgCaptions = "Video is missing captions/subtitles."
	tipCaptions = `<track kind="captions" srclang="en" src="captions.vtt" label="English">`
)

func (s *Scanner) checkCaptions(doc *dom.Document) Contribution {
	t := tally{rule: "media"}
	for _, v := range doc.Find("video").Nodes {
		if doc.Selection(v).Find("track[kind='captions'], track[kind='subtitles']").Length() > 0 {
			t.pass()
			continue
		}
		t.fail(s.newIssue(CategoryMedia, SeverityHigh, msgCaptions,
			s.markupSnippet(v), tipCaptions, pathOf(v), false))
	}
	return t.contribution()
}
