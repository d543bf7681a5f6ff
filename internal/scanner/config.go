package scanner

import "github.com/google/uuid"

// IDFunc generates issue ids.
type IDFunc func() string

// Config bounds the work a scan does.
type Config struct {
	ContrastSampleCap    int `json:"contrast_sample_cap"`
	KeyboardCandidateCap int `json:"keyboard_candidate_cap"`
	SnippetMaxRunes      int `json:"snippet_max_runes"`
	TextSnippetMaxRunes  int `json:"text_snippet_max_runes"`
	MinTextRunes         int `json:"min_text_runes"`

	// IDFunc defaults to random UUIDs.
	IDFunc IDFunc `json:"-"`
}

func DefaultConfig() Config {
	return Config{
		ContrastSampleCap:    400,
		KeyboardCandidateCap: 200,
		SnippetMaxRunes:      260,
		TextSnippetMaxRunes:  160,
		MinTextRunes:         6,
		IDFunc:               uuid.NewString,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ContrastSampleCap <= 0 {
		c.ContrastSampleCap = d.ContrastSampleCap
	}
	if c.KeyboardCandidateCap <= 0 {
		c.KeyboardCandidateCap = d.KeyboardCandidateCap
	}
	if c.SnippetMaxRunes <= 0 {
		c.SnippetMaxRunes = d.SnippetMaxRunes
	}
	if c.TextSnippetMaxRunes <= 0 {
		c.TextSnippetMaxRunes = d.TextSnippetMaxRunes
	}
	if c.MinTextRunes <= 0 {
		c.MinTextRunes = d.MinTextRunes
	}
	if c.IDFunc == nil {
		c.IDFunc = d.IDFunc
	}
	return c
}
