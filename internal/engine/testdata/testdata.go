// Package testdata embeds the labeled artifact corpus used to validate
// classification end to end.
package testdata

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/crimson-sun/sift/internal/model"
)

//go:embed corpus.json
var corpusJSON []byte

// CorpusEntry is a labeled artifact with the classification it should get.
type CorpusEntry struct {
	Name           string  `json:"name"`
	Filename       string  `json:"filename"`
	Content        string  `json:"content"`
	SourceType     string  `json:"source_type,omitempty"`
	SourceURL      string  `json:"source_url,omitempty"`
	BrowserContext string  `json:"browser_context,omitempty"`
	AgentHint      string  `json:"agent_hint,omitempty"`
	UserOverride   string  `json:"user_override,omitempty"`
	ExpectedType   string  `json:"expected_type"`
	ExpectedSource string  `json:"expected_source"`
	MinConfidence  float64 `json:"min_confidence"`
	ExpectFailed   bool    `json:"expect_failed"`
}

// Artifact converts the entry into the pipeline input type.
func (e CorpusEntry) Artifact() model.Artifact {
	a := model.Artifact{
		Filename:       e.Filename,
		Content:        e.Content,
		BrowserContext: e.BrowserContext,
		AgentHint:      model.DataType(e.AgentHint),
		UserOverride:   model.DataType(e.UserOverride),
	}
	if e.SourceURL != "" || e.SourceType != "" {
		a.Source = &model.SourceMetadata{
			SourceURL:  e.SourceURL,
			SourceType: model.SourceType(e.SourceType),
		}
	}
	return a
}

// LoadCorpus parses the embedded corpus.json and returns all entries.
func LoadCorpus() ([]CorpusEntry, error) {
	var entries []CorpusEntry
	if err := json.Unmarshal(corpusJSON, &entries); err != nil {
		return nil, fmt.Errorf("parse corpus.json: %w", err)
	}
	return entries, nil
}
