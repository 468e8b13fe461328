package model

// SourceType describes how an artifact reached the system.
type SourceType string

const (
	SourceFileUpload  SourceType = "file_upload"
	SourcePageCapture SourceType = "page_capture"
	SourcePaste       SourceType = "paste"
	SourceAPI         SourceType = "api"
)

// SourceMetadata is caller-supplied provenance. It is read-only input.
type SourceMetadata struct {
	SourceURL  string     `json:"source_url,omitempty"`
	SourceType SourceType `json:"source_type,omitempty"`
}

// ClassificationSource names the tier that decided a classification.
type ClassificationSource string

const (
	FromUserOverride   ClassificationSource = "user_override"
	FromAgentHint      ClassificationSource = "agent_hint"
	FromSourceURL      ClassificationSource = "source_url"
	FromBrowserContext ClassificationSource = "browser_context"
	FromRuleBased      ClassificationSource = "rule_based"
)

// ClassificationResult is produced once per pipeline run by the classifier.
type ClassificationResult struct {
	DataType             DataType             `json:"data_type"`
	Confidence           float64              `json:"confidence"`
	Source               ClassificationSource `json:"source"`
	ClassificationFailed bool                 `json:"classification_failed"`
	SuggestedTypes       []DataType           `json:"suggested_types,omitempty"`
}

// Artifact is a single submission: raw content plus the optional hints that
// steer classification. Empty DataType fields mean "not supplied".
type Artifact struct {
	Filename       string
	Content        string
	AgentHint      DataType
	BrowserContext string
	UserOverride   DataType
	Source         *SourceMetadata
}

// SourceTypeOf returns the artifact's source type, or "" without metadata.
func (a Artifact) SourceTypeOf() SourceType {
	if a.Source == nil {
		return ""
	}
	return a.Source.SourceType
}
