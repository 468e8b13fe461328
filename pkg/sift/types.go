package sift

// DataType is the kind of artifact the classifier decided on.
type DataType string

const (
	LogsAndErrors         DataType = "logs_and_errors"
	StructuredConfig      DataType = "structured_config"
	MetricsAndPerformance DataType = "metrics_and_performance"
	UnstructuredText      DataType = "unstructured_text"
	SourceCode            DataType = "source_code"
	VisualEvidence        DataType = "visual_evidence"
	Unanalyzable          DataType = "unanalyzable"
)

// Artifact is one submission. Empty hint fields mean "not supplied".
type Artifact struct {
	Filename       string
	Content        string
	AgentHint      DataType // Type suggested by a calling agent
	UserOverride   DataType // Type forced by the user; always wins
	BrowserContext string   // Page title or app name the artifact came from
	SourceURL      string
	SourceType     string // file_upload, page_capture, paste or api
}

// Classification is the classifier's decision.
type Classification struct {
	DataType       DataType   `json:"data_type"`
	Confidence     float64    `json:"confidence"`
	Source         string     `json:"source"` // Deciding tier: user_override, agent_hint, source_url, browser_context, rule_based
	Failed         bool       `json:"classification_failed"`
	SuggestedTypes []DataType `json:"suggested_types,omitempty"`
}

// Metadata describes how a Result was produced.
type Metadata struct {
	DataType         DataType `json:"data_type"`
	Strategy         string   `json:"extraction_strategy"`
	LLMCallsUsed     int      `json:"llm_calls_used"`
	Confidence       float64  `json:"confidence"`
	Source           string   `json:"source"`
	ProcessingTimeMS float64  `json:"processing_time_ms"`
}

// Result is the compressed form of an Artifact.
type Result struct {
	Content       string   `json:"content"`
	Metadata      Metadata `json:"metadata"`
	OriginalSize  int      `json:"original_size"`
	ProcessedSize int      `json:"processed_size"`
	SecurityFlags []string `json:"security_flags"`
	SourceURL     string   `json:"source_url,omitempty"`
	SourceType    string   `json:"source_type,omitempty"`
}

// Strategy pairs a data type with the extraction strategy that serves it.
type Strategy struct {
	DataType DataType
	Name     string
}
