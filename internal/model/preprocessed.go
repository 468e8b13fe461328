package model

// Security flags recorded on PreprocessedData.
const (
	FlagPIIRedacted = "pii_redacted"
)

// ExtractionMetadata describes how a PreprocessedData content was produced.
type ExtractionMetadata struct {
	DataType           DataType             `json:"data_type"`
	ExtractionStrategy string               `json:"extraction_strategy"`
	LLMCallsUsed       int                  `json:"llm_calls_used"`
	Confidence         float64              `json:"confidence"`
	Source             ClassificationSource `json:"source"`
	ProcessingTimeMS   float64              `json:"processing_time_ms"`
}

// PreprocessedData is the pipeline's sole output record.
type PreprocessedData struct {
	Content        string             `json:"content"`
	Metadata       ExtractionMetadata `json:"metadata"`
	OriginalSize   int                `json:"original_size"`
	ProcessedSize  int                `json:"processed_size"`
	SecurityFlags  []string           `json:"security_flags"`
	SourceMetadata *SourceMetadata    `json:"source_metadata,omitempty"`

	// Filename and Classification are carried for sinks; they are not part
	// of the serialized record.
	Filename       string               `json:"-"`
	Classification ClassificationResult `json:"-"`
}
