package output

import "github.com/crimson-sun/sift/internal/model"

// Record is the serialized form of a PreprocessedData.
type Record struct {
	Filename       string                      `json:"filename,omitempty"`
	Content        string                      `json:"content,omitempty"`
	Metadata       model.ExtractionMetadata    `json:"metadata"`
	OriginalSize   int                         `json:"original_size"`
	ProcessedSize  int                         `json:"processed_size"`
	SecurityFlags  []string                    `json:"security_flags"`
	SourceMetadata *model.SourceMetadata       `json:"source_metadata,omitempty"`
	Classification *model.ClassificationResult `json:"classification,omitempty"`
}

// FormatRecord returns the record with fields selected by verbosity.
// At Minimal: Content is dropped. At Full: SourceMetadata and the
// classification result are added.
func FormatRecord(d model.PreprocessedData, verbosity Verbosity) Record {
	r := Record{
		Filename:      d.Filename,
		Metadata:      d.Metadata,
		OriginalSize:  d.OriginalSize,
		ProcessedSize: d.ProcessedSize,
		SecurityFlags: d.SecurityFlags,
	}
	if r.SecurityFlags == nil {
		r.SecurityFlags = []string{}
	}
	if verbosity >= Standard {
		r.Content = d.Content
	}
	if verbosity >= Full {
		r.SourceMetadata = d.SourceMetadata
		cls := d.Classification
		r.Classification = &cls
	}
	return r
}
