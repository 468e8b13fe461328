package model

import "strings"

// DataType is the closed set of artifact kinds the classifier can produce.
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

// AllDataTypes lists every DataType in declaration order.
var AllDataTypes = []DataType{
	LogsAndErrors,
	StructuredConfig,
	MetricsAndPerformance,
	UnstructuredText,
	SourceCode,
	VisualEvidence,
	Unanalyzable,
}

// Valid reports whether d is one of the known data types.
func (d DataType) Valid() bool {
	for _, t := range AllDataTypes {
		if d == t {
			return true
		}
	}
	return false
}

func (d DataType) String() string {
	return string(d)
}

// ParseDataType accepts either the snake_case value or the upper-case
// constant spelling ("LOGS_AND_ERRORS"). The empty DataType and false are
// returned for anything else.
func ParseDataType(s string) (DataType, bool) {
	d := DataType(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", false
	}
	return d, true
}
