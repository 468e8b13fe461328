// Package output defines record sinks and the verbosity-aware record
// shape they serialize.
package output

import (
	"context"
	"fmt"
	"strings"

	"github.com/crimson-sun/sift/internal/model"
)

// Output defines the interface for preprocessed record destinations.
type Output interface {
	Write(ctx context.Context, rec model.PreprocessedData) error
	Close() error
}

// Verbosity controls which record fields are emitted.
type Verbosity int

const (
	// Minimal emits metadata only.
	Minimal Verbosity = iota
	// Standard adds the extracted content.
	Standard
	// Full adds source metadata and the classification details.
	Full
)

func (v Verbosity) String() string {
	switch v {
	case Minimal:
		return "minimal"
	case Full:
		return "full"
	default:
		return "standard"
	}
}

// ParseVerbosity converts "minimal", "standard" or "full".
func ParseVerbosity(s string) (Verbosity, error) {
	switch strings.ToLower(s) {
	case "minimal":
		return Minimal, nil
	case "standard", "":
		return Standard, nil
	case "full":
		return Full, nil
	default:
		return Standard, fmt.Errorf("output: unknown verbosity %q", s)
	}
}
