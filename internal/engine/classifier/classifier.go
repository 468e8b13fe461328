package classifier

import (
	"math"
	"strings"

	"github.com/crimson-sun/sift/internal/engine/taxonomy"
	"github.com/crimson-sun/sift/internal/model"
)

const (
	// SampleSize bounds how much content the rule-based tier inspects.
	SampleSize = 5 * 1024

	UserOverrideConfidence = 1.0
	AgentHintConfidence    = 0.95
	FailedConfidence       = 0.50
	// FailureThreshold is the confidence below which a result is a failure.
	FailureThreshold = 0.60

	PageCaptureBoost = 0.02
	pageCaptureCap   = 0.98
)

// tier inspects an artifact and reports a result when it applies.
type tier func(a model.Artifact, sample string) (model.ClassificationResult, bool)

// Classifier decides the DataType of an artifact from up to five signal
// tiers evaluated in strict priority order. It holds no mutable state and
// is safe for concurrent use.
type Classifier struct {
	tiers []tier
}

// New creates a Classifier with the standard tier order.
func New() *Classifier {
	return &Classifier{
		tiers: []tier{
			fromUserOverride,
			fromAgentHint,
			fromSourceURL,
			fromBrowserContext,
			fromRules,
		},
	}
}

// Classify never fails. When no tier decides, the result is
// UNSTRUCTURED_TEXT at FailedConfidence with ClassificationFailed set.
func (c *Classifier) Classify(a model.Artifact) model.ClassificationResult {
	sample := Sample(a.Content)
	for _, t := range c.tiers {
		if r, ok := t(a, sample); ok {
			return normalize(r)
		}
	}
	return normalize(failed())
}

// Sample returns the first SampleSize bytes of content, trimmed back to a
// valid UTF-8 boundary.
func Sample(content string) string {
	if len(content) <= SampleSize {
		return content
	}
	return strings.ToValidUTF8(content[:SampleSize], "")
}

func fromUserOverride(a model.Artifact, _ string) (model.ClassificationResult, bool) {
	if !a.UserOverride.Valid() {
		return model.ClassificationResult{}, false
	}
	return model.ClassificationResult{
		DataType:   a.UserOverride,
		Confidence: UserOverrideConfidence,
		Source:     model.FromUserOverride,
	}, true
}

func fromAgentHint(a model.Artifact, sample string) (model.ClassificationResult, bool) {
	if !a.AgentHint.Valid() || !hintPlausible(a.AgentHint, taxonomy.Ext(a.Filename), sample) {
		return model.ClassificationResult{}, false
	}
	return model.ClassificationResult{
		DataType:   a.AgentHint,
		Confidence: AgentHintConfidence,
		Source:     model.FromAgentHint,
	}, true
}

// hintPlausible is a light sanity check of an agent hint against the artifact.
func hintPlausible(hint model.DataType, ext, sample string) bool {
	switch hint {
	case model.VisualEvidence:
		return taxonomy.ImageExtensions.Has(ext)
	case model.StructuredConfig:
		return taxonomy.ConfigExtensions.Has(ext) || taxonomy.ConfigKeyValue.MatchString(sample)
	case model.SourceCode:
		return taxonomy.CodeExtensions.Has(ext) || taxonomy.HintCodeKeyword.MatchString(sample)
	default:
		return true
	}
}

func fromSourceURL(a model.Artifact, _ string) (model.ClassificationResult, bool) {
	if a.Source == nil || a.Source.SourceURL == "" {
		return model.ClassificationResult{}, false
	}
	u := strings.ToLower(a.Source.SourceURL)
	for _, p := range taxonomy.Platforms {
		if !strings.Contains(u, p.Match) {
			continue
		}
		conf := p.Confidence
		if a.Source.SourceType == model.SourcePageCapture {
			conf = math.Min(conf+PageCaptureBoost, pageCaptureCap)
		}
		return model.ClassificationResult{
			DataType:   p.Type,
			Confidence: conf,
			Source:     model.FromSourceURL,
		}, true
	}
	return model.ClassificationResult{}, false
}

func fromBrowserContext(a model.Artifact, _ string) (model.ClassificationResult, bool) {
	ctx := strings.ToLower(strings.TrimSpace(a.BrowserContext))
	if ctx == "" {
		return model.ClassificationResult{}, false
	}
	for _, k := range taxonomy.ContextKeywords {
		if strings.Contains(ctx, k.Keyword) {
			return model.ClassificationResult{
				DataType:   k.Type,
				Confidence: k.Confidence,
				Source:     model.FromBrowserContext,
			}, true
		}
	}
	return model.ClassificationResult{}, false
}

func failed() model.ClassificationResult {
	return model.ClassificationResult{
		DataType:             model.UnstructuredText,
		Confidence:           FailedConfidence,
		Source:               model.FromRuleBased,
		ClassificationFailed: true,
		SuggestedTypes:       append([]model.DataType(nil), taxonomy.FailureSuggestions...),
	}
}

// normalize enforces the result invariants: confidence in [0,1], failure
// exactly when confidence is below FailureThreshold, and suggestions on
// every failure.
func normalize(r model.ClassificationResult) model.ClassificationResult {
	r.Confidence = clamp(r.Confidence, 0, 1)
	if r.Source == model.FromUserOverride {
		r.Confidence = UserOverrideConfidence
	}
	if r.Confidence < FailureThreshold {
		r.ClassificationFailed = true
	}
	if r.ClassificationFailed {
		if r.Confidence >= FailureThreshold {
			r.Confidence = FailedConfidence
		}
		if len(r.SuggestedTypes) == 0 {
			r.SuggestedTypes = append([]model.DataType(nil), taxonomy.FailureSuggestions...)
		}
	}
	return r
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
