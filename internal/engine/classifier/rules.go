package classifier

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"

	"github.com/crimson-sun/sift/internal/engine/taxonomy"
	"github.com/crimson-sun/sift/internal/model"
)

// Rule-tier confidence table.
const (
	imageConfidence  = 0.98
	ImageUploadBoost = 0.03
	imageCap         = 0.99

	binaryConfidence = 0.90

	logExtBase        = 0.88
	logExtCap         = 0.98
	logContentBase    = 0.85
	logContentCap     = 0.94
	logPerExtraMatch  = 0.03
	logExtMinMatches  = 2
	logContentMatches = 3

	metricsTableConfidence = 0.83
	metricsJSONConfidence  = 0.80
	metricsPromConfidence  = 0.82
	metricsJSONMinMatches  = 3
	promMinSamples         = 3

	configExtConfidence     = 0.95
	configContentConfidence = 0.75
	configCap               = 0.98

	codeExtConfidence     = 0.95
	codeContentConfidence = 0.80
	codeCap               = 0.98
	codeMinMatches        = 2

	proseExtConfidence     = 0.85
	proseContentConfidence = 0.72
	proseCap               = 0.88
	proseMinMatches        = 2

	// UploadBoost rewards file-upload provenance in the rule tier: an
	// extension chosen by the uploader is a stronger signal than scraped
	// page content.
	UploadBoost = 0.02
	ruleCap     = 0.99
)

// ruleInput is the precomputed view every rule reads.
type ruleInput struct {
	ext    string
	sample string
	upload bool
	mime   *mimetype.MIME // nil unless the content looks binary
}

type rule func(in ruleInput) (model.DataType, float64, bool)

// rules is the ordered rule cascade. Metrics is checked before config so
// JSON and CSV metric exports are not taken for generic config.
var rules = []rule{
	imageRule,
	binaryRule,
	logRule,
	metricsRule,
	configRule,
	codeRule,
	proseRule,
}

func fromRules(a model.Artifact, sample string) (model.ClassificationResult, bool) {
	in := ruleInput{
		ext:    taxonomy.Ext(a.Filename),
		sample: sample,
		upload: a.SourceTypeOf() == model.SourceFileUpload,
		mime:   detect(a.Content),
	}
	for _, r := range rules {
		if dt, conf, ok := r(in); ok {
			return model.ClassificationResult{
				DataType:   dt,
				Confidence: conf,
				Source:     model.FromRuleBased,
			}, true
		}
	}
	return failed(), true
}

func (in ruleInput) boost(conf, limit float64) float64 {
	if in.upload {
		conf += UploadBoost
	}
	return math.Min(conf, limit)
}

// detect sniffs the raw head of content when it is not clean text. Clean
// text is never sniffed: short signatures such as "BM" would match prose.
// The UTF-8 cleaned sample would lose the high bytes most binary signatures
// start with.
func detect(content string) *mimetype.MIME {
	head := content
	truncated := len(head) > SampleSize
	if truncated {
		head = head[:SampleSize]
	}
	if !looksBinary(head, truncated) {
		return nil
	}
	return mimetype.Detect([]byte(head))
}

// looksBinary reports whether head holds invalid UTF-8 or control bytes
// other than whitespace. A rune cut by truncation at the end is ignored.
func looksBinary(head string, truncated bool) bool {
	for i := 0; i < len(head); {
		r, size := utf8.DecodeRuneInString(head[i:])
		if r == utf8.RuneError && size <= 1 {
			if truncated && len(head)-i < utf8.UTFMax {
				return false
			}
			return true
		}
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' && r != '\f' {
			return true
		}
		i += size
	}
	return false
}

// textual reports whether m is plain text or a text-based format.
func textual(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "text/") {
			return true
		}
	}
	return false
}

// rasterImage reports whether the content sniffs as a non-markup image.
func rasterImage(m *mimetype.MIME) bool {
	return m != nil && strings.HasPrefix(m.String(), "image/") && !textual(m)
}

// recognizedBinary reports whether the content sniffs as a known binary
// format such as an archive, document or executable.
func recognizedBinary(m *mimetype.MIME) bool {
	return m != nil && !textual(m) && !m.Is("application/octet-stream")
}

func imageRule(in ruleInput) (model.DataType, float64, bool) {
	if !taxonomy.ImageExtensions.Has(in.ext) && !rasterImage(in.mime) {
		return "", 0, false
	}
	conf := imageConfidence
	if in.upload {
		conf = math.Min(conf+ImageUploadBoost, imageCap)
	}
	return model.VisualEvidence, conf, true
}

func binaryRule(in ruleInput) (model.DataType, float64, bool) {
	if taxonomy.BinaryExtensions.Has(in.ext) || strings.IndexByte(in.sample, 0) >= 0 || recognizedBinary(in.mime) {
		return model.Unanalyzable, binaryConfidence, true
	}
	return "", 0, false
}

func logRule(in ruleInput) (model.DataType, float64, bool) {
	structured := taxonomy.CountDistinct(taxonomy.StructuredLogFields, in.sample)
	plain := taxonomy.CountAll(taxonomy.PlainLogPatterns, in.sample)

	if taxonomy.LogExtensions.Has(in.ext) && (structured >= logExtMinMatches || plain >= logExtMinMatches) {
		matches := max(structured, plain)
		conf := math.Min(logExtBase+logPerExtraMatch*float64(matches-logExtMinMatches), logExtCap)
		return model.LogsAndErrors, in.boost(conf, ruleCap), true
	}
	if total := structured + plain; total >= logContentMatches {
		conf := math.Min(logContentBase+logPerExtraMatch*float64(total-logContentMatches), logContentCap)
		return model.LogsAndErrors, in.boost(conf, ruleCap), true
	}
	return "", 0, false
}

func metricsRule(in ruleInput) (model.DataType, float64, bool) {
	hits := taxonomy.CountAll(taxonomy.MetricPatterns, in.sample)
	if taxonomy.MetricsTableExtensions.Has(in.ext) && hits >= 1 {
		return model.MetricsAndPerformance, in.boost(metricsTableConfidence, ruleCap), true
	}
	trimmed := strings.TrimSpace(in.sample)
	looksJSON := strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{")
	if looksJSON && taxonomy.JSONArrayOfObjects.MatchString(in.sample) && hits >= metricsJSONMinMatches {
		return model.MetricsAndPerformance, in.boost(metricsJSONConfidence, ruleCap), true
	}
	if taxonomy.PrometheusExtensions.Has(in.ext) || looksLikeExposition(in.sample) {
		return model.MetricsAndPerformance, in.boost(metricsPromConfidence, ruleCap), true
	}
	return "", 0, false
}

func looksLikeExposition(sample string) bool {
	if len(taxonomy.PrometheusSample.FindAllStringIndex(sample, -1)) < promMinSamples {
		return false
	}
	return strings.Contains(sample, "# TYPE ") || strings.Contains(sample, "# HELP ") || strings.Contains(sample, "{")
}

func configRule(in ruleInput) (model.DataType, float64, bool) {
	if taxonomy.ConfigExtensions.Has(in.ext) {
		return model.StructuredConfig, in.boost(configExtConfidence, configCap), true
	}
	kinds := 0
	if taxonomy.ConfigKeyValue.MatchString(in.sample) {
		kinds++
	}
	if taxonomy.ConfigSection.MatchString(in.sample) {
		kinds++
	}
	if taxonomy.ConfigJSONObject.MatchString(in.sample) {
		kinds++
	}
	if kinds >= 2 {
		return model.StructuredConfig, in.boost(configContentConfidence, configCap), true
	}
	return "", 0, false
}

func codeRule(in ruleInput) (model.DataType, float64, bool) {
	if taxonomy.CodeExtensions.Has(in.ext) {
		return model.SourceCode, in.boost(codeExtConfidence, codeCap), true
	}
	if taxonomy.CountAll(taxonomy.CodePatterns, in.sample) >= codeMinMatches {
		return model.SourceCode, in.boost(codeContentConfidence, codeCap), true
	}
	return "", 0, false
}

func proseRule(in ruleInput) (model.DataType, float64, bool) {
	if taxonomy.TextExtensions.Has(in.ext) {
		return model.UnstructuredText, in.boost(proseExtConfidence, proseCap), true
	}
	if taxonomy.CountAll(taxonomy.ProsePatterns, in.sample) >= proseMinMatches {
		return model.UnstructuredText, in.boost(proseContentConfidence, proseCap), true
	}
	return "", 0, false
}
