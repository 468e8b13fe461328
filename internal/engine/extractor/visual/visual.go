// Package visual describes image artifacts without analysing them.
package visual

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Notice is appended to every descriptor.
const Notice = "Image analysis is not performed by this pipeline; the artifact is kept for reference."

// byMIME names the image types mimetype detects.
var byMIME = map[string]string{
	"image/png":     "PNG",
	"image/jpeg":    "JPEG",
	"image/gif":     "GIF",
	"image/webp":    "WEBP",
	"image/bmp":     "BMP",
	"image/tiff":    "TIFF",
	"image/x-icon":  "ICO",
	"image/heic":    "HEIC",
	"image/avif":    "AVIF",
	"image/svg+xml": "SVG",
}

var byExtension = map[string]string{
	".png": "PNG", ".jpg": "JPEG", ".jpeg": "JPEG", ".gif": "GIF",
	".webp": "WEBP", ".bmp": "BMP", ".tif": "TIFF", ".tiff": "TIFF",
	".ico": "ICO", ".heic": "HEIC", ".avif": "AVIF", ".svg": "SVG",
}

// Format identifies the image format from the content, then SVG markup,
// then the filename extension. It returns "unknown" when nothing matches.
func Format(filename, content string) string {
	head := []byte(content)
	if len(head) > 0 {
		if f, ok := imageFormat(mimetype.Detect(head)); ok {
			return f
		}
	}
	if len(head) > 512 {
		head = head[:512]
	}
	if bytes.Contains(bytes.ToLower(head), []byte("<svg")) {
		return "SVG"
	}
	if f, ok := byExtension[strings.ToLower(filepath.Ext(filename))]; ok {
		return f
	}
	return "unknown"
}

func imageFormat(m *mimetype.MIME) (string, bool) {
	for ; m != nil; m = m.Parent() {
		for mime, name := range byMIME {
			if m.Is(mime) {
				return name, true
			}
		}
		if rest, ok := strings.CutPrefix(m.String(), "image/"); ok {
			if ext := strings.TrimPrefix(m.Extension(), "."); ext != "" {
				return strings.ToUpper(ext), true
			}
			return strings.ToUpper(rest), true
		}
	}
	return "", false
}

// Extractor is the visual-evidence placeholder strategy.
type Extractor struct{}

// New returns a visual Extractor.
func New() *Extractor { return &Extractor{} }

func (e *Extractor) StrategyName() string { return "visual_placeholder" }

func (e *Extractor) LLMCallsUsed() int { return 0 }

func (e *Extractor) Extract(content string) string {
	return e.ExtractFile("", content)
}

// ExtractFile reports the filename, format and size of the image.
func (e *Extractor) ExtractFile(filename, content string) string {
	name := filename
	if name == "" {
		name = "(unnamed)"
	}
	var b strings.Builder
	b.WriteString("=== VISUAL EVIDENCE ===\n")
	fmt.Fprintf(&b, "File: %s\n", name)
	fmt.Fprintf(&b, "Format: %s\n", Format(filename, content))
	fmt.Fprintf(&b, "Size: %d bytes\n", len(content))
	b.WriteString(Notice)
	return b.String()
}
