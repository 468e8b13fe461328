// Package taxonomy holds the static signal tables the classifier reads:
// extension sets, platform URL and page-context mappings, and the content
// patterns scored by the rule-based tier. Tables are data only; the
// classifier owns the control flow.
package taxonomy

import (
	"path/filepath"
	"strings"
)

// ExtensionSet is a set of lower-case file extensions including the dot.
type ExtensionSet map[string]struct{}

func newSet(exts ...string) ExtensionSet {
	s := make(ExtensionSet, len(exts))
	for _, e := range exts {
		s[e] = struct{}{}
	}
	return s
}

// Has reports whether ext (as returned by Ext) is in the set.
func (s ExtensionSet) Has(ext string) bool {
	_, ok := s[ext]
	return ok
}

// Ext returns the lower-cased extension of filename, including the dot.
// Dotfiles such as ".env" are their own extension.
func Ext(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

var (
	ImageExtensions = newSet(
		".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp", ".svg", ".tif", ".tiff", ".ico", ".heic",
	)

	// BinaryExtensions are formats the core cannot summarize as text.
	BinaryExtensions = newSet(
		".zip", ".gz", ".tgz", ".tar", ".bz2", ".xz", ".7z", ".rar",
		".exe", ".dll", ".so", ".dylib", ".bin", ".o", ".a", ".class", ".jar", ".war",
		".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx",
		".mp3", ".mp4", ".mov", ".avi", ".wav", ".sqlite", ".db", ".pcap",
	)

	LogExtensions = newSet(".log", ".txt", ".out", ".err")

	MetricsTableExtensions = newSet(".csv", ".tsv")

	PrometheusExtensions = newSet(".prom")

	ConfigExtensions = newSet(
		".json", ".yaml", ".yml", ".toml", ".ini", ".conf", ".cfg", ".env",
		".properties", ".xml", ".hcl", ".tfvars",
	)

	CodeExtensions = newSet(
		".go", ".py", ".js", ".mjs", ".cjs", ".jsx", ".ts", ".tsx", ".java", ".kt", ".scala",
		".c", ".h", ".cc", ".cpp", ".cxx", ".hpp", ".cs", ".rs", ".rb", ".php", ".swift",
		".sh", ".bash", ".ps1", ".lua", ".pl", ".r", ".sql",
	)

	TextExtensions = newSet(".md", ".markdown", ".txt", ".rst", ".adoc", ".text", ".html", ".htm")
)
