// Package results writes per-document output files: the full extracted
// content and the analysis report.
package results

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sink writes result files under a single directory.
type Sink struct {
	dir string
}

func NewSink(dir string) *Sink {
	return &Sink{dir: dir}
}

// Dir returns the sink's root directory.
func (s *Sink) Dir() string {
	return s.dir
}

// Save writes <base>_content.txt and <base>_report.txt for a document and
// returns both paths. A non-default requested format becomes part of the
// base name so runs with different formats don't overwrite each other.
func (s *Sink) Save(filename, requestedFormat, content, report string) (contentPath, reportPath string, err error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create results dir: %w", err)
	}

	base := SanitizeFilename(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" {
		base = "unnamed"
	}
	if requestedFormat != "" && requestedFormat != "default" {
		base = base + "_" + requestedFormat
	}

	contentPath = filepath.Join(s.dir, base+"_content.txt")
	reportPath = filepath.Join(s.dir, base+"_report.txt")

	if err := os.WriteFile(contentPath, []byte(content), 0o644); err != nil {
		return "", "", fmt.Errorf("write content: %w", err)
	}
	if err := os.WriteFile(reportPath, []byte(report), 0o644); err != nil {
		return "", "", fmt.Errorf("write report: %w", err)
	}
	return contentPath, reportPath, nil
}

// SanitizeFilename strips path components and anything that could escape
// the results directory.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
