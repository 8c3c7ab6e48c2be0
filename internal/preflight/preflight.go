package preflight

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Summary is what we know about a document before it is uploaded. The
// local baseline lets the report compare the service's extraction against
// what plain Go libraries can pull out of the same bytes.
type Summary struct {
	Filename string
	Format   string
	Pages    int
	Chars    int
	Words    int
	Warnings []string
}

// SupportedExtensions lists file extensions the harness will upload.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".html": true,
	".htm":  true,
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Run inspects document bytes and builds a local baseline. It never fails
// the upload: anything suspicious lands in Warnings and the service gets
// the final say.
func Run(filename string, data []byte) Summary {
	s := Summary{Filename: filename}

	sniffed := DetectMagic(data)
	ext := strings.ToLower(filepath.Ext(filename))
	s.Format = sniffed.String()

	if expected := formatForExtension(ext); expected != Unknown && sniffed != Unknown && sniffed != expected {
		s.Warnings = append(s.Warnings,
			fmt.Sprintf("extension %s does not match content (looks like %s)", ext, sniffed))
	}
	if sniffed == Unknown {
		s.Warnings = append(s.Warnings, "unrecognized magic bytes")
	}

	var text string
	switch {
	case sniffed == PDF || (sniffed == Unknown && ext == ".pdf"):
		text = s.pdfBaseline(data)
	case sniffed == DOCX || (sniffed == Unknown && ext == ".docx"):
		text = s.docxBaseline(data)
	case sniffed == HTML || (sniffed == Unknown && (ext == ".html" || ext == ".htm")):
		text = s.htmlBaseline(data)
	}

	s.Chars = len([]rune(text))
	s.Words = len(strings.Fields(text))
	return s
}

func (s *Summary) warnf(format string, args ...any) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}
