package preflight

import (
	"bytes"
	"strings"

	"github.com/fumiama/go-docx"
)

// docxBaseline extracts paragraph text from a .docx document.
func (s *Summary) docxBaseline(data []byte) string {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		s.warnf("docx parse failed: %s", err)
		return ""
	}

	var buf strings.Builder
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := paragraphText(para)
		if text == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(text)
	}
	return buf.String()
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
