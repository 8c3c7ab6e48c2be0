package preflight

import (
	"bytes"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// pdfBaseline validates the PDF with pdfcpu, records the page count, and
// extracts a plain-text baseline with ledongthuc/pdf.
func (s *Summary) pdfBaseline(data []byte) string {
	ctx, err := api.ReadContext(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		s.warnf("pdfcpu read failed: %s", err)
	} else {
		if err := api.ValidateContext(ctx); err != nil {
			s.warnf("pdf validation failed: %s", err)
		}
		s.Pages = ctx.PageCount
	}

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		s.warnf("pdf text extraction failed: %s", err)
		return ""
	}

	var buf strings.Builder
	numPages := reader.NumPage()
	if s.Pages == 0 {
		s.Pages = numPages
	}
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\f")
		}
		buf.WriteString(text)
	}
	return buf.String()
}
