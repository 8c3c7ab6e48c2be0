// Package report renders the human-readable analysis report written next
// to each document's extracted content.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgallion1/layoutprobe/internal/formatcheck"
	"github.com/dgallion1/layoutprobe/internal/preflight"
)

// SampleRunes is how much of the content the report quotes from each end.
const SampleRunes = 500

// Params carries everything one report needs.
type Params struct {
	File            string
	RequestedFormat string
	Detection       formatcheck.Detection
	Verification    formatcheck.Verification
	Content         string
	GeneratedAt     time.Time

	// Optional extras.
	Preflight    *preflight.Summary
	ServicePages int
	ServiceModel string
	FellBack     bool
}

// Build assembles the report text.
func Build(p Params) string {
	var b strings.Builder

	requested := p.RequestedFormat
	if requested == "" {
		requested = "default"
	}

	fmt.Fprintf(&b, "=== ANALYSIS REPORT ===\n")
	fmt.Fprintf(&b, "File: %s\n", p.File)
	fmt.Fprintf(&b, "Date: %s\n", p.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Requested format: %s\n", requested)
	fmt.Fprintf(&b, "Detected format: %s\n", p.Detection.Describe())
	fmt.Fprintf(&b, "Content length: %d characters\n", len([]rune(p.Content)))
	if p.ServiceModel != "" {
		fmt.Fprintf(&b, "Model: %s\n", p.ServiceModel)
	}
	if p.FellBack {
		fmt.Fprintf(&b, "Note: outputContentFormat was rejected; the request was retried with default parameters\n")
	}

	b.WriteString("\n=== CONTENT ANALYSIS ===\n")
	writeVerdict(&b, p)

	if p.Preflight != nil {
		b.WriteString("\n=== LOCAL PREFLIGHT ===\n")
		writePreflight(&b, p)
	}

	b.WriteString("\n=== CONTENT SAMPLE ===\n")
	writeSample(&b, p.Content)

	b.WriteString("\n=== MANUAL VERIFICATION ===\n")
	b.WriteString("Check the complete content file to confirm the format.\n")

	return b.String()
}

func writeVerdict(b *strings.Builder, p Params) {
	switch p.Detection.Format {
	case formatcheck.HTML:
		b.WriteString("RESULT: the service returned HTML\n")
		b.WriteString("   - HTML tags found\n")
		if n := p.Verification.HTMLElements; n > 0 {
			fmt.Fprintf(b, "   - parsed %d HTML elements\n", n)
		}
	case formatcheck.Markdown:
		b.WriteString("RESULT: the service returned Markdown\n")
		b.WriteString("   - Markdown syntax found\n")
		if n := p.Verification.MarkdownHeads; n > 0 {
			fmt.Fprintf(b, "   - parsed %d headings\n", n)
		}
		if n := p.Verification.MarkdownLists; n > 0 {
			fmt.Fprintf(b, "   - parsed %d lists\n", n)
		}
		if n := p.Verification.MarkdownCode; n > 0 {
			fmt.Fprintf(b, "   - parsed %d code blocks\n", n)
		}
		if n := p.Verification.MarkdownTables; n > 0 {
			fmt.Fprintf(b, "   - %d table-like rows\n", n)
		}
	case formatcheck.JSON:
		b.WriteString("RESULT: the service returned JSON\n")
		b.WriteString("   - JSON structure found\n")
	default:
		b.WriteString("RESULT: plain text or unidentified format\n")
	}
}

func writePreflight(b *strings.Builder, p Params) {
	pf := p.Preflight
	fmt.Fprintf(b, "Local format: %s\n", pf.Format)
	if pf.Pages > 0 {
		if p.ServicePages > 0 {
			fmt.Fprintf(b, "Pages: %d local, %d from service\n", pf.Pages, p.ServicePages)
		} else {
			fmt.Fprintf(b, "Pages: %d local\n", pf.Pages)
		}
	} else if p.ServicePages > 0 {
		fmt.Fprintf(b, "Pages: %d from service\n", p.ServicePages)
	}
	fmt.Fprintf(b, "Local baseline: %d characters, %d words\n", pf.Chars, pf.Words)
	for _, w := range pf.Warnings {
		fmt.Fprintf(b, "Warning: %s\n", w)
	}
}

func writeSample(b *strings.Builder, content string) {
	head, tail, truncated := Sample(content, SampleRunes)
	if !truncated {
		fmt.Fprintf(b, "FULL CONTENT (%d characters):\n%s\n", len([]rune(content)), content)
		return
	}
	fmt.Fprintf(b, "FIRST %d CHARACTERS:\n%s...\n", SampleRunes, head)
	b.WriteString("\n")
	fmt.Fprintf(b, "LAST %d CHARACTERS:\n...%s\n", SampleRunes, tail)
}

// Sample returns the first and last n runes of s. When s fits within n,
// truncated is false and head holds the whole string.
func Sample(s string, n int) (head, tail string, truncated bool) {
	runes := []rune(s)
	if len(runes) <= n {
		return s, "", false
	}
	return string(runes[:n]), string(runes[len(runes)-n:]), true
}
