package formatcheck

import (
	"fmt"
	"strings"
)

// Format is the guessed shape of analyzer output.
type Format int

const (
	PlainText Format = iota
	HTML
	Markdown
	JSON
)

func (f Format) String() string {
	switch f {
	case HTML:
		return "HTML"
	case Markdown:
		return "Markdown"
	case JSON:
		return "JSON"
	default:
		return "Plain text"
	}
}

// Indicator lists. HTML matching is case-insensitive, the others are not:
// markdown syntax is case-sensitive by nature and JSON punctuation has no case.
var (
	htmlIndicators     = []string{"<html>", "<div>", "<p>", "<table>", "<tr>", "<td>", "<span>", "<h1>", "<h2>"}
	markdownIndicators = []string{"# ", "## ", "### ", "**", "*", "- ", "1. ", "|", "```"}
	jsonIndicators     = []string{"{", "}", `":`, `["`, `"]`}
)

// Detection is a format guess with the number of indicator strings that hit.
type Detection struct {
	Format     Format
	Indicators int
}

// Describe renders the guess the way the report expects, e.g.
// "HTML (indicators: 3)" or "Plain text".
func (d Detection) Describe() string {
	if d.Format == PlainText {
		return "Plain text"
	}
	return fmt.Sprintf("%s (indicators: %d)", d.Format, d.Indicators)
}

// Detect guesses whether content looks like HTML, Markdown, JSON, or plain
// text by counting which indicator substrings appear at least once.
// Any HTML tag wins outright; Markdown needs more than 2 hits and JSON more
// than 3, since their indicators show up in ordinary prose.
func Detect(content string) Detection {
	lower := strings.ToLower(content)

	htmlCount := countPresent(lower, htmlIndicators)
	if htmlCount > 0 {
		return Detection{Format: HTML, Indicators: htmlCount}
	}

	markdownCount := countPresent(content, markdownIndicators)
	if markdownCount > 2 {
		return Detection{Format: Markdown, Indicators: markdownCount}
	}

	jsonCount := countPresent(content, jsonIndicators)
	if jsonCount > 3 {
		return Detection{Format: JSON, Indicators: jsonCount}
	}

	return Detection{Format: PlainText}
}

func countPresent(content string, indicators []string) int {
	n := 0
	for _, ind := range indicators {
		if strings.Contains(content, ind) {
			n++
		}
	}
	return n
}
