package formatcheck

import (
	"strings"
	"testing"
)

func TestDetect_HTML(t *testing.T) {
	d := Detect("<div>hello</div>")
	if d.Format != HTML {
		t.Fatalf("expected HTML, got %s", d.Format)
	}
	if d.Indicators != 1 {
		t.Errorf("expected 1 indicator, got %d", d.Indicators)
	}
}

func TestDetect_HTMLCaseInsensitive(t *testing.T) {
	d := Detect("<DIV>shouting</DIV>\n<TABLE><TR><TD>x</TD></TR></TABLE>")
	if d.Format != HTML {
		t.Fatalf("expected HTML, got %s", d.Format)
	}
	if d.Indicators != 4 {
		t.Errorf("expected 4 indicators (div, table, tr, td), got %d", d.Indicators)
	}
}

func TestDetect_HTMLBeatsMarkdown(t *testing.T) {
	// Even heavy markdown loses to a single HTML tag.
	content := "# Title\n\n**bold** and *italic*\n\n- item\n\n<p>mixed</p>"
	d := Detect(content)
	if d.Format != HTML {
		t.Fatalf("expected HTML to win, got %s", d.Format)
	}
}

func TestDetect_Markdown(t *testing.T) {
	// Indicators present: "# ", "**", "*", "- " = 4 > 2.
	content := "# Heading\n\nSome **bold** text.\n\n- first\n- second"
	d := Detect(content)
	if d.Format != Markdown {
		t.Fatalf("expected Markdown, got %s", d.Format)
	}
	if d.Indicators != 4 {
		t.Errorf("expected 4 indicators, got %d", d.Indicators)
	}
}

func TestDetect_MarkdownBelowThreshold(t *testing.T) {
	// Only "- " and "*" hit: 2 indicators is not enough.
	d := Detect("- a lone bullet with an aster*sk")
	if d.Format != PlainText {
		t.Fatalf("expected Plain text, got %s", d.Format)
	}
}

func TestDetect_JSON(t *testing.T) {
	// {, }, ":, [", "] = 5 indicators > 3.
	d := Detect(`{"items": ["a", "b"], "n": 2}`)
	if d.Format != JSON {
		t.Fatalf("expected JSON, got %s", d.Format)
	}
	if d.Indicators != 5 {
		t.Errorf("expected 5 indicators, got %d", d.Indicators)
	}
}

func TestDetect_JSONBelowThreshold(t *testing.T) {
	// {, }, ": = 3 indicators, not > 3.
	d := Detect(`{"a": 1}`)
	if d.Format != PlainText {
		t.Fatalf("expected Plain text, got %s", d.Format)
	}
}

func TestDetect_PlainText(t *testing.T) {
	d := Detect("Just an ordinary paragraph of extracted text.\nNothing structured here.")
	if d.Format != PlainText {
		t.Fatalf("expected Plain text, got %s", d.Format)
	}
	if d.Describe() != "Plain text" {
		t.Errorf("unexpected description %q", d.Describe())
	}
}

func TestDetect_Empty(t *testing.T) {
	if d := Detect(""); d.Format != PlainText {
		t.Fatalf("expected Plain text for empty content, got %s", d.Format)
	}
}

func TestDetectionDescribe(t *testing.T) {
	d := Detection{Format: HTML, Indicators: 3}
	if got := d.Describe(); got != "HTML (indicators: 3)" {
		t.Errorf("unexpected description %q", got)
	}
	d = Detection{Format: Markdown, Indicators: 5}
	if got := d.Describe(); got != "Markdown (indicators: 5)" {
		t.Errorf("unexpected description %q", got)
	}
}

func TestVerify_HTMLCountsElements(t *testing.T) {
	content := "<div><p>one</p><p>two</p><span>three</span></div>"
	v := Verify(content, HTML)
	if v.HTMLElements != 4 {
		t.Errorf("expected 4 elements, got %d", v.HTMLElements)
	}
	if !v.Verified() {
		t.Error("expected verification to succeed")
	}
}

func TestVerify_HTMLSkipsSynthesizedElements(t *testing.T) {
	// A bare text node parses into html/head/body wrappers only.
	v := Verify("no markup at all", HTML)
	if v.HTMLElements != 0 {
		t.Errorf("expected 0 elements, got %d", v.HTMLElements)
	}
}

func TestVerify_Markdown(t *testing.T) {
	content := strings.Join([]string{
		"# Title",
		"",
		"## Section",
		"",
		"- one",
		"- two",
		"",
		"```",
		"code",
		"```",
	}, "\n")
	v := Verify(content, Markdown)
	if v.MarkdownHeads != 2 {
		t.Errorf("expected 2 headings, got %d", v.MarkdownHeads)
	}
	if v.MarkdownLists != 1 {
		t.Errorf("expected 1 list, got %d", v.MarkdownLists)
	}
	if v.MarkdownCode != 1 {
		t.Errorf("expected 1 code block, got %d", v.MarkdownCode)
	}
}

func TestVerify_MarkdownTables(t *testing.T) {
	content := "| a | b |\n|---|---|\n| 1 | 2 |"
	v := Verify(content, Markdown)
	if v.MarkdownTables != 3 {
		t.Errorf("expected 3 table rows, got %d", v.MarkdownTables)
	}
}

func TestVerify_PlainTextIsNoop(t *testing.T) {
	v := Verify("<div>would count as html</div>", PlainText)
	if v.Verified() {
		t.Error("expected no verification for plain text guess")
	}
}
