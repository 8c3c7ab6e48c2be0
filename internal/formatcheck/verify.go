package formatcheck

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	xhtml "golang.org/x/net/html"
)

// Verification backs up an indicator-based guess with a real parse:
// element counts for HTML, block counts for Markdown. Zero values mean the
// guess was not of a verifiable kind or the parse found nothing.
type Verification struct {
	HTMLElements   int
	MarkdownHeads  int
	MarkdownLists  int
	MarkdownCode   int
	MarkdownTables int
}

// Verified reports whether the parse found any structure at all.
func (v Verification) Verified() bool {
	return v.HTMLElements > 0 || v.MarkdownHeads > 0 || v.MarkdownLists > 0 ||
		v.MarkdownCode > 0 || v.MarkdownTables > 0
}

// Verify parses content according to the guessed format and counts the
// structure it actually contains.
func Verify(content string, f Format) Verification {
	switch f {
	case HTML:
		return verifyHTML(content)
	case Markdown:
		return verifyMarkdown(content)
	default:
		return Verification{}
	}
}

func verifyHTML(content string) Verification {
	doc, err := xhtml.Parse(strings.NewReader(content))
	if err != nil {
		return Verification{}
	}

	var count int
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode {
			// html.Parse synthesizes html/head/body; don't count them.
			switch n.Data {
			case "html", "head", "body":
			default:
				count++
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return Verification{HTMLElements: count}
}

func verifyMarkdown(content string) Verification {
	src := []byte(content)
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var v Verification
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.Heading:
			v.MarkdownHeads++
		case *ast.List:
			v.MarkdownLists++
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			v.MarkdownCode++
		}
		return ast.WalkContinue, nil
	})

	// goldmark without the table extension won't see pipe tables; count
	// them by line shape instead.
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|") && strings.Count(trimmed, "|") >= 2 {
			v.MarkdownTables++
		}
	}
	return v
}
