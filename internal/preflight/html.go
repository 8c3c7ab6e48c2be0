package preflight

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// htmlBaseline extracts visible text from an HTML document.
func (s *Summary) htmlBaseline(data []byte) string {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		s.warnf("html parse failed: %s", err)
		return ""
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style":
				return
			}
		}
		if n.Type == html.TextNode {
			t := strings.TrimSpace(n.Data)
			if t != "" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
				buf.WriteString(t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return buf.String()
}
