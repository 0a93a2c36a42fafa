package utils

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// StripCodeFence removes an outer markdown code block, including the info
// string (```json, ```markdown, ...) the models like to put on the opening
// fence.
func StripCodeFence(input string) string {
	cleaned := strings.TrimSpace(input)
	if !strings.HasPrefix(cleaned, "```") || !strings.HasSuffix(cleaned, "```") {
		return cleaned
	}
	cleaned = strings.TrimSuffix(strings.TrimPrefix(cleaned, "```"), "```")
	if i := strings.IndexByte(cleaned, '\n'); i >= 0 && !strings.ContainsAny(cleaned[:i], " \t{[\"'") {
		cleaned = cleaned[i+1:]
	}
	return strings.TrimSpace(cleaned)
}

func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// FlattenMarkdown reduces model markdown to plain paragraphs for the PDF
// canvas: headings become their own lines, list items become "- " lines,
// inline emphasis and links collapse to their text.
func FlattenMarkdown(input string) string {
	src := []byte(StripCodeFence(input))
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var blocks []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			blocks = append(blocks, nodeText(node, src))
		case *ast.List:
			var items []string
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				items = append(items, "- "+nodeText(item, src))
			}
			blocks = append(blocks, strings.Join(items, "\n"))
		case *ast.ThematicBreak:
			// drop rules; they add nothing on the PDF canvas
		default:
			if t := nodeText(n, src); t != "" {
				blocks = append(blocks, t)
			}
		}
	}
	return strings.Join(blocks, "\n\n")
}
