package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/chmview/internal/textenc"
)

// MarkdownParser handles Markdown files using goldmark. Every heading opens
// a new section.
type MarkdownParser struct {
	Detector textenc.Detector
}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Attachment, error) {
	content, _, err := readText(p.Detector, r)
	if err != nil {
		return nil, err
	}
	src := []byte(content)
	root := goldmark.New().Parser().Parse(text.NewReader(src))

	doc := &Attachment{Title: stem(filename)}
	var b sections
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			b.heading(extractText(h, src), h.Level)
			continue
		}
		b.para(extractText(n, src))
	}
	doc.Sections = b.done()
	if doc.Sections == nil {
		doc.Sections = []Section{}
	}
	return doc, nil
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && !n.HasChildren() {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			buf.Write(v.Value(src))
			if v.HardLineBreak() || v.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(v.Value)
		default:
			t := extractText(c, src)
			if c.Type() == ast.TypeBlock && buf.Len() > 0 && t != "" {
				buf.WriteByte('\n')
			}
			buf.WriteString(t)
		}
	}
	return strings.TrimSpace(buf.String())
}
