package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/chmview/internal/textenc"
)

// HTMLParser handles compiled-help pages and other HTML files in any
// encoding the detector recognizes.
type HTMLParser struct {
	Detector textenc.Detector
}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*Attachment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read html: %w", err)
	}
	label := p.Detector.DetectData(data)
	root, err := html.Parse(strings.NewReader(textenc.Decode(data, label)))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := &Attachment{Title: stem(filename)}
	if title := findTitle(root); title != "" {
		doc.Title = title
	}

	var b sections
	var inline strings.Builder
	flushInline := func() {
		b.para(collapse(inline.String()))
		inline.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			inline.WriteString(n.Data)
			return
		case html.ElementNode:
			if level := headingLevel(n.Data); level > 0 {
				flushInline()
				b.heading(textContent(n), level)
				return
			}
			switch n.Data {
			case "script", "style", "noscript", "head", "object":
				return
			case "br":
				inline.WriteString("\n")
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			flushInline()
		}
	}

	if body := findElement(root, "body"); body != nil {
		walk(body)
	} else {
		walk(root)
	}
	flushInline()
	doc.Sections = b.done()
	if doc.Sections == nil {
		doc.Sections = []Section{}
	}
	return doc, nil
}

var blockElements = map[string]bool{
	"p": true, "div": true, "li": true, "td": true, "th": true, "tr": true,
	"blockquote": true, "pre": true, "dt": true, "dd": true, "table": true,
	"ul": true, "ol": true, "dl": true, "center": true,
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf bytes.Buffer
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return collapse(buf.String())
}

func findTitle(n *html.Node) string {
	if t := findElement(n, "title"); t != nil {
		return textContent(t)
	}
	return ""
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
