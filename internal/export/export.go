// Package export renders navigation outlines and documents as Markdown and
// HTML.
package export

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/dgallion1/chmview/internal/outline"
	"github.com/dgallion1/chmview/internal/textenc"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// OutlineMarkdown renders nodes as a nested bullet list under a level-one
// heading. Targets become links relative to root; grouping nodes are plain
// items.
func OutlineMarkdown(title string, nodes []*outline.Node, root string) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", escapeText(title))
	}
	outline.Walk(nodes, func(n *outline.Node, depth int) bool {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString("- ")
		label := escapeText(n.DisplayText())
		if n.IsLeaf() {
			fmt.Fprintf(&b, "[%s](%s)", label, linkTarget(root, n.Target))
		} else {
			b.WriteString(label)
		}
		b.WriteString("\n")
		return true
	})
	return b.String()
}

// OutlineHTML renders the outline Markdown to a standalone UTF-8 page.
func OutlineHTML(title string, nodes []*outline.Node, root string) ([]byte, error) {
	body, err := RenderMarkdown(OutlineMarkdown(title, nodes, root))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{Title: title, Body: template.HTML(body)})
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderMarkdown converts Markdown source to an HTML fragment.
func RenderMarkdown(source string) ([]byte, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// DocumentMarkdown decodes the HTML document at path with its detected
// encoding and converts it to Markdown.
func DocumentMarkdown(d textenc.Detector, path string) (string, error) {
	markup, _, err := d.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return HTMLToMarkdown(markup)
}

// HTMLToMarkdown converts markup with normalized line endings.
func HTMLToMarkdown(markup string) (string, error) {
	out, err := htmltomarkdown.ConvertString(markup)
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}
	out = strings.ReplaceAll(out, "\r\n", "\n")
	return strings.TrimSpace(out), nil
}

// linkTarget is the slash-separated path of target relative to root, or the
// target itself when it lies outside root.
func linkTarget(root, target string) string {
	link := target
	if root != "" {
		if rel, err := filepath.Rel(root, target); err == nil && !strings.HasPrefix(rel, "..") {
			link = rel
		}
	}
	link = filepath.ToSlash(link)
	if strings.ContainsAny(link, " ()") {
		return "<" + link + ">"
	}
	return link
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"[", `\[`,
	"]", `\]`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"<", `\<`,
)

func escapeText(s string) string {
	return markdownEscaper.Replace(s)
}
