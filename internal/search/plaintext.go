package search

import (
	"regexp"
	"strings"

	"github.com/dgallion1/chmview/internal/textenc"
	"golang.org/x/net/html"
)

var (
	scriptElemRe = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	styleElemRe  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style\s*>`)
	tagRe        = regexp.MustCompile(`<[^>]*>`)
)

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", `"`,
	"&#39;", "'",
)

// PlainText projects markup onto its visible text: script and style
// elements go with their content, remaining tags are dropped, a fixed set of
// entities is decoded and whitespace runs collapse to single spaces. It is
// lossy and deterministic, not a markup parser.
func PlainText(markup string) string {
	s := scriptElemRe.ReplaceAllString(markup, "")
	s = styleElemRe.ReplaceAllString(s, "")
	s = tagRe.ReplaceAllString(s, "")
	s = entityReplacer.Replace(s)
	return collapseSpace(s)
}

// Title returns the text of the first <title> element, or "".
func Title(markup string) string {
	z := html.NewTokenizer(strings.NewReader(markup))
	inTitle := false
	var buf strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapseSpace(buf.String())
		case html.StartTagToken:
			if name, _ := z.TagName(); string(name) == "title" {
				inTitle = true
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); inTitle && string(name) == "title" {
				return collapseSpace(buf.String())
			}
		case html.TextToken:
			if inTitle {
				buf.Write(z.Text())
			}
		}
	}
}

// Document is a decoded HTML file reduced to what search needs.
type Document struct {
	Path     string
	Title    string
	Text     string
	Encoding textenc.Label
}

// LoadDocument detects, decodes and projects one file. The title falls back
// to the file name.
func LoadDocument(d textenc.Detector, path string) (Document, error) {
	markup, label, err := d.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	title := Title(markup)
	if title == "" {
		title = baseName(path)
	}
	return Document{
		Path:     path,
		Title:    title,
		Text:     PlainText(markup),
		Encoding: label,
	}, nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
