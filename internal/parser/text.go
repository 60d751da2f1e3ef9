package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/chmview/internal/textenc"
)

// TextParser handles plain text files. Each blank-line separated paragraph
// becomes one untitled section.
type TextParser struct {
	Detector textenc.Detector
}

func (p *TextParser) Parse(r io.Reader, filename string) (*Attachment, error) {
	content, _, err := readText(p.Detector, r)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	doc := &Attachment{Title: stem(filename), Sections: []Section{}}
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			doc.Sections = append(doc.Sections, Section{Text: current.String()})
			current.Reset()
		}
	}
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}
