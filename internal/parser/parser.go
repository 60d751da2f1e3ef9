// Package parser projects leaf documents of a help source (HTML pages and
// attached files) onto readable, sectioned plain text.
package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/chmview/internal/textenc"
)

var (
	ErrUnsupported = errors.New("unsupported file extension")
	ErrTooLarge    = errors.New("file exceeds text extraction limit")
)

// Section is one heading-delimited block of a document.
type Section struct {
	Title string `json:"title,omitempty"`
	Level int    `json:"level,omitempty"` // Heading level, 0 for untitled blocks
	Page  int    `json:"page,omitempty"`  // 1-based, PDF only
	Text  string `json:"text"`
}

// Attachment is a document reduced to text.
type Attachment struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// PlainText joins all sections, headings included, with blank lines.
func (a *Attachment) PlainText() string {
	var parts []string
	for _, s := range a.Sections {
		if s.Title != "" {
			parts = append(parts, s.Title)
		}
		if s.Text != "" {
			parts = append(parts, s.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Parser converts raw document bytes into an Attachment.
type Parser interface {
	Parse(r io.Reader, filename string) (*Attachment, error)
}

// SupportedExtensions lists file extensions with a parser.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Extractor opens files from disk and parses them.
type Extractor struct {
	Detector          textenc.Detector
	MaxBytes          int64 // 0 = unlimited
	FallbackPdftotext bool
}

// ExtractFile parses the file at path with the parser its extension selects.
func (e *Extractor) ExtractFile(path string) (*Attachment, error) {
	p, err := ForFile(path)
	if err != nil {
		return nil, err
	}
	switch v := p.(type) {
	case *PDFParser:
		v.FallbackPdftotext = e.FallbackPdftotext
	case *HTMLParser:
		v.Detector = e.Detector
	case *TextParser:
		v.Detector = e.Detector
	case *MarkdownParser:
		v.Detector = e.Detector
	case *CSVParser:
		v.Detector = e.Detector
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open attachment: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat attachment: %w", err)
	}
	if e.MaxBytes > 0 && info.Size() > e.MaxBytes {
		return nil, fmt.Errorf("%s is %d bytes: %w", filepath.Base(path), info.Size(), ErrTooLarge)
	}
	return p.Parse(f, filepath.Base(path))
}

// readText reads r whole and decodes it with the encoding d detects from
// its leading bytes.
func readText(d textenc.Detector, r io.Reader) (string, textenc.Label, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", "", fmt.Errorf("read document: %w", err)
	}
	label := d.DetectData(data)
	return textenc.Decode(data, label), label, nil
}

func stem(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// sections accumulates heading-delimited blocks in document order.
type sections struct {
	out   []Section
	title string
	level int
	text  strings.Builder
}

func (s *sections) heading(title string, level int) {
	s.flush()
	s.title = title
	s.level = level
}

func (s *sections) para(t string) {
	t = strings.TrimSpace(t)
	if t == "" {
		return
	}
	if s.text.Len() > 0 {
		s.text.WriteString("\n\n")
	}
	s.text.WriteString(t)
}

func (s *sections) flush() {
	text := s.text.String()
	if s.title != "" || text != "" {
		s.out = append(s.out, Section{Title: s.title, Level: s.level, Text: text})
	}
	s.title, s.level = "", 0
	s.text.Reset()
}

func (s *sections) done() []Section {
	s.flush()
	return s.out
}
