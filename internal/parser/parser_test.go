package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestForFile(t *testing.T) {
	for _, name := range []string{"a.txt", "b.MD", "c.csv", "d.HTM", "e.html", "f.pdf", "g.docx"} {
		if _, err := ForFile(name); err != nil {
			t.Errorf("%s: unexpected error %v", name, err)
		}
		if !IsSupportedExtension(name) {
			t.Errorf("%s: expected supported", name)
		}
	}
	if _, err := ForFile("x.exe"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestExtractor_ExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.htm")
	if err := os.WriteFile(path, []byte("<title>T</title><p>body text</p>"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	doc, err := (&Extractor{}).ExtractFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "T" || doc.PlainText() != "body text" {
		t.Errorf("unexpected attachment %+v", doc)
	}

	if _, err := (&Extractor{MaxBytes: 4}).ExtractFile(path); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
	if _, err := (&Extractor{}).ExtractFile(filepath.Join(dir, "missing.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestPDFAttachment_Pages(t *testing.T) {
	doc := pdfAttachment("manual", "page one\f\f  page three  ")
	if len(doc.Sections) != 2 {
		t.Fatalf("expected 2 non-empty pages, got %d", len(doc.Sections))
	}
	if doc.Sections[1].Page != 3 || doc.Sections[1].Title != "Page 3" || doc.Sections[1].Text != "page three" {
		t.Errorf("unexpected page section %+v", doc.Sections[1])
	}
}

func TestStyleHeadingLevel(t *testing.T) {
	tests := map[string]int{
		"Heading1":  1,
		"heading 3": 3,
		"Heading6":  6,
		"Heading7":  0,
		"Normal":    0,
		"Heading12": 0,
	}
	for style, want := range tests {
		if got := styleHeadingLevel(style); got != want {
			t.Errorf("%q: expected %d, got %d", style, want, got)
		}
	}
}
