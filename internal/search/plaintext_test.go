package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/chmview/internal/textenc"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`<p>A &amp; <b>B</b></p>`, "A & B"},
		{`<script>x</script>Hello`, "Hello"},
		{"<SCRIPT type=\"text/javascript\">\nvar a = '<p>';\n</SCRIPT>after", "after"},
		{`<style>p { color: red }</style><p>styled</p>`, "styled"},
		{"<p>one</p>\n\n\t<p>  two </p>", "one two"},
		{"a &nbsp;&nbsp; b", "a b"},
		{"&lt;tag&gt; &quot;q&quot; it&#39;s", `<tag> "q" it's`},
		{"&amp;lt;", "&lt;"},
		{"<script>a</script>mid<script>b</script>end", "midend"},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := PlainText(tt.in); got != tt.want {
			t.Errorf("PlainText(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestPlainText_Deterministic(t *testing.T) {
	in := `<html><head><title>T</title></head><body><p>x &amp; y</p></body></html>`
	if PlainText(in) != PlainText(in) {
		t.Error("expected identical output for identical input")
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<html><head><title>  Getting\n Started </title></head></html>", "Getting Started"},
		{"<TITLE>Caps &amp; Entities</TITLE>", "Caps & Entities"},
		{"<html><body>no title</body></html>", ""},
		{"<title></title>", ""},
	}
	for _, tt := range tests {
		if got := Title(tt.in); got != tt.want {
			t.Errorf("Title(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestLoadDocument_GBK(t *testing.T) {
	raw, err := simplifiedchinese.GBK.NewEncoder().String(
		`<html><head><meta charset="gb2312"><title>帮助</title></head><body><p>欢迎使用</p></body></html>`)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "welcome.htm")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	doc, err := LoadDocument(textenc.Detector{}, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Encoding != textenc.GBK {
		t.Errorf("expected GBK, got %q", doc.Encoding)
	}
	if doc.Title != "帮助" {
		t.Errorf("expected title %q, got %q", "帮助", doc.Title)
	}
	if doc.Text != "帮助欢迎使用" {
		t.Errorf("unexpected text %q", doc.Text)
	}
}

func TestLoadDocument_TitleFallsBackToFileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "untitled.html")
	if err := os.WriteFile(path, []byte("<p>body</p>"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	doc, err := LoadDocument(textenc.Detector{}, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "untitled.html" {
		t.Errorf("expected file name title, got %q", doc.Title)
	}
}
