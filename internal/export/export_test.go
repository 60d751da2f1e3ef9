package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/dgallion1/chmview/internal/outline"
	"github.com/dgallion1/chmview/internal/textenc"
)

func sampleOutline(root string) []*outline.Node {
	guide := &outline.Node{Title: "Guide"}
	guide.Add(&outline.Node{Title: "Install", Target: filepath.Join(root, "install.htm")})
	guide.Add(&outline.Node{Title: "Usage notes", Target: filepath.Join(root, "docs", "usage notes.htm")})
	return []*outline.Node{
		{Title: "Intro", Target: filepath.Join(root, "intro.htm")},
		guide,
	}
}

func TestOutlineMarkdown(t *testing.T) {
	root := "/help"
	got := OutlineMarkdown("My Help", sampleOutline(root), root)
	want := "# My Help\n\n" +
		"- [Intro](intro.htm)\n" +
		"- Guide\n" +
		"  - [Install](install.htm)\n" +
		"  - [Usage notes](<docs/usage notes.htm>)\n"
	if got != want {
		t.Errorf("unexpected markdown:\n%s\nwant:\n%s", got, want)
	}
}

func TestOutlineMarkdown_EscapesAndSnippets(t *testing.T) {
	nodes := []*outline.Node{{Title: "a_b [x]", Target: "/r/a.htm", Snippet: "*bold*"}}
	got := OutlineMarkdown("", nodes, "/r")
	if got != `- [a\_b \[x\] - \*bold\*](a.htm)`+"\n" {
		t.Errorf("unexpected markdown %q", got)
	}
}

func TestOutlineMarkdown_OutsideRootKeepsAbsolute(t *testing.T) {
	got := OutlineMarkdown("", []*outline.Node{{Title: "x", Target: "/other/x.htm"}}, "/help")
	if !strings.Contains(got, "(/other/x.htm)") {
		t.Errorf("expected absolute link, got %q", got)
	}
}

func TestOutlineHTML(t *testing.T) {
	page, err := OutlineHTML("Help <1>", sampleOutline("/help"), "/help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(page)
	for _, want := range []string{
		"<title>Help &lt;1&gt;</title>",
		`<a href="intro.htm">Intro</a>`,
		"<li>Guide",
		`charset="UTF-8"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %q in page:\n%s", want, s)
		}
	}
}

func TestDocumentMarkdown_GBK(t *testing.T) {
	encoded, err := simplifiedchinese.GBK.NewEncoder().String(
		`<html><head><meta charset="gbk"><title>帮助</title></head><body><h1>安装</h1><p>欢迎<strong>使用</strong></p></body></html>`)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "page.htm")
	if err := os.WriteFile(path, []byte(encoded), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got, err := DocumentMarkdown(textenc.Detector{}, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "# 安装") || !strings.Contains(got, "欢迎**使用**") {
		t.Errorf("unexpected markdown %q", got)
	}
}

func TestDocumentMarkdown_Missing(t *testing.T) {
	if _, err := DocumentMarkdown(textenc.Detector{}, filepath.Join(t.TempDir(), "nope.htm")); err == nil {
		t.Error("expected error for missing document")
	}
}
