package textenc

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

func TestDecode_GBK(t *testing.T) {
	raw, err := simplifiedchinese.GBK.NewEncoder().String("中文帮助")
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	if got := Decode([]byte(raw), GBK); got != "中文帮助" {
		t.Errorf("expected %q, got %q", "中文帮助", got)
	}
}

func TestDecode_Big5(t *testing.T) {
	raw, err := traditionalchinese.Big5.NewEncoder().String("說明")
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	if got := Decode([]byte(raw), Big5); got != "說明" {
		t.Errorf("expected %q, got %q", "說明", got)
	}
}

func TestDecode_UTF8StripsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello")...)
	if got := Decode(data, UTF8); got != "hello" {
		t.Errorf("expected BOM stripped, got %q", got)
	}
}

func TestDecode_EchoedLabel(t *testing.T) {
	// 0xE9 is "é" in windows-1252.
	if got := Decode([]byte{'c', 'a', 'f', 0xE9}, "WINDOWS-1252"); got != "café" {
		t.Errorf("expected %q, got %q", "café", got)
	}
}

func TestDecode_UnknownLabelFallsBackToUTF8(t *testing.T) {
	if Known("NOT-A-CHARSET") {
		t.Error("expected unknown label")
	}
	if got := Decode([]byte("plain"), "NOT-A-CHARSET"); got != "plain" {
		t.Errorf("expected passthrough, got %q", got)
	}
}

func TestDetectorReadFile(t *testing.T) {
	raw, _ := simplifiedchinese.GBK.NewEncoder().String(`<meta charset="gb2312"><p>目录</p>`)
	path := filepath.Join(t.TempDir(), "page.htm")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	text, label, err := Detector{}.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != GBK {
		t.Errorf("expected GBK, got %q", label)
	}
	if text != `<meta charset="gb2312"><p>目录</p>` {
		t.Errorf("unexpected decoded text %q", text)
	}
}

func TestReadFile_Missing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "nope.htm"), UTF8); err == nil {
		t.Error("expected error for missing file")
	}
}
