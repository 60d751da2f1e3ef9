package textenc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// "中文测试中文" encoded as GBK.
var gbkSample = []byte{0xD6, 0xD0, 0xCE, 0xC4, 0xB2, 0xE2, 0xCA, 0xD4, 0xD6, 0xD0, 0xCE, 0xC4}

func TestDetectBytes_DeclaredCharsets(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Label
	}{
		{"gb2312", `<meta http-equiv="Content-Type" content="text/html; charset=GB2312">`, GBK},
		{"gb-2312 lowercase", `<meta content="text/html; charset=gb-2312">`, GBK},
		{"gbk quoted", `<meta charset="gbk">`, GBK},
		{"cp936", `<meta charset='cp936'>`, GBK},
		{"big5", `<meta http-equiv="Content-Type" content="text/html; charset=Big5">`, Big5},
		{"big5-hkscs", `<meta charset="big5-hkscs">`, Big5},
		{"utf-8", `<meta charset="utf-8">`, UTF8},
		{"utf8", `<meta charset=utf8>`, UTF8},
		{"spaces around equals", `<meta content="text/html; CHARSET = gb2312">`, GBK},
		{"unknown echoed uppercase", `<meta charset="windows-1252">`, "WINDOWS-1252"},
		{"stops at angle bracket", `<meta charset=shift_jis>`, "SHIFT_JIS"},
	}
	for _, tt := range tests {
		if got := DetectBytes([]byte(tt.input)); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestDetectBytes_DeclarationBeatsHeuristic(t *testing.T) {
	data := append([]byte(`<meta charset="utf-8">`), gbkSample...)
	if got := DetectBytes(data); got != UTF8 {
		t.Errorf("expected declaration to win, got %q", got)
	}
}

func TestDetectBytes_GBKHeuristic(t *testing.T) {
	data := append([]byte("<html><body>"), gbkSample...)
	if got := DetectBytes(data); got != GBK {
		t.Errorf("expected GBK, got %q", got)
	}
}

func TestDetectBytes_HeuristicThreshold(t *testing.T) {
	// Two GBK characters give three overlapping GBK-shaped pairs, below the threshold.
	data := append([]byte("<p>"), 0xD6, 0xD0, 0xCE, 0xC4)
	if got := DetectBytes(data); got != UTF8 {
		t.Errorf("expected UTF-8 below threshold, got %q", got)
	}
}

func TestDetectBytes_PlainASCII(t *testing.T) {
	if got := DetectBytes([]byte("<html><body>Hello world</body></html>")); got != UTF8 {
		t.Errorf("expected UTF-8, got %q", got)
	}
	if got := DetectBytes(nil); got != UTF8 {
		t.Errorf("expected UTF-8 for empty input, got %q", got)
	}
}

func TestDetect_MissingFileDefaultsToUTF8(t *testing.T) {
	if got := Detect(filepath.Join(t.TempDir(), "missing.html")); got != UTF8 {
		t.Errorf("expected UTF-8, got %q", got)
	}
}

func TestDetect_OnlyInspectsSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "late.html")
	content := strings.Repeat(" ", DefaultSampleSize) + `<meta charset="gb2312">`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if got := Detect(path); got != UTF8 {
		t.Errorf("expected declaration past the sample to be ignored, got %q", got)
	}
	if got := (Detector{SampleSize: DefaultSampleSize * 2}).Detect(path); got != GBK {
		t.Errorf("expected larger sample to see declaration, got %q", got)
	}
}

func TestDetectData_SampleLimit(t *testing.T) {
	data := []byte(strings.Repeat(" ", 16) + `<meta charset="big5">`)
	if got := (Detector{SampleSize: 16}).DetectData(data); got != UTF8 {
		t.Errorf("expected UTF-8 within a short sample, got %q", got)
	}
	if got := (Detector{}).DetectData(data); got != Big5 {
		t.Errorf("expected Big5, got %q", got)
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize(" x-gbk "); got != GBK {
		t.Errorf("expected GBK, got %q", got)
	}
	if got := Normalize("iso-8859-1"); got != "ISO-8859-1" {
		t.Errorf("expected echoed token, got %q", got)
	}
}
