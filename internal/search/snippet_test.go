package search

import (
	"strings"
	"testing"
)

func TestFindFold(t *testing.T) {
	start, length, ok := FindFold("Hello Foo world", "foo")
	if !ok || start != 6 || length != 3 {
		t.Errorf("expected (6, 3, true), got (%d, %d, %v)", start, length, ok)
	}
	if _, _, ok := FindFold("nothing here", "foo"); ok {
		t.Error("expected no match")
	}
}

func TestFindFold_RuneOffsets(t *testing.T) {
	start, length, ok := FindFold("中文帮助 FOO", "foo")
	if !ok || start != 5 || length != 3 {
		t.Errorf("expected rune offsets (5, 3), got (%d, %d, %v)", start, length, ok)
	}
}

func TestSnippet_BothSidesTruncated(t *testing.T) {
	text := strings.Repeat("a", 100) + " foo " + strings.Repeat("b", 100)
	start, length, _ := FindFold(text, "foo")
	got := Snippet(text, start, length, DefaultRadius)

	want := "..." + strings.Repeat("a", 49) + " foo " + strings.Repeat("b", 49) + "..."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSnippet_NoTruncation(t *testing.T) {
	text := "aaaa foo bbbb"
	start, length, _ := FindFold(text, "foo")
	if got := Snippet(text, start, length, DefaultRadius); got != text {
		t.Errorf("expected whole text without ellipses, got %q", got)
	}
}

func TestSnippet_OneSideTruncated(t *testing.T) {
	text := "foo " + strings.Repeat("z", 80)
	got := Snippet(text, 0, 3, DefaultRadius)
	if strings.HasPrefix(got, "...") {
		t.Errorf("expected no leading ellipsis at text start, got %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected trailing ellipsis, got %q", got)
	}
	if got != "foo "+strings.Repeat("z", 49)+"..." {
		t.Errorf("unexpected snippet %q", got)
	}

	text = strings.Repeat("z", 80) + " foo"
	start, length, _ := FindFold(text, "foo")
	got = Snippet(text, start, length, DefaultRadius)
	if !strings.HasPrefix(got, "...") || strings.HasSuffix(got, "...") {
		t.Errorf("expected leading ellipsis only, got %q", got)
	}
}

func TestSnippet_CountsRunes(t *testing.T) {
	text := strings.Repeat("中", 60) + "关键" + strings.Repeat("文", 60)
	start, length, ok := FindFold(text, "关键")
	if !ok {
		t.Fatal("expected match")
	}
	got := Snippet(text, start, length, 10)
	want := "..." + strings.Repeat("中", 10) + "关键" + strings.Repeat("文", 10) + "..."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
