package parser

import (
	"fmt"
	"strings"
	"testing"
)

func TestCSVParser_Batches(t *testing.T) {
	var b strings.Builder
	b.WriteString("name,value\n")
	for i := range 25 {
		fmt.Fprintf(&b, "k%d,%d\n", i, i)
	}
	doc, err := (&CSVParser{}).Parse(strings.NewReader(b.String()), "data.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "data" {
		t.Errorf("expected title %q, got %q", "data", doc.Title)
	}
	if len(doc.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(doc.Sections))
	}
	if doc.Sections[0].Title != "Rows 2-21" || doc.Sections[1].Title != "Rows 22-26" {
		t.Errorf("unexpected section titles %q, %q", doc.Sections[0].Title, doc.Sections[1].Title)
	}
	if !strings.HasPrefix(doc.Sections[0].Text, "name: k0, value: 0\n") {
		t.Errorf("unexpected row text %q", doc.Sections[0].Text)
	}
}

func TestCSVParser_RaggedRows(t *testing.T) {
	doc, err := (&CSVParser{}).Parse(strings.NewReader("a,b\n1,2,3\n"), "r.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Sections) != 1 || doc.Sections[0].Text != "a: 1, b: 2, 3" {
		t.Errorf("unexpected sections %+v", doc.Sections)
	}
}

func TestCSVParser_Empty(t *testing.T) {
	doc, err := (&CSVParser{}).Parse(strings.NewReader(""), "e.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Sections) != 0 {
		t.Errorf("expected no sections, got %d", len(doc.Sections))
	}
}
