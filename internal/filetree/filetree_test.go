package filetree

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/chmview/internal/outline"
)

func touch(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestBuild_MirrorsDirectories(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "index.htm")
	touch(t, root, "api/a.htm")
	touch(t, root, "api/sub/b.htm")
	if err := os.MkdirAll(filepath.Join(root, "empty"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	nodes, err := Build(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("expected 3 top-level nodes, got %d", len(nodes))
	}

	api := nodes[0]
	if api.Title != "api" || api.Target != "" {
		t.Errorf("expected grouping node api, got %+v", api)
	}
	if len(api.Children) != 2 {
		t.Fatalf("expected 2 children under api, got %d", len(api.Children))
	}
	if api.Children[0].Title != "a.htm" || api.Children[0].Target != filepath.Join(root, "api", "a.htm") {
		t.Errorf("unexpected leaf %+v", api.Children[0])
	}
	sub := api.Children[1]
	if sub.Title != "sub" || len(sub.Children) != 1 || sub.Children[0].Title != "b.htm" {
		t.Errorf("unexpected nested dir %+v", sub)
	}

	if nodes[1].Title != "empty" || len(nodes[1].Children) != 0 || nodes[1].Target != "" {
		t.Errorf("expected empty grouping node, got %+v", nodes[1])
	}
	if nodes[2].Title != "index.htm" || !nodes[2].IsLeaf() {
		t.Errorf("expected index leaf, got %+v", nodes[2])
	}
}

func TestBuild_ExcludesReservedAtAnyDepth(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "#SYSTEM")
	touch(t, root, "$FIftiMain")
	touch(t, root, "#dir/inner.htm")
	touch(t, root, "a/#TOPICS")
	touch(t, root, "a/b/$OBJINST")
	touch(t, root, "a/b/$dir/deep.htm")
	touch(t, root, "a/b/keep.htm")

	nodes, err := Build(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	outline.Walk(nodes, func(n *outline.Node, depth int) bool {
		if strings.HasPrefix(n.Title, "#") || strings.HasPrefix(n.Title, "$") {
			t.Errorf("reserved entry %q leaked at depth %d", n.Title, depth)
		}
		if n.Title == "inner.htm" || n.Title == "deep.htm" {
			t.Errorf("entry %q under a reserved directory leaked", n.Title)
		}
		return true
	})
	if total := outline.Count(nodes); total != 3 {
		t.Errorf("expected a, b, keep.htm only; got %d nodes", total)
	}
}

func TestBuild_MissingRoot(t *testing.T) {
	if _, err := Build(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing root")
	}
}
