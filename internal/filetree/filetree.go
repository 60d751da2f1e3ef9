// Package filetree builds a fallback outline from the directory layout of an
// extracted CHM when no usable table of contents exists.
package filetree

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/dgallion1/chmview/internal/chmfs"
	"github.com/dgallion1/chmview/internal/outline"
)

// Build mirrors the directory structure under root: one grouping node per
// directory and one leaf per file, in lexical order. Reserved (#, $) entries
// and their subtrees are left out.
func Build(root string) ([]*outline.Node, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	top := &outline.Node{}
	dirs := map[string]*outline.Node{root: top}

	err = chmfs.Walk(root, func(path string, d fs.DirEntry) error {
		parent, ok := dirs[filepath.Dir(path)]
		if !ok {
			parent = top
		}

		if d.IsDir() {
			dirs[path] = parent.Add(&outline.Node{Title: d.Name()})
			return nil
		}
		parent.Add(&outline.Node{Title: d.Name(), Target: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("build file tree: %w", err)
	}
	return top.Children, nil
}
