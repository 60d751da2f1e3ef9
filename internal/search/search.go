// Package search runs full-text keyword scans over the HTML documents of an
// extracted CHM tree.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dgallion1/chmview/internal/chmfs"
	"github.com/dgallion1/chmview/internal/outline"
	"github.com/dgallion1/chmview/internal/textenc"
)

// ErrEmptyKeyword is returned before any scan starts when the keyword is blank.
var ErrEmptyKeyword = errors.New("search keyword is empty")

// DefaultWorkers bounds concurrent per-file scans.
const DefaultWorkers = 4

// NoResultsTitle labels the placeholder child of an empty result outline.
const NoResultsTitle = "No results found"

// Result is one matching document.
type Result struct {
	Title   string `json:"title"`
	Path    string `json:"path"`
	Snippet string `json:"snippet"`
}

// Outcome is a completed scan. Results keep file-discovery order.
type Outcome struct {
	Keyword string   `json:"keyword"`
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Scanned int      `json:"scanned"`
}

// NoResults reports a completed scan that matched nothing.
func (o Outcome) NoResults() bool {
	return o.Total == 0
}

// Outline renders the outcome as a single synthetic root whose children are
// the matches, or one placeholder when there are none.
func (o Outcome) Outline() *outline.Node {
	root := &outline.Node{Title: fmt.Sprintf("Search %q: %d result(s)", o.Keyword, o.Total)}
	if o.NoResults() {
		root.Add(&outline.Node{Title: NoResultsTitle})
		return root
	}
	for _, r := range o.Results {
		root.Add(&outline.Node{Title: r.Title, Target: r.Path, Snippet: r.Snippet})
	}
	return root
}

// Engine scans documents. The zero value is usable.
type Engine struct {
	Detector textenc.Detector
	Matcher  *chmfs.Matcher // nil = chmfs.DefaultDocumentPatterns
	Workers  int            // 0 = DefaultWorkers
	Radius   int            // 0 = DefaultRadius
	Log      *slog.Logger
}

// Search performs a full re-scan of root for keyword, matched as given
// (surrounding spaces included) as a case-insensitive substring of each
// document's plain text. A keyword of only whitespace is ErrEmptyKeyword.
// Only the first match of each file is reported. A file that cannot be read
// is skipped.
func (e *Engine) Search(ctx context.Context, root, keyword string) (Outcome, error) {
	if strings.TrimSpace(keyword) == "" {
		return Outcome{}, ErrEmptyKeyword
	}

	matcher := e.Matcher
	if matcher == nil {
		matcher = chmfs.NewMatcher(nil)
	}
	files, err := chmfs.Files(root, matcher)
	if err != nil {
		return Outcome{}, fmt.Errorf("list documents: %w", err)
	}

	workers := e.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	// Each worker writes only its own slot; order comes from the file index.
	slots := make([]*Result, len(files))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

dispatch:
	for i, path := range files {
		select {
		case <-ctx.Done():
			break dispatch
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			r, ok, err := e.scanFile(path, keyword)
			if err != nil {
				e.logger().Debug("skipping unreadable document", "path", path, "error", err)
				return
			}
			if ok {
				slots[i] = &r
			}
		}(i, path)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	out := Outcome{Keyword: keyword, Results: []Result{}, Scanned: len(files)}
	for _, r := range slots {
		if r != nil {
			out.Results = append(out.Results, *r)
		}
	}
	out.Total = len(out.Results)
	e.logger().Info("search complete", "keyword", keyword, "scanned", out.Scanned, "matches", out.Total)
	return out, nil
}

// scanFile is independent per file and touches no shared state.
func (e *Engine) scanFile(path, keyword string) (Result, bool, error) {
	doc, err := LoadDocument(e.Detector, path)
	if err != nil {
		return Result{}, false, err
	}
	start, length, ok := FindFold(doc.Text, keyword)
	if !ok {
		return Result{}, false, nil
	}
	radius := e.Radius
	if radius <= 0 {
		radius = DefaultRadius
	}
	return Result{
		Title:   doc.Title,
		Path:    path,
		Snippet: Snippet(doc.Text, start, length, radius),
	}, true, nil
}

func (e *Engine) logger() *slog.Logger {
	if e.Log != nil {
		return e.Log
	}
	return slog.New(slog.DiscardHandler)
}

func baseName(path string) string {
	return filepath.Base(path)
}
