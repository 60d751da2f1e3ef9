// Package session holds the state of one opened help source: its root, the
// navigation outline, the active search keyword and the set of files already
// rewritten to UTF-8.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/chmview/internal/chmfs"
	"github.com/dgallion1/chmview/internal/filetree"
	"github.com/dgallion1/chmview/internal/highlight"
	"github.com/dgallion1/chmview/internal/outline"
	"github.com/dgallion1/chmview/internal/search"
	"github.com/dgallion1/chmview/internal/textenc"
	"github.com/dgallion1/chmview/internal/toc"
)

var (
	ErrNotFound    = errors.New("session not found")
	ErrOutsideRoot = errors.New("path is outside the source root")
	ErrNoSource    = errors.New("no source loaded")
)

// SourceKind names where the navigation outline came from.
type SourceKind string

const (
	SourceTOC      SourceKind = "toc"
	SourceFileTree SourceKind = "filetree"
)

// Options are shared by every session a Store creates.
type Options struct {
	Detector textenc.Detector
	Matcher  *chmfs.Matcher // nil = chmfs.DefaultDocumentPatterns
	Engine   *search.Engine // nil = zero-value engine
	BaseDir  string         // Roots must resolve inside it ("" = any directory)
	Log      *slog.Logger
}

// Session is safe for concurrent use.
type Session struct {
	mu sync.Mutex

	ID        string
	CreatedAt time.Time
	updatedAt time.Time

	root     string
	tocPath  string
	kind     SourceKind
	label    textenc.Label
	homePage string
	current  string

	source  []*outline.Node
	results *outline.Node
	keyword string

	converted *textenc.ConvertedSet

	opts Options
	log  *slog.Logger
}

// Navigation is the outcome of a navigate request.
type Navigation struct {
	Path      string        `json:"path"`
	Encoding  textenc.Label `json:"encoding"`
	Converted bool          `json:"converted"`
}

// Summary is a JSON-safe copy of session state.
type Summary struct {
	ID        string        `json:"session_id"`
	Root      string        `json:"root"`
	TOCPath   string        `json:"toc_path,omitempty"`
	Source    SourceKind    `json:"source"`
	Encoding  textenc.Label `json:"encoding"`
	HomePage  string        `json:"home_page,omitempty"`
	Current   string        `json:"current,omitempty"`
	Keyword   string        `json:"keyword,omitempty"`
	Nodes     int           `json:"nodes"`
	Converted int           `json:"converted"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// New returns an empty session with a fresh ID.
func New(opts Options) *Session {
	if opts.Matcher == nil {
		opts.Matcher = chmfs.NewMatcher(nil)
	}
	if opts.Engine == nil {
		opts.Engine = &search.Engine{Detector: opts.Detector, Matcher: opts.Matcher, Log: opts.Log}
	}
	log := opts.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	now := time.Now()
	id := uuid.NewString()
	return &Session{
		ID:        id,
		CreatedAt: now,
		updatedAt: now,
		converted: textenc.NewConvertedSet(),
		opts:      opts,
		log:       log.With("session_id", id),
	}
}

// Load opens root as the session's source. The outline comes from the first
// table-of-contents file when it yields any entries, otherwise from the
// directory tree. Loading resets the keyword and the converted-file set. A
// root that does not resolve inside Options.BaseDir is ErrOutsideRoot.
func (s *Session) Load(ctx context.Context, root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}
	if s.opts.BaseDir != "" && !chmfs.ContainsResolved(s.opts.BaseDir, abs) {
		return fmt.Errorf("%s: %w", abs, ErrOutsideRoot)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root %s is not a directory", abs)
	}

	kind := SourceFileTree
	var nodes []*outline.Node
	tocPath, hasTOC := chmfs.FindTOC(abs)
	if hasTOC {
		p := &toc.Parser{Detector: s.opts.Detector, Log: s.log}
		nodes = p.ParseFile(tocPath)
		if len(nodes) > 0 {
			kind = SourceTOC
		} else {
			s.log.Info("table of contents is empty, using file tree", "toc", tocPath)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if kind == SourceFileTree {
		if nodes, err = filetree.Build(abs); err != nil {
			return fmt.Errorf("load source: %w", err)
		}
	}

	label := textenc.UTF8
	if first, ok := chmfs.FirstDocument(abs, s.opts.Matcher); ok {
		label = s.opts.Detector.Detect(first)
	}
	home, _ := chmfs.HomePage(abs)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = abs
	s.tocPath = ""
	if hasTOC {
		s.tocPath = tocPath
	}
	s.kind = kind
	s.label = label
	s.homePage = home
	s.current = ""
	s.source = nodes
	s.results = nil
	s.keyword = ""
	s.converted.Reset()
	s.updatedAt = time.Now()

	s.log.Info("source loaded", "root", abs, "source", kind, "nodes", outline.Count(nodes), "encoding", label)
	return nil
}

// Reload re-opens the current root.
func (s *Session) Reload(ctx context.Context) error {
	root := s.Root()
	if root == "" {
		return ErrNoSource
	}
	return s.Load(ctx, root)
}

// Root returns the loaded root, or "".
func (s *Session) Root() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root
}

// Outline returns what the navigation list shows: the search outline while
// a search is active, the source outline otherwise.
func (s *Session) Outline() []*outline.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.results != nil {
		return []*outline.Node{s.results}
	}
	return s.source
}

// SourceOutline returns the TOC or file-tree outline regardless of search.
func (s *Session) SourceOutline() []*outline.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Keyword returns the active highlight term.
func (s *Session) Keyword() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keyword
}

// Search scans the source for keyword. On success the keyword becomes the
// active highlight term and the result outline replaces the navigation list.
func (s *Session) Search(ctx context.Context, keyword string) (search.Outcome, error) {
	root := s.Root()
	if root == "" {
		return search.Outcome{}, ErrNoSource
	}
	out, err := s.opts.Engine.Search(ctx, root, keyword)
	if err != nil {
		return search.Outcome{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.keyword = out.Keyword
	s.results = out.Outline()
	s.updatedAt = time.Now()
	return out, nil
}

// ClearSearch drops the keyword and results, restores the source outline
// and forgets converted files.
func (s *Session) ClearSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keyword = ""
	s.results = nil
	s.converted.Reset()
	s.updatedAt = time.Now()
}

// Resolve maps a navigation target onto an absolute path inside the root.
// Relative paths are taken relative to the root. A symlink leading out of the
// root is ErrOutsideRoot.
func (s *Session) Resolve(path string) (string, error) {
	root := s.Root()
	if root == "" {
		return "", ErrNoSource
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, filepath.FromSlash(path))
	}
	path = filepath.Clean(path)
	if !chmfs.ContainsResolved(root, path) {
		return "", fmt.Errorf("%s: %w", path, ErrOutsideRoot)
	}
	return path, nil
}

// Navigate prepares path for display and records it as the current document.
func (s *Session) Navigate(path string) (Navigation, error) {
	nav, err := s.Prepare(path)
	if err != nil {
		return Navigation{}, err
	}
	s.mu.Lock()
	s.current = nav.Path
	s.updatedAt = time.Now()
	s.mu.Unlock()
	return nav, nil
}

// Prepare resolves path and, for an HTML document that is not UTF-8,
// rewrites it in place once per session. A failed rewrite is logged and the
// file is left as-is.
func (s *Session) Prepare(path string) (Navigation, error) {
	abs, err := s.Resolve(path)
	if err != nil {
		return Navigation{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Navigation{}, fmt.Errorf("stat target: %w", err)
	}
	if !info.Mode().IsRegular() {
		return Navigation{}, fmt.Errorf("target %s is not a regular file", abs)
	}

	nav := Navigation{Path: abs, Encoding: textenc.UTF8}
	if isHTML(abs) && !s.converted.Contains(abs) {
		nav.Encoding = s.opts.Detector.Detect(abs)
		if !nav.Encoding.IsUTF8() && textenc.AlreadyUTF8(abs) {
			// Head-less pages keep no declaration after a rewrite, so the
			// pair heuristic can misread their UTF-8 CJK bytes as GBK.
			s.log.Debug("document already UTF-8", "path", abs, "detected", nav.Encoding)
			nav.Encoding = textenc.UTF8
		}
		if !nav.Encoding.IsUTF8() {
			ran, err := s.converted.Convert(abs, func() error {
				return textenc.Fix(abs, nav.Encoding)
			})
			switch {
			case err != nil:
				s.log.Warn("encoding fix failed", "path", abs, "encoding", nav.Encoding, "error", err)
			case ran:
				nav.Converted = true
				s.log.Info("converted document to UTF-8", "path", abs, "from", nav.Encoding)
			}
		}
	}
	return nav, nil
}

// DocumentLoaded is called once the renderer finished loading the last
// navigation target. It returns the highlight script to run, if any.
func (s *Session) DocumentLoaded(ok bool) (string, bool) {
	keyword := s.Keyword()
	if !ok || keyword == "" {
		return "", false
	}
	return highlight.Script(keyword), true
}

// HomePage returns the initial navigation target of the source.
func (s *Session) HomePage() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.homePage, s.homePage != ""
}

// Converted reports whether path was rewritten during this session.
func (s *Session) Converted(path string) bool {
	return s.converted.Contains(path)
}

// Summary returns a snapshot for display.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summary{
		ID:        s.ID,
		Root:      s.root,
		TOCPath:   s.tocPath,
		Source:    s.kind,
		Encoding:  s.label,
		HomePage:  s.homePage,
		Current:   s.current,
		Keyword:   s.keyword,
		Nodes:     outline.Count(s.source),
		Converted: s.converted.Len(),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.updatedAt,
	}
}

func (s *Session) lastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

func isHTML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".htm" || ext == ".html"
}
