// Package toc parses the compiler-generated .hhc table of contents into an
// outline.
package toc

import (
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dgallion1/chmview/internal/outline"
	"github.com/dgallion1/chmview/internal/textenc"
)

var (
	listStartRe = regexp.MustCompile(`(?i)<\s*ul\s*>`)
	listEndRe   = regexp.MustCompile(`(?i)</\s*ul\s*>`)
	itemStartRe = regexp.MustCompile(`(?i)<\s*li\s*>`)
	paramRe     = regexp.MustCompile(`(?i)<\s*param\s+name\s*=\s*"([^"]+)"\s+value\s*=\s*"([^"]+)"`)
)

const (
	objectEnd = "</object>"
	itemTag   = "<li>"
)

type marker int

const (
	markerNone marker = iota
	markerListStart
	markerListEnd
	markerItem
)

// Parser turns TOC files into outlines.
type Parser struct {
	Detector textenc.Detector
	Log      *slog.Logger
}

// ParseFile reads the TOC at path, decoding it with its detected encoding.
// An unreadable file yields an empty outline.
func (p *Parser) ParseFile(path string) []*outline.Node {
	content, label, err := p.Detector.ReadFile(path)
	if err != nil {
		if p.Log != nil {
			p.Log.Warn("toc unreadable", "path", path, "error", err)
		}
		return nil
	}
	nodes := Parse(content, filepath.Dir(path))
	if p.Log != nil {
		p.Log.Debug("parsed toc", "path", path, "encoding", label, "top_level", len(nodes))
	}
	return nodes
}

// ParseFile parses a TOC file with the default detector.
func ParseFile(path string) []*outline.Node {
	return (&Parser{}).ParseFile(path)
}

// Parse scans decoded TOC markup left to right. Nesting follows the list
// markers only; indentation and whitespace are irrelevant. Local targets are
// resolved against baseDir.
func Parse(content, baseDir string) []*outline.Node {
	root := &outline.Node{}
	stack := []*outline.Node{root}
	sc := newScanner(content)

	pos := 0
	for pos < len(content) {
		kind, start, end := sc.next(pos)
		switch kind {
		case markerNone:
			return root.Children

		case markerListStart:
			pos = end

		case markerListEnd:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
			pos = end

		case markerItem:
			blockEnd := itemBlockEnd(content, start, end)
			title, local := itemParams(content[start:blockEnd])
			if title != "" {
				node := &outline.Node{Title: title, Target: resolveLocal(baseDir, local)}
				stack[len(stack)-1].Add(node)
				// A list start that holds no items still counts.
				if next, _, _ := sc.next(blockEnd); next == markerListStart {
					stack = append(stack, node)
				}
			}
			pos = blockEnd
		}
	}
	return root.Children
}

type span struct {
	start, end int
}

// scanner caches the next occurrence of each marker so repeated lookups from
// increasing positions do not rescan the document.
type scanner struct {
	content string
	res     [3]*regexp.Regexp
	cached  [3]span
	valid   [3]bool
}

func newScanner(content string) *scanner {
	return &scanner{
		content: content,
		res:     [3]*regexp.Regexp{listStartRe, listEndRe, itemStartRe},
	}
}

// next returns the earliest marker starting at or after pos.
func (sc *scanner) next(pos int) (marker, int, int) {
	kind, best := markerNone, span{len(sc.content), len(sc.content)}
	for i, re := range sc.res {
		if !sc.valid[i] || (sc.cached[i].start < pos && sc.cached[i].start != -1) {
			sc.cached[i] = span{-1, -1}
			if loc := re.FindStringIndex(sc.content[pos:]); loc != nil {
				sc.cached[i] = span{pos + loc[0], pos + loc[1]}
			}
			sc.valid[i] = true
		}
		if c := sc.cached[i]; c.start != -1 && c.start < best.start {
			kind, best = marker(i+1), c
		}
	}
	return kind, best.start, best.end
}

// itemBlockEnd bounds an item's parameter block: the next closing object tag,
// else the next item, else the end of the document.
func itemBlockEnd(content string, start, tagEnd int) int {
	if i := indexFold(content, objectEnd, start); i >= 0 {
		return max(i, tagEnd)
	}
	if i := indexFold(content, itemTag, start+len(itemTag)); i >= 0 {
		return max(i, tagEnd)
	}
	return len(content)
}

func itemParams(block string) (title, local string) {
	for _, m := range paramRe.FindAllStringSubmatch(block, -1) {
		switch strings.ToLower(m[1]) {
		case "name":
			title = m[2]
		case "local":
			local = m[2]
		}
	}
	return title, local
}

func resolveLocal(baseDir, local string) string {
	if local == "" {
		return ""
	}
	path := filepath.Join(baseDir, filepath.FromSlash(local))
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// indexFold finds an ASCII needle at or after from, ignoring case, without
// shifting byte offsets the way lowercasing the haystack could.
func indexFold(s, needle string, from int) int {
	n := len(needle)
	for i := max(from, 0); i+n <= len(s); i++ {
		if strings.EqualFold(s[i:i+n], needle) {
			return i
		}
	}
	return -1
}
