package api

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/chmview/internal/export"
)

// handleFile serves a file from the session root. HTML documents are
// converted to UTF-8 first, exactly like a navigation.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	rel := chi.URLParam(r, "*")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(rel)
		if err != nil {
			jsonError(w, "invalid file path", http.StatusBadRequest)
			return
		}
		rel = unescaped
	}
	if rel == "" {
		jsonError(w, "file path is required", http.StatusBadRequest)
		return
	}

	nav, err := sessionFrom(r).Prepare(rel)
	if err != nil {
		errorResponse(w, err)
		return
	}
	f, err := os.Open(nav.Path)
	if err != nil {
		errorResponse(w, err)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		errorResponse(w, err)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// handleText returns the sectioned plain-text projection of a document.
func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	path, ok := s.queryPath(w, r)
	if !ok {
		return
	}
	doc, err := s.extractor.ExtractFile(path)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"path":     path,
		"title":    doc.Title,
		"sections": doc.Sections,
		"text":     doc.PlainText(),
	})
}

func (s *Server) handleDocumentMarkdown(w http.ResponseWriter, r *http.Request) {
	path, ok := s.queryPath(w, r)
	if !ok {
		return
	}
	out, err := export.DocumentMarkdown(s.detector, path)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeMarkdown(w, out)
}

func (s *Server) handleOutlineMarkdown(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	root := sess.Root()
	writeMarkdown(w, export.OutlineMarkdown(filepath.Base(root), sess.Outline(), root))
}

func (s *Server) handleOutlineHTML(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	root := sess.Root()
	page, err := export.OutlineHTML(filepath.Base(root), sess.Outline(), root)
	if err != nil {
		errorResponse(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}

// queryPath resolves ?path= inside the session root and requires a regular
// file.
func (s *Server) queryPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := r.URL.Query().Get("path")
	if raw == "" {
		jsonError(w, "path query parameter is required", http.StatusBadRequest)
		return "", false
	}
	path, err := sessionFrom(r).Resolve(raw)
	if err != nil {
		errorResponse(w, err)
		return "", false
	}
	info, err := os.Stat(path)
	if err != nil {
		errorResponse(w, err)
		return "", false
	}
	if !info.Mode().IsRegular() {
		jsonError(w, "path is not a regular file", http.StatusBadRequest)
		return "", false
	}
	return path, true
}

func writeMarkdown(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}
