package api

import (
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/dgallion1/chmview/internal/chmfs"
	"github.com/dgallion1/chmview/internal/highlight"
	"github.com/dgallion1/chmview/internal/session"
)

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sessions": s.sessions.List()})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Root string `json:"root"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Root == "" {
		jsonError(w, "root is required", http.StatusBadRequest)
		return
	}
	sess, err := s.sessions.Create(r.Context(), req.Root)
	if err != nil {
		s.log.Warn("create session failed", "root", req.Root, "error", err)
		if statusFor(err) == http.StatusInternalServerError {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionResponse(sessionFrom(r)))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(sessionFrom(r).ID); err != nil {
		errorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := sess.Reload(r.Context()); err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(sess))
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"searching": sess.Keyword() != "",
		"nodes":     sess.Outline(),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keyword string `json:"keyword"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	out, err := sessionFrom(r).Search(r.Context(), req.Keyword)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"keyword": out.Keyword,
		"total":   out.Total,
		"scanned": out.Scanned,
		"results": out.Results,
		"outline": out.Outline(),
	})
}

func (s *Server) handleClearSearch(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.ClearSearch()
	writeJSON(w, http.StatusOK, map[string]any{
		"searching": false,
		"nodes":     sess.Outline(),
	})
}

// handleNavigate prepares a target for the renderer. An empty path selects
// the source's home page.
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	sess := sessionFrom(r)
	if req.Path == "" {
		home, ok := sess.HomePage()
		if !ok {
			jsonError(w, "source has no home page", http.StatusNotFound)
			return
		}
		req.Path = home
	}
	nav, err := sess.Navigate(req.Path)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"path":      nav.Path,
		"url":       fileURL(sess.ID, sess.Root(), nav.Path),
		"encoding":  nav.Encoding,
		"converted": nav.Converted,
	})
}

// handleLoaded receives the renderer's load-finished signal and answers with
// the highlight script to run, or 204 when nothing needs highlighting.
func (s *Server) handleLoaded(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OK bool `json:"ok"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	script, ok := sessionFrom(r).DocumentLoaded(req.OK)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeScript(w, script)
}

func (s *Server) handleHighlightScript(w http.ResponseWriter, r *http.Request) {
	keyword := sessionFrom(r).Keyword()
	if q := r.URL.Query(); q.Has("keyword") {
		keyword = q.Get("keyword")
		if strings.TrimSpace(keyword) == "" {
			keyword = ""
		}
	}
	writeScript(w, highlight.Script(keyword))
}

func writeScript(w http.ResponseWriter, script string) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(script))
}

type sessionView struct {
	session.Summary
	HomeURL string `json:"home_url,omitempty"`
}

func sessionResponse(sess *session.Session) sessionView {
	sum := sess.Summary()
	v := sessionView{Summary: sum}
	if sum.HomePage != "" {
		v.HomeURL = fileURL(sum.ID, sum.Root, sum.HomePage)
	}
	return v
}

// fileURL is the files/ route serving path, with each segment escaped.
func fileURL(id, root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || !chmfs.Contains(root, path) {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return "/api/sessions/" + url.PathEscape(id) + "/files/" + strings.Join(parts, "/")
}
