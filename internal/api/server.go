package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dgallion1/chmview/internal/config"
	"github.com/dgallion1/chmview/internal/parser"
	"github.com/dgallion1/chmview/internal/session"
	"github.com/dgallion1/chmview/internal/textenc"
)

// Server is the HTTP API the display shell talks to.
type Server struct {
	router    chi.Router
	sessions  *session.Store
	extractor *parser.Extractor
	detector  textenc.Detector
	log       *slog.Logger
	cfg       config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(sessions *session.Store, extractor *parser.Extractor, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		sessions:  sessions,
		extractor: extractor,
		detector:  extractor.Detector,
		log:       log,
		cfg:       cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Get("/api/sessions", s.handleListSessions)
		r.Post("/api/sessions", s.handleCreateSession)

		r.Route("/api/sessions/{sessionID}", func(r chi.Router) {
			r.Use(s.sessionContext)

			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/reload", s.handleReload)
			r.Get("/outline", s.handleOutline)

			r.Post("/search", s.handleSearch)
			r.Delete("/search", s.handleClearSearch)

			r.Post("/navigate", s.handleNavigate)
			r.Post("/loaded", s.handleLoaded)
			r.Get("/highlight.js", s.handleHighlightScript)

			r.Get("/files/*", s.handleFile)
			r.Get("/text", s.handleText)
			r.Get("/markdown", s.handleDocumentMarkdown)
			r.Get("/outline.md", s.handleOutlineMarkdown)
			r.Get("/outline.html", s.handleOutlineHTML)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}
