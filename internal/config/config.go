package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dgallion1/chmview/internal/chmfs"
)

type Config struct {
	Host string // Listen address; "" or a non-loopback host requires APIKey
	Port string

	// Auth
	APIKey string

	// Origins allowed to call the API from a browser-based renderer
	CORSOrigins []string

	// Source preloaded at startup, optional
	Root string

	// Session roots must resolve inside this directory ("" = unrestricted)
	RootsDir string

	// Search
	SearchWorkers    int
	SnippetRadius    int
	DocumentPatterns []string

	// Encoding detection
	DetectSampleBytes int

	// Session state
	MaxSessions int
	SessionTTL  time.Duration

	// Attachment text limits
	MaxTextBytes int64

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Host: envOr("HOST", "127.0.0.1"),
		Port: envOr("PORT", "8090"),

		APIKey:      os.Getenv("CHMVIEW_API_KEY"),
		CORSOrigins: envList("CORS_ORIGINS", []string{"http://localhost:*", "http://127.0.0.1:*"}),

		Root:     os.Getenv("CHMVIEW_ROOT"),
		RootsDir: os.Getenv("CHMVIEW_ROOTS_DIR"),

		SearchWorkers:    envInt("SEARCH_WORKERS", 4),
		SnippetRadius:    envInt("SNIPPET_RADIUS", 50),
		DocumentPatterns: envList("DOCUMENT_PATTERNS", []string{"*.htm", "*.html"}),

		DetectSampleBytes: envInt("DETECT_SAMPLE_BYTES", 8192),

		MaxSessions: envInt("MAX_SESSIONS", 32),
		SessionTTL:  envDuration("SESSION_TTL", 1*time.Hour),

		MaxTextBytes: envInt64("MAX_TEXT_BYTES", 20971520), // 20MB

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.SearchWorkers <= 0 {
		cfg.SearchWorkers = 4
	}
	if cfg.SnippetRadius <= 0 {
		cfg.SnippetRadius = 50
	}
	if cfg.DetectSampleBytes <= 0 {
		cfg.DetectSampleBytes = 8192
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 32
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 1 * time.Hour
	}
	if cfg.MaxTextBytes <= 0 {
		cfg.MaxTextBytes = 20971520
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" && !isLoopback(c.Host) {
		return fmt.Errorf("CHMVIEW_API_KEY is required when listening on %q", c.Host)
	}
	if c.RootsDir != "" {
		info, err := os.Stat(c.RootsDir)
		if err != nil {
			return fmt.Errorf("CHMVIEW_ROOTS_DIR: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("CHMVIEW_ROOTS_DIR %s is not a directory", c.RootsDir)
		}
		if c.Root != "" && !chmfs.ContainsResolved(c.RootsDir, c.Root) {
			return fmt.Errorf("CHMVIEW_ROOT %s is outside CHMVIEW_ROOTS_DIR", c.Root)
		}
	}
	if c.Root != "" {
		info, err := os.Stat(c.Root)
		if err != nil {
			return fmt.Errorf("CHMVIEW_ROOT: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("CHMVIEW_ROOT %s is not a directory", c.Root)
		}
	}
	if len(c.DocumentPatterns) == 0 {
		return fmt.Errorf("DOCUMENT_PATTERNS must list at least one pattern")
	}
	for _, p := range c.DocumentPatterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("DOCUMENT_PATTERNS: invalid pattern %q", p)
		}
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma-separated value, dropping empty items.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
