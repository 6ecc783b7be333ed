package server

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	allowRemoteEnvKey = "FILEBOX_ALLOW_REMOTE"
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 60 * time.Second

	defaultMaxUploadBytes = int64(32 << 20)
)

// Server wraps HTTP handlers for the filebox API.
type Server struct {
	addr           string
	accounts       *AccountService
	sessions       *SessionService
	files          *FileService
	guard          *AccessGuard
	logger         *slog.Logger
	maxUploadBytes int64
}

// New creates a new server instance.
func New(addr string, accounts *AccountService, sessions *SessionService, files *FileService, guard *AccessGuard, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		addr:           addr,
		accounts:       accounts,
		sessions:       sessions,
		files:          files,
		guard:          guard,
		logger:         logger,
		maxUploadBytes: defaultMaxUploadBytes,
	}
}

// SetMaxUploadBytes overrides the request body limit. Zero or negative
// values keep the default.
func (s *Server) SetMaxUploadBytes(limit int64) {
	if s == nil || limit <= 0 {
		return
	}
	s.maxUploadBytes = limit
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.log().Info("starting server", "addr", s.addr)
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	return server.ListenAndServe()
}

// ValidateListenAddr rejects non-loopback listen hosts unless remote
// access is explicitly enabled.
func ValidateListenAddr(addr string) error {
	if strings.TrimSpace(addr) == "" {
		return fmt.Errorf("listen address is required")
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	if !isAllowedListenHost(host) {
		return fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
	}
	return nil
}

func isAllowedListenHost(host string) bool {
	if host == "" {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(allowRemoteEnvKey)), "true") {
		return true
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
