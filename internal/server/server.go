// Package server is the loopback asset server behind the capture commands. It
// serves a fixed web root and renders the report documents on request.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/github-recap/internal/gateway"
	"github.com/naka-gawa/github-recap/internal/report"
)

// ReadyPrefix starts the line logged once the listener is bound.
const ReadyPrefix = "Static server running at "

// DefaultPort is used when no port is configured.
const DefaultPort = 4173

const shutdownTimeout = 5 * time.Second

var mimeTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".json": "application/json; charset=utf-8",
	".svg":  "image/svg+xml",
	".png":  "image/png",
}

// ReadyLine is the readiness line for a server bound to port.
func ReadyLine(port int) string {
	return ReadyPrefix + BaseURL(port)
}

// BaseURL is the loopback URL of a server bound to port.
func BaseURL(port int) string {
	return "http://" + net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
}

// Config holds the settings of a Server.
type Config struct {
	Root        string
	Port        int // 0 binds an ephemeral port
	DefaultData string
}

// Server serves a web root on 127.0.0.1.
type Server struct {
	cfg    Config
	fs     afero.Fs
	source gateway.Source
	logger *zap.Logger
	ready  chan struct{}
	port   int
}

// New creates a Server over cfg.Root on fs. Recap documents are loaded from
// the same root.
func New(fs afero.Fs, cfg Config, logger *zap.Logger) *Server {
	if cfg.DefaultData == "" {
		cfg.DefaultData = gateway.DefaultRecapFile
	}
	return &Server{
		cfg:    cfg,
		fs:     fs,
		source: gateway.NewFileSource(fs, cfg.Root, logger),
		logger: logger,
		ready:  make(chan struct{}),
	}
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Port returns the bound port. It is only meaningful after Ready is closed.
func (s *Server) Port() int {
	return s.port
}

// Handler returns the router of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(middleware.GetHead)
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		s.serveReport(w, r, report.Dashboard)
	})
	r.Get("/*", s.serveFile)
	return r
}

// Run binds the listener and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.port = ln.Addr().(*net.TCPAddr).Port
	s.logger.Info(ReadyLine(s.port))
	close(s.ready)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	p, err := gateway.SafeJoin(s.cfg.Root, r.URL.Path)
	if err != nil {
		s.logger.Warn("rejected path", zap.String("path", r.URL.Path))
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if rel, err := filepath.Rel(s.cfg.Root, p); err == nil {
		switch filepath.ToSlash(rel) {
		case report.Dashboard.Document():
			s.serveReport(w, r, report.Dashboard)
			return
		case report.Story.Document():
			s.serveReport(w, r, report.Story)
			return
		}
	}

	info, err := s.fs.Stat(p)
	if err != nil || !info.Mode().IsRegular() {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	f, err := s.fs.Open(p)
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	defer func() { _ = f.Close() }()

	w.Header().Set("Content-Type", contentType(p))
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func (s *Server) serveReport(w http.ResponseWriter, r *http.Request, variant report.Variant) {
	data := r.URL.Query().Get("data")
	if data == "" {
		data = s.cfg.DefaultData
	}

	var view report.View
	recap, err := s.source.FetchRecap(r.Context(), data)
	if err != nil {
		s.logger.Warn("failed to load recap", zap.String("data", data), zap.Error(err))
		view = report.Failure(variant, err)
	} else {
		view = report.Render(recap, variant)
	}

	var buf bytes.Buffer
	if err := view.Write(&buf); err != nil {
		s.logger.Error("failed to render report", zap.String("variant", string(variant)), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", mimeTypes[".html"])
	_, _ = buf.WriteTo(w)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func contentType(p string) string {
	if t, ok := mimeTypes[strings.ToLower(path.Ext(filepath.ToSlash(p)))]; ok {
		return t
	}
	return "application/octet-stream"
}
