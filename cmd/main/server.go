package main

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/CTAG07/Lamina/pkg/templating"
)

// Server serves the built site and the control API from one mux.
type Server struct {
	config      *Config
	logger      *slog.Logger
	tm          *templating.Templates
	templateAPI *TemplateAPI
	serverAPI   *ServerAPI
	mux         *http.ServeMux
}

// NewServer wires the site file server and the API routes.
func NewServer(config *Config, logger *slog.Logger, tm *templating.Templates, builds *buildState, actionChan chan string) *Server {
	server := &Server{
		config:      config,
		logger:      logger,
		tm:          tm,
		templateAPI: NewTemplateAPI(tm, config.Site, logger),
		serverAPI:   NewServerAPI(actionChan, builds, logger),
		mux:         http.NewServeMux(),
	}

	server.templateAPI.RegisterRoutes(server.mux)
	server.serverAPI.RegisterRoutes(server.mux)

	files := http.FileServer(http.Dir(config.Build.OutputDir))
	server.mux.HandleFunc("/favicon.ico", server.handleFavicon(files))
	server.mux.Handle("/", server.withSiteHeaders(files))
	return server
}

// Handler returns the root handler with request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

func (s *Server) withSiteHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.setSiteHeaders(w)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) setSiteHeaders(w http.ResponseWriter) {
	for k, v := range s.config.Serve.Headers {
		w.Header().Set(k, v)
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("Served request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"remote_addr", getClientIP(r),
			"duration", time.Since(start))
	})
}

// handleFavicon serves the site's favicon if it has one and answers with no
// content otherwise, so browsers do not log a 404 on every page.
func (s *Server) handleFavicon(files http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := http.Dir(s.config.Build.OutputDir).Open("/favicon.ico")
		if err != nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_ = f.Close()
		s.withSiteHeaders(files).ServeHTTP(w, r)
	}
}

func getClientIP(r *http.Request) string {

	// The X-Real-Ip header contains the forwarded IP in some cases (like from nginx)
	realIP := r.Header.Get("X-Real-Ip")
	if realIP != "" {
		return realIP
	}

	// The X-Forwarded-For header can contain a comma-separated list of IPs.
	// The first IP in the list is the original client IP.
	forwardedFor := r.Header.Get("X-Forwarded-For")
	if forwardedFor != "" {
		ips := strings.Split(forwardedFor, ",")
		return strings.TrimSpace(ips[0])
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
