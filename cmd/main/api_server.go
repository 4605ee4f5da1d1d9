package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/CTAG07/Lamina/pkg/site"
)

const (
	actionShutdown = "shutdown"
	actionRebuild  = "rebuild"
)

// VersionInfo defines the structure for build/version information.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

// BuildStatus describes the most recent site build.
type BuildStatus struct {
	FinishedAt time.Time `json:"finished_at"`
	Pages      int       `json:"pages"`
	Written    int       `json:"written"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

// buildState holds the status of the last build for concurrent readers.
type buildState struct {
	mu     sync.RWMutex
	status BuildStatus
}

func (b *buildState) set(stats site.Stats, err error) {
	status := BuildStatus{
		FinishedAt: time.Now().UTC(),
		Pages:      stats.Pages,
		Written:    stats.Written,
		Skipped:    stats.Skipped,
		Failed:     stats.Failed,
		DurationMS: stats.Duration.Milliseconds(),
	}
	if err != nil {
		status.Error = err.Error()
	}
	b.mu.Lock()
	b.status = status
	b.mu.Unlock()
}

func (b *buildState) get() BuildStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.status
}

// ServerAPI holds the dependencies for the server control handlers.
type ServerAPI struct {
	actionChan chan string
	builds     *buildState
	logger     *slog.Logger
}

// NewServerAPI creates a new instance of the ServerAPI.
func NewServerAPI(actionChan chan string, builds *buildState, logger *slog.Logger) *ServerAPI {
	return &ServerAPI{
		actionChan: actionChan,
		builds:     builds,
		logger:     logger,
	}
}

// RegisterRoutes sets up the routing for the /api/server endpoints.
func (a *ServerAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", a.handleHealthCheck)
	mux.HandleFunc("/api/server/version", a.handleVersion)
	mux.HandleFunc("/api/server/build", a.handleBuild)
	mux.HandleFunc("/api/server/rebuild", a.handleRebuild)
	mux.HandleFunc("/api/server/shutdown", a.handleShutdown)
}

func (a *ServerAPI) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleVersion returns the application's build information.
func (a *ServerAPI) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	respondWithJSON(w, http.StatusOK, VersionInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
	})
}

// handleBuild returns the status of the most recent build.
func (a *ServerAPI) handleBuild(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	respondWithJSON(w, http.StatusOK, a.builds.get())
}

// handleRebuild reloads the configuration and templates and rebuilds the
// site, restarting the server.
func (a *ServerAPI) handleRebuild(w http.ResponseWriter, r *http.Request) {
	a.sendAction(w, r, actionRebuild, "Site is rebuilding...")
}

// handleShutdown initiates a graceful shutdown of the server.
func (a *ServerAPI) handleShutdown(w http.ResponseWriter, r *http.Request) {
	a.sendAction(w, r, actionShutdown, "Server is shutting down...")
}

func (a *ServerAPI) sendAction(w http.ResponseWriter, r *http.Request, action, message string) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	a.logger.Warn("Action initiated via API", "action", action)
	respondWithJSON(w, http.StatusAccepted, map[string]string{"message": message})

	go func() {
		a.actionChan <- action
	}()
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		err := json.NewEncoder(w).Encode(payload)
		if err != nil {
			fmt.Printf("ERROR: Failed to encode JSON response: %v\n", err)
		}
	}
}
