// Package api exposes the capture engine over HTTP for scripting and
// remote triggering.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/keysnap/keysnap/internal/capture"
	"github.com/keysnap/keysnap/internal/config"
	"github.com/keysnap/keysnap/internal/logger"
)

// maxRecent bounds the in-memory history of saved captures.
const maxRecent = 32

// CaptureService is the engine surface the API exposes.
type CaptureService interface {
	CaptureEvent(target capture.Window, composite bool) (*capture.Result, error)
	Windows() ([]capture.WindowInfo, error)
	OutputDir() string
}

// Server is the HTTP API server.
type Server struct {
	router    *mux.Router
	service   CaptureService
	configMgr *config.Manager
	upgrader  websocket.Upgrader
	log       *zerolog.Logger

	mu     sync.Mutex
	recent []capture.Result
	subs   map[chan capture.Result]struct{}
}

// NewServer creates an API server around the capture service.
func NewServer(service CaptureService, configMgr *config.Manager) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		service:   service,
		configMgr: configMgr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for development
			},
		},
		log:  logger.WithComponent("api"),
		subs: make(map[chan capture.Result]struct{}),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Capturing
	api.HandleFunc("/windows", s.handleWindows).Methods("GET")
	api.HandleFunc("/capture", s.handleCapture).Methods("POST")
	api.HandleFunc("/captures", s.handleCaptures).Methods("GET")
	api.HandleFunc("/events", s.handleEvents)

	// Configuration
	api.HandleFunc("/config", s.handleGetConfig).Methods("GET")
	api.HandleFunc("/config", s.handleUpdateConfig).Methods("PUT")

	// Health check
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	s.router.PathPrefix("/").HandlerFunc(s.handleIndex)
}

// Handler returns the server's root handler, CORS included.
func (s *Server) Handler() http.Handler {
	return s.enableCORS(s.router)
}

// Start serves the API on the given port (blocking).
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.log.Info().Str("addr", addr).Msg("Starting API server")
	return http.ListenAndServe(addr, s.Handler())
}

// RecordResult stores a saved capture in the recent history and fans it
// out to event stream subscribers. Wire it to the engine's saved hook.
func (s *Server) RecordResult(res capture.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recent = append(s.recent, res)
	if len(s.recent) > maxRecent {
		s.recent = s.recent[len(s.recent)-maxRecent:]
	}
	for ch := range s.subs {
		select {
		case ch <- res:
		default:
		}
	}
}

func (s *Server) subscribe() chan capture.Result {
	ch := make(chan capture.Result, 8)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Server) unsubscribe(ch chan capture.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[ch]; ok {
		delete(s.subs, ch)
		close(ch)
	}
}

// enableCORS adds CORS headers
func (s *Server) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// HTTP Handlers

func (s *Server) handleWindows(w http.ResponseWriter, r *http.Request) {
	windows, err := s.service.Windows()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(windows)
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	var req struct {
		// Window is a window id, decimal or 0x-prefixed hex. Empty
		// captures the active window.
		Window    string `json:"window"`
		Composite bool   `json:"composite"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	target := capture.None
	if req.Window != "" {
		id, err := strconv.ParseUint(req.Window, 0, 32)
		if err != nil {
			http.Error(w, fmt.Sprintf("bad window id %q", req.Window), http.StatusBadRequest)
			return
		}
		target = capture.Window(id)
	}

	res, err := s.service.CaptureEvent(target, req.Composite)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, capture.ErrNoWindow) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func (s *Server) handleCaptures(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	recent := make([]capture.Result, len(s.recent))
	copy(recent, s.recent)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(recent)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	updates := s.subscribe()
	defer s.unsubscribe(updates)

	for res := range updates {
		if err := conn.WriteJSON(res); err != nil {
			s.log.Debug().Err(err).Msg("WebSocket write failed")
			return
		}
	}
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.configMgr.Get()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cfg)
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg config.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.configMgr.Update(&cfg); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":     "healthy",
		"output_dir": s.service.OutputDir(),
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	html := `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>keysnap</title>
</head>
<body>
    <h1>keysnap</h1>
    <p>Hotkey window capture daemon.</p>
    <ul>
        <li><a href="/api/health">/api/health</a> - health check</li>
        <li><a href="/api/windows">/api/windows</a> - capturable windows</li>
        <li><a href="/api/captures">/api/captures</a> - recent captures</li>
        <li><a href="/api/config">/api/config</a> - configuration</li>
    </ul>
    <p>POST /api/capture with <code>{"window": "0x...", "composite": false}</code> to trigger a capture.</p>
</body>
</html>`

	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(html))
}
