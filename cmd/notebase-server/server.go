package main

import (
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/stranger0g/NoteBase/internal/quiz"
	"github.com/stranger0g/NoteBase/internal/simulation"
	"github.com/stranger0g/NoteBase/internal/simulation/notifiers"
)

// Server is the HTTP host for the calculators, simulations and quiz proxy.
type Server struct {
	manager     *simulation.Manager
	notifierMgr *simulation.NotificationManager
	quiz        *quiz.Proxy
	pages       *template.Template
	cfg         ServerConfig
	logger      *Logger

	streamsMu sync.Mutex
	streams   map[simulation.ID]*notifiers.WebSocketNotifier
}

// NewServer creates a server from cfg
func NewServer(cfg ServerConfig, logger *Logger) *Server {
	if cfg.FrameIntervalMs <= 0 {
		cfg.FrameIntervalMs = defaultFrameIntervalMs
	}

	notifierMgr := simulation.NewNotificationManagerWithLogger(logger)
	manager := simulation.NewManagerWithLogger(logger)
	manager.SetNotificationManager(notifierMgr)
	manager.SetSnapshotDir(cfg.SnapshotDir)
	if cfg.Seeded {
		manager.SetSeed(cfg.Seed)
	}

	gemini := quiz.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL)

	return &Server{
		manager:     manager,
		notifierMgr: notifierMgr,
		quiz:        quiz.NewProxy(gemini, cfg.AllowedOrigin, logger),
		pages:       parsePages(),
		cfg:         cfg,
		logger:      logger,
		streams:     make(map[simulation.ID]*notifiers.WebSocketNotifier),
	}
}

// Routes returns the handler serving every endpoint
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealth)

	mux.HandleFunc("/api/formula/", s.handleFormulaRoutes)
	mux.HandleFunc("/api/elements", s.handleElements)
	mux.HandleFunc("/api/elements.xlsx", s.handleElementsWorkbook)
	mux.HandleFunc("/api/stoich/", s.handleStoich)
	mux.HandleFunc("/api/atom", s.handleAtom)
	mux.HandleFunc("/api/heating-curve", s.handleHeatingCurve)
	mux.HandleFunc("/api/energetics/delta-h", s.handleDeltaH)
	mux.HandleFunc("/api/electrolysis/cuso4", s.handleElectrolysis)

	mux.HandleFunc("/sims", s.handleListSimulations)
	mux.HandleFunc("/sim/", s.handleSimulationRoutes)

	mux.HandleFunc("/notifiers", s.handleNotifiersRoutes)
	mux.HandleFunc("/notifiers/", s.handleNotifiersRoutes)

	mux.Handle("/functions/quiz-proxy", s.quiz)
	mux.HandleFunc("/api/quiz/prompts/", s.handleQuizPrompt)

	mux.HandleFunc("/auth/", s.handleAuth)

	mux.HandleFunc("/electrolysis", s.handleElectrolysisPage)
	mux.HandleFunc("/", s.handleIndex)

	return s.logRequests(mux)
}

// Close stops every simulation and shuts the notification pipeline down
func (s *Server) Close() error {
	s.manager.StopAll()
	return s.notifierMgr.Close()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debugf("%s %s (%v)", r.Method, r.URL.Path, time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// GET|POST /auth/*
// Accounts are not implemented; the pages only link here.
func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "authentication is not available", http.StatusNotImplemented)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
	}
}

func writeErrorJSON(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// decodeBody reads a JSON body of at most 1 MiB and rejects unknown fields.
func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid json: " + err.Error())
	}
	return nil
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}
