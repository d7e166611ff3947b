package main

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/stranger0g/NoteBase/internal/report"
	"github.com/stranger0g/NoteBase/internal/simulation"
	"github.com/stranger0g/NoteBase/internal/simulation/notifiers"
)

const maxTicksPerRequest = 10000

// streamKinds are the events pushed to browsers on /sim/{id}/ws
var streamKinds = []simulation.EventKind{
	simulation.EventFrame,
	simulation.EventReset,
	simulation.EventStarted,
	simulation.EventStopped,
	simulation.EventDiffusionStarted,
}

// extractSimID extracts the simulation ID from a path like "/sim/{id}/..."
// Returns the ID and the remaining path, or empty strings if not found
func extractSimID(path string) (simulation.ID, string) {
	rest, ok := strings.CutPrefix(path, "/sim/")
	if !ok {
		return "", ""
	}
	id, remaining, found := strings.Cut(rest, "/")
	if !found {
		return simulation.ID(id), ""
	}
	return simulation.ID(id), "/" + remaining
}

// handleSimulationRoutes routes /sim/{id}/... to the simulation handlers
func (s *Server) handleSimulationRoutes(w http.ResponseWriter, r *http.Request) {
	id, remainingPath := extractSimID(r.URL.Path)
	if id == "" {
		http.Error(w, "simulation ID is required in path: /sim/{id}/...", http.StatusBadRequest)
		return
	}

	if remainingPath == "/config" && r.Method == http.MethodPost {
		s.handleConfig(w, r, id)
		return
	}
	if remainingPath == "/restore" && r.Method == http.MethodPost {
		s.handleRestore(w, r, id)
		return
	}

	sim, exists := s.manager.Get(id)
	if !exists {
		http.Error(w, "simulation not found", http.StatusNotFound)
		return
	}

	switch {
	case remainingPath == "/tick" && r.Method == http.MethodPost:
		s.handleTick(w, r, sim)
	case remainingPath == "/start" && r.Method == http.MethodPost:
		s.handleStart(w, r, sim)
	case remainingPath == "/stop" && r.Method == http.MethodPost:
		sim.Stop()
		writeJSON(w, http.StatusOK, map[string]any{"status": "stopped", "tick": sim.Tick()})
	case remainingPath == "/diffuse" && r.Method == http.MethodPost:
		s.handleDiffuse(w, sim)
	case remainingPath == "/temperature" && r.Method == http.MethodPost:
		s.handleTemperature(w, r, sim)
	case remainingPath == "/frame" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, sim.Frame())
	case remainingPath == "/stats" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, sim.Stats())
	case remainingPath == "/export.xlsx" && r.Method == http.MethodGet:
		s.handleExport(w, sim)
	case remainingPath == "/snapshot" && r.Method == http.MethodPost:
		s.handleSaveSnapshot(w, sim)
	case remainingPath == "/snapshot" && r.Method == http.MethodGet:
		s.handleGetSnapshot(w, sim)
	case remainingPath == "/subscribe" && r.Method == http.MethodPost:
		s.handleSubscribe(w, r, sim)
	case remainingPath == "/unsubscribe" && r.Method == http.MethodPost:
		s.handleUnsubscribe(w, r, sim)
	case remainingPath == "/ws" && r.Method == http.MethodGet:
		s.handleStream(w, r, sim)
	case remainingPath == "" && r.Method == http.MethodDelete:
		s.handleDeleteSimulation(w, id)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// GET /sims
func (s *Server) handleListSimulations(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"simulations": s.manager.List()})
}

// POST /sim/{id}/config
// Body: simulation.Config JSON
// Creates the simulation, or resets it when it already exists
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request, id simulation.ID) {
	var cfg simulation.Config
	if err := decodeBody(r, &cfg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sim, exists := s.manager.Get(id)
	if exists {
		if err := sim.Reset(cfg); err != nil {
			writeConfigError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sim.Frame())
		return
	}

	sim, err := s.manager.Create(id, cfg)
	if err != nil {
		if errors.Is(err, simulation.ErrExists) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		writeConfigError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sim.Frame())
}

func writeConfigError(w http.ResponseWriter, err error) {
	var verr *simulation.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  verr.Error(),
			"issues": verr.Issues,
		})
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}

// POST /sim/{id}/tick?n=10
func (s *Server) handleTick(w http.ResponseWriter, r *http.Request, sim *simulation.Simulation) {
	n := 1
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > maxTicksPerRequest {
			http.Error(w, "n must be an integer between 1 and "+strconv.Itoa(maxTicksPerRequest), http.StatusBadRequest)
			return
		}
		n = parsed
	}

	for i := 0; i < n; i++ {
		sim.Step()
	}
	writeJSON(w, http.StatusOK, map[string]any{"tick": sim.Tick()})
}

// POST /sim/{id}/start?interval=16
// interval is in milliseconds and defaults to the configured frame interval
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request, sim *simulation.Simulation) {
	ms := s.cfg.FrameIntervalMs
	if v := r.URL.Query().Get("interval"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid interval: "+v, http.StatusBadRequest)
			return
		}
		ms = parsed
	}

	sim.Run(time.Duration(ms) * time.Millisecond)
	writeJSON(w, http.StatusOK, map[string]any{"status": "running", "interval_ms": ms})
}

// POST /sim/{id}/diffuse
// Lifts the barrier of a diffusion simulation
func (s *Server) handleDiffuse(w http.ResponseWriter, sim *simulation.Simulation) {
	if err := sim.StartDiffusion(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, sim.Frame())
}

type temperatureRequest struct {
	Temperature float64 `json:"temperature"`
}

// POST /sim/{id}/temperature
// Body: {"temperature": 4}
func (s *Server) handleTemperature(w http.ResponseWriter, r *http.Request, sim *simulation.Simulation) {
	var req temperatureRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := sim.SetTemperature(req.Temperature); err != nil {
		writeErrorJSON(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"temperature": sim.Temperature()})
}

// GET /sim/{id}/export.xlsx
func (s *Server) handleExport(w http.ResponseWriter, sim *simulation.Simulation) {
	var buf bytes.Buffer
	if err := report.WriteFrameWorkbook(&buf, sim.Frame()); err != nil {
		s.logger.Errorf("Failed to export simulation: sim_id=%s error=%v", sim.ID(), err)
		http.Error(w, "cannot build workbook: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeWorkbook(w, string(sim.ID())+".xlsx", buf.Bytes())
}

// POST /sim/{id}/snapshot
// Triggers a synchronous snapshot save
func (s *Server) handleSaveSnapshot(w http.ResponseWriter, sim *simulation.Simulation) {
	if s.cfg.SnapshotDir == "" {
		http.Error(w, "snapshot directory not configured", http.StatusInternalServerError)
		return
	}

	if err := sim.SaveSnapshot(); err != nil {
		s.logger.Errorf("Failed to save snapshot: sim_id=%s error=%v", sim.ID(), err)
		http.Error(w, "failed to save snapshot: "+err.Error(), http.StatusInternalServerError)
		return
	}

	path := sim.SnapshotPath()
	s.logger.Debugf("Snapshot saved: sim_id=%s path=%s", sim.ID(), path)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "path": path})
}

// GET /sim/{id}/snapshot
// Returns the raw snapshot JSON if it exists
func (s *Server) handleGetSnapshot(w http.ResponseWriter, sim *simulation.Simulation) {
	if s.cfg.SnapshotDir == "" {
		http.Error(w, "snapshot directory not configured", http.StatusInternalServerError)
		return
	}

	data, err := os.ReadFile(sim.SnapshotPath())
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "snapshot not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to read snapshot: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// POST /sim/{id}/restore
// Body: snapshot JSON, or empty to restore from the saved snapshot file
func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request, id simulation.ID) {
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, 16<<20))
	if err != nil {
		http.Error(w, "cannot read body: "+err.Error(), http.StatusBadRequest)
		return
	}

	var snapshot simulation.Snapshot
	if len(bytes.TrimSpace(data)) == 0 {
		if s.cfg.SnapshotDir == "" {
			http.Error(w, "snapshot directory not configured", http.StatusInternalServerError)
			return
		}
		path := filepath.Join(s.cfg.SnapshotDir, string(id)+".snapshot.json")
		snapshot, err = simulation.LoadSnapshot(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				http.Error(w, "snapshot not found", http.StatusNotFound)
				return
			}
			writeConfigError(w, err)
			return
		}
	} else if snapshot, err = simulation.DecodeSnapshotJSON(data); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	snapshot.SimulationID = id

	sim, err := s.manager.Restore(snapshot)
	if err != nil {
		writeConfigError(w, err)
		return
	}
	s.logger.Debugf("Restore request served: sim_id=%s", id)
	writeJSON(w, http.StatusOK, sim.Frame())
}

type subscribeRequest struct {
	NotifierID string                 `json:"notifier_id"`
	Kinds      []simulation.EventKind `json:"kinds,omitempty"`
}

// POST /sim/{id}/subscribe
// Body: {"notifier_id": "hook", "kinds": ["frame"]}
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request, sim *simulation.Simulation) {
	var req subscribeRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, ok := s.notifierMgr.GetNotifier(req.NotifierID); !ok {
		http.Error(w, "notifier not found: "+req.NotifierID, http.StatusNotFound)
		return
	}
	sim.Subscribe(req.NotifierID, req.Kinds...)
	writeJSON(w, http.StatusOK, map[string]any{"subscribers": sim.Subscribers()})
}

// POST /sim/{id}/unsubscribe
// Body: {"notifier_id": "hook"}
func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request, sim *simulation.Simulation) {
	var req subscribeRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sim.Unsubscribe(req.NotifierID)
	writeJSON(w, http.StatusOK, map[string]any{"subscribers": sim.Subscribers()})
}

// GET /sim/{id}/ws
// Upgrades to a websocket streaming the simulation's events
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request, sim *simulation.Simulation) {
	stream, err := s.streamFor(sim)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	stream.ServeHTTP(w, r)
}

func (s *Server) streamFor(sim *simulation.Simulation) (*notifiers.WebSocketNotifier, error) {
	s.streamsMu.Lock()
	defer s.streamsMu.Unlock()

	if stream, ok := s.streams[sim.ID()]; ok {
		return stream, nil
	}

	stream := notifiers.NewWebSocketNotifier("ws:" + string(sim.ID()))
	if s.cfg.AllowedOrigin != "" && s.cfg.AllowedOrigin != "*" {
		origin := s.cfg.AllowedOrigin
		stream.SetCheckOrigin(func(r *http.Request) bool {
			o := r.Header.Get("Origin")
			return o == "" || o == origin
		})
	}
	if err := s.notifierMgr.RegisterNotifier(stream); err != nil {
		stream.Close()
		return nil, err
	}
	sim.Subscribe(stream.ID(), streamKinds...)
	s.streams[sim.ID()] = stream
	return stream, nil
}

func (s *Server) closeStream(id simulation.ID) {
	s.streamsMu.Lock()
	stream, ok := s.streams[id]
	delete(s.streams, id)
	s.streamsMu.Unlock()

	if ok {
		if err := s.notifierMgr.UnregisterNotifier(stream.ID()); err != nil {
			s.logger.Warnf("Failed to unregister stream: sim_id=%s error=%v", id, err)
		}
	}
}

// DELETE /sim/{id}
func (s *Server) handleDeleteSimulation(w http.ResponseWriter, id simulation.ID) {
	if err := s.manager.Delete(id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.closeStream(id)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("simulation deleted"))
}

// handleNotifiersRoutes handles notifier management endpoints
func (s *Server) handleNotifiersRoutes(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/notifiers" && r.Method == http.MethodGet:
		s.handleListNotifiers(w, r)
	case r.URL.Path == "/notifiers" && r.Method == http.MethodPost:
		s.handleRegisterNotifier(w, r)
	case strings.HasPrefix(r.URL.Path, "/notifiers/") && r.Method == http.MethodDelete:
		s.handleUnregisterNotifier(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

type notifierInfo struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// GET /notifiers
func (s *Server) handleListNotifiers(w http.ResponseWriter, _ *http.Request) {
	ids := s.notifierMgr.ListNotifiers()
	list := make([]notifierInfo, 0, len(ids))
	for _, id := range ids {
		if n, ok := s.notifierMgr.GetNotifier(id); ok {
			list = append(list, notifierInfo{ID: id, Type: n.Type()})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifiers": list})
}

// POST /notifiers
// Body: { "type": "webhook", "id": "my-webhook", "config": { "url": "http://..." },
// "kinds": ["created"], "all_simulations": true }
type registerNotifierRequest struct {
	Type           string                 `json:"type"`
	ID             string                 `json:"id"`
	Config         map[string]any         `json:"config"`
	Kinds          []simulation.EventKind `json:"kinds,omitempty"`
	AllSimulations bool                   `json:"all_simulations,omitempty"`
}

func (s *Server) handleRegisterNotifier(w http.ResponseWriter, r *http.Request) {
	var req registerNotifierRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}
	if strings.HasPrefix(req.ID, "ws:") {
		http.Error(w, "notifier IDs starting with ws: are reserved", http.StatusBadRequest)
		return
	}

	var notifier simulation.Notifier
	switch req.Type {
	case "webhook":
		url, ok := req.Config["url"].(string)
		if !ok || url == "" {
			http.Error(w, "webhook URL is required", http.StatusBadRequest)
			return
		}
		wh := notifiers.NewWebhookNotifier(req.ID, url)
		if headers, ok := req.Config["headers"].(map[string]any); ok {
			for k, v := range headers {
				if str, ok := v.(string); ok {
					wh.SetHeader(k, str)
				}
			}
		}
		notifier = wh
	default:
		http.Error(w, "unknown notifier type: "+req.Type, http.StatusBadRequest)
		return
	}

	if err := s.notifierMgr.RegisterNotifier(notifier); err != nil {
		http.Error(w, "cannot register notifier: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.AllSimulations {
		s.manager.SubscribeAll(req.ID, req.Kinds...)
	}

	s.logger.Infof("Notifier registered: id=%s type=%s", req.ID, req.Type)
	writeJSON(w, http.StatusCreated, notifierInfo{ID: req.ID, Type: notifier.Type()})
}

// DELETE /notifiers/{id}
func (s *Server) handleUnregisterNotifier(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/notifiers/")
	if id == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}

	if err := s.notifierMgr.UnregisterNotifier(id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.manager.UnsubscribeAll(id)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier unregistered"))
}
