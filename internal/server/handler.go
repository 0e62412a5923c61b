// Package server exposes the capability container over HTTP: REST
// endpoints for content, settings, and reading control, plus SSE event
// streaming. Handlers resolve capabilities lazily, so the API surface
// degrades per-capability instead of failing to boot.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cuebird/cuebird/internal/container"
	"github.com/cuebird/cuebird/internal/content"
	"github.com/cuebird/cuebird/internal/log"
	"github.com/cuebird/cuebird/internal/pubsub"
	"github.com/cuebird/cuebird/internal/service"
)

// Handler provides HTTP endpoints over a composed container.
type Handler struct {
	c      *container.Container
	broker *pubsub.Broker[map[string]any]
}

// NewHandler creates an API handler over the given container.
func NewHandler(c *container.Container) *Handler {
	return &Handler{
		c:      c,
		broker: pubsub.NewBroker[map[string]any](),
	}
}

// Close shuts down the event broker, ending any open SSE streams.
func (h *Handler) Close() {
	h.broker.Close()
}

// Routes returns an http.Handler with all API routes registered.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/content/load", h.LoadContent)
	mux.HandleFunc("POST /api/content/parse", h.ParseContent)
	mux.HandleFunc("POST /api/content/analyze", h.AnalyzeContent)

	mux.HandleFunc("GET /api/settings", h.GetSettings)
	mux.HandleFunc("POST /api/settings", h.SetSetting)

	mux.HandleFunc("GET /api/styles", h.GetStylesheet)
	mux.HandleFunc("POST /api/styles/theme", h.SetTheme)

	mux.HandleFunc("POST /api/reading/metrics", h.ReadingMetrics)
	mux.HandleFunc("POST /api/reading/control", h.ReadingControl)

	mux.HandleFunc("GET /api/sessions", h.ListSessions)

	mux.HandleFunc("GET /events", h.StreamEvents)
	mux.HandleFunc("GET /health", h.Health)

	return mux
}

// === Request/Response Types ===

// LoadContentRequest is the request body for loading a script.
type LoadContentRequest struct {
	Path string `json:"path"`
}

// LoadContentResponse is the response body for a loaded script.
type LoadContentResponse struct {
	Path  string               `json:"path"`
	HTML  string               `json:"html"`
	Stats service.ContentStats `json:"stats"`
}

// ParseContentRequest is the request body for parsing raw markdown.
type ParseContentRequest struct {
	Content string `json:"content"`
}

// ParseContentResponse is the response body for parsed markdown.
type ParseContentResponse struct {
	HTML      string `json:"html"`
	WordCount int    `json:"word_count"`
}

// AnalyzeContentRequest is the request body for analyzing HTML.
type AnalyzeContentRequest struct {
	HTML string `json:"html"`
}

// SettingsResponse is the response body for listing settings.
type SettingsResponse struct {
	Settings map[string]any `json:"settings"`
}

// SetSettingRequest is the request body for storing a preference.
type SetSettingRequest struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// StylesheetResponse is the response body for a component stylesheet.
type StylesheetResponse struct {
	Theme     string            `json:"theme"`
	Component string            `json:"component"`
	CSS       string            `json:"css"`
	Variables map[string]string `json:"variables"`
}

// SetThemeRequest is the request body for switching themes.
type SetThemeRequest struct {
	Theme string `json:"theme"`
}

// ReadingMetricsRequest is the request body for a metrics snapshot.
// WordCount and Progress update the tracker before the snapshot when
// provided.
type ReadingMetricsRequest struct {
	WordCount *int     `json:"word_count,omitempty"`
	Progress  *float64 `json:"progress,omitempty"`
}

// ReadingMetricsResponse is the response body for a metrics snapshot.
type ReadingMetricsResponse struct {
	ElapsedSeconds   float64 `json:"elapsed_seconds"`
	RemainingSeconds float64 `json:"remaining_seconds"`
	AverageWPM       float64 `json:"average_wpm"`
}

// ReadingControlRequest is the request body for driving the scroll
// controller. Action is one of start, pause, resume, stop, jump.
type ReadingControlRequest struct {
	Action   string   `json:"action"`
	Position *float64 `json:"position,omitempty"`
	Speed    *float64 `json:"speed,omitempty"`
}

// ReadingControlResponse is the response body after a control action.
type ReadingControlResponse struct {
	State    string  `json:"state"`
	Progress float64 `json:"progress"`
	Speed    float64 `json:"speed"`
}

// SessionResponse is the response body for one reading session.
type SessionResponse struct {
	GUID            string     `json:"guid"`
	FilePath        string     `json:"file_path"`
	WordCount       int        `json:"word_count"`
	Progress        float64    `json:"progress"`
	AvgWPM          float64    `json:"avg_wpm"`
	DurationSeconds float64    `json:"duration_seconds"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
}

// ListSessionsResponse is the response body for listing sessions.
type ListSessionsResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Total    int               `json:"total"`
}

// HealthResponse is the response body for the health endpoint.
type HealthResponse struct {
	Status       string   `json:"status"`
	Capabilities []string `json:"capabilities"`
}

// ErrorResponse is the response body for errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// === Handlers ===

// Health reports the registered capability set.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	caps := h.c.Capabilities()
	names := make([]string, len(caps))
	for i, id := range caps {
		names[i] = string(id)
	}
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Capabilities: names})
}

// LoadContent loads a script from disk, renders it, and returns the
// HTML with its stats.
// POST /api/content/load
func (h *Handler) LoadContent(w http.ResponseWriter, r *http.Request) {
	var req LoadContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body", err.Error())
		return
	}
	if req.Path == "" {
		h.writeError(w, http.StatusBadRequest, "validation_error", "path is required", "")
		return
	}

	loader, ok := resolve[service.FileLoader](h, w, service.CapFileLoader)
	if !ok {
		return
	}
	parser, ok := resolve[service.ContentParser](h, w, service.CapContentParser)
	if !ok {
		return
	}
	analyzer, ok := resolve[service.ContentAnalyzer](h, w, service.CapContentAnalyzer)
	if !ok {
		return
	}

	raw, err := loader.Load(req.Path)
	switch {
	case errors.Is(err, content.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "not_found", "Script not found", err.Error())
		return
	case errors.Is(err, content.ErrUnsupportedFormat):
		h.writeError(w, http.StatusBadRequest, "unsupported_format", "Unsupported script format", err.Error())
		return
	case err != nil:
		h.writeError(w, http.StatusInternalServerError, "load_failed", "Failed to load script", err.Error())
		return
	}

	html, err := parser.Parse(raw)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "parse_failed", "Failed to parse script", err.Error())
		return
	}

	h.publish(pubsub.ContentChangedEvent, map[string]any{"path": req.Path})
	h.writeJSON(w, http.StatusOK, LoadContentResponse{
		Path:  req.Path,
		HTML:  html,
		Stats: analyzer.Analyze(html),
	})
}

// ParseContent renders raw markdown to HTML.
// POST /api/content/parse
func (h *Handler) ParseContent(w http.ResponseWriter, r *http.Request) {
	var req ParseContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body", err.Error())
		return
	}

	parser, ok := resolve[service.ContentParser](h, w, service.CapContentParser)
	if !ok {
		return
	}

	html, err := parser.Parse(req.Content)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "parse_failed", "Failed to parse content", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, ParseContentResponse{
		HTML:      html,
		WordCount: parser.WordCount(req.Content),
	})
}

// AnalyzeContent computes stats for already-rendered HTML.
// POST /api/content/analyze
func (h *Handler) AnalyzeContent(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body", err.Error())
		return
	}

	analyzer, ok := resolve[service.ContentAnalyzer](h, w, service.CapContentAnalyzer)
	if !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, analyzer.Analyze(req.HTML))
}

// GetSettings lists all stored preferences.
// GET /api/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	store, ok := resolve[service.SettingsStore](h, w, service.CapSettingsStore)
	if !ok {
		return
	}

	values := make(map[string]any)
	for _, key := range store.Keys() {
		values[key] = store.Get(key, nil)
	}
	h.writeJSON(w, http.StatusOK, SettingsResponse{Settings: values})
}

// SetSetting stores one preference.
// POST /api/settings
func (h *Handler) SetSetting(w http.ResponseWriter, r *http.Request) {
	var req SetSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body", err.Error())
		return
	}
	if req.Key == "" {
		h.writeError(w, http.StatusBadRequest, "validation_error", "key is required", "")
		return
	}

	store, ok := resolve[service.SettingsStore](h, w, service.CapSettingsStore)
	if !ok {
		return
	}

	store.Set(req.Key, req.Value)
	h.publish(pubsub.SettingsEvent, map[string]any{"key": req.Key, "value": req.Value})
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetStylesheet returns the CSS for a component under the active theme.
// GET /api/styles?component=prompter
func (h *Handler) GetStylesheet(w http.ResponseWriter, r *http.Request) {
	provider, ok := resolve[service.StyleProvider](h, w, service.CapStyleProvider)
	if !ok {
		return
	}

	component := r.URL.Query().Get("component")
	h.writeJSON(w, http.StatusOK, StylesheetResponse{
		Theme:     provider.Theme(),
		Component: component,
		CSS:       provider.Stylesheet(component),
		Variables: provider.ThemeVariables(),
	})
}

// SetTheme switches the active theme.
// POST /api/styles/theme
func (h *Handler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req SetThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body", err.Error())
		return
	}
	if req.Theme == "" {
		h.writeError(w, http.StatusBadRequest, "validation_error", "theme is required", "")
		return
	}

	provider, ok := resolve[service.StyleProvider](h, w, service.CapStyleProvider)
	if !ok {
		return
	}

	if err := provider.SetTheme(req.Theme); err != nil {
		h.writeError(w, http.StatusBadRequest, "validation_error", err.Error(), "")
		return
	}

	h.publish(pubsub.SettingsEvent, map[string]any{"theme": req.Theme})
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "theme": req.Theme})
}

// ReadingMetrics updates the pace tracker and returns a snapshot.
// POST /api/reading/metrics
func (h *Handler) ReadingMetrics(w http.ResponseWriter, r *http.Request) {
	var req ReadingMetricsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body", err.Error())
		return
	}

	metrics, ok := resolve[service.ReadingMetrics](h, w, service.CapReadingMetrics)
	if !ok {
		return
	}

	if req.WordCount != nil {
		if err := metrics.SetWordCount(*req.WordCount); err != nil {
			h.writeError(w, http.StatusBadRequest, "validation_error", err.Error(), "")
			return
		}
	}
	if req.Progress != nil {
		if err := metrics.SetProgress(*req.Progress); err != nil {
			h.writeError(w, http.StatusBadRequest, "validation_error", err.Error(), "")
			return
		}
	}

	h.writeJSON(w, http.StatusOK, ReadingMetricsResponse{
		ElapsedSeconds:   metrics.Elapsed().Seconds(),
		RemainingSeconds: metrics.Remaining().Seconds(),
		AverageWPM:       metrics.AverageWPM(),
	})
}

// ReadingControl drives the scroll controller state machine.
// POST /api/reading/control
func (h *Handler) ReadingControl(w http.ResponseWriter, r *http.Request) {
	var req ReadingControlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body", err.Error())
		return
	}

	ctrl, ok := resolve[service.ReadingController](h, w, service.CapReadingController)
	if !ok {
		return
	}
	metrics, ok := resolve[service.ReadingMetrics](h, w, service.CapReadingMetrics)
	if !ok {
		return
	}

	if req.Speed != nil {
		ctrl.SetSpeed(*req.Speed)
	}

	switch req.Action {
	case "start":
		ctrl.Start()
		metrics.StartReading()
	case "pause":
		ctrl.Pause()
		metrics.PauseReading()
	case "resume":
		ctrl.Resume()
		metrics.ResumeReading()
	case "stop":
		ctrl.Stop()
		metrics.StopReading()
	case "jump":
		if req.Position == nil {
			h.writeError(w, http.StatusBadRequest, "validation_error", "position is required for jump", "")
			return
		}
		if err := ctrl.JumpTo(*req.Position); err != nil {
			h.writeError(w, http.StatusBadRequest, "validation_error", err.Error(), "")
			return
		}
	case "":
		// Speed-only update is a valid request.
		if req.Speed == nil {
			h.writeError(w, http.StatusBadRequest, "validation_error", "action is required", "")
			return
		}
	default:
		h.writeError(w, http.StatusBadRequest, "validation_error",
			fmt.Sprintf("unknown action %q", req.Action), "")
		return
	}

	resp := ReadingControlResponse{
		State:    string(ctrl.State()),
		Progress: ctrl.Progress(),
		Speed:    ctrl.Speed(),
	}
	h.publish(pubsub.ReadingEvent, map[string]any{
		"action": req.Action,
		"state":  resp.State,
	})
	h.writeJSON(w, http.StatusOK, resp)
}

// ListSessions returns the reading history, newest first.
// GET /api/sessions?limit=N
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	store, ok := resolve[service.SessionStore](h, w, service.CapSessionStore)
	if !ok {
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.writeError(w, http.StatusBadRequest, "validation_error",
				fmt.Sprintf("invalid limit %q", raw), "")
			return
		}
		limit = parsed
	}

	sessions, err := store.Recent(limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "history_failed", "Failed to list sessions", err.Error())
		return
	}

	resp := ListSessionsResponse{Sessions: make([]SessionResponse, 0, len(sessions))}
	for _, s := range sessions {
		sr := SessionResponse{
			GUID:            s.GUID,
			FilePath:        s.FilePath,
			WordCount:       s.WordCount,
			Progress:        s.Progress,
			AvgWPM:          s.AvgWPM,
			DurationSeconds: s.Duration.Seconds(),
			StartedAt:       s.StartedAt,
		}
		if !s.EndedAt.IsZero() {
			endedAt := s.EndedAt
			sr.EndedAt = &endedAt
		}
		resp.Sessions = append(resp.Sessions, sr)
	}
	resp.Total = len(resp.Sessions)

	h.writeJSON(w, http.StatusOK, resp)
}

// StreamEvents streams API-side events via SSE.
// GET /events
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "streaming_unsupported", "Streaming not supported", "")
		return
	}

	events := h.broker.Subscribe(r.Context())

	_, _ = fmt.Fprintf(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Payload)
			if err != nil {
				log.ErrorErr(log.CatServer, "marshaling event", err)
				continue
			}
			_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()
		}
	}
}

// === Helpers ===

// resolve fetches a capability, writing a 503 naming the capability
// when it is unregistered and a 500 when its factory failed.
func resolve[T any](h *Handler, w http.ResponseWriter, id container.Capability) (T, bool) {
	v, err := container.Resolve[T](h.c, id)
	if err != nil {
		var zero T
		if errors.Is(err, container.ErrNotRegistered) {
			h.writeError(w, http.StatusServiceUnavailable, "capability_unavailable",
				fmt.Sprintf("capability %q is not available", id), "")
		} else {
			h.writeError(w, http.StatusInternalServerError, "capability_error",
				fmt.Sprintf("capability %q failed to initialize", id), err.Error())
		}
		return zero, false
	}
	return v, true
}

func (h *Handler) publish(eventType pubsub.EventType, payload map[string]any) {
	h.broker.Publish(eventType, payload)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.ErrorErr(log.CatServer, "encoding JSON response", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message, details string) {
	h.writeJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}
