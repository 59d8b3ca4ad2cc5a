// Package hostws exposes carousel presets over HTTP and runs one engine per
// websocket connection.
package hostws

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/ivlev/carousel/internal/clock"
	"github.com/ivlev/carousel/internal/config"
)

// Handler serves the preset API and carousel sessions
type Handler struct {
	presets   *config.Presets
	clock     clock.Clock
	logger    *log.Logger
	upgrader  websocket.Upgrader
	maxSlides int
}

// Option configures a Handler.
type Option func(*Handler)

// WithClock drives session engines from clk instead of the wall clock.
func WithClock(clk clock.Clock) Option {
	return func(h *Handler) { h.clock = clk }
}

func WithLogger(l *log.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// NewHandler creates a new carousel handler
func NewHandler(presets *config.Presets, opts ...Option) *Handler {
	h := &Handler{
		presets:   presets,
		clock:     clock.Real{},
		logger:    log.New(io.Discard, "", 0),
		maxSlides: 500,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SetupRoutes registers every endpoint on a new router
func SetupRoutes(h *Handler) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/carousels", h.ListCarousels).Methods(http.MethodGet)
	api.HandleFunc("/carousels/{name}", h.GetCarousel).Methods(http.MethodGet)
	api.HandleFunc("/carousels/{name}/resolve", h.ResolveCarousel).Methods(http.MethodGet)
	r.HandleFunc("/ws/carousels/{name}", h.Session)
	return r
}

// CarouselSummary describes one preset
type CarouselSummary struct {
	Name        string `json:"name"`
	Breakpoints []int  `json:"breakpoints,omitempty"`
}

// ListCarouselsResponse represents the preset list
type ListCarouselsResponse struct {
	Carousels []CarouselSummary `json:"carousels"`
}

// ListCarousels lists presets in declaration order
// GET /api/carousels
func (h *Handler) ListCarousels(w http.ResponseWriter, r *http.Request) {
	resp := ListCarouselsResponse{Carousels: []CarouselSummary{}}
	for _, name := range h.presets.Names() {
		cfg, _ := h.presets.Get(name)
		sum := CarouselSummary{Name: name}
		for _, bp := range cfg.Breakpoints {
			sum.Breakpoints = append(sum.Breakpoints, bp.MinWidth)
		}
		resp.Carousels = append(resp.Carousels, sum)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetCarousel returns a preset as YAML in the preset file format
// GET /api/carousels/{name}
func (h *Handler) GetCarousel(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	cfg, ok := h.presets.Get(name)
	if !ok {
		http.Error(w, "carousel not found", http.StatusNotFound)
		return
	}
	data, err := config.Marshal(name, cfg)
	if err != nil {
		log.Printf("[!] Failed to marshal carousel %s: %v", name, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(data)
}

// ResolveCarousel returns the effective configuration for a viewport width
// GET /api/carousels/{name}/resolve?width=800
func (h *Handler) ResolveCarousel(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	cfg, ok := h.presets.Get(name)
	if !ok {
		http.Error(w, "carousel not found", http.StatusNotFound)
		return
	}
	width, err := strconv.Atoi(r.URL.Query().Get("width"))
	if err != nil || width < 0 {
		http.Error(w, "width query parameter must be a non-negative integer", http.StatusBadRequest)
		return
	}

	resp := ResolveResponse{Name: name, Width: width, Config: viewOfConfig(cfg.Effective(width))}
	if minWidth, ok := config.ActiveBreakpoint(cfg.Breakpoints, width); ok {
		resp.Breakpoint = &minWidth
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[!] Failed to write response: %v", err)
	}
}
