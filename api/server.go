// Package api provides the HTTP REST API server for AgriSense.
//
// It exposes endpoints for crop assessment, the crop profile catalog,
// collaborator health, and WebSocket streaming of stage progress.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/agrisense-ai/agrisense/internal/catalog"
	"github.com/agrisense-ai/agrisense/internal/config"
	"github.com/agrisense-ai/agrisense/internal/pipeline"
	"github.com/agrisense-ai/agrisense/internal/source"
	"github.com/agrisense-ai/agrisense/pkg/models"
	"github.com/agrisense-ai/agrisense/pkg/utils"
)

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	orch    *pipeline.Orchestrator
	catalog *catalog.Catalog
	agg     *source.Aggregator
	wsHub   *WSHub
	version string
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, version string) (*Server, error) {
	cat, err := catalog.Load(cfg.Catalog.ProfilesFile)
	if err != nil {
		return nil, fmt.Errorf("load crop profiles: %w", err)
	}

	agg, err := buildAggregator(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	srv := &Server{
		cfg:     cfg,
		catalog: cat,
		agg:     agg,
		wsHub:   NewWSHub(),
		version: version,
	}

	pcfg := pipeline.Config{
		TotalTimeout:       cfg.Pipeline.TotalTimeout(),
		StageTimeout:       cfg.Pipeline.StageTimeout(),
		FallbackConfidence: cfg.Pipeline.FallbackConfidence,
	}
	srv.orch = pipeline.New(pcfg, cat, agg, srv.broadcastStageEvent)

	srv.router = srv.buildRouter()
	return srv, nil
}

// buildAggregator wires the configured collaborators. Empty URLs leave
// the corresponding live source nil; the pipeline then falls back.
func buildAggregator(ctx context.Context, cfg *config.Config) (*source.Aggregator, error) {
	var market source.MarketSource
	if cfg.Sources.Mandi.BaseURL != "" {
		m := source.NewMandiBoard(cfg.Sources.Mandi.BaseURL)
		if cfg.Sources.Mandi.CacheTTLSec > 0 {
			m.SetCacheTTL(time.Duration(cfg.Sources.Mandi.CacheTTLSec) * time.Second)
		}
		market = m
	}

	var forecast source.ForecastProvider
	if cfg.Sources.Advisory.FeedURL != "" {
		f := source.NewAdvisoryFeed(cfg.Sources.Advisory.FeedURL)
		if cfg.Sources.Advisory.CacheTTLSec > 0 {
			f.SetCacheTTL(time.Duration(cfg.Sources.Advisory.CacheTTLSec) * time.Second)
		}
		forecast = f
	}

	var registry source.DriverRegistry
	switch cfg.Sources.Registry.Backend {
	case "http":
		registry = source.NewHTTPRegistry(cfg.Sources.Registry.BaseURL)
	case "mongo":
		mr, err := source.NewMongoRegistry(ctx, cfg.Sources.Registry.MongoURI, cfg.Sources.Registry.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("connect driver registry: %w", err)
		}
		registry = mr
	default:
		registry = source.NewStaticRegistry(nil)
	}

	return source.NewAggregator(market, forecast, registry), nil
}

// broadcastStageEvent relays pipeline progress to WebSocket clients.
func (s *Server) broadcastStageEvent(ev pipeline.StageEvent) {
	s.wsHub.Broadcast(WSMessage{Type: "stage_event", Data: ev})
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start WebSocket hub
	go s.wsHub.Run()

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Assessment
		r.Post("/assess", s.handleAssess)

		// Crop profile catalog
		r.Get("/profiles", s.handleProfiles)
		r.Get("/profiles/{crop}", s.handleProfile)

		// Collaborator health
		r.Get("/sources", s.handleSources)

		// WebSocket stage-event stream
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// AssessResponse is the payload for POST /api/v1/assess.
type AssessResponse struct {
	Assessment *models.FinalAssessment `json:"assessment"`
	Run        *models.WorkflowRun     `json:"run"`
}

// ProfileEntry is one catalog listing row.
type ProfileEntry struct {
	Name              string  `json:"name"`
	ReferencePriceINR float64 `json:"reference_price_inr"`
	ReferencePrice    string  `json:"reference_price"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":   "ok",
			"version":  s.version,
			"crops":    s.catalog.Count(),
			"time_ist": utils.NowIST().Format("2006-01-02 15:04:05"),
		},
	})
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	var req models.AssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	final, run, err := s.orch.Assess(r.Context(), &req)
	if err != nil {
		var perr *pipeline.PipelineError
		if errors.As(err, &perr) {
			switch perr.Kind {
			case pipeline.KindValidation:
				writeError(w, http.StatusBadRequest, perr.Reason)
			case pipeline.KindDeadline:
				writeError(w, http.StatusGatewayTimeout, perr.Error())
			default:
				writeError(w, http.StatusBadGateway, perr.Error())
			}
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.wsHub.Broadcast(WSMessage{
		Type: "assessment_complete",
		Data: map[string]interface{}{
			"run_id": final.RunID,
			"crop":   final.Crop,
			"status": final.Status,
			"score":  final.AdjustedScore,
		},
	})

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    AssessResponse{Assessment: final, Run: run},
	})
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	names := s.catalog.Names()
	entries := make([]ProfileEntry, 0, len(names))
	for _, name := range names {
		p, _ := s.catalog.Lookup(name)
		entries = append(entries, ProfileEntry{
			Name:              p.Name,
			ReferencePriceINR: p.ReferencePriceINR,
			ReferencePrice:    utils.FormatINR(p.ReferencePriceINR) + "/kg",
		})
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    entries,
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	crop := chi.URLParam(r, "crop")
	profile, known := s.catalog.Lookup(crop)
	if !known {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no profile for crop %q", crop))
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    profile,
	})
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    s.agg.Health(ctx),
	})
}

// ============================================================
// Helpers
// ============================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

// ============================================================
// WebSocket Hub
// ============================================================

// WSMessage is a message sent over WebSocket connections.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// WSHub manages WebSocket connections and message broadcasting.
type WSHub struct {
	mu         sync.RWMutex
	clients    map[*WSClient]bool
	broadcast  chan WSMessage
	register   chan *WSClient
	unregister chan *WSClient
}

// WSClient represents a single WebSocket connection.
type WSClient struct {
	hub  *WSHub
	send chan WSMessage
	done chan struct{} // closed by the hub when the client is dropped
}

// reply queues a message for this client only. Once the hub has
// released the client, or its buffer is full, replies are dropped
// rather than blocked on. The send channel itself is never closed, so
// a reply racing a disconnect cannot panic.
func (c *WSClient) reply(msg WSMessage) {
	select {
	case <-c.done:
	case c.send <- msg:
	default:
	}
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub() *WSHub {
	return &WSHub{
		clients:    make(map[*WSClient]bool),
		broadcast:  make(chan WSMessage, 256),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
	}
}

// Run starts the hub event loop.
func (h *WSHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.drop(client)
		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// Slow client; drop it. Only done is closed: the
					// read pump may still reply on send.
					delete(h.clients, client)
					close(client.done)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop releases a client and signals its pumps through done. A client
// can be dropped at most once; later calls are no-ops, so a slow-client
// disconnect racing the read pump's unregister is safe.
func (h *WSHub) drop(client *WSClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.done)
	}
	h.mu.Unlock()
}

// Broadcast sends a message to all connected WebSocket clients.
func (h *WSHub) Broadcast(msg WSMessage) {
	select {
	case h.broadcast <- msg:
	default:
		// Drop message if broadcast channel is full
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub.
func (h *WSHub) Register(client *WSClient) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *WSHub) Unregister(client *WSClient) {
	h.unregister <- client
}
