package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"golang.org/x/crypto/bcrypt"

	"github.com/nlemesios/smenos/internal/config"
	"github.com/nlemesios/smenos/internal/eventbus"
	"github.com/nlemesios/smenos/internal/registry"
	"github.com/nlemesios/smenos/internal/store"
	"github.com/nlemesios/smenos/internal/swarm"
)

type Server struct {
	store     *store.Store
	bus       *eventbus.Bus
	nats      *eventbus.Client
	registry  *registry.Registry
	coord     *swarm.Coordinator
	hub       *Hub
	cfg       config.WebConfig
	version   string
	startedAt time.Time
}

func NewServer(s *store.Store, bus *eventbus.Bus, reg *registry.Registry, coord *swarm.Coordinator, cfg config.WebConfig, version string) *Server {
	return &Server{
		store:     s,
		bus:       bus,
		registry:  reg,
		coord:     coord,
		hub:       NewHub(),
		cfg:       cfg,
		version:   version,
		startedAt: time.Now(),
	}
}

func (s *Server) Start(ctx context.Context) error {
	go s.hub.Run(ctx)

	// Relay bus events to connected WebSocket clients
	s.subscribeEvents()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.getStatus)
	mux.HandleFunc("GET /api/agents", s.listAgents)
	mux.HandleFunc("GET /api/metrics", s.getMetrics)
	mux.HandleFunc("GET /api/history", s.getHistory)
	mux.HandleFunc("GET /api/events", s.listEvents)
	mux.HandleFunc("POST /api/swarms", s.executeSwarm)
	mux.HandleFunc("POST /api/tasks", s.executeTask)
	mux.HandleFunc("/api/ws", s.handleWebSocket)

	handler := s.withMiddleware(mux)
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	server := &http.Server{Addr: addr, Handler: handler}

	go func() {
		<-ctx.Done()
		server.Close()
	}()

	slog.Info("web server listening", "addr", addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// CORS
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		if strings.HasPrefix(r.URL.Path, "/api/") && s.cfg.AuthHash != "" {
			if !s.checkAuth(w, r) {
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// checkAuth validates Basic Auth against the configured bcrypt hash.
func (s *Server) checkAuth(w http.ResponseWriter, r *http.Request) bool {
	if _, pass, ok := r.BasicAuth(); ok {
		if bcrypt.CompareHashAndPassword([]byte(s.cfg.AuthHash), []byte(pass)) == nil {
			return true
		}
	}

	w.Header().Set("WWW-Authenticate", `Basic realm="smenos"`)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
	return false
}

func (s *Server) subscribeEvents() {
	if s.bus == nil {
		return
	}
	client, err := eventbus.NewClient(s.bus)
	if err != nil {
		slog.Error("web server nats client failed", "error", err)
		return
	}
	s.nats = client

	_, _ = client.Subscribe(eventbus.TopicEventsAll, func(msg *nats.Msg) {
		var event swarm.Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			slog.Warn("invalid bus event payload", "error", err)
			return
		}
		s.hub.Broadcast(event)
	})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func jsonResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
