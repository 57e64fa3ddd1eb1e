package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/claude/musclemap/internal/classify"
	"github.com/claude/musclemap/internal/heatmap"
	"github.com/claude/musclemap/internal/ingest"
	"github.com/claude/musclemap/internal/ingest/alpha"
	"github.com/claude/musclemap/internal/ingest/native"
	"github.com/claude/musclemap/internal/mcp"
	"github.com/claude/musclemap/internal/storage"
)

// Store is the storage surface the HTTP API needs. Satisfied by *storage.DB.
type Store interface {
	heatmap.LogSource
	UserResolver
	DeleteWorkoutLogs(ctx context.Context, date time.Time, userID int) (int64, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	UpdateImportLog(ctx context.Context, id int64, log storage.ImportLog) error
	QueryImportLogs(ctx context.Context, userID, limit int) ([]storage.ImportLog, error)
	Ping(ctx context.Context) error
}

var _ Store = (*storage.DB)(nil)

// Ingester turns an uploaded body into stored workout logs.
type Ingester interface {
	Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error)
}

// Config holds the dependencies of a Server.
type Config struct {
	Store   Store
	Engine  *heatmap.Engine
	Windows heatmap.Windows
	Alpha   Ingester
	Logs    Ingester
	APIKey  string
	// MCP is served at /mcp over streamable HTTP when set.
	MCP *mcpserver.MCPServer
	Log *slog.Logger
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db         Store
	engine     *heatmap.Engine
	classifier *classify.Classifier
	windows    heatmap.Windows
	alpha      Ingester
	logs       Ingester
	apiKey     string
	log        *slog.Logger
	router     chi.Router
	events     *eventHub
	keepalive  time.Duration
	tailnet    atomic.Pointer[tailscaleIdentity]
}

type tailscaleIdentity struct {
	mw func(http.Handler) http.Handler
}

// New creates a new Server with all routes configured.
func New(cfg Config) *Server {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.Windows.Default == 0 {
		cfg.Windows = heatmap.DefaultWindows
	}
	s := &Server{
		db:         cfg.Store,
		engine:     cfg.Engine,
		classifier: classify.Default(),
		windows:    cfg.Windows,
		alpha:      cfg.Alpha,
		logs:       cfg.Logs,
		apiKey:     cfg.APIKey,
		log:        cfg.Log,
		router:     chi.NewRouter(),
		events:     newEventHub(),
		keepalive:  30 * time.Second,
	}
	s.routes(cfg.MCP)
	return s
}

// SetTailscale switches identity resolution from the dev user to tailnet
// WhoIs lookups. Call before serving.
func (s *Server) SetTailscale(whois WhoIser) {
	s.tailnet.Store(&tailscaleIdentity{mw: TailscaleIdentity(whois, s.db, s.log)})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// identify applies Tailscale identity when configured, dev identity otherwise.
func (s *Server) identify(next http.Handler) http.Handler {
	dev := DevIdentity(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ts := s.tailnet.Load(); ts != nil {
			ts.mw(next).ServeHTTP(w, r)
			return
		}
		dev.ServeHTTP(w, r)
	})
}

func (s *Server) routes(mcpSrv *mcpserver.MCPServer) {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealth)

	s.router.Group(func(r chi.Router) {
		r.Use(s.identify)

		// Ingest and destructive endpoints (API key required)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/api/v1/ingest/logs", s.handleIngest(native.Source, s.logs))
			r.Post("/api/v1/ingest/alpha", s.handleIngest(alpha.Source, s.alpha))
			r.Delete("/api/v1/logs", s.handleDeleteLogs)
		})

		r.Get("/api/v1/heatmap", s.handleHeatmap)
		r.Post("/api/v1/heatmap/preview", s.handlePreview)
		r.Get("/api/v1/muscles", s.handleMuscles)
		r.Get("/api/v1/classify", s.handleClassify)
		r.Get("/api/v1/color", s.handleColor)
		r.Get("/api/v1/gradient", s.handleGradient)
		r.Get("/api/v1/logs", s.handleLogs)
		r.Get("/api/v1/events", s.handleEvents)
		r.Get("/api/v1/stats", s.handleStats)
		r.Get("/api/v1/import-logs", s.handleImportLogs)
		r.Get("/api/v1/me", s.handleMe)

		if mcpSrv != nil {
			h := mcpserver.NewStreamableHTTPServer(mcpSrv,
				mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
					return mcp.WithUserID(ctx, userIDFromContext(r))
				}),
			)
			r.Handle("/mcp", h)
		}
	})
}
