package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/musclemap/internal/classify"
	"github.com/claude/musclemap/internal/heatmap"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
// engine must be built over ds.
func New(ds DataSource, engine *heatmap.Engine, windows heatmap.Windows, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("MuscleMap", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("MuscleMap training heatmap server. Shows which muscle groups a user has trained recently, how hard relative to each other, and why an exercise counts toward a muscle. All data is scoped to the authenticated user."),
	)

	h := &handlers{
		ds:         ds,
		engine:     engine,
		classifier: classify.Default(),
		windows:    windows,
		log:        log,
	}

	s.AddTools(
		server.ServerTool{Tool: toolGetMuscleHeatmap, Handler: h.getMuscleHeatmap},
		server.ServerTool{Tool: toolGetMuscleStats, Handler: h.getMuscleStats},
		server.ServerTool{Tool: toolClassifyExercise, Handler: h.classifyExercise},
		server.ServerTool{Tool: toolPreviewHeatmap, Handler: h.previewHeatmap},
		server.ServerTool{Tool: toolGetTrainingStats, Handler: h.getTrainingStats},
	)

	s.AddResources(
		server.ServerResource{Resource: resMuscleGroups, Handler: h.muscleGroups},
		server.ServerResource{Resource: resGradient, Handler: h.gradient},
		server.ServerResource{Resource: resCurrentHeatmap, Handler: h.currentHeatmap},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds         DataSource
	engine     *heatmap.Engine
	classifier *classify.Classifier
	windows    heatmap.Windows
	log        *slog.Logger
}

// --- Resource definitions ---

var resMuscleGroups = mcp.NewResource(
	"musclemap://muscle_groups",
	"Muscle Groups",
	mcp.WithResourceDescription("The 14 muscle group tags in display order, with the illustrative intensity shown to new users"),
	mcp.WithMIMEType("application/json"),
)

var resGradient = mcp.NewResource(
	"musclemap://gradient",
	"Intensity Gradient",
	mcp.WithResourceDescription("Color stops used to render intensities, plus the color for untrained muscles"),
	mcp.WithMIMEType("application/json"),
)

var resCurrentHeatmap = mcp.NewResource(
	"musclemap://current_heatmap",
	"Current Heatmap",
	mcp.WithResourceDescription("The user's heatmap over the default look-back window"),
	mcp.WithMIMEType("application/json"),
)
