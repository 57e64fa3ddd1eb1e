package mcp

import (
	"context"
	"time"

	"github.com/claude/musclemap/internal/models"
	"github.com/claude/musclemap/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface. Any DataSource
// is also a heatmap.LogSource.
type DataSource interface {
	QueryWorkoutLogs(ctx context.Context, since time.Time, userID int) ([]models.WorkoutLogEntry, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
