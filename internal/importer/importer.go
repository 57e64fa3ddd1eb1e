// Package importer loads a directory of workout exports straight into the
// database, bypassing the HTTP API. Used for first-time bulk imports.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/claude/musclemap/internal/ingest"
	"github.com/claude/musclemap/internal/ingest/alpha"
	"github.com/claude/musclemap/internal/ingest/native"
	"github.com/claude/musclemap/internal/models"
	"github.com/claude/musclemap/internal/storage"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesErrored   int

	LogsReceived  int
	LogsInserted  int64
	LogsRejected  int
	SetsInserted  int64
	DatesReplaced int
}

// Store is what the importer writes to. Satisfied by *storage.DB.
type Store interface {
	ingest.Store
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
}

type provider interface {
	Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error)
}

// Importer reads export files and stores their workout logs.
type Importer struct {
	db        Store
	log       *slog.Logger
	dryRun    bool
	providers map[string]provider
	sources   map[string]string
	stats     Stats
}

// New creates a new Importer. In dry-run mode files are parsed and counted
// but nothing is written.
func New(db Store, log *slog.Logger, dryRun bool) *Importer {
	var store ingest.Store = db
	if dryRun {
		store = countingStore{}
	}
	return &Importer{
		db:     db,
		log:    log,
		dryRun: dryRun,
		providers: map[string]provider{
			ingest.FormatAlphaCSV: alpha.NewProvider(store, log),
			ingest.FormatJSON:     native.NewProvider(store, log),
		},
		sources: map[string]string{
			ingest.FormatAlphaCSV: alpha.Source,
			ingest.FormatJSON:     native.Source,
		},
	}
}

// Import processes every export under root for the given user. A file that
// fails to parse or store is counted and skipped.
func (imp *Importer) Import(ctx context.Context, root string, userID int) (*Stats, error) {
	files, err := ingest.FindExports(root)
	if err != nil {
		return &imp.stats, err
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &imp.stats, err
		}
		start := time.Now()
		result, err := imp.importFile(ctx, f, userID)
		imp.record(ctx, f, userID, result, err, time.Since(start))
		if err != nil {
			imp.log.Warn("import failed", "file", f.RelPath, "error", err)
			imp.stats.FilesErrored++
			continue
		}

		imp.stats.FilesProcessed++
		imp.stats.LogsReceived += result.LogsReceived
		imp.stats.LogsInserted += result.LogsInserted
		imp.stats.LogsRejected += result.LogsRejected
		imp.stats.SetsInserted += result.SetsInserted
		imp.stats.DatesReplaced += result.DatesReplaced
	}
	return &imp.stats, nil
}

func (imp *Importer) importFile(ctx context.Context, f ingest.ExportFile, userID int) (*ingest.Result, error) {
	p, ok := imp.providers[f.Format]
	if !ok {
		return nil, fmt.Errorf("unsupported export format %q", f.Format)
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return p.Ingest(ctx, file, userID)
}

// record writes one import_logs row per file. Dry runs write nothing.
func (imp *Importer) record(ctx context.Context, f ingest.ExportFile, userID int, result *ingest.Result, importErr error, took time.Duration) {
	if imp.dryRun {
		return
	}
	durationMs := int(took.Milliseconds())
	meta := json.RawMessage(fmt.Sprintf(`{"file":%q,"via":"importer"}`, f.RelPath))
	entry := storage.ImportLog{
		UserID:     userID,
		Source:     imp.sources[f.Format],
		Status:     storage.ImportSuccess,
		DurationMs: &durationMs,
		Metadata:   &meta,
	}
	if result != nil {
		entry.LogsReceived = result.LogsReceived
		entry.LogsInserted = result.LogsInserted
		entry.SetsReceived = result.SetsReceived
		entry.SetsInserted = result.SetsInserted
	}
	if importErr != nil {
		entry.Status = storage.ImportError
		msg := importErr.Error()
		entry.ErrorMessage = &msg
	}
	if _, err := imp.db.InsertImportLog(ctx, entry); err != nil {
		imp.log.Error("failed to log import", "file", f.RelPath, "error", err)
	}
}

// countingStore reports every log and set as inserted without storing them.
type countingStore struct{}

func (countingStore) ReplaceWorkoutLogs(_ context.Context, logs []models.WorkoutLogEntry, _ []time.Time, _ string, _ int) (int64, int64, error) {
	return int64(len(logs)), int64(ingest.CountSets(logs)), nil
}
