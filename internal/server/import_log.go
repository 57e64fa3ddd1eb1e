package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/claude/musclemap/internal/ingest"
	"github.com/claude/musclemap/internal/storage"
)

// startImport creates a "running" import_logs row. A zero ID means the row
// could not be written; the import proceeds regardless.
func (s *Server) startImport(ctx context.Context, uid int, source string) int64 {
	id, err := s.db.InsertImportLog(ctx, storage.ImportLog{
		UserID: uid,
		Source: source,
		Status: storage.ImportRunning,
	})
	if err != nil {
		s.log.Error("failed to create import log", "source", source, "error", err)
		return 0
	}
	return id
}

// finishImport records the final outcome of an import.
func (s *Server) finishImport(id int64, uid int, source string, result *ingest.Result, importErr error, took time.Duration) {
	if id == 0 {
		return
	}

	durationMs := int(took.Milliseconds())
	entry := storage.ImportLog{
		UserID:     uid,
		Source:     source,
		Status:     storage.ImportSuccess,
		DurationMs: &durationMs,
	}
	if result != nil {
		entry.LogsReceived = result.LogsReceived
		entry.LogsInserted = result.LogsInserted
		entry.SetsReceived = result.SetsReceived
		entry.SetsInserted = result.SetsInserted
		if result.LogsRejected > 0 || result.DatesReplaced > 0 {
			meta := json.RawMessage(mustJSON(map[string]any{
				"logs_rejected":  result.LogsRejected,
				"rejections":     result.Rejections,
				"dates_replaced": result.DatesReplaced,
			}))
			entry.Metadata = &meta
		}
	}
	if importErr != nil {
		entry.Status = storage.ImportError
		msg := importErr.Error()
		entry.ErrorMessage = &msg
	}

	ctx, cancel := contextWithTimeout()
	defer cancel()

	if err := s.db.UpdateImportLog(ctx, id, entry); err != nil {
		s.log.Error("failed to finalize import log", "log_id", id, "error", err)
	}
}

// contextWithTimeout returns a background context with a 5-second timeout,
// so the log row is written even when the client has gone away.
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second) //nolint:mnd
}
