// Package upload sends workout export files from a local directory to a
// MuscleMap server, remembering what was already sent.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/musclemap/internal/ingest"
	"github.com/claude/musclemap/internal/ingest/alpha"
	"github.com/claude/musclemap/internal/ingest/native"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	LogsSent     int
	SetsSent     int
	LogsInserted int64
	LogsRejected int
}

// Sender delivers one export body to the server. Satisfied by *Client.
type Sender interface {
	Send(ctx context.Context, format string, data []byte) (*ingest.Result, error)
}

// Uploader walks an export directory and POSTs new or changed files to the
// MuscleMap server.
type Uploader struct {
	sender Sender
	state  *StateDB
	root   string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader. sender may be nil in dry-run mode.
func New(sender Sender, state *StateDB, root string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		sender: sender,
		state:  state,
		root:   root,
		dryRun: dryRun,
		log:    log,
	}
}

// Run uploads every export under the root directory that the state db has
// not seen with the same size and hash. A failing file is counted and
// skipped; it will be retried on the next run.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	files, err := ingest.FindExports(u.root)
	if err != nil {
		return &u.stats, err
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}
		u.stats.FilesTotal++
		if err := u.processFile(ctx, f); err != nil {
			u.log.Warn("upload failed", "file", f.RelPath, "error", err)
			u.stats.FilesErrored++
		}
	}
	return &u.stats, nil
}

func (u *Uploader) processFile(ctx context.Context, f ingest.ExportFile) error {
	hash, err := HashFile(f.Path)
	if err != nil {
		return fmt.Errorf("hashing: %w", err)
	}
	uploaded, err := u.state.IsUploaded(f.RelPath, f.Size, hash)
	if err != nil {
		return fmt.Errorf("checking state: %w", err)
	}
	if uploaded {
		u.stats.FilesSkipped++
		return nil
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return fmt.Errorf("reading: %w", err)
	}

	if u.dryRun {
		logs, sets, err := countExport(f.Format, data)
		if err != nil {
			return err
		}
		u.log.Info("dry run: would upload", "file", f.RelPath, "logs", logs, "sets", sets)
		u.stats.LogsSent += logs
		u.stats.SetsSent += sets
		u.stats.FilesUploaded++
		return nil
	}

	result, err := u.sender.Send(ctx, f.Format, data)
	if err != nil {
		return err
	}
	if err := u.state.MarkUploaded(f.RelPath, f.Size, hash); err != nil {
		return fmt.Errorf("recording upload: %w", err)
	}

	u.stats.FilesUploaded++
	u.stats.LogsSent += result.LogsReceived
	u.stats.SetsSent += result.SetsReceived
	u.stats.LogsInserted += result.LogsInserted
	u.stats.LogsRejected += result.LogsRejected
	u.log.Info("uploaded", "file", f.RelPath, "logs", result.LogsInserted, "sets", result.SetsInserted)
	return nil
}

// countExport parses an export locally and returns its log and set counts.
func countExport(format string, data []byte) (int, int, error) {
	switch format {
	case ingest.FormatAlphaCSV:
		sessions, err := alpha.Parse(bytes.NewReader(data))
		if err != nil {
			return 0, 0, fmt.Errorf("parsing CSV: %w", err)
		}
		logs, _ := alpha.ToLogs(sessions)
		return len(logs), ingest.CountSets(logs), nil
	case ingest.FormatJSON:
		logs, err := native.Decode(bytes.NewReader(data))
		if err != nil {
			return 0, 0, err
		}
		return len(logs), ingest.CountSets(logs), nil
	}
	return 0, 0, fmt.Errorf("unsupported export format %q", format)
}
