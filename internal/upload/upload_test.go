package upload

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/claude/musclemap/internal/ingest"
)

const pushCSV = `"Push · Day 1 · Week 1";"2026-02-17 5:04 h";"1:12 hr"
"1. Bench Press · Barbell · 6 reps"
#;KG;REPS;RIR
1;102,5;6;0
2;100;6;0
`

const pullJSON = `[{"exercise_name":"Barbell Row","date":"2026-02-18","sets":[{"weight":80,"reps":8,"completed":true}]}]`

type sent struct {
	format string
	body   string
}

type fakeSender struct {
	calls []sent
	fail  map[string]error
}

func (f *fakeSender) Send(_ context.Context, format string, data []byte) (*ingest.Result, error) {
	if err := f.fail[format]; err != nil {
		return nil, err
	}
	f.calls = append(f.calls, sent{format: format, body: string(data)})
	return &ingest.Result{LogsReceived: 1, LogsInserted: 1, SetsReceived: 2, SetsInserted: 2}, nil
}

func writeExport(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func openTestState(t *testing.T) *StateDB {
	t.Helper()
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { state.Close() })
	return state
}

func TestStateDB(t *testing.T) {
	state := openTestState(t)

	ok, err := state.IsUploaded("a.csv", 10, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("fresh state reports a.csv uploaded")
	}

	if err := state.MarkUploaded("a.csv", 10, "abc"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := state.IsUploaded("a.csv", 10, "abc"); !ok {
		t.Error("a.csv not uploaded after MarkUploaded")
	}
	if ok, _ := state.IsUploaded("a.csv", 11, "abd"); ok {
		t.Error("changed a.csv reported as uploaded")
	}
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "x.csv", "hello")
	got, err := HashFile(filepath.Join(dir, "x.csv"))
	if err != nil {
		t.Fatal(err)
	}
	const want = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got != want {
		t.Errorf("HashFile = %s, want %s", got, want)
	}
}

// TestUploaderSkipsUnchangedFiles verifies a second run sends nothing, and a
// modified file is sent again.
func TestUploaderSkipsUnchangedFiles(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "push.csv", pushCSV)
	writeExport(t, dir, "pull.json", pullJSON)
	writeExport(t, dir, "notes.txt", "ignored")

	state := openTestState(t)
	sender := &fakeSender{}
	ctx := context.Background()

	stats, err := New(sender, state, dir, false, slog.Default()).Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesTotal != 2 || stats.FilesUploaded != 2 || stats.FilesSkipped != 0 {
		t.Errorf("first run stats = %+v", stats)
	}
	if len(sender.calls) != 2 {
		t.Fatalf("sent %d files, want 2", len(sender.calls))
	}
	// Files are visited in path order.
	if sender.calls[0].format != ingest.FormatJSON || sender.calls[1].format != ingest.FormatAlphaCSV {
		t.Errorf("formats = %s, %s", sender.calls[0].format, sender.calls[1].format)
	}
	if sender.calls[1].body != pushCSV {
		t.Error("CSV body was not sent verbatim")
	}

	stats, err = New(sender, state, dir, false, slog.Default()).Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesSkipped != 2 || stats.FilesUploaded != 0 {
		t.Errorf("second run stats = %+v", stats)
	}

	writeExport(t, dir, "push.csv", pushCSV+"3;90;8;1\n")
	stats, err = New(sender, state, dir, false, slog.Default()).Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesUploaded != 1 || stats.FilesSkipped != 1 {
		t.Errorf("after edit stats = %+v", stats)
	}
	if len(sender.calls) != 3 {
		t.Errorf("total sends = %d, want 3", len(sender.calls))
	}
}

// TestUploaderFailedFileRetriedNextRun verifies a send error is counted and
// the file is not recorded as uploaded.
func TestUploaderFailedFileRetriedNextRun(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "push.csv", pushCSV)
	state := openTestState(t)
	sender := &fakeSender{fail: map[string]error{ingest.FormatAlphaCSV: errors.New("server down")}}

	stats, err := New(sender, state, dir, false, slog.Default()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesErrored != 1 || stats.FilesUploaded != 0 {
		t.Errorf("stats = %+v", stats)
	}

	sender.fail = nil
	stats, err = New(sender, state, dir, false, slog.Default()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesUploaded != 1 {
		t.Errorf("retry stats = %+v", stats)
	}
}

func TestUploaderDryRun(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "push.csv", pushCSV)
	writeExport(t, dir, "pull.json", pullJSON)
	writeExport(t, dir, "broken.json", "{")
	state := openTestState(t)

	stats, err := New(nil, state, dir, true, slog.Default()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesUploaded != 2 || stats.FilesErrored != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.LogsSent != 2 {
		t.Errorf("logs = %d, want 2", stats.LogsSent)
	}

	// Dry run records nothing.
	stats, err = New(nil, state, dir, true, slog.Default()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesSkipped != 0 {
		t.Errorf("dry run marked files uploaded: %+v", stats)
	}
}
