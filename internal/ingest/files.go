package ingest

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Export file formats recognized by extension.
const (
	FormatAlphaCSV = "alpha_csv"
	FormatJSON     = "json"
)

// ExportFile is a workout export found on disk.
type ExportFile struct {
	Path    string
	RelPath string
	Size    int64
	Format  string
}

// FormatOf returns the export format of a file name, or "" if unsupported.
func FormatOf(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatAlphaCSV
	case ".json":
		return FormatJSON
	}
	return ""
}

// FindExports walks root and returns every supported export file, sorted by
// relative path. Hidden files and directories are skipped.
func FindExports(root string) ([]ExportFile, error) {
	var files []ExportFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		format := FormatOf(d.Name())
		if format == "" {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, ExportFile{
			Path:    path,
			RelPath: filepath.ToSlash(rel),
			Size:    info.Size(),
			Format:  format,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}
