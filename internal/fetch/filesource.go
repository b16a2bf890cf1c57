package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"cycle-radar/internal/domain"
	"cycle-radar/internal/storage"
)

// FileSource loads table batches from a JSON file. It feeds the tables with
// no stable public API behind them (trend scores, macro closes): an operator
// or a side-channel exporter drops batches into the file, and the merge
// engine dedups re-reads like any other source.
//
// File format: a JSON array of {"table": ..., "rows": [...]} objects.
type FileSource struct {
	path string
}

// NewFileSource creates a source reading from path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

var _ Source = (*FileSource)(nil)

// Name identifies the source by its file name.
func (f *FileSource) Name() string {
	return "file:" + filepath.Base(f.path)
}

// Fetch reads and decodes the whole file. Unknown table names fail the
// source; a missing file is an error too, so a typoed path surfaces
// instead of silently yielding nothing.
func (f *FileSource) Fetch(_ context.Context) ([]domain.TableBatch, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}

	var batches []domain.TableBatch
	if err := json.Unmarshal(data, &batches); err != nil {
		return nil, fmt.Errorf("%w: decode batch file %s: %v", storage.ErrMalformedBatch, f.path, err)
	}
	for _, b := range batches {
		if _, ok := domain.RawTables[b.Table]; !ok {
			return nil, fmt.Errorf("%w: unknown table %q in batch file", storage.ErrMalformedBatch, b.Table)
		}
	}
	return batches, nil
}
