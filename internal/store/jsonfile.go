package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/lazypower/entropy/internal/item"
)

// JSONFile stores the collection as a pretty-printed JSON array.
type JSONFile struct {
	Path   string
	logger *log.Logger
}

// NewJSONFile returns a JSON store at path. The file need not exist.
func NewJSONFile(path string, logger *log.Logger) *JSONFile {
	if logger == nil {
		logger = log.Default()
	}
	return &JSONFile{Path: path, logger: logger}
}

// Load reads the collection. A missing or blank file is an empty
// collection; so is a corrupted one, after logging.
func (f *JSONFile) Load(ctx context.Context) (*item.Collection, error) {
	c, err := f.read()
	if errors.Is(err, ErrCorrupt) {
		f.logger.Printf("%v; resetting", err)
		return item.NewCollection(), nil
	}
	return c, err
}

func (f *JSONFile) read() (*item.Collection, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return item.NewCollection(), nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return item.NewCollection(), nil
	}

	var records []item.Record
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, f.Path, err)
	}
	return restoreAll(records)
}

// Save replaces the file with the full collection. The write goes to a
// temporary file that is renamed into place.
func (f *JSONFile) Save(ctx context.Context, c *item.Collection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	b, err := json.MarshalIndent(recordsOf(c), "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	b = append(b, '\n')
	if err := renameio.WriteFile(f.Path, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// Close is a no-op.
func (f *JSONFile) Close() error { return nil }
