// Package store persists the item collection.
//
// Two backends are provided: a JSON file compatible with the legacy
// data/db.json layout, and SQLite. Both tolerate a missing store (empty
// collection) and a corrupted one (logged, reset to empty), and both save
// atomically: either the whole collection is written or the previous state
// is kept.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/lazypower/entropy/internal/config"
	"github.com/lazypower/entropy/internal/item"
)

// ErrCorrupt marks persisted state that could not be parsed. Load absorbs
// it and returns an empty collection.
var ErrCorrupt = errors.New("store corrupted")

// Store loads and saves the full item collection.
type Store interface {
	Load(ctx context.Context) (*item.Collection, error)
	Save(ctx context.Context, c *item.Collection) error
	Close() error
}

// New returns the backend selected by cfg.Driver.
func New(cfg config.StoreConfig, logger *log.Logger) (Store, error) {
	if logger == nil {
		logger = log.Default()
	}
	switch cfg.Driver {
	case "", "json":
		return NewJSONFile(cfg.Path, logger), nil
	case "sqlite":
		db, err := Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		db.logger = logger
		return db, nil
	default:
		return nil, fmt.Errorf("unknown store driver: %q", cfg.Driver)
	}
}

// restoreAll rebuilds items from records, failing with ErrCorrupt on the
// first invalid one.
func restoreAll(records []item.Record) (*item.Collection, error) {
	c := item.NewCollection()
	for _, r := range records {
		it, err := item.Restore(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if !c.Add(it) {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrCorrupt, it.ID)
		}
	}
	return c, nil
}

func recordsOf(c *item.Collection) []item.Record {
	records := make([]item.Record, 0, c.Len())
	for _, it := range c.Items() {
		records = append(records, it.ToRecord())
	}
	return records
}
