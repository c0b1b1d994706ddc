package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/lazypower/entropy/internal/item"
)

// Load reads every item in insertion order. Rows that fail to restore are
// treated as corruption: logged, and an empty collection is returned.
func (db *DB) Load(ctx context.Context) (*item.Collection, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT item_id, content, kind, entropy, last_refreshed_at, status
		FROM items ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var records []item.Record
	for rows.Next() {
		var r item.Record
		if err := rows.Scan(&r.ID, &r.Content, &r.Type, &r.Entropy, &r.LastHealedTS, &r.Status); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	c, err := restoreAll(records)
	if errors.Is(err, ErrCorrupt) {
		db.logger.Printf("%v; resetting", err)
		return item.NewCollection(), nil
	}
	return c, err
}

// Save replaces the stored collection inside a single transaction.
func (db *DB) Save(ctx context.Context, c *item.Collection) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO items (item_id, content, kind, entropy, last_refreshed_at, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range recordsOf(c) {
		if _, err := stmt.ExecContext(ctx, r.ID, r.Content, string(r.Type), r.Entropy, r.LastHealedTS, string(r.Status)); err != nil {
			return fmt.Errorf("insert item %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}
