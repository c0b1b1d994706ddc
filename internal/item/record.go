package item

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRecord is returned when a persisted item cannot be restored.
var ErrInvalidRecord = errors.New("invalid item record")

// Record is the flat persisted shape of an item. Field names match the
// legacy db.json layout; timestamps are unix seconds.
type Record struct {
	ID           string `json:"id"`
	Content      string `json:"content"`
	Type         Kind   `json:"type"`
	Entropy      int    `json:"entropy"`
	LastHealedTS int64  `json:"last_healed_ts"`
	Status       Status `json:"status"`
}

// ToRecord flattens the item for storage.
func (it *Item) ToRecord() Record {
	return Record{
		ID:           it.ID,
		Content:      it.Content(),
		Type:         it.Kind,
		Entropy:      it.Entropy(),
		LastHealedTS: it.LastRefreshedAt.Unix(),
		Status:       it.Status(),
	}
}

// Restore rebuilds an item from its record. A missing type is derived from
// content; dead records always get LostContent regardless of what was stored.
func Restore(r Record) (*Item, error) {
	if r.ID == "" {
		return nil, fmt.Errorf("%w: empty id", ErrInvalidRecord)
	}
	if r.Entropy < 0 {
		return nil, fmt.Errorf("%w: %s: negative entropy %d", ErrInvalidRecord, r.ID, r.Entropy)
	}

	kind := r.Type
	switch kind {
	case KindText, KindImage:
	case "":
		kind = DetectKind(r.Content)
	default:
		return nil, fmt.Errorf("%w: %s: unknown type %q", ErrInvalidRecord, r.ID, r.Type)
	}

	it := &Item{
		ID:              r.ID,
		Kind:            kind,
		LastRefreshedAt: time.Unix(r.LastHealedTS, 0).UTC(),
	}
	switch r.Status {
	case StatusAlive:
		it.State = Alive{Entropy: r.Entropy, Content: r.Content}
	case StatusDead:
		it.State = Dead{Entropy: r.Entropy}
	default:
		return nil, fmt.Errorf("%w: %s: unknown status %q", ErrInvalidRecord, r.ID, r.Status)
	}
	return it, nil
}

// MarshalJSON implements json.Marshaler.
func (it *Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(it.ToRecord())
}

// UnmarshalJSON implements json.Unmarshaler.
func (it *Item) UnmarshalJSON(data []byte) error {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	restored, err := Restore(r)
	if err != nil {
		return err
	}
	*it = *restored
	return nil
}
