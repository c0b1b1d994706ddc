// Package item defines the content items kept alive by ledger activity.
//
// An item is either Alive (it carries content and an entropy counter) or
// Dead (content is gone for good). The transition is one-way: nothing in
// this package can turn a Dead state back into an Alive one.
package item

import (
	"strings"
	"time"
)

// LostContent replaces the content of every dead item.
const LostContent = "[DATA_LOST_TO_ENTROPY]"

// Kind classifies an item's content.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// DetectKind returns KindImage for content that looks like a URL, KindText otherwise.
func DetectKind(content string) Kind {
	if strings.HasPrefix(content, "http") {
		return KindImage
	}
	return KindText
}

// Status is the lifecycle status as persisted.
type Status string

const (
	StatusAlive Status = "alive"
	StatusDead  Status = "dead"
)

// State is the lifecycle state of an item: Alive or Dead.
type State interface {
	status() Status
}

// Alive is the state of a living item.
type Alive struct {
	Entropy int
	Content string
}

// Dead is the terminal state. Entropy is frozen at the value it died with.
type Dead struct {
	Entropy int
}

func (Alive) status() Status { return StatusAlive }
func (Dead) status() Status  { return StatusDead }

// Item is a single entry in the collection. ID is the hash of the
// transaction that created it.
type Item struct {
	ID              string
	Kind            Kind
	LastRefreshedAt time.Time
	State           State
}

// New returns a fresh alive item with zero entropy.
func New(id, content string, now time.Time) *Item {
	return &Item{
		ID:              id,
		Kind:            DetectKind(content),
		LastRefreshedAt: now,
		State:           Alive{Content: content},
	}
}

// Status reports the item's lifecycle status.
func (it *Item) Status() Status {
	if it.State == nil {
		return StatusDead
	}
	return it.State.status()
}

// IsAlive reports whether the item is alive.
func (it *Item) IsAlive() bool {
	_, ok := it.State.(Alive)
	return ok
}

// Entropy returns the current entropy, frozen for dead items.
func (it *Item) Entropy() int {
	switch s := it.State.(type) {
	case Alive:
		return s.Entropy
	case Dead:
		return s.Entropy
	}
	return 0
}

// Content returns the item's text, or LostContent once dead.
func (it *Item) Content() string {
	if s, ok := it.State.(Alive); ok {
		return s.Content
	}
	return LostContent
}

// Age advances a living item by one tick. When entropy reaches limit the item
// dies and its content is discarded. Dead items are left untouched.
// Returns whether the item died on this tick.
func (it *Item) Age(limit int) bool {
	s, ok := it.State.(Alive)
	if !ok {
		return false
	}
	s.Entropy++
	if s.Entropy >= limit {
		it.State = Dead{Entropy: s.Entropy}
		return true
	}
	it.State = s
	return false
}

// Reset zeroes a living item's entropy and stamps the refresh time.
// Returns false, without changes, if the item is dead.
func (it *Item) Reset(now time.Time) bool {
	s, ok := it.State.(Alive)
	if !ok {
		return false
	}
	s.Entropy = 0
	it.State = s
	it.LastRefreshedAt = now
	return true
}
