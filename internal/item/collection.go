package item

// Collection is the ordered set of items. Order is insertion order.
// The id index doubles as the set of already-handled transaction hashes.
type Collection struct {
	items []*Item
	index map[string]*Item
}

// NewCollection builds a collection from items in order. Later items whose
// id is already present are dropped.
func NewCollection(items ...*Item) *Collection {
	c := &Collection{index: make(map[string]*Item, len(items))}
	for _, it := range items {
		c.Add(it)
	}
	return c
}

// Len returns the number of items.
func (c *Collection) Len() int { return len(c.items) }

// Items returns the items in insertion order. The slice must not be modified.
func (c *Collection) Items() []*Item { return c.items }

// Known reports whether id belongs to an item in the collection.
func (c *Collection) Known(id string) bool {
	_, ok := c.index[id]
	return ok
}

// Get returns the item with the given id.
func (c *Collection) Get(id string) (*Item, bool) {
	it, ok := c.index[id]
	return it, ok
}

// Add appends it and registers its id. Returns false if the id is already known.
func (c *Collection) Add(it *Item) bool {
	if it == nil || c.Known(it.ID) {
		return false
	}
	c.items = append(c.items, it)
	c.index[it.ID] = it
	return true
}

// MostDecayed returns the alive item with the strictly greatest positive
// entropy. Ties go to the earliest item. Returns nil if no alive item has
// entropy above zero.
func (c *Collection) MostDecayed() *Item {
	var best *Item
	for _, it := range c.items {
		if !it.IsAlive() || it.Entropy() <= 0 {
			continue
		}
		if best == nil || it.Entropy() > best.Entropy() {
			best = it
		}
	}
	return best
}

// Alive returns the living items in order.
func (c *Collection) Alive() []*Item {
	var out []*Item
	for _, it := range c.items {
		if it.IsAlive() {
			out = append(out, it)
		}
	}
	return out
}
