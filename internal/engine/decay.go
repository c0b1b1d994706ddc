package engine

import "github.com/lazypower/entropy/internal/item"

// DecayReport summarises one decay pass.
type DecayReport struct {
	Aged int // living items that gained one entropy
	Died int // of those, items that crossed MaxEntropy
}

// Decay ages every living item by exactly one tick and kills those that
// reach MaxEntropy. Dead items are untouched. Must run once per cycle,
// before Apply.
func (e *Engine) Decay(c *item.Collection) DecayReport {
	var rep DecayReport
	for _, it := range c.Items() {
		if !it.IsAlive() {
			continue
		}
		died := it.Age(e.Rules.MaxEntropy)
		rep.Aged++
		e.logger.Printf("item %s entropy increased to %d", it.ID, it.Entropy())
		if died {
			rep.Died++
			e.logger.Printf("item %s has died", it.ID)
		}
	}
	return rep
}
