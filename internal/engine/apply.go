package engine

import (
	"github.com/lazypower/entropy/internal/item"
	"github.com/lazypower/entropy/internal/ledger"
)

// ApplyReport summarises one transaction pass.
type ApplyReport struct {
	Created     int
	Refreshed   int // explicit target reset
	MercyHealed int // fallback target reset
	NoEffect    int // refresh that matched nothing it could reset
	Ignored     int // amount outside both bands, or undecodable create
	Duplicates  int // hash already known
}

// Apply processes txs, which the source delivers newest first, from oldest
// to newest. Hashes already present in c are skipped, so replaying the same
// creates against an updated collection changes nothing. A hash repeated
// within txs is only applied once.
func (e *Engine) Apply(c *item.Collection, txs []ledger.Transaction) ApplyReport {
	var rep ApplyReport
	seen := make(map[string]struct{}, len(txs))
	for i := len(txs) - 1; i >= 0; i-- {
		tx := txs[i]
		if _, dup := seen[tx.Hash]; dup || c.Known(tx.Hash) {
			rep.Duplicates++
			continue
		}
		seen[tx.Hash] = struct{}{}

		amount, ok := ledger.Nominal(tx.Value, e.Rules.Decimals)
		if !ok {
			rep.Ignored++
			continue
		}

		switch e.Rules.Classify(amount) {
		case ActionCreate:
			if e.create(c, tx) {
				rep.Created++
			} else {
				rep.Ignored++
			}
		case ActionRefresh:
			switch e.refresh(c, tx) {
			case refreshTarget:
				rep.Refreshed++
			case refreshMercy:
				rep.MercyHealed++
			default:
				rep.NoEffect++
			}
		default:
			rep.Ignored++
		}
	}
	return rep
}

// create appends a new item for tx. Undecodable or empty payloads create
// nothing and leave the hash unregistered.
func (e *Engine) create(c *item.Collection, tx ledger.Transaction) bool {
	msg, ok := e.Decoder.Decode(tx.Input)
	if !ok || msg == "" {
		e.logger.Printf("create %s: payload not decodable, ignored", tx.Hash)
		return false
	}
	it := item.New(tx.Hash, msg, e.Now())
	if !c.Add(it) {
		return false
	}
	e.logger.Printf("new item %s (%s): %s", it.ID, it.Kind, preview(msg, 20))
	return true
}

type refreshOutcome int

const (
	refreshNone refreshOutcome = iota
	refreshTarget
	refreshMercy
)

// refresh resets the item named by the payload. A payload that names no
// known item falls back to a mercy heal of the most decayed living item.
// A payload naming a dead item has no effect.
func (e *Engine) refresh(c *item.Collection, tx ledger.Transaction) refreshOutcome {
	if target, ok := e.Decoder.Decode(tx.Input); ok && target != "" {
		if it, found := c.Get(target); found {
			if it.Reset(e.Now()) {
				e.logger.Printf("refreshed item %s", it.ID)
				return refreshTarget
			}
			e.logger.Printf("refresh %s: target %s is dead", tx.Hash, it.ID)
			return refreshNone
		}
	}

	victim := c.MostDecayed()
	if victim == nil {
		return refreshNone
	}
	victim.Reset(e.Now())
	e.logger.Printf("mercy heal applied to %s", victim.ID)
	return refreshMercy
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
