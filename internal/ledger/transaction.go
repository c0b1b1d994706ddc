// Package ledger reads payments sent to the treasury address.
//
// It knows how to talk to an Etherscan-compatible explorer API, how to turn
// a transaction's input data into text, and how to convert smallest-unit
// amounts into nominal ones. It knows nothing about items.
package ledger

import (
	"context"
	"math/big"
)

// Transaction is a payment to the treasury as reported by a Source.
type Transaction struct {
	Hash string
	// Value is the paid amount in the ledger's smallest unit (wei).
	// Nil when the source reported something unparseable.
	Value *big.Int
	// Input is the raw payload, usually 0x-prefixed hex.
	Input string
}

// Source supplies the most recent transactions sent to an address,
// newest first. Ordering and uniqueness are best-effort.
type Source interface {
	Fetch(ctx context.Context, address string, window int) ([]Transaction, error)
}

// Nominal converts a smallest-unit amount into nominal units, e.g. wei to
// AVAX with decimals=18. Returns false for a nil value.
func Nominal(value *big.Int, decimals int) (float64, bool) {
	if value == nil {
		return 0, false
	}
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	f, _ := new(big.Rat).SetFrac(value, denom).Float64()
	return f, true
}

// ParseValue parses a base-10 smallest-unit amount. Returns nil on failure.
func ParseValue(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil
	}
	return v
}
