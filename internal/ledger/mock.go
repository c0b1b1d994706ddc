package ledger

import "context"

// MockSource is a test double for Source. It can also back a dry run
// against a fixed transaction list.
type MockSource struct {
	Transactions []Transaction
	Err          error
	Calls        []string // records addresses fetched
}

// Fetch records the call and returns the configured transactions.
func (m *MockSource) Fetch(ctx context.Context, address string, window int) ([]Transaction, error) {
	m.Calls = append(m.Calls, address)
	if m.Err != nil {
		return nil, m.Err
	}
	txs := m.Transactions
	if len(txs) > window {
		txs = txs[:window]
	}
	return txs, nil
}
