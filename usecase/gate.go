package usecase

import "sync"

// WriteGate serializes every mutating engine operation. The ledger is a
// single-writer state machine: a purchase and a refund touching the same
// round's counters must never interleave. Reads bypass the gate.
type WriteGate struct {
	mu sync.Mutex
}

// Do runs fn while holding the gate. A nil gate runs fn directly, which keeps
// single-threaded tests free of locking ceremony.
func (g *WriteGate) Do(fn func() error) error {
	if g == nil {
		return fn()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn()
}
