// Package payment implements the mocked payment gate: each user gets a
// number of free calculations; past the limit the bot offers a mock invoice
// and "paying" lifts the limit. No real payment provider is involved.
package payment

import "sync"

// Unlimited disables the quota entirely.
const Unlimited = 0

// Gate tracks per-user usage against a free-calculation limit. Counters are
// in memory only and reset on restart.
type Gate struct {
	freeLimit int

	mu   sync.Mutex
	used map[int64]int
	paid map[int64]bool
}

// NewGate creates a gate with the given free-calculation limit per user.
// A limit of Unlimited (0) allows everything.
func NewGate(freeLimit int) *Gate {
	return &Gate{
		freeLimit: freeLimit,
		used:      make(map[int64]int),
		paid:      make(map[int64]bool),
	}
}

// Allow reports whether the user may run another calculation.
func (g *Gate) Allow(userID int64) bool {
	if g.freeLimit == Unlimited {
		return true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paid[userID] || g.used[userID] < g.freeLimit
}

// Record counts one completed calculation for the user.
func (g *Gate) Record(userID int64) {
	if g.freeLimit == Unlimited {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.used[userID]++
}

// Remaining returns the user's remaining free calculations, or -1 when the
// gate is unlimited or the user has paid.
func (g *Gate) Remaining(userID int64) int {
	if g.freeLimit == Unlimited {
		return -1
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.paid[userID] {
		return -1
	}
	rest := g.freeLimit - g.used[userID]
	if rest < 0 {
		return 0
	}
	return rest
}

// MarkPaid records a successful mock payment, lifting the user's limit.
func (g *Gate) MarkPaid(userID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paid[userID] = true
}
