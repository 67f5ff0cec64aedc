package ai

import "sync"

// PricePer1KTokens is a conservative upper bound in USD used for the
// affordability gate.
const PricePer1KTokens = 0.006

// CostTracker accumulates token usage across the process lifetime and
// answers whether another generation call fits under the configured cost
// ceiling. Calls that would exceed it are skipped, not retried.
type CostTracker struct {
	mu          sync.Mutex
	totalTokens int
	maxCostUSD  float64
}

func NewCostTracker(maxCostUSD float64) *CostTracker {
	return &CostTracker{maxCostUSD: maxCostUSD}
}

// CanAfford reports whether spending expectedTokens more would keep the
// projected cost within the ceiling.
func (t *CostTracker) CanAfford(expectedTokens int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	projected := float64(t.totalTokens+expectedTokens) / 1000.0 * PricePer1KTokens
	return projected <= t.maxCostUSD
}

// Record adds actual token usage reported by the API.
func (t *CostTracker) Record(tokens int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totalTokens += tokens
}

// TotalTokens returns the cumulative token usage so far.
func (t *CostTracker) TotalTokens() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalTokens
}

// EstimatedCost returns the cost of the usage recorded so far in USD.
func (t *CostTracker) EstimatedCost() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return float64(t.totalTokens) / 1000.0 * PricePer1KTokens
}
