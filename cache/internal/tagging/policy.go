package tagging

import (
	"fmt"
	"strings"
)

// A Policy decides which resident line of a full set should be evicted, and
// maintains the per-set ordering that the decision is based on.
type Policy interface {
	// Insert records that a block was just placed into wayID.
	Insert(set *Set, wayID int)

	// Touch records a hit on wayID.
	Touch(set *Set, wayID int)

	// Victim returns the way to evict. It must only be called on a full
	// set, and it never mutates the set.
	Victim(set *Set) int
}

// NewPolicy returns the replacement policy named by token (FIFO, LRU, or
// MRU, case-insensitive).
func NewPolicy(token string) (Policy, error) {
	switch strings.ToUpper(token) {
	case "FIFO":
		return FIFOPolicy{}, nil
	case "LRU":
		return LRUPolicy{}, nil
	case "MRU":
		return MRUPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown eviction policy %q", token)
	}
}

// IsValidPolicy reports whether token names a supported replacement policy.
func IsValidPolicy(token string) bool {
	_, err := NewPolicy(token)
	return err == nil
}

// FIFOPolicy evicts the line that has been resident the longest, no matter
// how often it was hit after insertion.
type FIFOPolicy struct{}

// Insert appends the way at the most-recent end of the order queue.
func (FIFOPolicy) Insert(set *Set, wayID int) {
	set.Enqueue(wayID)
}

// Touch does nothing. Arrival order is fixed at insertion.
func (FIFOPolicy) Touch(*Set, int) {}

// Victim returns the oldest-arrival way.
func (FIFOPolicy) Victim(set *Set) int {
	return set.OrderQueue[0]
}

// LRUPolicy evicts the least recently used line. Both hits and insertions
// count as uses.
type LRUPolicy struct{}

// Insert appends the way at the most-recent end of the order queue.
func (LRUPolicy) Insert(set *Set, wayID int) {
	set.Enqueue(wayID)
}

// Touch moves the way to the most-recent end of the order queue.
func (LRUPolicy) Touch(set *Set, wayID int) {
	set.Requeue(wayID)
}

// Victim returns the least recently used way.
func (LRUPolicy) Victim(set *Set) int {
	return set.OrderQueue[0]
}

// MRUPolicy keeps the same recency ledger as LRU but evicts the most
// recently used line instead.
type MRUPolicy struct{}

// Insert appends the way at the most-recent end of the order queue.
func (MRUPolicy) Insert(set *Set, wayID int) {
	set.Enqueue(wayID)
}

// Touch moves the way to the most-recent end of the order queue.
func (MRUPolicy) Touch(set *Set, wayID int) {
	set.Requeue(wayID)
}

// Victim returns the most recently used way.
func (MRUPolicy) Victim(set *Set) int {
	return set.OrderQueue[len(set.OrderQueue)-1]
}
