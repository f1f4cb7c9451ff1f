package chain

import (
	"sync"

	"github.com/emirpasic/gods/queues/circularbuffer"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
)

// DefaultCapacity is the maximum number of entries kept in memory.
const DefaultCapacity = 10000

// Chain is the bounded in-memory tail of the hash chain. When full, the
// oldest entry is evicted; the index counter keeps increasing regardless.
//
// Chain is safe for concurrent use, but only the ledger appends to it.
type Chain struct {
	mu       sync.RWMutex
	buf      *circularbuffer.Queue
	capacity int
	next     int64
	lastHash string
}

// New creates an empty chain starting at index 0 from the genesis hash.
// A non-positive capacity, or one above DefaultCapacity, selects
// DefaultCapacity.
func New(capacity int) *Chain {
	if capacity <= 0 || capacity > DefaultCapacity {
		capacity = DefaultCapacity
	}
	return &Chain{
		buf:      circularbuffer.New(capacity),
		capacity: capacity,
		lastHash: GenesisHash,
	}
}

// Resume creates an empty chain whose next entry links to lastHash and
// receives index next. It is used to continue a persisted chain.
func Resume(capacity int, next int64, lastHash string) *Chain {
	c := New(capacity)
	c.next = next
	if lastHash != "" {
		c.lastHash = lastHash
	}
	return c
}

// Append allocates the next index, links to the previous hash, and stores
// the new entry. Allocation and hashing happen under one lock, so two
// appends can never share a previous hash.
func (c *Chain) Append(auditID, timestamp string) audit.ChainEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := audit.ChainEntry{
		Index:        c.next,
		PreviousHash: c.lastHash,
		Hash:         ComputeHash(auditID, timestamp, c.lastHash),
		AuditID:      auditID,
		Timestamp:    timestamp,
	}

	// Enqueue on a full buffer drops the oldest entry first.
	c.buf.Enqueue(entry)
	c.next++
	c.lastHash = entry.Hash

	return entry
}

// Last returns the newest entry.
func (c *Chain) Last() (audit.ChainEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	size := c.buf.Size()
	if size == 0 {
		return audit.ChainEntry{}, audit.ErrChainEmpty
	}
	values := c.buf.Values()
	return values[size-1].(audit.ChainEntry), nil
}

// Recent returns the newest n entries ordered oldest to newest. n is capped
// to the current length; a non-positive n returns nil.
func (c *Chain) Recent(n int) []audit.ChainEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if n <= 0 {
		return nil
	}
	values := c.buf.Values()
	if n > len(values) {
		n = len(values)
	}

	out := make([]audit.ChainEntry, 0, n)
	for _, v := range values[len(values)-n:] {
		out = append(out, v.(audit.ChainEntry))
	}
	return out
}

// Len returns the number of entries currently held in memory.
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.buf.Size()
}

// Capacity returns the configured maximum length.
func (c *Chain) Capacity() int {
	return c.capacity
}

// NextIndex returns the index the next appended entry will receive.
func (c *Chain) NextIndex() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.next
}

// LastHash returns the hash the next entry will link to.
func (c *Chain) LastHash() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastHash
}
