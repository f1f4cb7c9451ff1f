package index

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
)

// MemoryIndex implements audit.Index in memory.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries []*audit.IndexEntry
	ids     map[string]struct{}
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{ids: make(map[string]struct{})}
}

// Store records a copy of entry.
func (m *MemoryIndex) Store(ctx context.Context, entry *audit.IndexEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ids[entry.AuditID]; ok {
		return audit.NewIndexError("memory", "store", fmt.Errorf("duplicate audit_id %s", entry.AuditID))
	}

	entryCopy := *entry
	m.entries = append(m.entries, &entryCopy)
	m.ids[entry.AuditID] = struct{}{}
	return nil
}

// Query returns copies of matching entries, newest first.
func (m *MemoryIndex) Query(ctx context.Context, query *audit.IndexQuery) ([]*audit.IndexEntry, error) {
	if err := Validate(query); err != nil {
		return nil, err
	}

	matched := m.match(query)

	// Insertion order is the tiebreaker for equal timestamps: later first.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	offset := 0
	if query != nil {
		offset = query.Offset
	}
	if offset >= len(matched) {
		return []*audit.IndexEntry{}, nil
	}

	end := offset + limitOf(query)
	if end > len(matched) {
		end = len(matched)
	}

	results := make([]*audit.IndexEntry, 0, end-offset)
	for _, e := range matched[offset:end] {
		entryCopy := *e
		results = append(results, &entryCopy)
	}
	return results, nil
}

// Count returns the number of matching entries.
func (m *MemoryIndex) Count(ctx context.Context, query *audit.IndexQuery) (int64, error) {
	if err := Validate(query); err != nil {
		return 0, err
	}
	return int64(len(m.match(query))), nil
}

// Close implements audit.Index.
func (m *MemoryIndex) Close() error {
	return nil
}

// match returns matching entries, most recently stored first.
func (m *MemoryIndex) match(query *audit.IndexQuery) []*audit.IndexEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*audit.IndexEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if matches(m.entries[i], query) {
			matched = append(matched, m.entries[i])
		}
	}
	return matched
}

func matches(e *audit.IndexEntry, q *audit.IndexQuery) bool {
	if q == nil {
		return true
	}
	if q.StartTime != nil && e.Timestamp.Before(*q.StartTime) {
		return false
	}
	if q.EndTime != nil && !e.Timestamp.Before(*q.EndTime) {
		return false
	}
	if q.EventType != "" && e.EventType != q.EventType {
		return false
	}
	if q.Level != "" && e.Level != q.Level {
		return false
	}
	if q.Category != "" && e.Category != q.Category {
		return false
	}
	if q.ComplianceValid != nil && e.ComplianceValid != *q.ComplianceValid {
		return false
	}
	return true
}
