// Provides lazily built, in-memory secondary indexes for tables.

package jsondb

import (
	"log/slog"
	"sync"
)

// GroupIndex provides O(1) lookup by a non-unique secondary key.
//
// The index is built on the first lookup by scanning the table once. Rows
// sharing a key are returned in table order.
type GroupIndex[K comparable, T Row] struct {
	table   *Table[T]
	keyFunc func(T) K
	mu      sync.Mutex
	byKey   map[K][]int
}

// NewGroupIndex creates a non-unique index on the given table.
//
// The keyFunc extracts the index key from each row. Multiple rows
// may share the same key.
func NewGroupIndex[K comparable, T Row](table *Table[T], keyFunc func(T) K) *GroupIndex[K, T] {
	return &GroupIndex[K, T]{
		table:   table,
		keyFunc: keyFunc,
	}
}

// Built reports whether the index has been materialized.
func (idx *GroupIndex[K, T]) Built() bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.byKey != nil
}

// Lookup returns all rows matching key, in table order.
//
// An unknown key yields an empty result, not an error.
func (idx *GroupIndex[K, T]) Lookup(key K) ([]T, error) {
	rows, err := idx.table.Rows()
	if err != nil {
		return nil, err
	}
	idx.mu.Lock()
	if idx.byKey == nil {
		byKey := make(map[K][]int)
		for i, row := range rows {
			k := idx.keyFunc(row)
			byKey[k] = append(byKey[k], i)
		}
		idx.byKey = byKey
		slog.Debug("Indexed table", "table", idx.table.Name(), "keys", len(byKey))
	}
	positions := idx.byKey[key]
	idx.mu.Unlock()

	out := make([]T, 0, len(positions))
	for _, i := range positions {
		out = append(out, rows[i])
	}
	return out, nil
}
