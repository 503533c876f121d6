// Package store provides the fixed-capacity package table used as the
// simulation's single source of truth for package records.
package store

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrTableFull       = errors.New("table is full")
	ErrInvalidKey      = errors.New("key must not be negative")
	ErrInvalidCapacity = errors.New("capacity must be positive")
)

type slotState uint8

const (
	empty slotState = iota
	occupied
	removed
)

type slot[V any] struct {
	key   int
	value V
}

// Table maps integer keys to values using open addressing with linear probing.
// The capacity is fixed at construction; there is no resize.
// Table is not safe for concurrent writes.
type Table[V any] struct {
	slots  []slot[V]
	states []slotState
	size   int
}

func New[V any](capacity int) (*Table[V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("new table: capacity=%d: %w", capacity, ErrInvalidCapacity)
	}
	return &Table[V]{
		slots:  make([]slot[V], capacity),
		states: make([]slotState, capacity),
	}, nil
}

func (t *Table[V]) home(key int) int { return key % len(t.slots) }

// Insert stores value under key, replacing any existing value for that key.
func (t *Table[V]) Insert(key int, value V) error {
	if key < 0 {
		return fmt.Errorf("insert key=%d: %w", key, ErrInvalidKey)
	}

	// An existing entry may sit past a tombstone, so locate it first.
	if idx, ok := t.find(key); ok {
		t.slots[idx].value = value
		return nil
	}

	start := t.home(key)
	idx := start
	for {
		if t.states[idx] != occupied {
			t.slots[idx] = slot[V]{key: key, value: value}
			t.states[idx] = occupied
			t.size++
			return nil
		}

		idx = (idx + 1) % len(t.slots)
		if idx == start {
			return fmt.Errorf("insert key=%d capacity=%d: %w", key, len(t.slots), ErrTableFull)
		}
	}
}

// Lookup returns the value stored under key.
func (t *Table[V]) Lookup(key int) (V, bool) {
	if idx, ok := t.find(key); ok {
		return t.slots[idx].value, true
	}
	var zero V
	return zero, false
}

// Remove leaves a tombstone so later probe chains stay intact.
func (t *Table[V]) Remove(key int) bool {
	idx, ok := t.find(key)
	if !ok {
		return false
	}
	var zero V
	t.slots[idx] = slot[V]{value: zero}
	t.states[idx] = removed
	t.size--
	return true
}

func (t *Table[V]) find(key int) (int, bool) {
	if key < 0 {
		return 0, false
	}

	start := t.home(key)
	idx := start
	for t.states[idx] != empty {
		if t.states[idx] == occupied && t.slots[idx].key == key {
			return idx, true
		}
		idx = (idx + 1) % len(t.slots)
		if idx == start {
			break
		}
	}
	return 0, false
}

// Len returns the number of stored entries.
func (t *Table[V]) Len() int { return t.size }

// Cap returns the fixed slot count.
func (t *Table[V]) Cap() int { return len(t.slots) }

// Keys returns all stored keys in ascending order.
func (t *Table[V]) Keys() []int {
	keys := make([]int, 0, t.size)
	for i, st := range t.states {
		if st == occupied {
			keys = append(keys, t.slots[i].key)
		}
	}
	slices.Sort(keys)
	return keys
}

// Each visits entries in ascending key order until fn returns false.
func (t *Table[V]) Each(fn func(key int, value V) bool) {
	for _, k := range t.Keys() {
		v, _ := t.Lookup(k)
		if !fn(k, v) {
			return
		}
	}
}
