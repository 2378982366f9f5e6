package roa

import "slices"

// Entry pairs a canonical record with the 0-based input position that
// produced it.
type Entry struct {
	Record PrefixRange
	Index  int
}

// Set is the ordered, deduplicating collection of prefix ranges. Keys are
// unique under the total order of PrefixRange.Compare, which is coarser
// than structural equality: an explicit-equal record and an order-equal
// implicit one collapse into a single entry.
//
// Insert semantics on an order-equal key: the later occurrence replaces the
// entry outright, record and index both. The retained qualifier and the
// index used for order verification are therefore those of a group's last
// occurrence. Both diagnostics depend on this exact behavior; the rendered
// text does not, since the two equal qualifiers render identically.
type Set struct {
	entries []Entry
}

// NewSet returns an empty Set.
func NewSet() *Set { return &Set{} }

// Add inserts rec at its ordered position, tagged with its input index.
func (s *Set) Add(rec PrefixRange, index int) {
	i, found := slices.BinarySearchFunc(s.entries, rec, func(e Entry, target PrefixRange) int {
		return e.Record.Compare(target)
	})
	if found {
		s.entries[i] = Entry{Record: rec, Index: index}
		return
	}
	s.entries = slices.Insert(s.entries, i, Entry{Record: rec, Index: index})
}

// Entries returns the canonical-order view of the set. The slice is the
// set's own backing storage; callers must not mutate it.
func (s *Set) Entries() []Entry { return s.entries }

// Len returns the number of retained entries.
func (s *Set) Len() int { return len(s.entries) }
