// Package tokenset provides a small set-of-token-types type used by the
// FOLLOW-set computer and the lookahead builder. It plays the same role as
// the teacher's util/intset and internal/ints sets (FIRST-token collections
// built up during grammar analysis), simplified from a chunked bitset to a
// map since token-type identifiers here are not guaranteed to be small,
// densely packed, non-negative integers (token.EOF is negative).
package tokenset

import "github.com/ava12/gllk/token"

// Set is a mutable set of token.Type values.
type Set struct {
	items map[token.Type]struct{}
}

// New creates a Set containing the given items.
func New(items ...token.Type) *Set {
	s := &Set{items: make(map[token.Type]struct{}, len(items))}
	for _, it := range items {
		s.items[it] = struct{}{}
	}
	return s
}

// Add inserts items into the set.
func (s *Set) Add(items ...token.Type) {
	for _, it := range items {
		s.items[it] = struct{}{}
	}
}

// Contains reports whether t is a member of the set.
func (s *Set) Contains(t token.Type) bool {
	_, found := s.items[t]
	return found
}

// Union merges other into s.
func (s *Set) Union(other *Set) {
	if other == nil {
		return
	}
	for it := range other.items {
		s.items[it] = struct{}{}
	}
}

// IsEmpty reports whether the set has no members.
func (s *Set) IsEmpty() bool {
	return len(s.items) == 0
}

// Len reports the number of members.
func (s *Set) Len() int {
	return len(s.items)
}

// ToSlice returns the set's members in unspecified order.
func (s *Set) ToSlice() []token.Type {
	result := make([]token.Type, 0, len(s.items))
	for it := range s.items {
		result = append(result, it)
	}
	return result
}

// Clone returns a shallow copy of the set.
func (s *Set) Clone() *Set {
	result := New()
	result.Union(s)
	return result
}
