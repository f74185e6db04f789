// Package selection holds the ordered, duplicate-free list of things queued
// for export.
package selection

import "obdexporter/internal/thing"

// Set is an insertion-ordered collection of thing identities without
// duplicates. It is not safe for concurrent mutation; the pipeline controller
// serializes access.
type Set struct {
	order []thing.Identity
	index map[thing.Identity]int
}

// New returns an empty set.
func New() *Set {
	return &Set{index: make(map[thing.Identity]int)}
}

// Add appends id when absent. It reports whether the set changed.
func (s *Set) Add(id thing.Identity) bool {
	if s.index == nil {
		s.index = make(map[thing.Identity]int)
	}
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = len(s.order)
	s.order = append(s.order, id)
	return true
}

// AddAll adds every identity in order, skipping ones already present, and
// returns how many were added.
func (s *Set) AddAll(ids []thing.Identity) int {
	added := 0
	for _, id := range ids {
		if s.Add(id) {
			added++
		}
	}
	return added
}

// Remove drops the given identities. Absent identities are ignored. It returns
// how many were removed.
func (s *Set) Remove(ids ...thing.Identity) int {
	drop := make(map[thing.Identity]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.index[id]; ok {
			drop[id] = struct{}{}
		}
	}
	if len(drop) == 0 {
		return 0
	}
	kept := s.order[:0]
	for _, id := range s.order {
		if _, ok := drop[id]; ok {
			delete(s.index, id)
			continue
		}
		s.index[id] = len(kept)
		kept = append(kept, id)
	}
	clear(s.order[len(kept):])
	s.order = kept
	return len(drop)
}

// Clear empties the set.
func (s *Set) Clear() {
	s.order = nil
	s.index = make(map[thing.Identity]int)
}

// Len returns the number of identities.
func (s *Set) Len() int {
	return len(s.order)
}

// Contains reports whether id is present.
func (s *Set) Contains(id thing.Identity) bool {
	_, ok := s.index[id]
	return ok
}

// Items returns a snapshot of the identities in insertion order.
func (s *Set) Items() []thing.Identity {
	out := make([]thing.Identity, len(s.order))
	copy(out, s.order)
	return out
}
