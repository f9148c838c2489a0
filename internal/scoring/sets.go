package scoring

import (
	"encoding/json"
	"sort"
)

// MetaboliteSet is a set of metabolite identifiers
type MetaboliteSet map[string]struct{}

// NewMetaboliteSet builds a set from ids
func NewMetaboliteSet(ids ...string) MetaboliteSet {
	s := make(MetaboliteSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts ids into the set
func (s MetaboliteSet) Add(ids ...string) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

// Remove deletes ids from the set
func (s MetaboliteSet) Remove(ids ...string) {
	for _, id := range ids {
		delete(s, id)
	}
}

// Has reports membership
func (s MetaboliteSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in sorted order
func (s MetaboliteSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted array
func (s MetaboliteSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes a JSON array into the set
func (s *MetaboliteSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewMetaboliteSet(ids...)
	return nil
}

// candidateSet is the ordered set of exchange reactions MP still tracks.
// Termination compares candidate sets by size and membership.
type candidateSet struct {
	ids   []string
	index map[string]bool
}

func newCandidateSet(ids []string) candidateSet {
	c := candidateSet{ids: make([]string, 0, len(ids)), index: make(map[string]bool, len(ids))}
	for _, id := range ids {
		if c.index[id] {
			continue
		}
		c.index[id] = true
		c.ids = append(c.ids, id)
	}
	return c
}

func (c candidateSet) Len() int {
	return len(c.ids)
}

// without returns a new set lacking every id for which drop is true
func (c candidateSet) without(drop func(id string) bool) candidateSet {
	kept := make([]string, 0, len(c.ids))
	for _, id := range c.ids {
		if !drop(id) {
			kept = append(kept, id)
		}
	}
	return newCandidateSet(kept)
}

func (c candidateSet) equal(other candidateSet) bool {
	if len(c.ids) != len(other.ids) {
		return false
	}
	for _, id := range c.ids {
		if !other.index[id] {
			return false
		}
	}
	return true
}
