// Package types provides type definitions for structured data used throughout the factory onboarding system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"sort"
)

// IDSet is an unordered set of entity IDs
type IDSet map[string]struct{}

// NewIDSet builds a set from the given IDs
func NewIDSet(ids ...string) IDSet {
	set := make(IDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Add inserts an ID into the set
func (s IDSet) Add(id string) {
	s[id] = struct{}{}
}

// Has reports whether the ID is in the set
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of IDs in the set
func (s IDSet) Len() int {
	return len(s)
}

// Sorted returns the IDs in lexical order
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Difference returns the sorted IDs present in s but not in other
func (s IDSet) Difference(other IDSet) []string {
	out := make([]string, 0)
	for id := range s {
		if !other.Has(id) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Equal reports whether both sets hold exactly the same IDs
func (s IDSet) Equal(other IDSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as a sorted array
func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes a JSON array into the set
func (s *IDSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}

// ExplicitIDs holds the entity IDs mentioned verbatim in the source text.
// It is the audit baseline every later stage is checked against.
type ExplicitIDs struct {
	MachineIDs IDSet `json:"machine_ids"`
	JobIDs     IDSet `json:"job_ids"`
}
