package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// MaxRemoteID bounds the species index. Synthetic ids are always above it.
const MaxRemoteID = 100_000

// ParseID converts the textual form of an id into the canonical integer id.
func ParseID(s string) (int, error) {
	s = strings.TrimSpace(s)
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parse id %q: %w", s, ErrValidation)
	}
	if id <= 0 {
		return 0, fmt.Errorf("parse id %q: must be positive: %w", s, ErrValidation)
	}
	return id, nil
}

// IDFromReference extracts the id from the final numeric path segment of a
// reference URL, e.g. "https://pokeapi.co/api/v2/pokemon/25/" -> 25.
func IDFromReference(ref string) (int, error) {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	segments := strings.Split(ref, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] == "" {
			continue
		}
		return ParseID(segments[i])
	}
	return 0, fmt.Errorf("reference %q has no id segment: %w", ref, ErrValidation)
}

// IDSet is a set of canonical ids. Its JSON form is a sorted array.
type IDSet map[int]struct{}

// NewIDSet builds a set from the given ids.
func NewIDSet(ids ...int) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s IDSet) Has(id int) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending order.
func (s IDSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Clone returns an independent copy.
func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// NewSyntheticID derives an id for a locally created record from the creation
// time in milliseconds, bumped while it collides with a taken id.
func NewSyntheticID(now time.Time, taken IDSet) int {
	id := int(now.UnixMilli())
	if id <= MaxRemoteID {
		id = MaxRemoteID + 1
	}
	for taken.Has(id) {
		id++
	}
	return id
}

// IsSynthetic reports whether id belongs to a locally created record.
func IsSynthetic(id int) bool {
	return id > MaxRemoteID
}

// MarshalJSON encodes the set as a sorted array of ids.
func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON accepts an array whose members are numbers or numeric strings.
func (s *IDSet) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("id set: %w", err)
	}
	out := make(IDSet, len(raw))
	for _, item := range raw {
		var n int
		if err := json.Unmarshal(item, &n); err == nil {
			out[n] = struct{}{}
			continue
		}
		var str string
		if err := json.Unmarshal(item, &str); err != nil {
			return fmt.Errorf("id set member %s: %w", item, ErrMalformedStorage)
		}
		id, err := ParseID(str)
		if err != nil {
			return err
		}
		out[id] = struct{}{}
	}
	*s = out
	return nil
}
