package domain

import "slices"

// DisplayFactor converts raw height/weight units into meters/kilograms.
const DisplayFactor = 0.1

// Canonical stat names, in display order.
const (
	StatHP             = "hp"
	StatAttack         = "attack"
	StatDefense        = "defense"
	StatSpecialAttack  = "special-attack"
	StatSpecialDefense = "special-defense"
	StatSpeed          = "speed"
)

// Stat is a single named base stat.
type Stat struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Media holds optional image and sound cue references.
type Media struct {
	Image      string `json:"image,omitempty"`
	CryPrimary string `json:"cryPrimary,omitempty"`
	CryLegacy  string `json:"cryLegacy,omitempty"`
}

// Record is the canonical shape every catalog item is normalized to,
// regardless of whether it came from the backend, PokeAPI, or a local creation.
type Record struct {
	ID        int               `json:"id"`
	Name      string            `json:"name"`
	Names     map[string]string `json:"names,omitempty"`
	Types     []string          `json:"types"`
	Stats     []Stat            `json:"stats"`
	Media     Media             `json:"media"`
	Height    *float64          `json:"height,omitempty"`
	Weight    *float64          `json:"weight,omitempty"`
	Abilities []string          `json:"abilities,omitempty"`
	Moves     []string          `json:"moves,omitempty"`
	Reference string            `json:"reference,omitempty"`
	Custom    bool              `json:"custom,omitempty"`
}

// StatTotal returns the aggregate of all stat values.
func (r Record) StatTotal() int {
	total := 0
	for _, s := range r.Stats {
		total += s.Value
	}
	return total
}

// HasType reports whether the record carries the given type tag.
func (r Record) HasType(t string) bool {
	return slices.Contains(r.Types, t)
}

// Sound returns the preferred sound cue: primary first, then legacy.
func (r Record) Sound() string {
	if r.Media.CryPrimary != "" {
		return r.Media.CryPrimary
	}
	return r.Media.CryLegacy
}

// Clone returns a deep copy so callers can never mutate shared state.
func (r Record) Clone() Record {
	out := r
	out.Types = slices.Clone(r.Types)
	out.Stats = slices.Clone(r.Stats)
	out.Abilities = slices.Clone(r.Abilities)
	out.Moves = slices.Clone(r.Moves)
	if r.Names != nil {
		out.Names = make(map[string]string, len(r.Names))
		for k, v := range r.Names {
			out.Names[k] = v
		}
	}
	if r.Height != nil {
		h := *r.Height
		out.Height = &h
	}
	if r.Weight != nil {
		w := *r.Weight
		out.Weight = &w
	}
	return out
}

// DedupTypes removes empty and repeated type tags while keeping order.
func DedupTypes(types []string) []string {
	out := make([]string, 0, len(types))
	seen := make(map[string]struct{}, len(types))
	for _, t := range types {
		t = NormalizeText(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
