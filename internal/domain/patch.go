package domain

import "slices"

// RecordPatch is a partial record override. Nil fields are left untouched
// when the patch is applied.
type RecordPatch struct {
	Name   *string  `json:"name,omitempty"`
	Height *float64 `json:"height,omitempty"`
	Weight *float64 `json:"weight,omitempty"`
	Image  *string  `json:"image,omitempty"`
	Types  []string `json:"types,omitempty"`
	Stats  []Stat   `json:"stats,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p RecordPatch) IsEmpty() bool {
	return p.Name == nil && p.Height == nil && p.Weight == nil &&
		p.Image == nil && p.Types == nil && p.Stats == nil
}

// Apply shallow-merges the patch over r and returns the result.
func (p RecordPatch) Apply(r Record) Record {
	out := r.Clone()
	if p.Name != nil {
		out.Name = *p.Name
		// An edited name replaces any per-language backend names.
		out.Names = nil
	}
	if p.Height != nil {
		h := *p.Height
		out.Height = &h
	}
	if p.Weight != nil {
		w := *p.Weight
		out.Weight = &w
	}
	if p.Image != nil {
		out.Media.Image = *p.Image
	}
	if p.Types != nil {
		out.Types = DedupTypes(p.Types)
	}
	if p.Stats != nil {
		out.Stats = slices.Clone(p.Stats)
	}
	return out
}

// Merge layers next over p; fields set in next win.
func (p RecordPatch) Merge(next RecordPatch) RecordPatch {
	out := p
	if next.Name != nil {
		out.Name = next.Name
	}
	if next.Height != nil {
		out.Height = next.Height
	}
	if next.Weight != nil {
		out.Weight = next.Weight
	}
	if next.Image != nil {
		out.Image = next.Image
	}
	if next.Types != nil {
		out.Types = slices.Clone(next.Types)
	}
	if next.Stats != nil {
		out.Stats = slices.Clone(next.Stats)
	}
	return out
}
