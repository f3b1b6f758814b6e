package domain

// Storage keys of the four override maps.
const (
	KeyFavorites = "pokemonFavorites"
	KeyCustom    = "customPokemons"
	KeyDeleted   = "deletedPokemons"
	KeyModified  = "modifiedPokemons"
)

// OverrideState is every local-only modification layered over remote data.
type OverrideState struct {
	Favorites IDSet
	Custom    []Record
	Deleted   IDSet
	Modified  map[int]RecordPatch
}

// EmptyOverrideState returns a state with every container initialized.
func EmptyOverrideState() OverrideState {
	return OverrideState{
		Favorites: IDSet{},
		Custom:    []Record{},
		Deleted:   IDSet{},
		Modified:  map[int]RecordPatch{},
	}
}

// Clone returns a deep copy.
func (s OverrideState) Clone() OverrideState {
	out := OverrideState{
		Favorites: s.Favorites.Clone(),
		Deleted:   s.Deleted.Clone(),
		Custom:    make([]Record, len(s.Custom)),
		Modified:  make(map[int]RecordPatch, len(s.Modified)),
	}
	for i, r := range s.Custom {
		out.Custom[i] = r.Clone()
	}
	for id, p := range s.Modified {
		out.Modified[id] = p.Merge(RecordPatch{})
	}
	return out
}

// CustomByID returns the custom record with the given id.
func (s OverrideState) CustomByID(id int) (Record, bool) {
	for _, r := range s.Custom {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// Effective applies the modified override for r.ID, when present.
func (s OverrideState) Effective(r Record) Record {
	if p, ok := s.Modified[r.ID]; ok {
		return p.Apply(r)
	}
	return r
}

// OverridePatch selects which maps a save writes. Nil fields are not written.
type OverridePatch struct {
	Favorites IDSet
	Custom    []Record
	Deleted   IDSet
	Modified  map[int]RecordPatch
}
