package domain

// ListingEntry is a lightweight reference known before enrichment.
type ListingEntry struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Reference string `json:"reference"`
}

// Synthesize builds the listing-only fallback record used while detail is unknown.
func (e ListingEntry) Synthesize() Record {
	return Record{
		ID:        e.ID,
		Name:      e.Name,
		Types:     []string{},
		Stats:     []Stat{},
		Reference: e.Reference,
	}
}
