package pokeapi

import (
	"github.com/heartmarshall/pokedex-backend/internal/domain"
	"github.com/heartmarshall/pokedex-backend/internal/provider"
)

// PokeAPI → canonical mapping table.
//
//	id                                        → Record.ID
//	name                                      → Record.Name
//	types[].type.name                         → Record.Types (slot order, deduplicated)
//	stats[].{stat.name, base_stat}            → Record.Stats
//	sprites.other.official-artwork.front_default
//	  | sprites.front_default                 → Record.Media.Image
//	cries.latest, cries.legacy                → Record.Media.CryPrimary, CryLegacy
//	height, weight                            → Record.Height, Record.Weight (raw units)
//	abilities[].ability.name                  → Record.Abilities
//	moves[].move.name                         → Record.Moves
func mapPokemon(p apiPokemon, ref string) domain.Record {
	types := make([]string, 0, len(p.Types))
	for _, t := range p.Types {
		types = append(types, t.Type.Name)
	}

	stats := make([]domain.Stat, 0, len(p.Stats))
	for _, s := range p.Stats {
		stats = append(stats, domain.Stat{Name: s.Stat.Name, Value: s.BaseStat})
	}

	abilities := make([]string, 0, len(p.Abilities))
	for _, a := range p.Abilities {
		abilities = append(abilities, a.Ability.Name)
	}

	moves := make([]string, 0, len(p.Moves))
	for _, m := range p.Moves {
		moves = append(moves, m.Move.Name)
	}

	image := p.Sprites.Other.OfficialArtwork.FrontDefault
	if image == "" {
		image = p.Sprites.FrontDefault
	}

	return domain.Record{
		ID:    p.ID,
		Name:  p.Name,
		Types: domain.DedupTypes(types),
		Stats: stats,
		Media: domain.Media{
			Image:      image,
			CryPrimary: p.Cries.Latest,
			CryLegacy:  p.Cries.Legacy,
		},
		Height:    p.Height,
		Weight:    p.Weight,
		Abilities: abilities,
		Moves:     moves,
		Reference: ref,
	}
}

func mapListing(l apiListing) *provider.Listing {
	out := &provider.Listing{
		Entries: make([]domain.ListingEntry, 0, len(l.Results)),
		Count:   l.Count,
	}
	for _, r := range l.Results {
		id, err := domain.IDFromReference(r.URL)
		if err != nil {
			continue
		}
		out.Entries = append(out.Entries, domain.ListingEntry{ID: id, Name: r.Name, Reference: r.URL})
	}
	if out.Count < len(out.Entries) {
		out.Count = len(out.Entries)
	}
	return out
}

func mapSpecies(s apiSpecies, id int) *provider.LocalizedNames {
	names := make(map[string]string, len(s.Names))
	for _, n := range s.Names {
		if n.Language.Name == "" || n.Name == "" {
			continue
		}
		names[n.Language.Name] = n.Name
	}
	return &provider.LocalizedNames{ID: id, Names: names}
}
