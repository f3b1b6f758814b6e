package backend

import (
	"strings"

	"github.com/heartmarshall/pokedex-backend/internal/domain"
)

// Backend → canonical mapping table.
//
//	id                     → Record.ID (numeric or numeric string)
//	name (string)          → Record.Name
//	name.{english,...}     → Record.Names[en,...], Record.Name = english|french|first
//	type[]                 → Record.Types (lowercased, deduplicated)
//	base.HP                → stat "hp"
//	base.Attack            → stat "attack"
//	base.Defense           → stat "defense"
//	base.SpecialAttack     → stat "special-attack"
//	base.SpecialDefense    → stat "special-defense"
//	base.Speed             → stat "speed"
//	image                  → Record.Media.Image
//	height, weight         → Record.Height, Record.Weight (raw units)
var languageKeys = map[string]string{
	"english":  "en",
	"french":   "fr",
	"japanese": "ja",
	"chinese":  "zh-Hans",
}

// nameFallbackOrder is the order used to pick the base name from a
// multilingual document.
var nameFallbackOrder = []string{"english", "french", "japanese", "chinese"}

func mapDocument(doc apiDocument) (domain.Record, bool) {
	id, err := domain.ParseID(doc.ID.String())
	if err != nil {
		return domain.Record{}, false
	}

	rec := domain.Record{
		ID:     id,
		Types:  domain.DedupTypes(doc.Type),
		Stats:  mapStats(doc.Base),
		Media:  domain.Media{Image: doc.Image},
		Height: doc.Height,
		Weight: doc.Weight,
	}
	rec.Name, rec.Names = mapName(doc.Name)
	return rec, true
}

func mapName(n apiName) (string, map[string]string) {
	if len(n.ByLang) == 0 {
		return n.Plain, nil
	}

	names := make(map[string]string, len(n.ByLang))
	for k, v := range n.ByLang {
		if v == "" {
			continue
		}
		if code, ok := languageKeys[strings.ToLower(k)]; ok {
			names[code] = v
		} else {
			names[k] = v
		}
	}

	for _, k := range nameFallbackOrder {
		if v := n.ByLang[k]; v != "" {
			return v, names
		}
	}
	// Deterministic fallback: smallest language code.
	base := ""
	bestKey := ""
	for k, v := range n.ByLang {
		if v == "" {
			continue
		}
		if bestKey == "" || k < bestKey {
			bestKey, base = k, v
		}
	}
	return base, names
}

func mapStats(b apiBase) []domain.Stat {
	pairs := []struct {
		name  string
		value *int
	}{
		{domain.StatHP, b.HP},
		{domain.StatAttack, b.Attack},
		{domain.StatDefense, b.Defense},
		{domain.StatSpecialAttack, b.SpecialAttack},
		{domain.StatSpecialDefense, b.SpecialDefense},
		{domain.StatSpeed, b.Speed},
	}
	stats := make([]domain.Stat, 0, len(pairs))
	for _, p := range pairs {
		if p.value == nil {
			continue
		}
		stats = append(stats, domain.Stat{Name: p.name, Value: *p.value})
	}
	return stats
}
