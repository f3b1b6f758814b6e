package catalog

import (
	"slices"
	"sort"
	"strconv"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/heartmarshall/pokedex-backend/internal/domain"
)

// fallbackName is shown when no name is known in any language.
const fallbackName = "Pokémon"

// Query computes the view for q against current state.
func (c *Catalog) Query(q domain.ViewQuery) domain.View {
	q = q.Normalize()
	ov := c.overrides.Snapshot()

	c.mu.RLock()
	defer c.mu.RUnlock()

	view := domain.View{
		Query:     q,
		Types:     c.typesLocked(ov),
		Languages: c.languagesLocked(),
		Revision:  c.revision,
		BestFinal: c.done,
		HasPrev:   q.Page > 1,
	}

	// Steps 1-3: base universe, effective records, deletions.
	page, pageLoaded := c.backend.Get(q.Page)
	universe := c.universeLocked(ov, page.records, q.Language)

	view.BestID = bestID(universe)

	// Step 4: custom records, exempt from every later step.
	for _, r := range ov.Custom {
		if ov.Deleted.Has(r.ID) {
			continue
		}
		view.Custom = append(view.Custom, domain.ViewItem{
			Record:      r.Clone(),
			DisplayName: displayName(r, true, nil, q.Language),
			Favorite:    ov.Favorites.Has(r.ID),
			Enriched:    true,
		})
	}

	// Steps 5-7: type, search, favorites.
	search := domain.NormalizeText(q.Search)
	filtered := make([]domain.ViewItem, 0, len(universe))
	for _, it := range universe {
		if q.Type != "" && !it.Record.HasType(q.Type) {
			continue
		}
		if search != "" && !c.matchesLocked(it, search) {
			continue
		}
		if q.FavoritesOnly && !ov.Favorites.Has(it.Record.ID) {
			continue
		}
		it.Favorite = ov.Favorites.Has(it.Record.ID)
		it.Best = view.BestID != 0 && it.Record.ID == view.BestID
		filtered = append(filtered, it)
	}

	// Step 8.
	sortItems(filtered, q.Sort, q.Language)

	// Step 10.
	view.FilteredCount = len(filtered)
	if c.listingLoaded {
		view.TotalKnown = true
		view.TotalCount = c.listingCount
		view.TotalPages = pages(len(filtered), c.pageSize)
		start := (q.Page - 1) * c.pageSize
		if start < len(filtered) {
			end := min(start+c.pageSize, len(filtered))
			view.Items = filtered[start:end]
		}
		view.HasNext = q.Page < view.TotalPages
	} else {
		// The backend already paginated; the requested page is the universe.
		view.Items = filtered
		switch {
		case page.total != nil:
			view.TotalKnown = true
			view.TotalCount = *page.total
			view.TotalPages = pages(*page.total, c.pageSize)
			view.HasNext = q.Page < view.TotalPages
		case pageLoaded:
			view.TotalCount = len(page.records)
			view.HasNext = len(page.records) > 0
		default:
			view.HasNext = false
		}
	}
	if view.Items == nil {
		view.Items = []domain.ViewItem{}
	}
	if view.Custom == nil {
		view.Custom = []domain.ViewItem{}
	}

	return view
}

// universeLocked resolves the base universe to effective, non-deleted items
// in source order. page is the backend page used until the listing loads.
func (c *Catalog) universeLocked(ov domain.OverrideState, page []domain.Record, lang string) []domain.ViewItem {
	var base []domain.ViewItem
	if c.listingLoaded {
		base = make([]domain.ViewItem, 0, len(c.listing))
		for _, e := range c.listing {
			if r, ok := c.enriched[e.ID]; ok {
				if r.Reference == "" {
					r.Reference = e.Reference
				}
				base = append(base, domain.ViewItem{Record: r, Enriched: true})
				continue
			}
			base = append(base, domain.ViewItem{Record: e.Synthesize()})
		}
	} else {
		base = make([]domain.ViewItem, 0, len(page))
		for _, r := range page {
			base = append(base, domain.ViewItem{Record: r, Enriched: true})
		}
	}

	out := base[:0]
	for _, it := range base {
		id := it.Record.ID
		if ov.Deleted.Has(id) {
			continue
		}
		edited := false
		if p, ok := ov.Modified[id]; ok {
			it.Record = p.Apply(it.Record)
			it.Modified = true
			edited = p.Name != nil
		} else {
			it.Record = it.Record.Clone()
		}
		it.DisplayName = displayName(it.Record, edited, c.names[id], lang)
		out = append(out, it)
	}
	return out
}

// matchesLocked ORs the exact id string, base name and every known
// localized name.
func (c *Catalog) matchesLocked(it domain.ViewItem, search string) bool {
	if search == strconv.Itoa(it.Record.ID) {
		return true
	}
	if domain.ContainsFold(it.Record.Name, search) || domain.ContainsFold(it.DisplayName, search) {
		return true
	}
	for _, n := range it.Record.Names {
		if domain.ContainsFold(n, search) {
			return true
		}
	}
	for _, n := range c.names[it.Record.ID] {
		if domain.ContainsFold(n, search) {
			return true
		}
	}
	return false
}

func (c *Catalog) typesLocked(ov domain.OverrideState) []string {
	set := make(map[string]struct{}, len(c.types))
	for t := range c.types {
		set[t] = struct{}{}
	}
	for _, p := range ov.Modified {
		for _, t := range p.Types {
			set[domain.NormalizeText(t)] = struct{}{}
		}
	}
	for _, r := range ov.Custom {
		for _, t := range r.Types {
			set[t] = struct{}{}
		}
	}
	delete(set, "")
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) languagesLocked() []string {
	out := make([]string, 0, len(c.languages))
	for l := range c.languages {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// displayName resolves the name shown for rec in lang: an edited or custom
// name wins, then the record's own name map, then the localized index, then
// the base name.
func displayName(rec domain.Record, edited bool, index map[string]string, lang string) string {
	if edited || rec.Custom {
		if rec.Name != "" {
			return rec.Name
		}
		return fallbackName
	}
	if n := rec.Names[lang]; n != "" {
		return n
	}
	if n := index[lang]; n != "" {
		return n
	}
	if rec.Name != "" {
		return rec.Name
	}
	if n := rec.Names[domain.DefaultLanguage]; n != "" {
		return n
	}
	return fallbackName
}

// bestID returns the id with the highest stat total among items that carry
// stats. Ties keep the earliest item.
func bestID(items []domain.ViewItem) int {
	best, bestTotal := 0, 0
	for _, it := range items {
		if len(it.Record.Stats) == 0 {
			continue
		}
		if total := it.Record.StatTotal(); total > bestTotal {
			best, bestTotal = it.Record.ID, total
		}
	}
	return best
}

func sortItems(items []domain.ViewItem, mode domain.SortMode, lang string) {
	switch mode {
	case domain.SortStatsAsc:
		slices.SortStableFunc(items, func(a, b domain.ViewItem) int {
			return a.Record.StatTotal() - b.Record.StatTotal()
		})
	case domain.SortStatsDesc:
		slices.SortStableFunc(items, func(a, b domain.ViewItem) int {
			return b.Record.StatTotal() - a.Record.StatTotal()
		})
	case domain.SortName:
		tag, err := language.Parse(lang)
		if err != nil {
			tag = language.English
		}
		col := collate.New(tag, collate.IgnoreCase)
		slices.SortStableFunc(items, func(a, b domain.ViewItem) int {
			return col.CompareString(a.DisplayName, b.DisplayName)
		})
	}
}

func pages(n, size int) int {
	if n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}
