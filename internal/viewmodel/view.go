package viewmodel

import (
	"fmt"

	"github.com/heartmarshall/pokedex-backend/internal/domain"
	"github.com/heartmarshall/pokedex-backend/internal/service/enrichment"
)

const maxDetailMoves = 4

// Facet is a selectable type filter.
type Facet struct {
	Type   string `json:"type"`
	Emoji  string `json:"emoji"`
	Active bool   `json:"active"`
}

// Summary describes what the current list shows.
type Summary struct {
	Shown         int    `json:"shown"`
	Filtered      int    `json:"filtered"`
	Type          string `json:"type,omitempty"`
	Search        string `json:"search,omitempty"`
	FavoritesOnly bool   `json:"favoritesOnly"`
	Text          string `json:"text"`
}

// Pagination is the pager state.
type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize,omitempty"`
	TotalPages int  `json:"totalPages,omitempty"`
	TotalKnown bool `json:"totalKnown"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// ListView is the rendered catalog list.
type ListView struct {
	Custom     []Card            `json:"custom"`
	Cards      []Card            `json:"cards"`
	Pagination Pagination        `json:"pagination"`
	Summary    Summary           `json:"summary"`
	Facets     []Facet           `json:"facets"`
	Languages  []string          `json:"languages"`
	Language   string            `json:"language"`
	Sort       domain.SortMode   `json:"sort"`
	BestID     int               `json:"bestId,omitempty"`
	BestFinal  bool              `json:"bestFinal"`
	Enrichment enrichment.Status `json:"enrichment"`
	Revision   uint64            `json:"revision"`
}

// BuildList renders a catalog view together with the enrichment progress.
func BuildList(v domain.View, status enrichment.Status) ListView {
	out := ListView{
		Custom: make([]Card, 0, len(v.Custom)),
		Cards:  make([]Card, 0, len(v.Items)),
		Pagination: Pagination{
			Page:       v.Query.Page,
			TotalPages: v.TotalPages,
			TotalKnown: v.TotalKnown,
			HasNext:    v.HasNext,
			HasPrev:    v.HasPrev,
		},
		Facets:     BuildFacets(v.Types, v.Query.Type),
		Languages:  v.Languages,
		Language:   v.Query.Language,
		Sort:       v.Query.Sort,
		BestID:     v.BestID,
		BestFinal:  v.BestFinal,
		Enrichment: status,
		Revision:   v.Revision,
	}
	for _, it := range v.Custom {
		out.Custom = append(out.Custom, BuildCard(it))
	}
	for _, it := range v.Items {
		out.Cards = append(out.Cards, BuildCard(it))
	}
	out.Summary = BuildSummary(v)
	return out
}

// BuildFacets lists every known type with its icon, marking the active one.
func BuildFacets(types []string, active string) []Facet {
	out := make([]Facet, len(types))
	for i, t := range types {
		out[i] = Facet{Type: t, Emoji: TypeEmoji(t), Active: t == active}
	}
	return out
}

// BuildSummary counts shown and filtered remote entries.
func BuildSummary(v domain.View) Summary {
	s := Summary{
		Shown:         len(v.Items),
		Filtered:      v.FilteredCount,
		Type:          v.Query.Type,
		Search:        v.Query.Search,
		FavoritesOnly: v.Query.FavoritesOnly,
	}

	noun := "Pokémon"
	s.Text = fmt.Sprintf("Showing %d of %d %s", s.Shown, s.Filtered, noun)
	if s.Type != "" {
		s.Text += fmt.Sprintf(" of type %s", s.Type)
	}
	if s.FavoritesOnly {
		s.Text += " (favorites only)"
	}
	return s
}

// DetailView is the rendered single-record view.
type DetailView struct {
	Card
	FullStats []StatBar `json:"fullStats"`
	Abilities []string  `json:"abilities"`
	Moves     []string  `json:"moves"`
	Reference string    `json:"reference,omitempty"`
}

// BuildDetail renders it with every stat, its abilities and the first
// four moves.
func BuildDetail(it domain.ViewItem) DetailView {
	rec := it.Record
	moves := rec.Moves
	if len(moves) > maxDetailMoves {
		moves = moves[:maxDetailMoves]
	}
	d := DetailView{
		Card:      BuildCard(it),
		FullStats: statBars(rec.Stats, 0),
		Abilities: append([]string{}, rec.Abilities...),
		Moves:     append([]string{}, moves...),
		Reference: rec.Reference,
	}
	d.Loaded = true
	return d
}
