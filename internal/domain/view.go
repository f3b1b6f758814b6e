package domain

// SortMode selects the ordering of the view list.
type SortMode string

const (
	SortNone      SortMode = "none"
	SortStatsAsc  SortMode = "stats-asc"
	SortStatsDesc SortMode = "stats-desc"
	SortName      SortMode = "name"
)

func (m SortMode) String() string { return string(m) }

func (m SortMode) IsValid() bool {
	switch m {
	case SortNone, SortStatsAsc, SortStatsDesc, SortName:
		return true
	}
	return false
}

// DefaultLanguage is the base/fallback display language.
const DefaultLanguage = "en"

// ViewQuery is the filter/sort/page state a view list is computed from.
type ViewQuery struct {
	Type          string
	Search        string
	FavoritesOnly bool
	Sort          SortMode
	Page          int
	Language      string
}

// Normalize applies defaults: sort none, page 1, language en.
func (q ViewQuery) Normalize() ViewQuery {
	if !q.Sort.IsValid() {
		q.Sort = SortNone
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Language == "" {
		q.Language = DefaultLanguage
	}
	q.Type = NormalizeText(q.Type)
	return q
}

// ViewItem is one rendered entry with the display name already resolved.
type ViewItem struct {
	Record      Record
	DisplayName string
	Favorite    bool
	Best        bool
	Modified    bool
	Enriched    bool
}

// View is the reconciled, filtered, sorted, paginated result of a query.
type View struct {
	Query         ViewQuery
	Custom        []ViewItem
	Items         []ViewItem
	FilteredCount int
	TotalCount    int
	TotalKnown    bool
	TotalPages    int
	HasNext       bool
	HasPrev       bool
	BestID        int
	BestFinal     bool
	Types         []string
	Languages     []string
	Revision      uint64
}
