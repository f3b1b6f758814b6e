package provider

import "github.com/heartmarshall/pokedex-backend/internal/domain"

// Page is one page of records from the paginated document backend.
type Page struct {
	Number  int
	Records []domain.Record
	// Total is the backend-reported record count; nil when the backend omits it.
	Total *int
}

// Listing is the full addressable universe from the third-party API.
type Listing struct {
	Entries []domain.ListingEntry
	Count   int
}

// LocalizedNames is the language→name map resolved for one record.
type LocalizedNames struct {
	ID    int
	Names map[string]string
}
