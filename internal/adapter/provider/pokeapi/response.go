package pokeapi

// apiListing is the bulk listing returned by GET /pokemon?limit=&offset=.
type apiListing struct {
	Count   int            `json:"count"`
	Results []apiNamedLink `json:"results"`
}

// apiNamedLink is the {name, url} pair used throughout PokeAPI.
type apiNamedLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// apiPokemon is the per-record detail document.
type apiPokemon struct {
	ID        int          `json:"id"`
	Name      string       `json:"name"`
	Height    *float64     `json:"height"`
	Weight    *float64     `json:"weight"`
	Types     []apiType    `json:"types"`
	Stats     []apiStat    `json:"stats"`
	Abilities []apiAbility `json:"abilities"`
	Moves     []apiMove    `json:"moves"`
	Sprites   apiSprites   `json:"sprites"`
	Cries     apiCries     `json:"cries"`
}

type apiType struct {
	Slot int          `json:"slot"`
	Type apiNamedLink `json:"type"`
}

type apiStat struct {
	BaseStat int          `json:"base_stat"`
	Stat     apiNamedLink `json:"stat"`
}

type apiAbility struct {
	Ability apiNamedLink `json:"ability"`
}

type apiMove struct {
	Move apiNamedLink `json:"move"`
}

type apiSprites struct {
	FrontDefault string          `json:"front_default"`
	Other        apiOtherSprites `json:"other"`
}

type apiOtherSprites struct {
	OfficialArtwork struct {
		FrontDefault string `json:"front_default"`
	} `json:"official-artwork"`
}

type apiCries struct {
	Latest string `json:"latest"`
	Legacy string `json:"legacy"`
}

// apiSpecies carries localized names for one species.
type apiSpecies struct {
	ID    int       `json:"id"`
	Names []apiName `json:"names"`
}

type apiName struct {
	Name     string       `json:"name"`
	Language apiNamedLink `json:"language"`
}
