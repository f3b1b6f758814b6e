package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// apiPage is the paginated envelope returned by GET /pokemons.
// Some deployments return a bare array instead; see UnmarshalJSON.
type apiPage struct {
	Results    []apiDocument `json:"results"`
	TotalCount *int          `json:"totalCount"`
}

func (p *apiPage) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &p.Results)
	}
	type envelope apiPage
	var e envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return err
	}
	*p = apiPage(e)
	return nil
}

// apiDocument is a single backend record.
type apiDocument struct {
	ID     json.Number `json:"id"`
	Name   apiName     `json:"name"`
	Type   []string    `json:"type"`
	Base   apiBase     `json:"base"`
	Image  string      `json:"image"`
	Height *float64    `json:"height"`
	Weight *float64    `json:"weight"`
}

// apiBase uses the backend stat naming convention. Absent stats stay nil.
type apiBase struct {
	HP             *int `json:"HP"`
	Attack         *int `json:"Attack"`
	Defense        *int `json:"Defense"`
	SpecialAttack  *int `json:"SpecialAttack"`
	SpecialDefense *int `json:"SpecialDefense"`
	Speed          *int `json:"Speed"`
}

// apiName is either a language→string object or a plain string.
type apiName struct {
	Plain  string
	ByLang map[string]string
}

func (n *apiName) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	switch data[0] {
	case '"':
		return json.Unmarshal(data, &n.Plain)
	case '{':
		return json.Unmarshal(data, &n.ByLang)
	default:
		return fmt.Errorf("name: unsupported json %s", data)
	}
}
