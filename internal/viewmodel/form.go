package viewmodel

import (
	"bytes"
	"encoding/json"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/heartmarshall/pokedex-backend/internal/domain"
)

// Measure is numeric form input. It accepts a JSON number or string and
// is expressed in display units (meters or kilograms).
type Measure string

// UnmarshalJSON accepts numbers, strings and null.
func (m *Measure) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = Measure(s)
		return nil
	}
	*m = Measure(data)
	return nil
}

// raw parses the measure and converts it to raw units. An empty measure
// yields nil; negative or non-finite values are rejected.
func (m Measure) raw() (*float64, bool) {
	s := strings.TrimSpace(string(m))
	if s == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || v < 0 {
		return nil, false
	}
	r := math.Round(v/domain.DisplayFactor*1e6) / 1e6
	// Non-finite values cannot be encoded for storage.
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return nil, false
	}
	return &r, true
}

func measureFrom(raw *float64) Measure {
	if raw == nil {
		return ""
	}
	v := math.Round(*raw*domain.DisplayFactor*1e6) / 1e6
	return Measure(strconv.FormatFloat(v, 'f', -1, 64))
}

// CustomForm is the input for creating a custom record.
type CustomForm struct {
	Name   string  `json:"name"`
	Height Measure `json:"height"`
	Weight Measure `json:"weight"`
	Image  string  `json:"image"`
	Types  string  `json:"types"`
}

// Record validates the form and builds the record to store.
func (f CustomForm) Record() (domain.Record, error) {
	fields := formFields{name: f.Name, height: f.Height, weight: f.Weight, image: f.Image, types: f.Types}
	v, err := fields.validate()
	if err != nil {
		return domain.Record{}, err
	}
	rec := domain.Record{
		Name:   v.name,
		Height: v.height,
		Weight: v.weight,
		Media:  domain.Media{Image: v.image},
		Types:  v.types,
		Stats:  []domain.Stat{},
		Custom: true,
	}
	if rec.Types == nil {
		rec.Types = []string{}
	}
	return rec, nil
}

// EditForm is the input for editing a record. Empty optional fields leave
// the stored value untouched.
type EditForm struct {
	Name   string  `json:"name"`
	Height Measure `json:"height"`
	Weight Measure `json:"weight"`
	Image  string  `json:"image"`
	Types  string  `json:"types"`
}

// DraftFor prefills an edit form from rec.
func DraftFor(rec domain.Record) EditForm {
	return EditForm{
		Name:   rec.Name,
		Height: measureFrom(rec.Height),
		Weight: measureFrom(rec.Weight),
		Image:  rec.Media.Image,
		Types:  strings.Join(rec.Types, ", "),
	}
}

// Patch validates the form and builds the patch to store.
func (f EditForm) Patch() (domain.RecordPatch, error) {
	fields := formFields{name: f.Name, height: f.Height, weight: f.Weight, image: f.Image, types: f.Types}
	v, err := fields.validate()
	if err != nil {
		return domain.RecordPatch{}, err
	}
	p := domain.RecordPatch{
		Name:   &v.name,
		Height: v.height,
		Weight: v.weight,
		Types:  v.types,
	}
	if v.image != "" {
		p.Image = &v.image
	}
	return p, nil
}

type formFields struct {
	name   string
	height Measure
	weight Measure
	image  string
	types  string
}

type validFields struct {
	name   string
	height *float64
	weight *float64
	image  string
	types  []string
}

func (f formFields) validate() (validFields, error) {
	var (
		out  validFields
		errs []domain.FieldError
		ok   bool
	)

	out.name = strings.TrimSpace(f.name)
	if out.name == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	}
	if out.height, ok = f.height.raw(); !ok {
		errs = append(errs, domain.FieldError{Field: "height", Message: "must be a non-negative number"})
	}
	if out.weight, ok = f.weight.raw(); !ok {
		errs = append(errs, domain.FieldError{Field: "weight", Message: "must be a non-negative number"})
	}

	out.image = strings.TrimSpace(f.image)
	if out.image != "" {
		u, err := url.Parse(out.image)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, domain.FieldError{Field: "image", Message: "must be an http(s) URL"})
		}
	}

	if t := strings.TrimSpace(f.types); t != "" {
		out.types = domain.DedupTypes(strings.FieldsFunc(t, func(r rune) bool {
			return r == ',' || r == ' '
		}))
	}

	if len(errs) > 0 {
		return validFields{}, domain.NewValidationErrors(errs)
	}
	return out, nil
}
