package viewmodel

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/pokedex-backend/internal/domain"
)

func TestCustomForm_Record(t *testing.T) {
	t.Parallel()

	rec, err := CustomForm{
		Name:   "  Sparky ",
		Height: "0.7",
		Weight: "6,5",
		Image:  "https://img.test/sparky.png",
		Types:  "Electric, fire electric",
	}.Record()
	require.NoError(t, err)

	assert.Equal(t, "Sparky", rec.Name)
	require.NotNil(t, rec.Height)
	assert.InDelta(t, 7.0, *rec.Height, 1e-9)
	assert.InDelta(t, 65.0, *rec.Weight, 1e-9)
	assert.Equal(t, "https://img.test/sparky.png", rec.Media.Image)
	assert.Equal(t, []string{"electric", "fire"}, rec.Types)
	assert.True(t, rec.Custom)
	assert.NotNil(t, rec.Stats)
}

func TestCustomForm_Validation(t *testing.T) {
	t.Parallel()

	_, err := CustomForm{Name: " ", Height: "tall", Weight: "-1", Image: "not a url"}.Record()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	fields := make([]string, len(verr.Errors))
	for i, fe := range verr.Errors {
		fields[i] = fe.Field
	}
	assert.Equal(t, []string{"name", "height", "weight", "image"}, fields)
}

func TestForms_RejectNonFiniteMeasures(t *testing.T) {
	t.Parallel()

	for _, in := range []Measure{"NaN", "nan", "Inf", "-Inf", "+Infinity", "1e308"} {
		t.Run(string(in), func(t *testing.T) {
			t.Parallel()

			rec, err := CustomForm{Name: "Testmon", Height: in, Weight: in}.Record()
			require.Error(t, err)
			assert.Equal(t, domain.Record{}, rec)

			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			fields := make([]string, len(verr.Errors))
			for i, fe := range verr.Errors {
				fields[i] = fe.Field
			}
			assert.Equal(t, []string{"height", "weight"}, fields)

			_, err = EditForm{Name: "Testmon", Height: in}.Patch()
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestEditForm_Patch(t *testing.T) {
	t.Parallel()

	p, err := EditForm{Name: "Sparky"}.Patch()
	require.NoError(t, err)
	require.NotNil(t, p.Name)
	assert.Equal(t, "Sparky", *p.Name)
	assert.Nil(t, p.Height)
	assert.Nil(t, p.Image)
	assert.Nil(t, p.Types)

	_, err = EditForm{Name: ""}.Patch()
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDraftFor_RoundTrip(t *testing.T) {
	t.Parallel()

	rec := domain.Record{
		Name:   "pikachu",
		Height: ptr(4.0),
		Weight: ptr(60.0),
		Types:  []string{"electric"},
		Media:  domain.Media{Image: "https://img.test/25.png"},
	}

	draft := DraftFor(rec)
	assert.Equal(t, Measure("0.4"), draft.Height)
	assert.Equal(t, Measure("6"), draft.Weight)

	p, err := draft.Patch()
	require.NoError(t, err)
	got := p.Apply(rec)
	assert.InDelta(t, 4.0, *got.Height, 1e-9)
	assert.InDelta(t, 60.0, *got.Weight, 1e-9)
	assert.Equal(t, rec.Types, got.Types)
}

func TestMeasure_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	var f CustomForm
	require.NoError(t, json.Unmarshal([]byte(`{"name":"x","height":1.2,"weight":"3.4"}`), &f))
	assert.Equal(t, Measure("1.2"), f.Height)
	assert.Equal(t, Measure("3.4"), f.Weight)

	require.NoError(t, json.Unmarshal([]byte(`{"name":"x","height":null}`), &f))
	assert.Equal(t, Measure(""), f.Height)
}
