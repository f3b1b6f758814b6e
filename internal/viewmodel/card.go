// Package viewmodel renders catalog output into presentation-ready views
// and turns user input into store intents.
package viewmodel

import (
	"fmt"
	"strings"

	"github.com/heartmarshall/pokedex-backend/internal/domain"
	"github.com/heartmarshall/pokedex-backend/internal/service/navigation"
)

const (
	maxCardStats  = 6
	maxStatValue  = 150.0
	notAvailable  = "N/A"
	defaultEmoji  = "🔹"
	imageLoading  = "Image loading..."
	favoriteOn    = "❤️"
	favoriteOff   = "🤍"
	bestBadgeIcon = "👑"
)

// Stat bar color bands by percentage of the maximum stat value.
const (
	BandLow  = "low"
	BandMid  = "mid"
	BandHigh = "high"
)

var bandColors = map[string]string{
	BandLow:  "#ff6b6b",
	BandMid:  "#ffd93d",
	BandHigh: "#6bcf7f",
}

var typeEmojis = map[string]string{
	"normal":   "⚪",
	"fire":     "🔥",
	"water":    "💧",
	"electric": "⚡",
	"grass":    "🌿",
	"ice":      "❄️",
	"fighting": "👊",
	"poison":   "☠️",
	"ground":   "⛰️",
	"flying":   "🦅",
	"psychic":  "🧠",
	"bug":      "🐛",
	"rock":     "🪨",
	"ghost":    "👻",
	"dragon":   "🐉",
	"dark":     "🌑",
	"steel":    "⚙️",
	"fairy":    "✨",
}

// TypeEmoji returns the facet icon for a type tag.
func TypeEmoji(t string) string {
	if e, ok := typeEmojis[t]; ok {
		return e
	}
	return defaultEmoji
}

// TypeChip is a type tag with its icon.
type TypeChip struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

// StatBar is one rendered stat.
type StatBar struct {
	Name    string  `json:"name"`
	Label   string  `json:"label"`
	Value   int     `json:"value"`
	Percent float64 `json:"percent"`
	Band    string  `json:"band"`
	Color   string  `json:"color"`
}

// Card is the rendered form of one record.
type Card struct {
	ID          int        `json:"id"`
	Label       string     `json:"label"`
	Name        string     `json:"name"`
	Image       string     `json:"image,omitempty"`
	Placeholder string     `json:"placeholder,omitempty"`
	Types       []TypeChip `json:"types"`
	Height      string     `json:"height"`
	Weight      string     `json:"weight"`
	Stats       []StatBar  `json:"stats"`
	Total       int        `json:"total"`
	Favorite    bool       `json:"favorite"`
	FavoriteTag string     `json:"favoriteIcon"`
	Best        bool       `json:"best"`
	BestBadge   string     `json:"bestBadge,omitempty"`
	Custom      bool       `json:"custom"`
	Edited      bool       `json:"edited"`
	Loaded      bool       `json:"loaded"`
	Target      string     `json:"target"`
	Sound       string     `json:"sound,omitempty"`
}

// BuildCard renders a catalog item.
func BuildCard(it domain.ViewItem) Card {
	rec := it.Record
	c := Card{
		ID:       rec.ID,
		Label:    IDLabel(rec.ID),
		Name:     it.DisplayName,
		Image:    rec.Media.Image,
		Types:    chips(rec.Types),
		Height:   FormatMeasure(rec.Height, "m"),
		Weight:   FormatMeasure(rec.Weight, "kg"),
		Stats:    statBars(rec.Stats, maxCardStats),
		Total:    rec.StatTotal(),
		Favorite: it.Favorite,
		Best:     it.Best,
		Custom:   rec.Custom,
		Edited:   it.Modified,
		Loaded:   it.Enriched || rec.Custom,
		Target:   navigation.TargetFor(rec).Path(),
		Sound:    rec.Sound(),
	}
	if c.Name == "" {
		c.Name = rec.Name
	}
	if c.Image == "" {
		c.Placeholder = imageLoading
	}
	c.FavoriteTag = favoriteOff
	if c.Favorite {
		c.FavoriteTag = favoriteOn
	}
	if c.Best {
		c.BestBadge = bestBadgeIcon
	}
	return c
}

// IDLabel formats an id as "#025".
func IDLabel(id int) string {
	return fmt.Sprintf("#%03d", id)
}

// FormatMeasure converts a raw measure to display units with one decimal.
// Missing and zero measures render as "N/A".
func FormatMeasure(raw *float64, unit string) string {
	if raw == nil || *raw == 0 {
		return notAvailable
	}
	return fmt.Sprintf("%.1f %s", *raw*domain.DisplayFactor, unit)
}

// StatPercent returns v as a percentage of the maximum stat value and the
// same value capped at 100.
func StatPercent(v int) (raw, capped float64) {
	raw = float64(v) / maxStatValue * 100
	return raw, min(raw, 100)
}

// StatBand picks the color band for an uncapped percentage.
func StatBand(percent float64) string {
	switch {
	case percent < 33:
		return BandLow
	case percent < 66:
		return BandMid
	default:
		return BandHigh
	}
}

func statBars(stats []domain.Stat, limit int) []StatBar {
	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	out := make([]StatBar, len(stats))
	for i, s := range stats {
		raw, capped := StatPercent(s.Value)
		band := StatBand(raw)
		out[i] = StatBar{
			Name:    s.Name,
			Label:   strings.ReplaceAll(s.Name, "-", " "),
			Value:   s.Value,
			Percent: capped,
			Band:    band,
			Color:   bandColors[band],
		}
	}
	return out
}

func chips(types []string) []TypeChip {
	out := make([]TypeChip, len(types))
	for i, t := range types {
		out[i] = TypeChip{Name: t, Emoji: TypeEmoji(t)}
	}
	return out
}
