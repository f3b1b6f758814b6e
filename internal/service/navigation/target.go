// Package navigation maps records to detail targets, renders and parses
// their paths, and resolves a target to the freshest record.
package navigation

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/heartmarshall/pokedex-backend/internal/domain"
)

// Kind selects the view a Target opens.
type Kind string

const (
	KindList        Kind = "list"
	KindByID        Kind = "by-id"
	KindByReference Kind = "by-reference"
)

// Target is a navigation destination. Payload optionally carries an
// already-resolved record to skip a fetch.
type Target struct {
	Kind      Kind           `json:"kind"`
	ID        int            `json:"id,omitempty"`
	Reference string         `json:"reference,omitempty"`
	Payload   *domain.Record `json:"-"`
}

// ListTarget is the root list view.
func ListTarget() Target { return Target{Kind: KindList} }

// TargetFor picks a by-id target when rec has a known id and a
// by-reference target otherwise. rec is carried as payload.
func TargetFor(rec domain.Record) Target {
	payload := rec.Clone()
	if rec.ID > 0 {
		return Target{Kind: KindByID, ID: rec.ID, Reference: rec.Reference, Payload: &payload}
	}
	return Target{Kind: KindByReference, Reference: rec.Reference, Payload: &payload}
}

// Path renders the target as a URL path.
func (t Target) Path() string {
	switch t.Kind {
	case KindByID:
		return "/pokemon/" + strconv.Itoa(t.ID)
	case KindByReference:
		return "/pokemon?url=" + url.QueryEscape(t.Reference)
	default:
		return "/"
	}
}

// ParsePath is the inverse of Path. The path may carry a query string.
func ParsePath(raw string) (Target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, fmt.Errorf("parse path %q: %w", raw, domain.ErrValidation)
	}

	p := strings.TrimSuffix(u.Path, "/")
	switch {
	case p == "":
		return ListTarget(), nil
	case p == "/pokemon":
		ref := u.Query().Get("url")
		if ref == "" {
			return Target{}, fmt.Errorf("path %q: missing url parameter: %w", raw, domain.ErrValidation)
		}
		return Target{Kind: KindByReference, Reference: ref}, nil
	case strings.HasPrefix(p, "/pokemon/"):
		id, err := domain.ParseID(strings.TrimPrefix(p, "/pokemon/"))
		if err != nil {
			return Target{}, err
		}
		return Target{Kind: KindByID, ID: id}, nil
	default:
		return Target{}, fmt.Errorf("path %q: %w", raw, domain.ErrNotFound)
	}
}
