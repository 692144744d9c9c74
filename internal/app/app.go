// Package app bundles the search pipeline and query refiner behind the
// operations every entry point (CLI, REST, MCP) exposes.
package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lukman83/dishscout/internal/models"
	"github.com/lukman83/dishscout/internal/platform"
	"github.com/lukman83/dishscout/internal/refine"
	"github.com/lukman83/dishscout/internal/search"
)

type App struct {
	Search   *search.Service
	Refiner  *refine.Refiner
	Registry *platform.Registry
	Markets  map[string]search.Market
}

// ValidateRequest asks whether a query finds enough results. Either Text
// (free-form, reduced to keywords) or Query must be set. Terms default to
// the whitespace tokens of Query, or the keywords of Text.
type ValidateRequest struct {
	Text    string   `json:"text" validate:"required_without=Query"`
	Query   string   `json:"query"`
	Terms   []string `json:"terms,omitempty"`
	Lat     float64  `json:"lat" validate:"gte=-90,lte=90"`
	Lon     float64  `json:"lon" validate:"gte=-180,lte=180"`
	Country string   `json:"country,omitempty" validate:"omitempty,len=2"`
}

type ValidateResponse struct {
	refine.Keywords
	Country    string            `json:"country"`
	Validation models.Validation `json:"validation"`
}

// Validate extracts keywords when needed and probes them against the
// reference platform.
func (a *App) Validate(ctx context.Context, req ValidateRequest) (*ValidateResponse, error) {
	loc, err := a.Search.Locate(req.Country, req.Lat, req.Lon)
	if err != nil {
		return nil, err
	}

	var kw refine.Keywords
	if tokens := strings.Fields(req.Query); len(tokens) > 0 {
		// an exact query is probed as given, so its prefixes stay prefixes
		kw = refine.Keywords{
			Terms:    tokens,
			Query:    strings.Join(tokens, " "),
			Original: strings.TrimSpace(req.Query),
		}
	} else {
		kw = refine.ExtractKeywords(req.Text)
	}
	if len(req.Terms) > 0 {
		kw.Terms = req.Terms
	}
	if kw.Query == "" && len(kw.Terms) == 0 {
		return nil, fmt.Errorf("%w: no searchable words in %q", search.ErrInvalidRequest, firstNonEmpty(req.Query, req.Text))
	}

	v := a.Refiner.Validate(ctx, kw.Query, kw.Terms, loc.Lat, loc.Lon)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &ValidateResponse{Keywords: kw, Country: loc.Country, Validation: v}, nil
}

// PlatformInfo describes one registered platform.
type PlatformInfo struct {
	ID        string   `json:"id"`
	Source    string   `json:"source"`
	Countries []string `json:"countries"`
}

// Platforms lists registered platforms with the markets that search them by
// default.
func (a *App) Platforms() []PlatformInfo {
	byID := map[string][]string{}
	for code, m := range a.Markets {
		for _, id := range m.Platforms {
			id = strings.ToLower(id)
			byID[id] = append(byID[id], strings.ToUpper(code))
		}
	}

	ids := a.Registry.List()
	out := make([]PlatformInfo, 0, len(ids))
	for _, id := range ids {
		adapter, err := a.Registry.Get(id)
		if err != nil {
			continue
		}
		countries := byID[id]
		sort.Strings(countries)
		if countries == nil {
			countries = []string{}
		}
		out = append(out, PlatformInfo{ID: id, Source: adapter.Source(), Countries: countries})
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
