// Package search runs the comparison pipeline: aggregate, filter, group,
// rank and paginate.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lukman83/dishscout/internal/aggregate"
	"github.com/lukman83/dishscout/internal/compare"
	"github.com/lukman83/dishscout/internal/geo"
	"github.com/lukman83/dishscout/internal/models"
)

// ErrInvalidRequest wraps every request rejected before any platform is called.
var ErrInvalidRequest = errors.New("invalid search request")

// Market is a country's default platform set and map centre.
type Market struct {
	Platforms []string
	Lat       float64
	Lon       float64
}

type Options struct {
	PerPage        int
	DefaultCountry string
	// Markets are keyed by upper-case ISO country code.
	Markets      map[string]Market
	DistanceMode compare.DistanceMode
}

// Service is safe for concurrent use.
type Service struct {
	agg    *aggregate.Aggregator
	opts   Options
	logger *slog.Logger
}

func New(agg *aggregate.Aggregator, opts Options, logger *slog.Logger) *Service {
	if opts.PerPage <= 0 {
		opts.PerPage = compare.DefaultPerPage
	}
	if opts.DistanceMode == "" {
		opts.DistanceMode = compare.DistanceCheapestVariant
	}
	markets := make(map[string]Market, len(opts.Markets))
	for code, m := range opts.Markets {
		markets[strings.ToUpper(code)] = m
	}
	opts.Markets = markets
	opts.DefaultCountry = strings.ToUpper(opts.DefaultCountry)
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{agg: agg, opts: opts, logger: logger}
}

// Check rejects requests the pipeline cannot answer. Unknown sort keys are
// not rejected here; ranking ignores them.
func Check(req models.SearchRequest) error {
	var problems []string
	if strings.TrimSpace(req.Term) == "" {
		problems = append(problems, "term is required")
	}
	if req.Page < 0 {
		problems = append(problems, "page must be 1 or greater")
	}
	if req.PriceMin != nil && req.PriceMax != nil && *req.PriceMin > *req.PriceMax {
		problems = append(problems, "price_min exceeds price_max")
	}
	if req.TimeMin != nil && req.TimeMax != nil && *req.TimeMin > *req.TimeMax {
		problems = append(problems, "time_min exceeds time_max")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(problems, "; "))
	}
	return nil
}

// Location is a resolved market and search point.
type Location struct {
	Country string
	Market  Market
	Lat     float64
	Lon     float64
}

// Locate resolves the market for a request. An empty country is inferred from
// the coordinates, falling back to the default country; zero coordinates are
// replaced by the market's centre.
func (s *Service) Locate(country string, lat, lon float64) (Location, error) {
	code := strings.ToUpper(strings.TrimSpace(country))
	zero := lat == 0 && lon == 0
	if code == "" && !zero {
		code, _ = geo.CountryFor(lat, lon)
	}
	if code == "" {
		code = s.opts.DefaultCountry
	}
	m, ok := s.opts.Markets[code]
	if !ok {
		return Location{}, fmt.Errorf("%w: unsupported country %q", ErrInvalidRequest, code)
	}
	if zero {
		lat, lon = m.Lat, m.Lon
	}
	return Location{Country: code, Market: m, Lat: lat, Lon: lon}, nil
}

// Search answers one page of ranked offer groups. It fails only for an
// invalid request or when ctx ends before the platforms answer; platform
// failures just shrink the result.
func (s *Service) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResult, error) {
	if err := Check(req); err != nil {
		return nil, err
	}
	loc, err := s.Locate(req.Country, req.Lat, req.Lon)
	if err != nil {
		return nil, err
	}

	page := req.Page
	if page == 0 {
		page = 1
	}
	sortBy := req.Sort
	if sortBy == "" {
		sortBy = models.SortPrice
	}
	ids := req.Platforms
	if len(ids) == 0 {
		ids = loc.Market.Platforms
	}

	adapters := s.agg.Resolve(ids)
	names := make([]string, 0, len(adapters))
	sources := make([]string, 0, len(adapters))
	for _, a := range adapters {
		names = append(names, a.Name())
		sources = append(sources, a.Source())
	}

	raw := s.agg.Run(ctx, req.Term, loc.Lat, loc.Lon, adapters)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("search %q: %w", req.Term, err)
	}

	filtered := compare.Filter(raw, compare.Criteria{
		PriceMin:         req.PriceMin,
		PriceMax:         req.PriceMax,
		TimeMin:          req.TimeMin,
		TimeMax:          req.TimeMax,
		RestaurantFilter: req.RestaurantFilter,
		Sources:          sources,
	})
	groups := compare.Group(filtered)
	compare.Rank(groups, sortBy, s.opts.DistanceMode)
	p := compare.Paginate(groups, page, s.opts.PerPage)

	s.logger.Info("search: done",
		slog.String("term", req.Term),
		slog.String("country", loc.Country),
		slog.Int("raw", len(raw)),
		slog.Int("filtered", len(filtered)),
		slog.Int("groups", len(groups)),
	)

	return &models.SearchResult{
		Term:       req.Term,
		Country:    loc.Country,
		Platforms:  names,
		Products:   p.Products,
		Pagination: p.Pagination,
		// computed before filtering so a restaurant picker can list every option
		AllRestaurants: compare.Restaurants(raw),
	}, nil
}
