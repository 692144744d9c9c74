// Package delivery implements platform adapters for the food delivery apps
// dishscout compares. Each adapter describes its API call as a platform.Call,
// sends it through a chain of strategies (plain HTTP first, an optional
// headless browser after) and parses the first usable response.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lukman83/dishscout/internal/models"
	"github.com/lukman83/dishscout/internal/platform"
)

// Options are shared by every adapter constructor.
type Options struct {
	// Client sends API calls. nil uses http.DefaultClient.
	Client *http.Client
	// Retries is how many times a failed API call is resent. Zero means one attempt.
	Retries int
	// Timeout bounds one Search. Zero leaves it to the caller's context.
	Timeout time.Duration
	// Headless, when set, is tried after the API strategy fails.
	Headless platform.Strategy
	// Endpoint replaces the platform's API URL.
	Endpoint string
	Logger   *slog.Logger
}

type buildFunc func(req platform.Request) (platform.Call, error)

type parseFunc func(body []byte) ([]models.RawProduct, error)

// Adapter is a platform.Adapter driven by a request builder and a parser.
type Adapter struct {
	name       string
	source     string
	timeout    time.Duration
	build      buildFunc
	parse      parseFunc
	strategies []platform.Strategy
	logger     *slog.Logger
}

func newAdapter(name, source string, opts Options, build buildFunc, parse parseFunc) *Adapter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	strategies := []platform.Strategy{NewAPIStrategy(opts.Client, opts.Retries)}
	if opts.Headless != nil {
		strategies = append(strategies, opts.Headless)
	}
	return &Adapter{
		name:       name,
		source:     source,
		timeout:    opts.Timeout,
		build:      build,
		parse:      parse,
		strategies: strategies,
		logger:     logger.With(slog.String("platform", name)),
	}
}

func (a *Adapter) Name() string   { return a.name }
func (a *Adapter) Source() string { return a.source }

// Search never fails; errors are logged and reported as no products.
func (a *Adapter) Search(ctx context.Context, query string, lat, lon float64) []models.RawProduct {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	products, err := a.search(ctx, platform.Request{Query: query, Lat: lat, Lon: lon})
	if err != nil {
		a.logger.Warn("delivery: search failed", slog.String("query", query), slog.Any("error", err))
		return nil
	}
	for i := range products {
		products[i].Source = a.source
	}
	a.logger.Debug("delivery: search done", slog.String("query", query), slog.Int("products", len(products)))
	return products
}

// search walks the strategy chain. A strategy whose response fails to parse
// counts as failed, since a blocked API call usually answers with an HTML
// challenge page.
func (a *Adapter) search(ctx context.Context, req platform.Request) ([]models.RawProduct, error) {
	call, err := a.build(req)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	var errs []error
	for i, s := range a.strategies {
		if i > 0 {
			platform.ReportProgress(ctx, fmt.Sprintf("%s: trying %s", a.source, s.Name()))
		}
		body, err := s.Execute(ctx, call)
		if err == nil {
			var products []models.RawProduct
			products, err = a.parse(body)
			if err == nil {
				return products, nil
			}
			err = fmt.Errorf("parse: %w", err)
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	return nil, errors.Join(errs...)
}
