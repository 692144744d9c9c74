// Package refine relaxes over-specific queries by probing shorter prefixes
// of their terms against a reference platform.
package refine

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/lukman83/dishscout/internal/models"
)

const (
	DefaultMinResults = 3
	DefaultBudget     = 30 * time.Second
)

var tracer = otel.Tracer("github.com/lukman83/dishscout/internal/refine")

// Prober runs a query against the reference platform. platform.Adapter satisfies it.
type Prober interface {
	Search(ctx context.Context, query string, lat, lon float64) []models.RawProduct
}

type Options struct {
	// MinResults is the hit count a shortened query needs to be accepted.
	MinResults int
	// Budget bounds the whole probe loop. Zero or negative disables the bound.
	Budget time.Duration
}

// Refiner validates queries one probe at a time.
type Refiner struct {
	prober     Prober
	minResults int
	budget     time.Duration
	logger     *slog.Logger
}

func New(prober Prober, opts Options, logger *slog.Logger) *Refiner {
	if opts.MinResults <= 0 {
		opts.MinResults = DefaultMinResults
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Refiner{
		prober:     prober,
		minResults: opts.MinResults,
		budget:     opts.Budget,
		logger:     logger,
	}
}

// Validate probes the full query first; any hit at all validates it. Otherwise
// it drops trailing terms one at a time, never the first, and accepts the first
// prefix reaching MinResults. Exhausting the prefixes or the budget is reported
// as not validated.
func (r *Refiner) Validate(ctx context.Context, query string, terms []string, lat, lon float64) models.Validation {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.Validation{}
	}

	ctx, span := tracer.Start(ctx, "refine.Validate")
	defer span.End()
	span.SetAttributes(attribute.String("query", query), attribute.Int("terms", len(terms)))

	if r.budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.budget)
		defer cancel()
	}

	if n := r.probe(ctx, query, lat, lon, 1); n > 0 {
		return models.Validation{Validated: true, ResultCount: n, Query: query}
	}

	for i := len(terms) - 1; i >= 1; i-- {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("refine: budget exhausted", slog.String("query", query), slog.Any("error", err))
			probesTotal.WithLabelValues(outcomeAbandoned).Inc()
			return models.Validation{}
		}
		shorter := strings.Join(terms[:i], " ")
		if n := r.probe(ctx, shorter, lat, lon, r.minResults); n >= r.minResults {
			r.logger.Debug("refine: validated with shorter query",
				slog.String("query", query), slog.String("shorter", shorter), slog.Int("results", n))
			return models.Validation{Validated: true, ResultCount: n, Query: shorter}
		}
	}
	return models.Validation{}
}

func (r *Refiner) probe(ctx context.Context, q string, lat, lon float64, need int) int {
	ctx, span := tracer.Start(ctx, "refine.probe")
	defer span.End()

	n := len(r.prober.Search(ctx, q, lat, lon))
	span.SetAttributes(attribute.String("query", q), attribute.Int("results", n))

	outcome := outcomeMiss
	if n >= need {
		outcome = outcomeHit
	}
	probesTotal.WithLabelValues(outcome).Inc()
	return n
}
