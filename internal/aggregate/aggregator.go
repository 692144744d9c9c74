// Package aggregate fans a query out to delivery platform adapters and joins
// their results.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/lukman83/dishscout/internal/models"
	"github.com/lukman83/dishscout/internal/platform"
)

const DefaultTimeout = 15 * time.Second

var tracer = otel.Tracer("github.com/lukman83/dishscout/internal/aggregate")

type Options struct {
	// Timeout bounds each adapter call unless Timeouts overrides it.
	Timeout time.Duration
	// Timeouts holds per-platform overrides keyed by registry id.
	Timeouts map[string]time.Duration
}

// Aggregator queries adapters concurrently and waits for all of them.
type Aggregator struct {
	resolver platform.Resolver
	timeout  time.Duration
	timeouts map[string]time.Duration
	logger   *slog.Logger
}

func New(resolver platform.Resolver, opts Options, logger *slog.Logger) *Aggregator {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	timeouts := make(map[string]time.Duration, len(opts.Timeouts))
	for k, v := range opts.Timeouts {
		timeouts[strings.ToLower(k)] = v
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		resolver: resolver,
		timeout:  opts.Timeout,
		timeouts: timeouts,
		logger:   logger,
	}
}

// Resolve maps platform ids to adapters in request order, skipping unknown
// and repeated ids.
func (a *Aggregator) Resolve(ids []string) []platform.Adapter {
	seen := make(map[string]struct{}, len(ids))
	adapters := make([]platform.Adapter, 0, len(ids))
	for _, id := range ids {
		adapter, err := a.resolver.Get(id)
		if err != nil {
			a.logger.Warn("aggregate: skipping platform", slog.String("platform", id), slog.Any("error", err))
			continue
		}
		key := strings.ToLower(adapter.Name())
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		adapters = append(adapters, adapter)
	}
	return adapters
}

// Aggregate runs every adapter at once and returns their products concatenated
// in request order. A failing, panicking or slow adapter contributes nothing
// and never affects the others.
func (a *Aggregator) Aggregate(ctx context.Context, term string, lat, lon float64, ids []string) []models.RawProduct {
	return a.Run(ctx, term, lat, lon, a.Resolve(ids))
}

// Run is Aggregate over already resolved adapters.
func (a *Aggregator) Run(ctx context.Context, term string, lat, lon float64, adapters []platform.Adapter) []models.RawProduct {
	ctx, span := tracer.Start(ctx, "aggregate.Run")
	defer span.End()
	span.SetAttributes(attribute.String("term", term), attribute.Int("platforms", len(adapters)))

	results := make([][]models.RawProduct, len(adapters))

	// No errgroup.WithContext: one adapter's failure must not cancel its siblings.
	var g errgroup.Group
	for i, adapter := range adapters {
		g.Go(func() error {
			results[i] = a.call(ctx, adapter, term, lat, lon)
			return nil
		})
	}
	_ = g.Wait()

	var out []models.RawProduct
	for _, r := range results {
		out = append(out, r...)
	}
	span.SetAttributes(attribute.Int("products", len(out)))
	return out
}

type callResult struct {
	products []models.RawProduct
	outcome  string
}

// call runs one adapter under its own deadline. The adapter runs on its own
// goroutine so a call that ignores its context still cannot hold up the join.
func (a *Aggregator) call(ctx context.Context, adapter platform.Adapter, term string, lat, lon float64) []models.RawProduct {
	name := adapter.Name()
	ctx, span := tracer.Start(ctx, "aggregate.adapter",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("platform", name)),
	)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, a.timeoutFor(name))
	defer cancel()
	start := time.Now()

	done := make(chan callResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				a.logger.Error("aggregate: adapter panicked", slog.String("platform", name), slog.Any("panic", r))
				span.RecordError(fmt.Errorf("panic: %v", r))
				done <- callResult{outcome: outcomePanic}
			}
		}()
		done <- callResult{products: adapter.Search(ctx, term, lat, lon)}
	}()

	var res callResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res.outcome = outcomeCancelled
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			res.outcome = outcomeTimeout
		}
		a.logger.Warn("aggregate: adapter abandoned", slog.String("platform", name), slog.String("reason", res.outcome))
	}
	if res.outcome == "" {
		res.outcome = outcomeOK
		if len(res.products) == 0 {
			res.outcome = outcomeEmpty
		}
	}

	adapterCalls.WithLabelValues(name, res.outcome).Inc()
	adapterLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
	adapterProducts.WithLabelValues(name).Add(float64(len(res.products)))
	span.SetAttributes(attribute.String("outcome", res.outcome), attribute.Int("products", len(res.products)))
	platform.ReportProgress(ctx, fmt.Sprintf("%s: %d products", adapter.Source(), len(res.products)))

	return res.products
}

func (a *Aggregator) timeoutFor(name string) time.Duration {
	if d, ok := a.timeouts[strings.ToLower(name)]; ok && d > 0 {
		return d
	}
	return a.timeout
}
