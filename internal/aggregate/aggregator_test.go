package aggregate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukman83/dishscout/internal/models"
	"github.com/lukman83/dishscout/internal/platform"
)

type fakeAdapter struct {
	name     string
	source   string
	products []models.RawProduct
	delay    time.Duration
	panics   bool
	started  *sync.WaitGroup
	ignoreCt bool
}

func (f *fakeAdapter) Name() string   { return f.name }
func (f *fakeAdapter) Source() string { return f.source }

func (f *fakeAdapter) Search(ctx context.Context, _ string, _, _ float64) []models.RawProduct {
	if f.started != nil {
		f.started.Done()
		f.started.Wait()
	}
	if f.panics {
		panic("boom")
	}
	if f.delay > 0 {
		if f.ignoreCt {
			time.Sleep(f.delay)
		} else {
			select {
			case <-time.After(f.delay):
			case <-ctx.Done():
				return nil
			}
		}
	}
	return f.products
}

func raw(source, name string) models.RawProduct {
	return models.RawProduct{Source: source, ProductName: name, ETAMinutes: 20}
}

func newAggregator(t *testing.T, opts Options, adapters ...platform.Adapter) *Aggregator {
	t.Helper()
	reg := platform.NewRegistry()
	for _, a := range adapters {
		reg.Register(a)
	}
	return New(reg, opts, nil)
}

func TestAggregate_PreservesRequestOrder(t *testing.T) {
	slow := &fakeAdapter{name: "agg-order-a", source: "A", products: []models.RawProduct{raw("A", "a1"), raw("A", "a2")}, delay: 30 * time.Millisecond}
	fast := &fakeAdapter{name: "agg-order-b", source: "B", products: []models.RawProduct{raw("B", "b1")}}
	agg := newAggregator(t, Options{}, slow, fast)

	got := agg.Aggregate(context.Background(), "pizza", 25.28, 51.53, []string{"agg-order-a", "agg-order-b"})
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a1", "a2", "b1"}, []string{got[0].ProductName, got[1].ProductName, got[2].ProductName})

	got = agg.Aggregate(context.Background(), "pizza", 25.28, 51.53, []string{"agg-order-b", "agg-order-a"})
	require.Len(t, got, 3)
	assert.Equal(t, "b1", got[0].ProductName)
}

func TestAggregate_FailuresAreIsolated(t *testing.T) {
	good := &fakeAdapter{name: "agg-iso-good", source: "Good", products: []models.RawProduct{raw("Good", "burger")}}
	broken := &fakeAdapter{name: "agg-iso-panic", source: "Broken", panics: true}
	empty := &fakeAdapter{name: "agg-iso-empty", source: "Empty"}
	agg := newAggregator(t, Options{}, broken, good, empty)

	got := agg.Aggregate(context.Background(), "burger", 0, 0, []string{"agg-iso-panic", "agg-iso-good", "agg-iso-empty"})
	require.Len(t, got, 1)
	assert.Equal(t, "Good", got[0].Source)
}

func TestAggregate_PerPlatformTimeout(t *testing.T) {
	slow := &fakeAdapter{name: "agg-timeout-slow", source: "Slow", products: []models.RawProduct{raw("Slow", "late")}, delay: time.Second}
	stuck := &fakeAdapter{name: "agg-timeout-stuck", source: "Stuck", products: []models.RawProduct{raw("Stuck", "never")}, delay: time.Second, ignoreCt: true}
	quick := &fakeAdapter{name: "agg-timeout-quick", source: "Quick", products: []models.RawProduct{raw("Quick", "soon")}, delay: 10 * time.Millisecond}
	agg := newAggregator(t, Options{
		Timeout:  500 * time.Millisecond,
		Timeouts: map[string]time.Duration{"AGG-TIMEOUT-SLOW": 20 * time.Millisecond, "agg-timeout-stuck": 20 * time.Millisecond},
	}, slow, stuck, quick)

	start := time.Now()
	got := agg.Aggregate(context.Background(), "shawarma", 0, 0, []string{"agg-timeout-slow", "agg-timeout-stuck", "agg-timeout-quick"})
	elapsed := time.Since(start)

	require.Len(t, got, 1)
	assert.Equal(t, "soon", got[0].ProductName)
	assert.Less(t, elapsed, 400*time.Millisecond)
}

func TestAggregate_AdaptersRunConcurrently(t *testing.T) {
	var started sync.WaitGroup
	started.Add(3)
	adapters := []platform.Adapter{
		&fakeAdapter{name: "agg-conc-1", source: "One", products: []models.RawProduct{raw("One", "x")}, started: &started},
		&fakeAdapter{name: "agg-conc-2", source: "Two", products: []models.RawProduct{raw("Two", "y")}, started: &started},
		&fakeAdapter{name: "agg-conc-3", source: "Three", products: []models.RawProduct{raw("Three", "z")}, started: &started},
	}
	agg := newAggregator(t, Options{Timeout: 2 * time.Second}, adapters...)

	// Each adapter waits for all three to start, so a sequential run would time out.
	got := agg.Aggregate(context.Background(), "karak", 0, 0, []string{"agg-conc-1", "agg-conc-2", "agg-conc-3"})
	assert.Len(t, got, 3)
}

func TestAggregate_CancelledContext(t *testing.T) {
	slow := &fakeAdapter{name: "agg-cancel", source: "Slow", products: []models.RawProduct{raw("Slow", "x")}, delay: time.Second}
	agg := newAggregator(t, Options{}, slow)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	assert.Empty(t, agg.Aggregate(ctx, "x", 0, 0, []string{"agg-cancel"}))
}

func TestResolve_SkipsUnknownAndDuplicates(t *testing.T) {
	a := &fakeAdapter{name: "agg-resolve-a", source: "A"}
	b := &fakeAdapter{name: "agg-resolve-b", source: "B"}
	agg := newAggregator(t, Options{}, a, b)

	got := agg.Resolve([]string{"agg-resolve-b", "nope", "AGG-RESOLVE-B", "agg-resolve-a"})
	require.Len(t, got, 2)
	assert.Equal(t, "agg-resolve-b", got[0].Name())
	assert.Equal(t, "agg-resolve-a", got[1].Name())

	assert.Empty(t, agg.Aggregate(context.Background(), "x", 0, 0, nil))
}

func TestAggregate_ReportsProgress(t *testing.T) {
	a := &fakeAdapter{name: "agg-progress", source: "Progress", products: []models.RawProduct{raw("Progress", "x"), raw("Progress", "y")}}
	agg := newAggregator(t, Options{}, a)

	var mu sync.Mutex
	var msgs []string
	ctx := platform.WithProgress(context.Background(), func(msg string) {
		mu.Lock()
		msgs = append(msgs, msg)
		mu.Unlock()
	})
	agg.Aggregate(ctx, "x", 0, 0, []string{"agg-progress"})
	assert.Equal(t, []string{"Progress: 2 products"}, msgs)
}
