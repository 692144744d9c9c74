package stealth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

var ErrDisallowed = errors.New("disallowed by robots.txt")

// Transport is an http.RoundTripper that runs every platform call through
// Fingerprint, RobotsCheck, RateLimiter, HumanDelay and Proxy before sending.
// Any stage left nil is skipped.
type Transport struct {
	Base         http.RoundTripper
	Fingerprints *FingerprintPool
	Robots       *RobotsChecker
	Limiter      *HostLimiter
	Delay        *HumanDelay
	Proxies      *ProxyRotator
	Logger       *slog.Logger
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	// RoundTrippers must not modify the caller's request.
	req = req.Clone(ctx)

	if t.Fingerprints != nil {
		t.Fingerprints.Next().Apply(req.Header)
	}

	if !t.Robots.IsAllowed(ctx, req.Header.Get("User-Agent"), req.URL) {
		return nil, fmt.Errorf("%w: %s%s", ErrDisallowed, req.URL.Host, req.URL.Path)
	}

	if err := t.Limiter.Wait(ctx, req.URL.Host); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	if err := t.Delay.Wait(ctx); err != nil {
		return nil, fmt.Errorf("delay: %w", err)
	}

	base := t.Base
	if t.Proxies != nil {
		p := t.Proxies.Next()
		base = p.Transport()
		if t.Logger != nil {
			t.Logger.Debug("stealth: routing via proxy", slog.String("proxy", p.Name()), slog.String("host", req.URL.Host))
		}
	}
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// HostLimiter keeps one token bucket per host so a slow platform never eats
// the budget of the others during a fan-out.
type HostLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHostLimiter returns nil when perSecond is not positive; a nil limiter
// never waits.
func NewHostLimiter(perSecond float64, burst int) *HostLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &HostLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (h *HostLimiter) Wait(ctx context.Context, host string) error {
	if h == nil {
		return nil
	}
	return h.get(host).Wait(ctx)
}

func (h *HostLimiter) get(host string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.limiters[host]
	if !ok {
		l = rate.NewLimiter(h.limit, h.burst)
		h.limiters[host] = l
	}
	return l
}

// Options configures New.
type Options struct {
	DelayProfile  DelayProfile
	RatePerSecond float64
	RateBurst     int
	RespectRobots bool
	Proxy         ProxyOptions
}

// New assembles the stealth pipeline over base.
func New(base http.RoundTripper, opts Options, logger *slog.Logger) (*Transport, error) {
	proxies, err := BuildProxies(opts.Proxy)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{
		Base:         base,
		Fingerprints: NewFingerprintPool(),
		Robots:       NewRobotsChecker(nil, opts.RespectRobots),
		Limiter:      NewHostLimiter(opts.RatePerSecond, opts.RateBurst),
		Delay:        NewHumanDelay(opts.DelayProfile),
		Proxies:      proxies,
		Logger:       logger,
	}, nil
}
