package stealth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/sync/singleflight"
)

// RobotsChecker caches robots.txt per origin. Concurrent misses for the same
// origin share one fetch.
type RobotsChecker struct {
	client   *http.Client
	cacheTTL time.Duration

	mu      sync.RWMutex
	entries map[string]robotsEntry
	group   singleflight.Group
}

type robotsEntry struct {
	data    *robotstxt.RobotsData
	expires time.Time
}

// NewRobotsChecker returns nil when disabled; a nil checker allows everything.
func NewRobotsChecker(client *http.Client, enabled bool) *RobotsChecker {
	if !enabled {
		return nil
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &RobotsChecker{
		client:   client,
		cacheTTL: time.Hour,
		entries:  make(map[string]robotsEntry),
	}
}

// IsAllowed reports whether userAgent may fetch u. An unreachable or
// unparsable robots.txt allows the request.
func (r *RobotsChecker) IsAllowed(ctx context.Context, userAgent string, u *url.URL) bool {
	if r == nil {
		return true
	}
	data, err := r.rules(ctx, u.Scheme+"://"+u.Host)
	if err != nil {
		return true
	}
	return data.TestAgent(u.Path, userAgent)
}

func (r *RobotsChecker) rules(ctx context.Context, origin string) (*robotstxt.RobotsData, error) {
	r.mu.RLock()
	e, ok := r.entries[origin]
	r.mu.RUnlock()
	if ok && time.Now().Before(e.expires) {
		return e.data, nil
	}

	v, err, _ := r.group.Do(origin, func() (any, error) {
		data, err := r.fetch(ctx, origin)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.entries[origin] = robotsEntry{data: data, expires: time.Now().Add(r.cacheTTL)}
		r.mu.Unlock()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*robotstxt.RobotsData), nil
}

func (r *RobotsChecker) fetch(ctx context.Context, origin string) (*robotstxt.RobotsData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512<<10))
	if err != nil {
		return nil, fmt.Errorf("read robots.txt: %w", err)
	}
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}
	return data, nil
}
