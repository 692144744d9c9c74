package stealth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

// Proxy modes accepted by BuildProxies.
const (
	ProxyDirect = "direct"
	ProxyDecodo = "decodo"
	ProxyCustom = "custom"
)

var ErrNoProxies = errors.New("no usable proxies")

// ProxyProvider is one egress route.
type ProxyProvider interface {
	Transport() http.RoundTripper
	Name() string
}

// ProxyRotator cycles through providers round-robin.
type ProxyRotator struct {
	mu        sync.Mutex
	providers []ProxyProvider
	idx       int
}

// NewProxyRotator returns nil when there are no providers; a nil rotator
// means requests go out through the base transport.
func NewProxyRotator(providers []ProxyProvider) *ProxyRotator {
	if len(providers) == 0 {
		return nil
	}
	return &ProxyRotator{providers: providers}
}

func (p *ProxyRotator) Next() ProxyProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	provider := p.providers[p.idx%len(p.providers)]
	p.idx++
	return provider
}

// Len reports how many providers the rotator holds.
func (p *ProxyRotator) Len() int {
	if p == nil {
		return 0
	}
	return len(p.providers)
}

// DecodoProvider routes through Decodo residential gateways geo-targeted to
// the delivery country, since the platforms price and list by location.
type DecodoProvider struct {
	Username string
	Password string
	Country  string // ISO code, e.g. "qa"
	City     string // optional, e.g. "doha"

	once      sync.Once
	transport http.RoundTripper
}

func (d *DecodoProvider) Name() string { return "decodo-" + d.Country }

func (d *DecodoProvider) Transport() http.RoundTripper {
	d.once.Do(func() {
		d.transport = proxyTransport(d.URL())
	})
	return d.transport
}

// URL is the rotating gateway address with targeting encoded in the user name.
func (d *DecodoProvider) URL() *url.URL {
	user := fmt.Sprintf("user-%s-country-%s", d.Username, strings.ToLower(d.Country))
	if d.City != "" {
		user += "-city-" + strings.ToLower(d.City)
	}
	return &url.URL{
		Scheme: "http",
		User:   url.UserPassword(user, d.Password),
		Host:   "gate.decodo.com:7000",
	}
}

// HTTPProxyProvider wraps one http, https or socks5 proxy URL.
type HTTPProxyProvider struct {
	url       *url.URL
	transport http.RoundTripper
}

func NewHTTPProxyProvider(raw string) (*HTTPProxyProvider, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("parse proxy %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http", "https", "socks5":
	default:
		return nil, fmt.Errorf("proxy %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("proxy %q: missing host", raw)
	}
	return &HTTPProxyProvider{url: u, transport: proxyTransport(u)}, nil
}

func (h *HTTPProxyProvider) Name() string                 { return h.url.Host }
func (h *HTTPProxyProvider) Transport() http.RoundTripper { return h.transport }

// ReadProxyList parses one proxy URL per line. Blank lines and lines starting
// with # are ignored.
func ReadProxyList(r io.Reader) ([]ProxyProvider, error) {
	var providers []ProxyProvider
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		p, err := NewHTTPProxyProvider(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		providers = append(providers, p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read proxy list: %w", err)
	}
	return providers, nil
}

// ProxyOptions selects the egress route for platform calls.
type ProxyOptions struct {
	Mode           string
	DecodoUsername string
	DecodoPassword string
	DecodoCountry  string
	DecodoCity     string
	File           string
}

// BuildProxies returns the rotator for opts, or nil for direct mode.
func BuildProxies(opts ProxyOptions) (*ProxyRotator, error) {
	switch opts.Mode {
	case "", ProxyDirect:
		return nil, nil
	case ProxyDecodo:
		if opts.DecodoUsername == "" || opts.DecodoPassword == "" {
			return nil, fmt.Errorf("decodo proxy: %w: credentials missing", ErrNoProxies)
		}
		return NewProxyRotator([]ProxyProvider{&DecodoProvider{
			Username: opts.DecodoUsername,
			Password: opts.DecodoPassword,
			Country:  opts.DecodoCountry,
			City:     opts.DecodoCity,
		}}), nil
	case ProxyCustom:
		f, err := os.Open(opts.File)
		if err != nil {
			return nil, fmt.Errorf("open proxy file: %w", err)
		}
		defer f.Close()
		providers, err := ReadProxyList(f)
		if err != nil {
			return nil, err
		}
		if len(providers) == 0 {
			return nil, fmt.Errorf("%w in %s", ErrNoProxies, opts.File)
		}
		return NewProxyRotator(providers), nil
	default:
		return nil, fmt.Errorf("unknown proxy mode %q", opts.Mode)
	}
}

func proxyTransport(u *url.URL) *http.Transport {
	return &http.Transport{
		Proxy:               http.ProxyURL(u),
		TLSHandshakeTimeout: 10 * time.Second,
		// new exit IP per request on rotating gateways
		DisableKeepAlives: true,
	}
}
