package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/lukman83/dishscout/internal/httputil"
	"github.com/lukman83/dishscout/internal/platform"
)

// fetchJS replays a call from inside the page so it carries the cookies and
// TLS fingerprint of a real browser session.
const fetchJS = `async (url, init) => {
	const res = await fetch(url, init);
	const text = await res.text();
	return JSON.stringify({status: res.status, body: text});
}`

// HeadlessStrategy opens the platform's site in a headless Chromium and
// replays the API call with fetch. A browser is launched lazily on first
// use and shared by all adapters until Close.
type HeadlessStrategy struct {
	// Bin is the browser binary; empty lets rod download or find one.
	Bin string

	mu      sync.Mutex
	browser *rod.Browser
	l       *launcher.Launcher
}

func NewHeadlessStrategy(bin string) *HeadlessStrategy {
	return &HeadlessStrategy{Bin: bin}
}

func (h *HeadlessStrategy) Name() string { return "headless" }

func (h *HeadlessStrategy) Execute(ctx context.Context, call platform.Call) ([]byte, error) {
	if call.Origin == "" {
		return nil, errors.New("headless: call has no origin page")
	}
	browser, err := h.connect()
	if err != nil {
		return nil, err
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{URL: call.Origin})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", call.Origin, err)
	}
	defer page.Close()

	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("load %s: %w", call.Origin, err)
	}

	res, err := page.Eval(fetchJS, call.URL, fetchInit(call))
	if err != nil {
		return nil, fmt.Errorf("in-page fetch: %w", err)
	}
	return decodeFetchResult(res.Value.Str())
}

// Close shuts the shared browser down.
func (h *HeadlessStrategy) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.browser == nil {
		return nil
	}
	err := h.browser.Close()
	h.l.Cleanup()
	h.browser, h.l = nil, nil
	return err
}

func (h *HeadlessStrategy) connect() (*rod.Browser, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.browser != nil {
		return h.browser, nil
	}

	l := launcher.New().Headless(true).Logger(io.Discard)
	if h.Bin != "" {
		l = l.Bin(h.Bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	h.browser, h.l = browser, l
	return browser, nil
}

// forbiddenFetchHeaders are set by the browser itself; fetch rejects or
// ignores them.
var forbiddenFetchHeaders = map[string]bool{
	"User-Agent":      true,
	"Origin":          true,
	"Referer":         true,
	"Accept-Encoding": true,
	"Connection":      true,
	"Cookie":          true,
}

// fetchInit converts a call into the init argument of window.fetch.
func fetchInit(call platform.Call) map[string]any {
	headers := map[string]string{}
	for k, vs := range call.Header {
		k = http.CanonicalHeaderKey(k)
		if forbiddenFetchHeaders[k] || strings.HasPrefix(k, "Sec-") || len(vs) == 0 {
			continue
		}
		headers[k] = strings.Join(vs, ", ")
	}
	opts := map[string]any{
		"method":      call.Method,
		"headers":     headers,
		"credentials": "include",
	}
	if len(call.Body) > 0 {
		opts["body"] = string(call.Body)
	}
	return opts
}

type fetchResult struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

func decodeFetchResult(raw string) ([]byte, error) {
	var r fetchResult
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, fmt.Errorf("decode fetch result: %w", err)
	}
	if r.Status < 200 || r.Status >= 300 {
		return nil, fmt.Errorf("%w %d from in-page fetch", httputil.ErrStatus, r.Status)
	}
	return []byte(r.Body), nil
}
