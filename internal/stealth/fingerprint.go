package stealth

import (
	"net/http"
	"sync"
)

// Fingerprint is a browser identity: a user agent plus the client hints that
// browser sends on a cross-site XHR.
type Fingerprint struct {
	UserAgent string
	Headers   http.Header
}

// Apply sets the user agent and fills in any header the request left unset.
// Platform-specific headers set by an adapter always win.
func (f Fingerprint) Apply(h http.Header) {
	h.Set("User-Agent", f.UserAgent)
	for key, vals := range f.Headers {
		if h.Get(key) != "" {
			continue
		}
		for _, v := range vals {
			h.Add(key, v)
		}
	}
}

// FingerprintPool rotates through browser fingerprints round-robin.
type FingerprintPool struct {
	mu           sync.Mutex
	fingerprints []Fingerprint
	idx          int
}

func NewFingerprintPool() *FingerprintPool {
	return &FingerprintPool{fingerprints: defaultFingerprints()}
}

func (fp *FingerprintPool) Next() Fingerprint {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	f := fp.fingerprints[fp.idx%len(fp.fingerprints)]
	fp.idx++
	return f
}

func defaultFingerprints() []Fingerprint {
	return []Fingerprint{
		{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/138.0.0.0 Safari/537.36",
			Headers:   chromiumHints("138", "Google Chrome", `"Windows"`, "?0"),
		},
		{
			UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/138.0.0.0 Safari/537.36",
			Headers:   chromiumHints("138", "Google Chrome", `"macOS"`, "?0"),
		},
		{
			UserAgent: "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/138.0.0.0 Mobile Safari/537.36",
			Headers:   chromiumHints("138", "Google Chrome", `"Android"`, "?1"),
		},
		{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/138.0.0.0 Safari/537.36 Edg/138.0.0.0",
			Headers:   chromiumHints("138", "Microsoft Edge", `"Windows"`, "?0"),
		},
		{
			UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 18_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.5 Mobile/15E148 Safari/604.1",
			Headers:   safariHeaders(),
		},
	}
}

func chromiumHints(version, brand, platform, mobile string) http.Header {
	h := http.Header{}
	h.Set("Accept-Language", "en-US,en;q=0.9,ar;q=0.8")
	h.Set("Sec-Ch-Ua", `"Chromium";v="`+version+`", "Not)A;Brand";v="8", "`+brand+`";v="`+version+`"`)
	h.Set("Sec-Ch-Ua-Mobile", mobile)
	h.Set("Sec-Ch-Ua-Platform", platform)
	return h
}

func safariHeaders() http.Header {
	h := http.Header{}
	h.Set("Accept-Language", "en-GB,en;q=0.9")
	return h
}
