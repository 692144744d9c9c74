package httputil

import "net/http"

// JSONHeaders returns the headers a browser sends with a same-origin JSON
// API call from origin.
func JSONHeaders(origin, referer string) http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json, text/plain, */*")
	h.Set("Accept-Language", "en-US,en;q=0.9,ar;q=0.8")
	h.Set("Accept-Encoding", "gzip, br")
	h.Set("Content-Type", "application/json")
	h.Set("Sec-Fetch-Dest", "empty")
	h.Set("Sec-Fetch-Mode", "cors")
	h.Set("Sec-Fetch-Site", "same-origin")
	if origin != "" {
		h.Set("Origin", origin)
	}
	if referer != "" {
		h.Set("Referer", referer)
	}
	return h
}

// Merge copies every value of src into dst, replacing existing keys.
func Merge(dst, src http.Header) {
	for k, vs := range src {
		dst.Del(k)
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}
