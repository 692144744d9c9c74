package delivery

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/lukman83/dishscout/internal/httputil"
	"github.com/lukman83/dishscout/internal/platform"
)

// APIStrategy sends a call straight to the platform's JSON API.
type APIStrategy struct {
	client  *http.Client
	retries int
}

func NewAPIStrategy(client *http.Client, retries int) *APIStrategy {
	if client == nil {
		client = http.DefaultClient
	}
	return &APIStrategy{client: client, retries: retries}
}

func (s *APIStrategy) Name() string { return "api" }

func (s *APIStrategy) Execute(ctx context.Context, call platform.Call) ([]byte, error) {
	var body io.Reader
	if call.Body != nil {
		body = bytes.NewReader(call.Body)
	}
	req, err := http.NewRequestWithContext(ctx, call.Method, call.URL, body)
	if err != nil {
		return nil, err
	}
	httputil.Merge(req.Header, call.Header)

	resp, err := httputil.DoWithRetry(ctx, s.client, req, s.retries)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, err
	}
	if err := httputil.CheckStatus(resp, data); err != nil {
		return nil, err
	}
	return data, nil
}
