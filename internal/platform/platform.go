package platform

import (
	"context"
	"net/http"

	"github.com/lukman83/dishscout/internal/models"
)

// Request is one search call against a delivery platform.
type Request struct {
	Query string
	Lat   float64
	Lon   float64
}

// Call is a platform API call described independently of how it is sent,
// so the same call can go over plain HTTP or be replayed inside a browser page.
type Call struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
	// Origin is the page a browser must have open for the call to be same-origin.
	Origin string
}

// Strategy fetches the raw platform response for a call.
type Strategy interface {
	Name() string
	Execute(ctx context.Context, call Call) ([]byte, error)
}

// Adapter searches one delivery platform. Search never fails: any internal
// error is logged and reported as an empty result.
type Adapter interface {
	// Name is the registry id, e.g. "talabat-sa".
	Name() string
	// Source is the label stamped on every product, e.g. "Talabat SA".
	Source() string
	Search(ctx context.Context, query string, lat, lon float64) []models.RawProduct
}

// Resolver looks adapters up by registry id.
type Resolver interface {
	Get(name string) (Adapter, error)
}
