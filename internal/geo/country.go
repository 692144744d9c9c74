// Package geo resolves which delivery market a coordinate falls in.
package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Country codes of the supported markets.
const (
	Qatar       = "QA"
	SaudiArabia = "SA"
)

type market struct {
	code    string
	outline orb.Polygon
}

// Rough outlines; good enough to tell the two markets apart. orb.Point is
// [lng, lat]. Qatar is listed first because it sits inside Saudi Arabia's
// bounding box.
var markets = []market{
	{code: Qatar, outline: orb.Polygon{orb.Ring{
		{50.75, 24.55}, {51.15, 24.45}, {51.65, 24.60}, {51.70, 25.30},
		{51.60, 25.95}, {51.25, 26.20}, {50.95, 25.90}, {50.75, 25.40},
		{50.75, 24.55},
	}}},
	{code: SaudiArabia, outline: orb.Polygon{orb.Ring{
		{34.50, 28.10}, {36.00, 32.15}, {39.20, 32.15}, {42.00, 31.10},
		{44.70, 29.20}, {46.55, 29.10}, {48.45, 28.55}, {50.10, 26.90},
		{50.20, 25.60}, {50.80, 24.70}, {51.60, 24.25}, {52.55, 22.95},
		{55.65, 22.00}, {55.20, 20.00}, {52.00, 19.00}, {49.10, 18.60},
		{46.40, 17.25}, {43.40, 17.50}, {42.70, 16.40}, {41.40, 18.00},
		{39.10, 21.30}, {37.40, 24.20}, {35.20, 27.90}, {34.50, 28.10},
	}}},
}

// CountryFor returns the market containing (lat, lon).
func CountryFor(lat, lon float64) (string, bool) {
	p := orb.Point{lon, lat}
	for _, m := range markets {
		if !m.outline.Bound().Contains(p) {
			continue
		}
		if planar.PolygonContains(m.outline, p) {
			return m.code, true
		}
	}
	return "", false
}
