package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Rating
		out  string
	}{
		{name: "number", in: `4.5`, want: RatingOf(4.5), out: `4.5`},
		{name: "numeric string", in: `"3.9"`, want: RatingOf(3.9), out: `3.9`},
		{name: "not available", in: `"N/A"`, want: Rating{}, out: `"N/A"`},
		{name: "null", in: `null`, want: Rating{}, out: `"N/A"`},
		{name: "empty string", in: `""`, want: Rating{}, out: `"N/A"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Rating
			require.NoError(t, json.Unmarshal([]byte(tt.in), &r))
			assert.Equal(t, tt.want, r)

			b, err := json.Marshal(r)
			require.NoError(t, err)
			assert.JSONEq(t, tt.out, string(b))
		})
	}
}

func TestRawProductNullPrice(t *testing.T) {
	b, err := json.Marshal(RawProduct{Source: "Snoonu", ETAMinutes: UnknownETA})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Nil(t, m["product_price"])
	assert.Equal(t, "N/A", m["restaurant_rating"])
	assert.EqualValues(t, 999, m["eta_minutes"])
}

func TestLinksMarshalNullWhenMissing(t *testing.T) {
	b, err := json.Marshal(RawProduct{Source: "Rafeeq", ProductImage: "https://cdn.rafeeq/karak.png"})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "https://cdn.rafeeq/karak.png", m["product_image"])
	for _, key := range []string{"product_url", "restaurant_image"} {
		v, ok := m[key]
		assert.True(t, ok, key)
		assert.Nil(t, v, key)
	}

	var g OfferGroup
	require.NoError(t, json.Unmarshal([]byte(`{"product_image":null,"restaurant_image":"r.png"}`), &g))
	assert.Equal(t, Link(""), g.ProductImage)
	assert.Equal(t, Link("r.png"), g.RestaurantImage)
}
