package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

const ratingUnavailable = "N/A"

// Rating is a restaurant score. Platforms that hide the score report it as "N/A",
// which is what the zero value marshals to.
type Rating struct {
	Value float64
	Known bool
}

// RatingOf returns a known rating.
func RatingOf(v float64) Rating {
	return Rating{Value: v, Known: true}
}

// ParseRating accepts the loose forms platforms send ("4.5", " 4 ", "N/A", "").
func ParseRating(s string) Rating {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Rating{}
	}
	return RatingOf(f)
}

func (r Rating) String() string {
	if !r.Known {
		return ratingUnavailable
	}
	return strconv.FormatFloat(r.Value, 'f', -1, 64)
}

func (r Rating) MarshalJSON() ([]byte, error) {
	if !r.Known {
		return json.Marshal(ratingUnavailable)
	}
	return json.Marshal(r.Value)
}

func (r *Rating) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = Rating{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = ParseRating(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*r = RatingOf(f)
	return nil
}
