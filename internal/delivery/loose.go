package delivery

import (
	"bytes"
	"encoding/json"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// loose is a JSON scalar the platforms send inconsistently: the same field
// arrives as a number, a numeric string, an empty string or null depending on
// the vendor record.
type loose struct {
	text  string
	num   float64
	isNum bool
}

func (l *loose) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*l = loose{}
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte("false")):
		return nil
	case bytes.Equal(data, []byte("true")):
		l.text = "true"
		return nil
	case data[0] == '"':
		return json.Unmarshal(data, &l.text)
	case data[0] == '{' || data[0] == '[':
		// objects are not scalars; treat as absent
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return nil
	}
	l.num, l.isNum = f, true
	l.text = strconv.FormatFloat(f, 'f', -1, 64)
	return nil
}

// set reports whether the value counts as present: non-zero numbers and
// non-empty strings.
func (l loose) set() bool {
	if l.isNum {
		return l.num != 0
	}
	return l.text != ""
}

func (l loose) String() string { return l.text }

var (
	leadingFloat = regexp.MustCompile(`^\s*[-+]?(\d+\.?\d*|\.\d+)`)
	leadingInt   = regexp.MustCompile(`^\s*[-+]?\d+`)
)

// Float reads a number, accepting a numeric prefix such as "12.5 QAR".
func (l loose) Float() (float64, bool) {
	if l.isNum {
		return l.num, true
	}
	m := leadingFloat.FindString(l.text)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(m), 64)
	return f, err == nil
}

// Int reads the leading integer, so "35 mins" is 35 and 12.9 is 12.
func (l loose) Int() (int, bool) {
	if l.isNum {
		return int(l.num), true
	}
	return parseLeadingInt(l.text)
}

func parseLeadingInt(s string) (int, bool) {
	m := leadingInt.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(m))
	return n, err == nil
}

// first returns the first value that is set, or the zero value.
func first(vals ...loose) loose {
	for _, v := range vals {
		if v.set() {
			return v
		}
	}
	return loose{}
}

// price is nil when the value is absent, zero or not numeric.
func price(v loose) *float64 {
	if !v.set() {
		return nil
	}
	f, ok := v.Float()
	if !ok {
		return nil
	}
	return &f
}

func firstString(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// encodeComponent escapes s the way browsers escape a URI component.
func encodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)
