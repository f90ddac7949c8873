package config

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Length is a page dimension or margin: either a number of pixels or a
// string carrying its own unit, such as "10mm" or "8.5in". The zero
// Length is unset and marshals to null.
type Length struct {
	px   int
	unit string
	ok   bool
}

// Pixels returns a Length of n pixels. Negative values are made absolute.
func Pixels(n int) Length {
	if n < 0 {
		n = -n
	}

	return Length{px: n, ok: true}
}

// ParseLength returns a Length for s. Numeric strings become pixel counts,
// truncated towards zero. An empty string yields the zero Length.
func ParseLength(s string) Length {
	s = strings.TrimSpace(s)
	if s == "" {
		return Length{}
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Pixels(int(f))
	}

	return Length{unit: s, ok: true}
}

// IsZero reports whether l is unset.
func (l Length) IsZero() bool {
	return !l.ok
}

// Pixels returns the pixel count and whether l is expressed in pixels.
func (l Length) Pixels() (int, bool) {
	return l.px, l.ok && l.unit == ""
}

func (l Length) String() string {
	switch {
	case !l.ok:
		return ""
	case l.unit != "":
		return l.unit
	default:
		return strconv.Itoa(l.px)
	}
}

// empty reports whether l carries no usable value: unset, zero pixels,
// or the string "0".
func (l Length) empty() bool {
	return !l.ok || (l.unit == "" && l.px == 0) || l.unit == "0"
}

// MarshalJSON implements [json.Marshaler].
func (l Length) MarshalJSON() ([]byte, error) {
	switch {
	case !l.ok:
		return []byte("null"), nil
	case l.unit != "":
		return json.Marshal(l.unit)
	default:
		return []byte(strconv.Itoa(l.px)), nil
	}
}
