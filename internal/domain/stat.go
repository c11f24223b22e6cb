package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Stat is a leniently decoded numeric attribute (AP, AAP, DP).
// JSON numbers and numeric strings decode to their value; null, booleans,
// objects and unparseable strings decode to 0.
type Stat float64

func (s *Stat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}

	switch data[0] {
	case '"':
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			*s = 0
			return nil
		}
		*s = ParseStat(raw)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			*s = 0
			return nil
		}
		*s = Stat(f).sanitize()
	default:
		*s = 0
	}
	return nil
}

func (s Stat) Float64() float64 {
	return float64(s.sanitize())
}

func (s Stat) sanitize() Stat {
	f := float64(s)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return s
}

// ParseStat converts free text (CSV cells, form values) into a Stat.
func ParseStat(raw string) Stat {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return Stat(f).sanitize()
}
