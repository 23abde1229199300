package schedule

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Period is one of the four dosing periods of a day.
type Period string

const (
	Morning Period = "morning"
	Noon    Period = "noon"
	Evening Period = "evening"
	Bedtime Period = "bedtime"
)

// rank fixes the canonical display/storage order of periods.
var rank = map[Period]int{
	Morning: 0,
	Noon:    1,
	Evening: 2,
	Bedtime: 3,
}

// Valid reports whether p is one of the four known period tags.
func (p Period) Valid() bool {
	_, ok := rank[p]
	return ok
}

// Classify maps a wall-clock hour (0-23) to its dosing period.
// Boundaries are half-open: [0,11) morning, [11,16) noon,
// [16,20) evening, [20,24) bedtime.
func Classify(hour int) Period {
	switch {
	case hour < 11:
		return Morning
	case hour < 16:
		return Noon
	case hour < 20:
		return Evening
	default:
		return Bedtime
	}
}

// ClassifyTime classifies the hour of t in t's own location.
func ClassifyTime(t time.Time) Period {
	return Classify(t.Hour())
}

// Periods is a set of period tags, kept deduplicated and in canonical order.
// It is stored as a JSON array in a text column and must round-trip exactly.
type Periods []Period

// ParseSet builds a Periods set from raw tag strings. Unknown tags are
// dropped and duplicates collapse; the result is canonically ordered.
func ParseSet(tags []string) Periods {
	seen := make(map[Period]bool, len(tags))
	for _, tag := range tags {
		p := Period(tag)
		if p.Valid() {
			seen[p] = true
		}
	}
	out := make(Periods, 0, len(seen))
	for _, p := range []Period{Morning, Noon, Evening, Bedtime} {
		if seen[p] {
			out = append(out, p)
		}
	}
	return out
}

// Contains reports whether the set includes p.
func (ps Periods) Contains(p Period) bool {
	for _, q := range ps {
		if q == p {
			return true
		}
	}
	return false
}

// Strings returns the tags as plain strings.
func (ps Periods) Strings() []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = string(p)
	}
	return out
}

// Value serializes the set for storage.
func (ps Periods) Value() (driver.Value, error) {
	if ps == nil {
		ps = Periods{}
	}
	b, err := json.Marshal(ps.Strings())
	if err != nil {
		return nil, fmt.Errorf("failed to serialize period set: %w", err)
	}
	return string(b), nil
}

// Scan restores the set from its stored representation.
func (ps *Periods) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*ps = Periods{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported period set column type %T", src)
	}

	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return fmt.Errorf("failed to parse period set %q: %w", raw, err)
	}
	*ps = ParseSet(tags)
	return nil
}

// UnmarshalJSON accepts any array of strings and normalizes it into a set,
// so lenient API/AI inputs never fail here.
func (ps *Periods) UnmarshalJSON(b []byte) error {
	var tags []string
	if err := json.Unmarshal(b, &tags); err != nil {
		return err
	}
	*ps = ParseSet(tags)
	return nil
}
