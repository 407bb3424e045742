// Package distance groups race distances into the buckets used by filters
// and leaderboards.
package distance

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Tolerance is the absolute difference under which a distance counts as one
// of the named targets.
const Tolerance = 0.001

// Named target distances in kilometers.
const (
	FiveKm    = 5.0
	TenKm     = 10.0
	HalfKm    = 21.0975
	FullKm    = 42.195
	HundredKm = 100.0
)

// Bucket is a named or residual distance category.
type Bucket int

const (
	All Bucket = iota
	FiveK
	TenK
	Half
	Full
	HundredK
	OtherUnder100
	OtherOver100

	// Count is the number of buckets; it is not a bucket.
	Count
)

var names = [Count]string{
	All:           "all",
	FiveK:         "5k",
	TenK:          "10k",
	Half:          "half",
	Full:          "full",
	HundredK:      "100k",
	OtherUnder100: "other_under_100",
	OtherOver100:  "other_over_100",
}

var labels = [Count]string{
	All:           "All distances",
	FiveK:         "5 km",
	TenK:          "10 km",
	Half:          "Half marathon",
	Full:          "Marathon",
	HundredK:      "100 km",
	OtherUnder100: "Other (under 100 km)",
	OtherOver100:  "Other (over 100 km)",
}

// namedTargets lists the buckets matched by near-equality, in classify order.
var namedTargets = []struct {
	bucket Bucket
	km     float64
}{
	{FiveK, FiveKm},
	{TenK, TenKm},
	{Half, HalfKm},
	{Full, FullKm},
	{HundredK, HundredKm},
}

// Buckets returns every bucket in declaration order.
func Buckets() []Bucket {
	out := make([]Bucket, 0, Count)
	for b := All; b < Count; b++ {
		out = append(out, b)
	}
	return out
}

// String returns the query-parameter name of b.
func (b Bucket) String() string {
	if b < 0 || b >= Count {
		return fmt.Sprintf("bucket(%d)", int(b))
	}
	return names[b]
}

// Label returns the display label of b.
func (b Bucket) Label() string {
	if b < 0 || b >= Count {
		return b.String()
	}
	return labels[b]
}

// Target returns the named distance of b and whether b has one.
func (b Bucket) Target() (float64, bool) {
	for _, t := range namedTargets {
		if t.bucket == b {
			return t.km, true
		}
	}
	return 0, false
}

// Near reports whether km is within Tolerance of target.
func Near(km, target float64) bool {
	return math.Abs(km-target) < Tolerance
}

// Matches reports whether a result of km kilometers belongs to b.
func (b Bucket) Matches(km float64) bool {
	switch b {
	case All:
		return true
	case OtherUnder100:
		if km >= HundredKm {
			return false
		}
		for _, t := range namedTargets {
			if t.bucket != HundredK && Near(km, t.km) {
				return false
			}
		}
		return true
	case OtherOver100:
		return km > HundredKm
	default:
		target, ok := b.Target()
		return ok && Near(km, target)
	}
}

// Classify returns the most specific bucket for km. Named buckets win over
// the residual ones.
func Classify(km float64) Bucket {
	for _, t := range namedTargets {
		if Near(km, t.km) {
			return t.bucket
		}
	}
	if km > HundredKm {
		return OtherOver100
	}
	return OtherUnder100
}

// Parse maps a query value to a bucket. Empty input means All. Numeric
// values are accepted for the named distances.
func Parse(s string) (Bucket, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return All, nil
	}
	for b := All; b < Count; b++ {
		if names[b] == v {
			return b, nil
		}
	}
	switch v {
	case "5km":
		return FiveK, nil
	case "10km":
		return TenK, nil
	case "100km":
		return HundredK, nil
	case "marathon":
		return Full, nil
	}
	if km, err := strconv.ParseFloat(v, 64); err == nil {
		for _, t := range namedTargets {
			if Near(km, t.km) {
				return t.bucket, nil
			}
		}
	}
	return All, fmt.Errorf("%w: %q", ErrUnknownBucket, s)
}
