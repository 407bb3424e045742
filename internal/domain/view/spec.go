// Package view turns a fetched set of race results into the ordered,
// filtered rows a page renders. Every input is an explicit Spec value.
package view

import (
	"fmt"
	"strings"

	"github.com/okian/ekiden/internal/domain/distance"
	"github.com/okian/ekiden/internal/domain/model"
)

// Mode selects whether every result or only each member's best is shown.
type Mode int

const (
	ModeAll Mode = iota
	ModeBest

	modeCount
)

func (m Mode) String() string {
	switch m {
	case ModeAll:
		return "all"
	case ModeBest:
		return "best"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode maps "all", "best" or empty to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return ModeAll, nil
	case "best":
		return ModeBest, nil
	}
	return ModeAll, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// SortKey names the result attribute rows are ordered by.
type SortKey string

const (
	SortName     SortKey = "name"
	SortTime     SortKey = "time_ms"
	SortRaceName SortKey = "race_name"
	SortDistance SortKey = "distance"
	SortCategory SortKey = "race_type"
	SortDate     SortKey = "date"
	SortNote     SortKey = "comment"
)

// SortKeys lists every supported key.
func SortKeys() []SortKey {
	return []SortKey{SortName, SortTime, SortRaceName, SortDistance, SortCategory, SortDate, SortNote}
}

// ParseSortKey accepts the persisted attribute names plus "time".
func ParseSortKey(s string) (SortKey, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "time" {
		return SortTime, nil
	}
	for _, k := range SortKeys() {
		if string(k) == v {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSortKey, s)
}

// Spec is an immutable view specification. Methods return modified copies.
type Spec struct {
	Bucket    distance.Bucket
	Mode      Mode
	Category  model.Category // empty matches any
	Gender    model.Gender   // empty matches any
	NameQuery string
	RaceQuery string
	DateFrom  string // inclusive YYYY-MM-DD, empty is open
	DateTo    string // inclusive YYYY-MM-DD, empty is open
	SortKey   SortKey
	Desc      bool
	Limit     int // zero means no limit
}

// DefaultSpec shows every result, newest first.
func DefaultSpec() Spec {
	return Spec{Bucket: distance.All, Mode: ModeAll, SortKey: SortDate, Desc: true}
}

// Toggle selects key. Selecting the active key flips the direction; a new
// key starts ascending.
func (s Spec) Toggle(key SortKey) Spec {
	if s.SortKey == key {
		s.Desc = !s.Desc
		return s
	}
	s.SortKey = key
	s.Desc = false
	return s
}

// WithSort sets key and direction.
func (s Spec) WithSort(key SortKey, desc bool) Spec {
	s.SortKey = key
	s.Desc = desc
	return s
}

// WithBucket sets the distance bucket.
func (s Spec) WithBucket(b distance.Bucket) Spec {
	s.Bucket = b
	return s
}

// WithMode sets the aggregation mode.
func (s Spec) WithMode(m Mode) Spec {
	s.Mode = m
	return s
}

// WithCategory restricts rows to one race category.
func (s Spec) WithCategory(c model.Category) Spec {
	s.Category = c
	return s
}

// WithGender restricts rows to one gender tag.
func (s Spec) WithGender(g model.Gender) Spec {
	s.Gender = g
	return s
}

// WithQueries sets the member-name and race-name substring filters.
func (s Spec) WithQueries(name, race string) Spec {
	s.NameQuery = strings.TrimSpace(name)
	s.RaceQuery = strings.TrimSpace(race)
	return s
}

// WithDateRange sets inclusive date bounds.
func (s Spec) WithDateRange(from, to string) Spec {
	s.DateFrom = from
	s.DateTo = to
	return s
}

// WithYear limits rows to one calendar year.
func (s Spec) WithYear(year int) Spec {
	return s.WithDateRange(fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-12-31", year))
}

// WithLimit caps the number of rows; n <= 0 removes the cap.
func (s Spec) WithLimit(n int) Spec {
	if n < 0 {
		n = 0
	}
	s.Limit = n
	return s
}

// Source returns the data source this spec reads from.
func (s Spec) Source() (Source, error) {
	return SourceFor(s.Bucket, s.Mode)
}
