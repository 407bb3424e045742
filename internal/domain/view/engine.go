package view

import (
	"cmp"
	"slices"
	"strings"

	"github.com/okian/ekiden/internal/domain/model"
)

// Apply produces the rows for spec from records. The input may already be
// narrowed by storage; every step is safe to repeat on its own output.
// Order of steps: bucket, best per member, remaining filters, sort, limit.
// records is never modified.
func Apply(records []model.RaceResult, spec Spec) []model.RaceResult {
	out := make([]model.RaceResult, 0, len(records))
	for _, r := range records {
		if spec.Bucket.Matches(r.DistanceKm) {
			out = append(out, r)
		}
	}
	if spec.Mode == ModeBest {
		out = bestPerMember(out)
	}
	out = slices.DeleteFunc(out, func(r model.RaceResult) bool { return !matches(r, spec) })
	sortInPlace(out, spec.SortKey, spec.Desc)
	if spec.Limit > 0 && len(out) > spec.Limit {
		out = out[:spec.Limit]
	}
	return out
}

// Sort returns a stably ordered copy of records. Records without a value
// for key go last in either direction.
func Sort(records []model.RaceResult, key SortKey, desc bool) []model.RaceResult {
	out := slices.Clone(records)
	sortInPlace(out, key, desc)
	return out
}

func sortInPlace(rs []model.RaceResult, key SortKey, desc bool) {
	if key == "" {
		return
	}
	slices.SortStableFunc(rs, func(a, b model.RaceResult) int {
		return compare(a, b, key, desc)
	})
}

func compare(a, b model.RaceResult, key SortKey, desc bool) int {
	okA, okB := present(a, key), present(b, key)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	}
	var c int
	switch key {
	case SortTime:
		c = cmp.Compare(a.DurationMs, b.DurationMs)
	case SortDistance:
		c = cmp.Compare(a.DistanceKm, b.DistanceKm)
	default:
		c = strings.Compare(text(a, key), text(b, key))
	}
	if desc {
		return -c
	}
	return c
}

func present(r model.RaceResult, key SortKey) bool {
	switch key {
	case SortTime:
		return r.DurationMs >= 0
	case SortDistance:
		return r.DistanceKm > 0
	}
	return text(r, key) != ""
}

func text(r model.RaceResult, key SortKey) string {
	switch key {
	case SortName:
		return r.DisplayName
	case SortRaceName:
		return r.RaceName
	case SortCategory:
		return string(r.Category)
	case SortDate:
		return r.EventDate
	case SortNote:
		return r.Note
	}
	return ""
}

func matches(r model.RaceResult, spec Spec) bool {
	if spec.Category != "" && r.Category != spec.Category {
		return false
	}
	if spec.Gender != "" && r.Gender != spec.Gender {
		return false
	}
	if !containsFold(r.DisplayName, spec.NameQuery) || !containsFold(r.RaceName, spec.RaceQuery) {
		return false
	}
	if spec.DateFrom != "" && (r.EventDate == "" || r.EventDate < spec.DateFrom) {
		return false
	}
	if spec.DateTo != "" && (r.EventDate == "" || r.EventDate > spec.DateTo) {
		return false
	}
	return true
}

func containsFold(s, sub string) bool {
	if sub == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// bestPerMember keeps each owner's fastest result. Ties keep the earlier
// record. Rows keep their input order.
func bestPerMember(rs []model.RaceResult) []model.RaceResult {
	best := make(map[string]int, len(rs))
	for i, r := range rs {
		j, ok := best[r.OwnerID]
		if !ok || r.DurationMs < rs[j].DurationMs {
			best[r.OwnerID] = i
		}
	}
	out := make([]model.RaceResult, 0, len(best))
	for i, r := range rs {
		if best[r.OwnerID] == i {
			out = append(out, r)
		}
	}
	return out
}
