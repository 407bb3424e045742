package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/ekiden/internal/domain/distance"
	"github.com/okian/ekiden/internal/domain/duration"
	"github.com/okian/ekiden/internal/domain/model"
	"github.com/okian/ekiden/internal/domain/view"
)

// limits bounds the limit query parameter. A zero def means no default cap.
type limits struct {
	def int
	max int
}

// parseSpec builds a view specification from query parameters:
// bucket, mode, category, gender, name, race, year, from, to, sort, dir
// and limit. Absent parameters keep the defaults of view.DefaultSpec.
func parseSpec(q url.Values, lim limits) (view.Spec, error) {
	spec := view.DefaultSpec()

	b, err := distance.Parse(q.Get("bucket"))
	if err != nil {
		return view.Spec{}, err
	}
	spec = spec.WithBucket(b)

	m, err := view.ParseMode(q.Get("mode"))
	if err != nil {
		return view.Spec{}, err
	}
	spec = spec.WithMode(m)

	if v := strings.TrimSpace(q.Get("category")); v != "" {
		c, err := model.ParseCategory(v)
		if err != nil {
			return view.Spec{}, err
		}
		spec = spec.WithCategory(c)
	}
	g, err := model.ParseGender(q.Get("gender"))
	if err != nil {
		return view.Spec{}, err
	}
	spec = spec.WithGender(g)
	spec = spec.WithQueries(q.Get("name"), q.Get("race"))

	if v := strings.TrimSpace(q.Get("year")); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || year < 1900 || year > 2100 {
			return view.Spec{}, fmt.Errorf("%w: year %q", ErrBadRequest, v)
		}
		spec = spec.WithYear(year)
	}
	from, to := spec.DateFrom, spec.DateTo
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		if _, err := time.Parse(model.DateLayout, v); err != nil {
			return view.Spec{}, fmt.Errorf("%w: from %q", ErrBadRequest, v)
		}
		from = v
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		if _, err := time.Parse(model.DateLayout, v); err != nil {
			return view.Spec{}, fmt.Errorf("%w: to %q", ErrBadRequest, v)
		}
		to = v
	}
	spec = spec.WithDateRange(from, to)

	if v := q.Get("sort"); v != "" {
		key, err := view.ParseSortKey(v)
		if err != nil {
			return view.Spec{}, err
		}
		spec = spec.WithSort(key, false)
	}
	switch strings.ToLower(strings.TrimSpace(q.Get("dir"))) {
	case "":
	case "asc":
		spec = spec.WithSort(spec.SortKey, false)
	case "desc":
		spec = spec.WithSort(spec.SortKey, true)
	default:
		return view.Spec{}, fmt.Errorf("%w: dir must be asc or desc", ErrBadRequest)
	}

	limit := lim.def
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return view.Spec{}, fmt.Errorf("%w: limit %q", ErrBadRequest, v)
		}
		if lim.max > 0 && n > lim.max {
			return view.Spec{}, fmt.Errorf("%w: limit %d above %d", ErrLimitExceeded, n, lim.max)
		}
		limit = n
	}
	return spec.WithLimit(limit), nil
}

// recordResponse is the JSON shape of one result row.
type recordResponse struct {
	Rank     int     `json:"rank,omitempty"`
	ID       string  `json:"id"`
	OwnerID  string  `json:"owner_id"`
	Name     string  `json:"name"`
	Gender   string  `json:"gender,omitempty"`
	Time     string  `json:"time"`
	TimeMs   int64   `json:"time_ms"`
	Distance float64 `json:"distance"`
	Bucket   string  `json:"bucket"`
	RaceName string  `json:"race_name"`
	RaceType string  `json:"race_type"`
	Date     string  `json:"date"`
	Comment  string  `json:"comment,omitempty"`
}

func toRecord(r model.RaceResult, mode duration.Mode) recordResponse {
	return recordResponse{
		ID:       r.ID,
		OwnerID:  r.OwnerID,
		Name:     r.DisplayName,
		Gender:   string(r.Gender),
		Time:     duration.Format(r.DurationMs, mode),
		TimeMs:   r.DurationMs,
		Distance: r.DistanceKm,
		Bucket:   distance.Classify(r.DistanceKm).String(),
		RaceName: r.RaceName,
		RaceType: string(r.Category),
		Date:     r.EventDate,
		Comment:  r.Note,
	}
}

func toRecords(rows []model.RaceResult, mode duration.Mode, ranked bool) []recordResponse {
	out := make([]recordResponse, len(rows))
	for i, r := range rows {
		out[i] = toRecord(r, mode)
		if ranked {
			out[i].Rank = i + 1
		}
	}
	return out
}
