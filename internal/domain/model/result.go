// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// Category is the kind of race a result was run in.
type Category string

const (
	CategoryRoad  Category = "road"
	CategoryTrail Category = "trail"
	CategoryTrack Category = "track"
	CategoryTimed Category = "timed"
)

// Categories lists the closed set of race categories.
func Categories() []Category {
	return []Category{CategoryRoad, CategoryTrail, CategoryTrack, CategoryTimed}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryRoad, CategoryTrail, CategoryTrack, CategoryTimed:
		return true
	}
	return false
}

// ParseCategory normalizes s. Empty input defaults to road and "time" is
// accepted for timed races.
func ParseCategory(s string) (Category, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "":
		return CategoryRoad, nil
	case "time":
		return CategoryTimed, nil
	}
	c := Category(v)
	if !c.Valid() {
		return "", NewValidationError(FieldError{Field: "race_type", Reason: "must be one of road, trail, track, timed"})
	}
	return c, nil
}

// Gender is an optional display tag on a member.
type Gender string

const (
	GenderUnset  Gender = ""
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParseGender accepts male, female or empty.
func ParseGender(s string) (Gender, error) {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case GenderUnset, GenderMale, GenderFemale:
		return g, nil
	}
	return "", NewValidationError(FieldError{Field: "gender", Reason: "must be male or female"})
}

// DateLayout is the ISO calendar date layout used for event dates.
const DateLayout = "2006-01-02"

// RaceResult is one reported performance, as read back from storage.
type RaceResult struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	DisplayName string    `json:"name"`
	Gender      Gender    `json:"gender,omitempty"`
	DurationMs  int64     `json:"time_ms"`
	DistanceKm  float64   `json:"distance"`
	RaceName    string    `json:"race_name"`
	Category    Category  `json:"race_type"`
	EventDate   string    `json:"date"`
	Note        string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ResultInput carries the member-supplied fields of a new result.
type ResultInput struct {
	DurationMs int64    `json:"time" validate:"gte=0"`
	DistanceKm float64  `json:"distance" validate:"finite,gt=0"`
	RaceName   string   `json:"race_name" validate:"required,max=200"`
	Category   Category `json:"race_type" validate:"required,oneof=road trail track timed"`
	EventDate  string   `json:"date" validate:"required,datetime=2006-01-02"`
	Note       string   `json:"comment" validate:"max=1000"`
}

// Validate checks the invariants of a result before it is stored.
func (in ResultInput) Validate() error {
	return Validate(in)
}

// ResultPatch is a field-level edit; nil fields are left unchanged.
type ResultPatch struct {
	DurationMs *int64    `json:"time" validate:"omitempty,gte=0"`
	DistanceKm *float64  `json:"distance" validate:"omitempty,finite,gt=0"`
	RaceName   *string   `json:"race_name" validate:"omitempty,min=1,max=200"`
	Category   *Category `json:"race_type" validate:"omitempty,oneof=road trail track timed"`
	EventDate  *string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Note       *string   `json:"comment" validate:"omitempty,max=1000"`
}

// Empty reports whether the patch changes nothing.
func (p ResultPatch) Empty() bool {
	return p.DurationMs == nil && p.DistanceKm == nil && p.RaceName == nil &&
		p.Category == nil && p.EventDate == nil && p.Note == nil
}

// Validate checks the set fields of the patch.
func (p ResultPatch) Validate() error {
	if p.Empty() {
		return NewValidationError(FieldError{Field: "patch", Reason: "no fields to update"})
	}
	return Validate(p)
}

// Apply returns r with the patch fields written over it.
func (p ResultPatch) Apply(r RaceResult) RaceResult {
	if p.DurationMs != nil {
		r.DurationMs = *p.DurationMs
	}
	if p.DistanceKm != nil {
		r.DistanceKm = *p.DistanceKm
	}
	if p.RaceName != nil {
		r.RaceName = *p.RaceName
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.EventDate != nil {
		r.EventDate = *p.EventDate
	}
	if p.Note != nil {
		r.Note = *p.Note
	}
	return r
}
