package view

import (
	"fmt"

	"github.com/okian/ekiden/internal/domain/distance"
)

// Source identifies a precomputed leaderboard view in storage.
type Source string

// The array dimensions follow the enums, so a new bucket or mode without a
// row here is caught by TestSourceTableComplete.
var sources = [distance.Count][modeCount]Source{
	distance.All:           {ModeAll: "public_record", ModeBest: "public_record_best"},
	distance.FiveK:         {ModeAll: "public_5", ModeBest: "public_5_best"},
	distance.TenK:          {ModeAll: "public_10", ModeBest: "public_10_best"},
	distance.Half:          {ModeAll: "public_half", ModeBest: "public_half_best"},
	distance.Full:          {ModeAll: "public_full", ModeBest: "public_full_best"},
	distance.HundredK:      {ModeAll: "public_100", ModeBest: "public_100_best"},
	distance.OtherUnder100: {ModeAll: "public_others_under100", ModeBest: "public_others_under100_best"},
	distance.OtherOver100:  {ModeAll: "public_others_over100", ModeBest: "public_others_over100_best"},
}

// SourceFor returns the view holding rows for bucket b in mode m.
func SourceFor(b distance.Bucket, m Mode) (Source, error) {
	if b < 0 || b >= distance.Count || m < 0 || m >= modeCount {
		return "", fmt.Errorf("%w: bucket=%s mode=%s", ErrNoSource, b, m)
	}
	src := sources[b][m]
	if src == "" {
		return "", fmt.Errorf("%w: bucket=%s mode=%s", ErrNoSource, b, m)
	}
	return src, nil
}

// SourceDef describes one source for schema generation.
type SourceDef struct {
	Name   Source
	Bucket distance.Bucket
	Mode   Mode
}

// Sources lists every source in table order.
func Sources() []SourceDef {
	out := make([]SourceDef, 0, int(distance.Count)*int(modeCount))
	for b := distance.All; b < distance.Count; b++ {
		for m := ModeAll; m < modeCount; m++ {
			out = append(out, SourceDef{Name: sources[b][m], Bucket: b, Mode: m})
		}
	}
	return out
}

// Modes lists every aggregation mode.
func Modes() []Mode {
	return []Mode{ModeAll, ModeBest}
}
