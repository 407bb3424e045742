// Package bulk reads the positional result import format:
//
//	time,distance,race_name,race_type,date,comment
//
// one record per line, no header and no quoting.
package bulk

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/okian/ekiden/internal/domain/duration"
	"github.com/okian/ekiden/internal/domain/model"
)

// FieldCount is the number of positional fields per line.
const FieldCount = 6

// MaxLineBytes bounds a single line. Longer lines are skipped.
const MaxLineBytes = 64 * 1024

// Row is one accepted line, fields trimmed and defaults applied.
type Row struct {
	Line     int
	Time     string
	Distance string
	RaceName string
	RaceType string
	Date     string
	Comment  string
}

// Batch is the outcome of reading an import file.
type Batch struct {
	Rows     []Row
	Skipped  int
	Warnings []string
}

// Skip records a rejected line.
func (b *Batch) Skip(line int, reason string) {
	b.Skipped++
	b.Warnings = append(b.Warnings, fmt.Sprintf("line %d: %s", line, reason))
}

// Parse reads every non-blank line of r. Lines with fewer than FieldCount
// fields or longer than MaxLineBytes are skipped with a warning. An empty
// race type becomes "road" and an empty date becomes today.
func Parse(r io.Reader, today string) (*Batch, error) {
	b := &Batch{}
	br := bufio.NewReader(r)
	for line := 1; ; line++ {
		raw, tooLong, err := readLine(br)
		if err != nil && !errors.Is(err, io.EOF) {
			return b, fmt.Errorf("%w: %w", ErrRead, err)
		}
		if errors.Is(err, io.EOF) && len(raw) == 0 && !tooLong {
			return b, nil
		}
		if tooLong {
			b.Skip(line, fmt.Sprintf("longer than %d bytes", MaxLineBytes))
		} else {
			b.add(line, strings.TrimSpace(string(raw)), today)
		}
		if err != nil {
			return b, nil
		}
	}
}

func (b *Batch) add(line int, text, today string) {
	if text == "" {
		return
	}
	parts := strings.Split(text, ",")
	if len(parts) < FieldCount {
		b.Skip(line, fmt.Sprintf("expected %d fields, got %d", FieldCount, len(parts)))
		return
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	row := Row{
		Line:     line,
		Time:     parts[0],
		Distance: parts[1],
		RaceName: parts[2],
		RaceType: parts[3],
		Date:     parts[4],
		Comment:  parts[5],
	}
	if row.RaceType == "" {
		row.RaceType = string(model.CategoryRoad)
	}
	if row.Date == "" {
		row.Date = today
	}
	b.Rows = append(b.Rows, row)
}

// readLine returns the next line including its terminator. A line over
// MaxLineBytes is read to its end and dropped.
func readLine(br *bufio.Reader) (line []byte, tooLong bool, err error) {
	for {
		chunk, rerr := br.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > MaxLineBytes {
				line, tooLong = nil, true
			} else {
				line = append(line, chunk...)
			}
		}
		if !errors.Is(rerr, bufio.ErrBufferFull) {
			return line, tooLong, rerr
		}
	}
}

// Convert turns a row into a validated result input. Errors are either
// *duration.FormatError or *model.ValidationError.
func Convert(row Row) (model.ResultInput, error) {
	ms, err := duration.Parse(row.Time)
	if err != nil {
		return model.ResultInput{}, err
	}
	km, err := strconv.ParseFloat(row.Distance, 64)
	if err != nil || math.IsInf(km, 0) || math.IsNaN(km) {
		return model.ResultInput{}, model.NewValidationError(model.FieldError{Field: "distance", Reason: "must be a number"})
	}
	cat, err := model.ParseCategory(row.RaceType)
	if err != nil {
		return model.ResultInput{}, err
	}
	in := model.ResultInput{
		DurationMs: ms,
		DistanceKm: km,
		RaceName:   row.RaceName,
		Category:   cat,
		EventDate:  row.Date,
		Note:       row.Comment,
	}
	if err := in.Validate(); err != nil {
		return model.ResultInput{}, err
	}
	return in, nil
}
