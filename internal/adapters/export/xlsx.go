// Package export renders leaderboard rows as spreadsheet downloads.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okian/ekiden/internal/domain/duration"
	"github.com/okian/ekiden/internal/domain/model"
)

// ContentType is the media type of the written workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	defaultSheet  = "Sheet1"
	maxSheetName  = 31
	fallbackSheet = "Leaderboard"
)

var headers = []string{"Rank", "Name", "Gender", "Time", "Distance (km)", "Race", "Type", "Date", "Comment"}

var sheetNameCleaner = strings.NewReplacer(":", " ", `\`, " ", "/", " ", "?", " ", "*", " ", "[", "(", "]", ")")

// WriteLeaderboard writes rows in display order to w as a single-sheet
// workbook named after title. Rank is the 1-based row position.
func WriteLeaderboard(w io.Writer, title string, rows []model.RaceResult) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(title)
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("%w: %v", ErrWorkbook, err)
	}
	if err := f.DeleteSheet(defaultSheet); err != nil {
		return fmt.Errorf("%w: %v", ErrWorkbook, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"1c399e"},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
		Font: &excelize.Font{
			Color: "ffffff",
			Bold:  true,
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWorkbook, err)
	}

	for i, h := range headers {
		if err := setCell(f, sheet, i+1, 1, h); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("%w: %v", ErrWorkbook, err)
	}

	for i, r := range rows {
		values := []any{
			i + 1,
			r.DisplayName,
			string(r.Gender),
			duration.FormatCompact(r.DurationMs),
			r.DistanceKm,
			r.RaceName,
			string(r.Category),
			r.EventDate,
			r.Note,
		}
		for col, v := range values {
			if err := setCell(f, sheet, col+1, i+2, v); err != nil {
				return err
			}
		}
	}
	if err := f.SetColWidth(sheet, "B", "B", 24); err != nil {
		return fmt.Errorf("%w: %v", ErrWorkbook, err)
	}
	if err := f.SetColWidth(sheet, "F", "F", 30); err != nil {
		return fmt.Errorf("%w: %v", ErrWorkbook, err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWorkbook, err)
	}
	if err := f.SetCellValue(sheet, cell, v); err != nil {
		return fmt.Errorf("%w: %v", ErrWorkbook, err)
	}
	return nil
}

// sheetName strips characters Excel rejects and trims to its length limit.
func sheetName(title string) string {
	name := strings.TrimSpace(sheetNameCleaner.Replace(title))
	name = strings.Trim(name, "'")
	if r := []rune(name); len(r) > maxSheetName {
		name = strings.TrimSpace(string(r[:maxSheetName]))
	}
	if name == "" || name == defaultSheet {
		return fallbackSheet
	}
	return name
}

// Filename returns the attachment name for a leaderboard export.
func Filename(bucket, mode string) string {
	return fmt.Sprintf("leaderboard-%s-%s.xlsx", bucket, mode)
}
