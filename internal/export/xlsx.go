// Package export renders obligation schedules as spreadsheets.
package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mmynk/debtplan/internal/money"
	"github.com/mmynk/debtplan/internal/scheduler"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const sheet = "Schedule"

// Schedule is the data written to the workbook.
type Schedule struct {
	Title       string
	Summary     string
	Status      scheduler.Status
	AsOf        time.Time
	Occurrences []scheduler.Occurrence
	Paid        money.Amount
	Outstanding money.Amount
	// Format renders amounts for the display column; amounts are also
	// written as numbers so the sheet can sum them.
	Format func(money.Amount) string
}

var header = []any{"#", "Due date", "Amount", "Amount (formatted)", "State"}

// ScheduleWorkbook builds an XLSX file with one row per occurrence followed by
// a totals block.
func ScheduleWorkbook(s Schedule) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	format := s.Format
	if format == nil {
		format = money.Amount.String
	}

	if err := f.SetCellValue(sheet, "A1", s.Title); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", bold); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, "A2", s.Summary); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A4", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A4", "E4", bold); err != nil {
		return nil, err
	}

	row := 5
	for _, occ := range s.Occurrences {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, err
		}
		values := []any{
			occ.Index + 1,
			occ.DueDate.Format(scheduler.DateLayout),
			occ.Amount.Float64(),
			format(occ.Amount),
			string(occ.State),
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write occurrence %d: %w", occ.Index, err)
		}
		row++
	}

	row++
	totals := [][]any{
		{"Status", string(s.Status)},
		{"As of", s.AsOf.Format(scheduler.DateLayout)},
		{"Paid", format(s.Paid)},
		{"Outstanding", format(s.Outstanding)},
	}
	for _, values := range totals {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write totals: %w", err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, bold); err != nil {
			return nil, err
		}
		row++
	}

	if err := f.SetColWidth(sheet, "B", "D", 18); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

// Filename derives a file name from the obligation title.
func Filename(title string, asOf time.Time) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, strings.TrimSpace(title))
	slug = strings.Trim(slug, "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	if slug == "" {
		slug = "schedule"
	}
	return fmt.Sprintf("%s-%s.xlsx", slug, asOf.Format(scheduler.DateLayout))
}
