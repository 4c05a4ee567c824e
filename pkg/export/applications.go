package export

import (
	"bytes"
	"fmt"
	"time"

	"go-recruitment-workflow/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	applicationsSheet = "Applications"
	summarySheet      = "Summary"
)

var applicationColumns = []string{
	"FULL NAME", "STATUS", "MIDDLEMAN", "EMAIL", "PHONE",
	"DOCUMENTS", "PENDING", "APPROVED", "REJECTED", "CREATED AT", "UPDATED AT",
}

// ApplicationsXLSX renders the application pipeline as a workbook with one row
// per candidate and a per-status summary sheet.
func ApplicationsXLSX(rows []domain.ApplicationSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", applicationsSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	if err := writeRow(f, applicationsSheet, 1, toAny(applicationColumns)); err != nil {
		return nil, err
	}
	endCell, _ := excelize.CoordinatesToCellName(len(applicationColumns), 1)
	_ = f.SetCellStyle(applicationsSheet, "A1", endCell, headerStyle)

	counts := make(map[domain.ApplicationStatus]int)
	for i, r := range rows {
		counts[r.ApplicationStatus]++
		values := []any{
			r.FullName,
			string(r.ApplicationStatus),
			deref(r.MiddlemanName),
			deref(r.Email),
			deref(r.Phone),
			r.Documents.Total,
			r.Documents.Pending,
			r.Documents.Approved,
			r.Documents.Rejected,
			r.CreatedAt.Format(time.DateTime),
			r.UpdatedAt.Format(time.DateTime),
		}
		if err := writeRow(f, applicationsSheet, i+2, values); err != nil {
			return nil, err
		}
	}

	for i := range applicationColumns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(applicationsSheet, colName, colName, 20)
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	if err := writeRow(f, summarySheet, 1, []any{"STATUS", "CANDIDATES"}); err != nil {
		return nil, err
	}
	_ = f.SetCellStyle(summarySheet, "A1", "B1", headerStyle)
	for i, st := range domain.ValidApplicationStatuses {
		if err := writeRow(f, summarySheet, i+2, []any{string(st), counts[st]}); err != nil {
			return nil, err
		}
	}
	_ = f.SetColWidth(summarySheet, "A", "B", 22)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName is the download name of an export generated at t
func FileName(t time.Time) string {
	return fmt.Sprintf("applications_%s.xlsx", t.Format("20060102_150405"))
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
