// Package xlsx exports verification results as the three-sheet workbook
// downstream consumers ingest. Sheet names and column order are a
// compatibility contract; change them only with the report consumers.
package xlsx

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/practicum-geofence/internal/domain"
)

const (
	sheetLog      = "Practicum_Log"
	sheetStudents = "Student_Summary"
	sheetSites    = "Site_Summary"
)

var (
	logHeaders = []any{
		"Student_ID", "Site_Name", "Recorded_Date",
		"Student_Latitude", "Student_Longitude", "Logged_Hours",
		"Distance_From_Site_m", "Verification_Status", "Verified_Hours",
	}
	studentHeaders = []any{
		"Student_ID", "Total_Verified_Hours", "Verified_Visits", "Last_Recorded_Date",
	}
	siteHeaders = []any{
		"Site_Name", "Total_Verified_Hours", "Verified_Visits",
		"Unique_Students", "Avg_Hours_Per_Visit",
	}
)

// BuildWorkbook renders the classified log and both summaries into XLSX
// bytes. Sheets appear in contract order: Practicum_Log, Student_Summary,
// Site_Summary. Nil fields render as empty cells; timestamps as RFC 3339.
// Output is deterministic for identical inputs.
func BuildWorkbook(log []domain.ClassifiedRecord, students []domain.StudentSummary, sites []domain.SiteSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetLog); err != nil {
		return nil, fmt.Errorf("rename log sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetStudents); err != nil {
		return nil, fmt.Errorf("create sheet %s: %w", sheetStudents, err)
	}
	if _, err := f.NewSheet(sheetSites); err != nil {
		return nil, fmt.Errorf("create sheet %s: %w", sheetSites, err)
	}

	if err := writeSheet(f, sheetLog, logHeaders, len(log), func(i int) []any {
		rec := log[i]
		return []any{
			rec.StudentID,
			rec.SiteName,
			timeCell(rec.RecordedAt),
			floatCell(rec.Lat),
			floatCell(rec.Lon),
			floatCell(rec.LoggedHours),
			floatCell(rec.DistanceM),
			string(rec.Status),
			rec.VerifiedHours,
		}
	}); err != nil {
		return nil, err
	}

	if err := writeSheet(f, sheetStudents, studentHeaders, len(students), func(i int) []any {
		s := students[i]
		return []any{s.StudentID, s.TotalVerifiedHours, s.VerifiedVisits, timeCell(s.LastRecordedAt)}
	}); err != nil {
		return nil, err
	}

	if err := writeSheet(f, sheetSites, siteHeaders, len(sites), func(i int) []any {
		s := sites[i]
		return []any{s.SiteName, s.TotalVerifiedHours, s.VerifiedVisits, s.UniqueStudents, s.AvgHoursPerVisit}
	}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, headers []any, n int, row func(i int) []any) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("write %s headers: %w", sheet, err)
	}
	for i := 0; i < n; i++ {
		cells := row(i)
		addr := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, addr, &cells); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

func timeCell(t *time.Time) any {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func floatCell(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
