package domain

// FieldMap names the raw export columns holding each canonical field. The
// zero value is not useful; start from DefaultFieldMap and override for
// exports that renamed questions.
type FieldMap struct {
	RecordedAt  string
	Latitude    string
	Longitude   string
	StudentID   string
	SiteName    string
	LoggedHours string
	// Consent is optional: when the column is absent from the input the
	// normalizer keeps every row.
	Consent string
}

// DefaultFieldMap matches the stock Qualtrics attendance export.
func DefaultFieldMap() FieldMap {
	return FieldMap{
		RecordedAt:  "RecordedDate",
		Latitude:    "LocationLatitude",
		Longitude:   "LocationLongitude",
		StudentID:   "Q2.1",
		SiteName:    "Q4",
		LoggedHours: "Q5",
		Consent:     "Q2",
	}
}

// DropStats counts rows the normalizer removed, by reason.
type DropStats struct {
	HeaderEcho int // duplicated schema-description rows
	NoConsent  int // consent column present but not equal to 1
}

// Normalizer converts raw survey rows into AttendanceRecords.
type Normalizer struct {
	fields FieldMap
}

// NewNormalizer creates a Normalizer for the given field mapping.
func NewNormalizer(fields FieldMap) *Normalizer {
	return &Normalizer{fields: fields}
}

// Normalize converts a raw table (header row first) into canonical records.
//
// Rules, applied per row:
//   - the header-echo row some multi-row-header exports insert as data
//     (latitude cell holding the literal label "Location Latitude") is
//     dropped before anything else;
//   - when a consent column exists, only rows whose value parses to exactly
//     1 are kept; with no consent column every row is kept (worth confirming
//     with the survey owner whether that permissive default is intended);
//   - per-field coercion failures produce nil fields, never errors.
//
// Fails with *SchemaError only when a required column is absent entirely.
func (n *Normalizer) Normalize(rows [][]string) ([]AttendanceRecord, DropStats, error) {
	const source = "attendance export"

	var stats DropStats
	if len(rows) == 0 {
		return nil, stats, &SchemaError{Source: source, Missing: n.requiredFields()}
	}

	headers := rows[0]
	matchers := []columnMatcher{
		exactMatcher("RecordedDate", n.fields.RecordedAt),
		exactMatcher("LocationLatitude", n.fields.Latitude),
		exactMatcher("LocationLongitude", n.fields.Longitude),
		exactMatcher("Student_ID", n.fields.StudentID),
		exactMatcher("Site_Name", n.fields.SiteName),
		exactMatcher("Logged_Hours", n.fields.LoggedHours),
	}
	cols, missing := resolveColumns(headers, matchers)
	if len(missing) > 0 {
		return nil, stats, &SchemaError{Source: source, Missing: missing, Headers: trimAll(headers)}
	}

	consentCol := -1
	if n.fields.Consent != "" {
		consent, consentMissing := resolveColumns(headers, []columnMatcher{
			exactMatcher("Consent", n.fields.Consent),
		})
		if len(consentMissing) == 0 {
			consentCol = consent["Consent"]
		}
	}

	records := make([]AttendanceRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		latCell := cellValue(row, cols["LocationLatitude"])
		if latCell == headerEchoLatitude {
			stats.HeaderEcho++
			continue
		}
		if consentCol >= 0 && !consentGiven(cellValue(row, consentCol)) {
			stats.NoConsent++
			continue
		}

		records = append(records, AttendanceRecord{
			StudentID:   cellValue(row, cols["Student_ID"]),
			SiteName:    cellValue(row, cols["Site_Name"]),
			RecordedAt:  parseTimeOrNil(cellValue(row, cols["RecordedDate"])),
			Lat:         parseFloatOrNil(latCell),
			Lon:         parseFloatOrNil(cellValue(row, cols["LocationLongitude"])),
			LoggedHours: parseFloatOrNil(cellValue(row, cols["Logged_Hours"])),
		})
	}
	return records, stats, nil
}

func (n *Normalizer) requiredFields() []string {
	return []string{"RecordedDate", "LocationLatitude", "LocationLongitude", "Student_ID", "Site_Name", "Logged_Hours"}
}

// headerEchoLatitude is the question-text artifact Qualtrics inserts as a
// second header row when exporting with labels.
const headerEchoLatitude = "Location Latitude"

// consentGiven reports whether a consent cell records agreement. Spreadsheet
// round-trips rewrite 1 as "1.0", so the comparison is numeric.
func consentGiven(cell string) bool {
	v := parseFloatOrNil(cell)
	return v != nil && *v == 1
}
