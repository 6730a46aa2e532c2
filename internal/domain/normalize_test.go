package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var qualtricsHeaders = []string{
	"RecordedDate", "Q2", "Q2.1", "Q4", "Q5", "LocationLatitude", "LocationLongitude",
}

func qualtricsRow(date, consent, student, site, hours, lat, lon string) []string {
	return []string{date, consent, student, site, hours, lat, lon}
}

func TestNormalize(t *testing.T) {
	n := NewNormalizer(DefaultFieldMap())

	t.Run("full row", func(t *testing.T) {
		rows := [][]string{
			qualtricsHeaders,
			qualtricsRow("2024-04-26 09:30:00", "1", " S1001 ", " Mercy General Hospital ", "4.5", "30.271129", "-97.743700"),
		}
		records, stats, err := n.Normalize(rows)

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, DropStats{}, stats)

		rec := records[0]
		assert.Equal(t, "S1001", rec.StudentID)
		assert.Equal(t, "Mercy General Hospital", rec.SiteName)
		require.NotNil(t, rec.RecordedAt)
		assert.Equal(t, time.Date(2024, 4, 26, 9, 30, 0, 0, time.UTC), *rec.RecordedAt)
		require.NotNil(t, rec.Lat)
		assert.Equal(t, 30.271129, *rec.Lat)
		require.NotNil(t, rec.Lon)
		assert.Equal(t, -97.7437, *rec.Lon)
		require.NotNil(t, rec.LoggedHours)
		assert.Equal(t, 4.5, *rec.LoggedHours)
	})

	t.Run("missing required columns", func(t *testing.T) {
		rows := [][]string{
			{"RecordedDate", "Q2.1", "LocationLatitude"},
			{"2024-04-26 09:30:00", "S1001", "30.27"},
		}
		_, _, err := n.Normalize(rows)

		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.ElementsMatch(t, []string{"LocationLongitude", "Site_Name", "Logged_Hours"}, schemaErr.Missing)
		assert.Contains(t, err.Error(), "attendance export")
	})

	t.Run("header echo row dropped", func(t *testing.T) {
		rows := [][]string{
			qualtricsHeaders,
			qualtricsRow("Recorded Date", "Consent", "Student ID", "Site", "Hours", "Location Latitude", "Location Longitude"),
			qualtricsRow("2024-04-26 09:30:00", "1", "S1001", "Eastside Clinic", "4.5", "30.2518", "-97.7189"),
		}
		records, stats, err := n.Normalize(rows)

		require.NoError(t, err)
		assert.Len(t, records, 1)
		assert.Equal(t, 1, stats.HeaderEcho)
	})

	t.Run("consent zero excludes the row", func(t *testing.T) {
		rows := [][]string{
			qualtricsHeaders,
			qualtricsRow("2024-04-26 09:30:00", "0", "S1001", "Eastside Clinic", "4.5", "30.2518", "-97.7189"),
			qualtricsRow("2024-04-26 10:30:00", "1", "S1002", "Eastside Clinic", "2.0", "30.2518", "-97.7189"),
		}
		records, stats, err := n.Normalize(rows)

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "S1002", records[0].StudentID)
		assert.Equal(t, 1, stats.NoConsent)
	})

	t.Run("consent as spreadsheet float", func(t *testing.T) {
		rows := [][]string{
			qualtricsHeaders,
			qualtricsRow("2024-04-26 09:30:00", "1.0", "S1001", "Eastside Clinic", "4.5", "30.2518", "-97.7189"),
		}
		records, _, err := n.Normalize(rows)

		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("absent consent column keeps all rows", func(t *testing.T) {
		rows := [][]string{
			{"RecordedDate", "Q2.1", "Q4", "Q5", "LocationLatitude", "LocationLongitude"},
			{"2024-04-26 09:30:00", "S1001", "Eastside Clinic", "4.5", "30.2518", "-97.7189"},
			{"2024-04-26 10:30:00", "S1002", "Eastside Clinic", "2.0", "30.2518", "-97.7189"},
		}
		records, stats, err := n.Normalize(rows)

		require.NoError(t, err)
		assert.Len(t, records, 2)
		assert.Zero(t, stats.NoConsent)
	})

	t.Run("coercion failures become nils, not errors", func(t *testing.T) {
		rows := [][]string{
			qualtricsHeaders,
			qualtricsRow("not a date", "1", "S1001", "Eastside Clinic", "lots", "north", "-97.7189"),
		}
		records, _, err := n.Normalize(rows)

		require.NoError(t, err)
		require.Len(t, records, 1)
		rec := records[0]
		assert.Nil(t, rec.RecordedAt)
		assert.Nil(t, rec.Lat)
		assert.Nil(t, rec.LoggedHours)
		require.NotNil(t, rec.Lon)
	})

	t.Run("short rows tolerated", func(t *testing.T) {
		rows := [][]string{
			qualtricsHeaders,
			{"2024-04-26 09:30:00", "1", "S1001"},
		}
		records, _, err := n.Normalize(rows)

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "S1001", records[0].StudentID)
		assert.Empty(t, records[0].SiteName)
		assert.Nil(t, records[0].Lat)
	})

	t.Run("empty table is a schema error", func(t *testing.T) {
		_, _, err := n.Normalize(nil)
		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
	})

	t.Run("header only yields zero records", func(t *testing.T) {
		records, _, err := n.Normalize([][]string{qualtricsHeaders})
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("custom field map", func(t *testing.T) {
		custom := NewNormalizer(FieldMap{
			RecordedAt:  "Timestamp",
			Latitude:    "GPS_Lat",
			Longitude:   "GPS_Lon",
			StudentID:   "Student",
			SiteName:    "Placement",
			LoggedHours: "Hours",
		})
		rows := [][]string{
			{"Timestamp", "Student", "Placement", "Hours", "GPS_Lat", "GPS_Lon"},
			{"2024-04-26 09:30:00", "S1001", "Eastside Clinic", "4.5", "30.2518", "-97.7189"},
		}
		records, _, err := custom.Normalize(rows)

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Eastside Clinic", records[0].SiteName)
	})
}

func TestParseTimeOrNil(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *time.Time
	}{
		{"qualtrics format", "2024-04-26 09:30:00", timePtr(time.Date(2024, 4, 26, 9, 30, 0, 0, time.UTC))},
		{"rfc3339", "2024-04-26T09:30:00Z", timePtr(time.Date(2024, 4, 26, 9, 30, 0, 0, time.UTC))},
		{"date only", "2024-04-26", timePtr(time.Date(2024, 4, 26, 0, 0, 0, 0, time.UTC))},
		{"us layout", "4/26/2024", timePtr(time.Date(2024, 4, 26, 0, 0, 0, 0, time.UTC))},
		{"excel serial", "45408", timePtr(time.Date(2024, 4, 26, 0, 0, 0, 0, time.UTC))},
		{"small number is not a date", "42", nil},
		{"garbage", "yesterday-ish", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTimeOrNil(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestParseFloatOrNil(t *testing.T) {
	assert.Nil(t, parseFloatOrNil(""))
	assert.Nil(t, parseFloatOrNil("north"))

	got := parseFloatOrNil(" -97.7189 ")
	require.NotNil(t, got)
	assert.Equal(t, -97.7189, *got)
}

func timePtr(t time.Time) *time.Time { return &t }
