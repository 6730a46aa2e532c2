package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Status is the verification tier assigned to an attendance record.
// The string values are part of the exported workbook contract and match
// the labels downstream spreadsheets already filter on.
type Status string

const (
	StatusVerified   Status = "Verified"
	StatusReview     Status = "Review"
	StatusOutOfRange Status = "Out of Range"
	StatusNoLocation Status = "No Location/No Site"
)

// Coordinate is a WGS-84 latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// AttendanceRecord is the canonical shape of one survey row after
// normalization. Fields that failed coercion are nil and propagate through
// classification as "no data" rather than errors.
type AttendanceRecord struct {
	StudentID   string     `json:"student_id"`
	SiteName    string     `json:"site_name"`
	RecordedAt  *time.Time `json:"recorded_at,omitempty"`
	Lat         *float64   `json:"lat,omitempty"`
	Lon         *float64   `json:"lon,omitempty"`
	LoggedHours *float64   `json:"logged_hours,omitempty"`
}

// ClassifiedRecord is an AttendanceRecord extended with geofence results.
// VerifiedHours is non-zero only when Status is StatusVerified.
type ClassifiedRecord struct {
	AttendanceRecord

	ID            string   `json:"id"`
	DistanceM     *float64 `json:"distance_m,omitempty"`
	Status        Status   `json:"status"`
	VerifiedHours float64  `json:"verified_hours"`
}

// StudentSummary is one row of the per-student rollup.
type StudentSummary struct {
	StudentID          string     `json:"student_id"`
	TotalVerifiedHours float64    `json:"total_verified_hours"`
	VerifiedVisits     int        `json:"verified_visits"`
	LastRecordedAt     *time.Time `json:"last_recorded_at,omitempty"`
}

// SiteSummary is one row of the per-site rollup.
type SiteSummary struct {
	SiteName           string  `json:"site_name"`
	TotalVerifiedHours float64 `json:"total_verified_hours"`
	VerifiedVisits     int     `json:"verified_visits"`
	UniqueStudents     int     `json:"unique_students"`
	AvgHoursPerVisit   float64 `json:"avg_hours_per_visit"`
}

// ReviewSummary is one row of the review-flag rollup: students with at least
// one entry in the Review tier.
type ReviewSummary struct {
	StudentID    string `json:"student_id"`
	ReviewCount  int    `json:"review_count"`
	TotalEntries int    `json:"total_entries"`
}

// generateID produces a deterministic ID from a record's key fields.
// Deterministic IDs make the sink topic replay-safe: reprocessing the same
// upload produces the same keys.
func generateID(rec AttendanceRecord) string {
	ts := ""
	if rec.RecordedAt != nil {
		ts = rec.RecordedAt.UTC().Format(time.RFC3339)
	}
	input := fmt.Sprintf("%s|%s|%s|%s|%s|%s",
		rec.StudentID, rec.SiteName, ts,
		floatKey(rec.Lat), floatKey(rec.Lon), floatKey(rec.LoggedHours))
	hash := sha256.Sum256([]byte(input))
	return "rec-" + hex.EncodeToString(hash[:8])
}

func floatKey(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.6f", *v)
}
