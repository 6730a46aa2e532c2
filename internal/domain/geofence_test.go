package domain

import (
	"math"
	"testing"

	"github.com/golang/geo/s2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// metersNorth offsets a latitude so the haversine distance to the original
// point is exactly m meters (pure latitude offsets are exact on a sphere).
func metersNorth(lat, m float64) float64 {
	return lat + m/earthRadiusM*180/math.Pi
}

func float64Ptr(v float64) *float64 { return &v }

func TestHaversine(t *testing.T) {
	t.Run("zero distance to itself", func(t *testing.T) {
		assert.Equal(t, 0.0, Haversine(30.27, -97.74, 30.27, -97.74))
	})

	t.Run("symmetric", func(t *testing.T) {
		d1 := Haversine(30.27, -97.74, 30.25, -97.71)
		d2 := Haversine(30.25, -97.71, 30.27, -97.74)
		assert.Equal(t, d1, d2)
	})

	t.Run("one degree of latitude at the equator", func(t *testing.T) {
		// R * pi/180 = 111194.93 m on the 6371 km sphere.
		d := Haversine(0, 0, 1, 0)
		assert.InDelta(t, 111194.93, d, 0.01)
	})

	t.Run("matches s2 spherical distance", func(t *testing.T) {
		pairs := [][4]float64{
			{30.271129, -97.743700, 30.251800, -97.718900},
			{0, 0, 0, 0.0009},
			{59.93, 10.75, 59.91, 10.74},
			{-33.86, 151.20, -33.87, 151.21},
		}
		for _, p := range pairs {
			want := s2.LatLngFromDegrees(p[0], p[1]).Distance(s2.LatLngFromDegrees(p[2], p[3])).Radians() * earthRadiusM
			got := Haversine(p[0], p[1], p[2], p[3])
			assert.InDelta(t, want, got, 0.001)
		}
	})

	t.Run("latitude offset is exact", func(t *testing.T) {
		for _, m := range []float64{50, 100, 150, 300, 400} {
			d := Haversine(30.27, -97.74, metersNorth(30.27, m), -97.74)
			assert.InDelta(t, m, d, 1e-6)
		}
	})
}

func TestClassify(t *testing.T) {
	const siteLat, siteLon = 30.271129, -97.743700
	registry := NewStaticRegistry(map[string]Coordinate{
		"Mercy General Hospital": {Lat: siteLat, Lon: siteLon},
	})
	classifier := NewClassifier(registry)

	record := func(lat, lon *float64, site string, hours *float64) AttendanceRecord {
		return AttendanceRecord{
			StudentID:   "S1001",
			SiteName:    site,
			Lat:         lat,
			Lon:         lon,
			LoggedHours: hours,
		}
	}

	tests := []struct {
		name          string
		rec           AttendanceRecord
		wantStatus    Status
		wantDistance  *float64
		wantVerHours  float64
	}{
		{
			name:         "50m is Verified",
			rec:          record(float64Ptr(metersNorth(siteLat, 50)), float64Ptr(siteLon), "Mercy General Hospital", float64Ptr(4)),
			wantStatus:   StatusVerified,
			wantDistance: float64Ptr(50),
			wantVerHours: 4,
		},
		{
			name:         "150m is Review",
			rec:          record(float64Ptr(metersNorth(siteLat, 150)), float64Ptr(siteLon), "Mercy General Hospital", float64Ptr(3.5)),
			wantStatus:   StatusReview,
			wantDistance: float64Ptr(150),
		},
		{
			name:         "400m is Out of Range",
			rec:          record(float64Ptr(metersNorth(siteLat, 400)), float64Ptr(siteLon), "Mercy General Hospital", float64Ptr(6)),
			wantStatus:   StatusOutOfRange,
			wantDistance: float64Ptr(400),
		},
		{
			name:       "missing coordinates",
			rec:        record(nil, nil, "Mercy General Hospital", float64Ptr(2)),
			wantStatus: StatusNoLocation,
		},
		{
			name:       "missing latitude only",
			rec:        record(nil, float64Ptr(siteLon), "Mercy General Hospital", float64Ptr(2)),
			wantStatus: StatusNoLocation,
		},
		{
			name:       "unknown site",
			rec:        record(float64Ptr(siteLat), float64Ptr(siteLon), "Downtown Shelter", float64Ptr(5)),
			wantStatus: StatusNoLocation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Classify(tt.rec)

			assert.Equal(t, tt.wantStatus, got.Status)
			if tt.wantDistance == nil {
				assert.Nil(t, got.DistanceM)
			} else {
				require.NotNil(t, got.DistanceM)
				assert.InDelta(t, *tt.wantDistance, *got.DistanceM, 1e-6)
			}
			assert.Equal(t, tt.wantVerHours, got.VerifiedHours)
			if got.VerifiedHours > 0 {
				assert.Equal(t, StatusVerified, got.Status)
			}
		})
	}

	t.Run("boundary distances are inclusive", func(t *testing.T) {
		at100 := classifier.Classify(record(float64Ptr(metersNorth(siteLat, 100)), float64Ptr(siteLon), "Mercy General Hospital", nil))
		assert.Equal(t, StatusVerified, at100.Status)

		at300 := classifier.Classify(record(float64Ptr(metersNorth(siteLat, 300)), float64Ptr(siteLon), "Mercy General Hospital", nil))
		assert.Equal(t, StatusReview, at300.Status)
	})

	t.Run("verified with nil hours credits zero", func(t *testing.T) {
		got := classifier.Classify(record(float64Ptr(siteLat), float64Ptr(siteLon), "Mercy General Hospital", nil))
		assert.Equal(t, StatusVerified, got.Status)
		assert.Equal(t, 0.0, got.VerifiedHours)
	})

	t.Run("custom radii", func(t *testing.T) {
		tight := NewClassifierWithRadii(registry, 25, 75)
		got := tight.Classify(record(float64Ptr(metersNorth(siteLat, 50)), float64Ptr(siteLon), "Mercy General Hospital", float64Ptr(4)))
		assert.Equal(t, StatusReview, got.Status)
		assert.Equal(t, 0.0, got.VerifiedHours)
	})

	t.Run("deterministic record ID", func(t *testing.T) {
		rec := record(float64Ptr(siteLat), float64Ptr(siteLon), "Mercy General Hospital", float64Ptr(4))
		first := classifier.Classify(rec)
		second := classifier.Classify(rec)
		assert.Equal(t, first.ID, second.ID)
		assert.NotEmpty(t, first.ID)

		other := classifier.Classify(record(float64Ptr(siteLat), float64Ptr(siteLon), "Mercy General Hospital", float64Ptr(5)))
		assert.NotEqual(t, first.ID, other.ID)
	})
}
