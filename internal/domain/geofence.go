package domain

import "math"

// earthRadiusM is the mean Earth radius used for great-circle distances.
const earthRadiusM = 6371000.0

// Default geofence radii in meters.
const (
	DefaultVerifiedRadiusM = 100.0
	DefaultReviewRadiusM   = 300.0
)

// Haversine returns the great-circle distance in meters between two
// latitude/longitude pairs (degrees) on a spherical Earth.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

// Classifier assigns verification tiers by distance from the registered site.
type Classifier struct {
	registry       Registry
	verifiedRadius float64
	reviewRadius   float64
}

// NewClassifier creates a Classifier over the given registry using the
// default 100 m / 300 m radii.
func NewClassifier(registry Registry) *Classifier {
	return NewClassifierWithRadii(registry, DefaultVerifiedRadiusM, DefaultReviewRadiusM)
}

// NewClassifierWithRadii creates a Classifier with custom fence radii.
// verifiedRadius must not exceed reviewRadius; callers validate via config.
func NewClassifierWithRadii(registry Registry, verifiedRadius, reviewRadius float64) *Classifier {
	return &Classifier{
		registry:       registry,
		verifiedRadius: verifiedRadius,
		reviewRadius:   reviewRadius,
	}
}

// Classify computes the record's distance to its registered site and assigns
// a tier. Pure per record: classification never looks at other records.
//
// Distance is nil when the site is unknown to the registry or any reported
// coordinate is nil; those records land in StatusNoLocation. VerifiedHours
// equals logged hours (nil as 0) for StatusVerified and 0 otherwise.
func (c *Classifier) Classify(rec AttendanceRecord) ClassifiedRecord {
	out := ClassifiedRecord{
		AttendanceRecord: rec,
		ID:               generateID(rec),
	}

	if site, ok := c.registry[rec.SiteName]; ok && rec.Lat != nil && rec.Lon != nil {
		d := Haversine(*rec.Lat, *rec.Lon, site.Lat, site.Lon)
		out.DistanceM = &d
	}

	out.Status = c.statusFromDistance(out.DistanceM)
	if out.Status == StatusVerified && rec.LoggedHours != nil {
		out.VerifiedHours = *rec.LoggedHours
	}
	return out
}

// ClassifyAll classifies a batch, preserving input order.
func (c *Classifier) ClassifyAll(recs []AttendanceRecord) []ClassifiedRecord {
	out := make([]ClassifiedRecord, len(recs))
	for i, rec := range recs {
		out[i] = c.Classify(rec)
	}
	return out
}

// statusFromDistance evaluates the tier thresholds in order; first match wins.
func (c *Classifier) statusFromDistance(d *float64) Status {
	switch {
	case d == nil:
		return StatusNoLocation
	case *d <= c.verifiedRadius:
		return StatusVerified
	case *d <= c.reviewRadius:
		return StatusReview
	default:
		return StatusOutOfRange
	}
}
