// Package geo holds the proximity math used by destination ranking and
// portal geo filters. Everything here is a pure function over coordinates
// already in memory, with no routing service behind it, so it is safe to
// call per venue per request.
package geo

import (
	"fmt"
	"math"
)

const (
	// EarthRadiusKm is the mean earth radius used by the haversine formula.
	EarthRadiusKm = 6371.0

	// walkingRouteFactor inflates straight-line distance to approximate a
	// real walking route over a street grid.
	walkingRouteFactor = 1.3

	// Assumed travel speeds for human-readable estimates.
	walkingSpeedKmh = 5.0
	drivingSpeedKmh = 30.0

	// Walking-distance tier thresholds, in walking km (not straight-line).
	tierWalkableMaxKm = 1.2
	tierCloseMaxKm    = 3.0

	// Label rendering bounds.
	maxWalkLabelMinutes = 30
	shortRideMaxMinutes = 10
	minDriveMinutes     = 5
)

// Tier is a coarse distance bucket driving how much content density a venue
// deserves in a portal's nearby view.
type Tier string

const (
	TierWalkable    Tier = "walkable"
	TierClose       Tier = "close"
	TierDestination Tier = "destination"
)

// DistanceKm returns the haversine great-circle distance between two WGS84
// points. Total function: NaN inputs propagate NaN, no error cases.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// EstimateWalkingKm approximates real walking-route length from a
// straight-line distance. Gridded streets systematically beat the crow-flies
// number, so a calibrated multiplier stands in for a routing call.
func EstimateWalkingKm(haversineKm float64) float64 {
	return haversineKm * walkingRouteFactor
}

// WalkingMinutes estimates walking time from a straight-line distance,
// rounded to the nearest minute.
func WalkingMinutes(haversineKm float64) int {
	return int(math.Round(EstimateWalkingKm(haversineKm) / walkingSpeedKmh * 60))
}

// ProximityTier classifies a walking distance (caller applies
// EstimateWalkingKm first) into a tier. Walkable runs up to and including
// 1.2 walking km, destination starts at 3.
func ProximityTier(walkingKm float64) Tier {
	switch {
	case walkingKm <= tierWalkableMaxKm:
		return TierWalkable
	case walkingKm < tierCloseMaxKm:
		return TierClose
	default:
		return TierDestination
	}
}

// ProximityLabel renders a human travel estimate for a straight-line
// distance. Anything within a 30 minute walk is labeled as a walk; beyond
// that it falls back to a driving estimate floored at 5 minutes, rendered as
// "Short ride" up to 10 minutes and "N min drive" after.
func ProximityLabel(haversineKm float64) string {
	if wm := WalkingMinutes(haversineKm); wm <= maxWalkLabelMinutes {
		return fmt.Sprintf("%d min walk", wm)
	}

	dm := int(math.Round(haversineKm / drivingSpeedKmh * 60))
	if dm < minDriveMinutes {
		dm = minDriveMinutes
	}
	if dm <= shortRideMaxMinutes {
		return "Short ride"
	}
	return fmt.Sprintf("%d min drive", dm)
}

// kmPerDegreeLat is the near-constant north-south span of one degree of
// latitude.
const kmPerDegreeLat = 111.19

// BoundingBox returns the lat/lng rectangle enclosing the radius around a
// center point, used to prefetch venue candidates with a cheap range query
// before exact haversine filtering. Longitude degrees shrink with latitude;
// near the poles the box degenerates to the full longitude range.
func BoundingBox(lat, lng, radiusKm float64) (minLat, maxLat, minLng, maxLng float64) {
	dLat := radiusKm / kmPerDegreeLat
	minLat, maxLat = lat-dLat, lat+dLat

	cos := math.Cos(radians(lat))
	if cos < 1e-6 {
		return minLat, maxLat, -180, 180
	}
	dLng := radiusKm / (kmPerDegreeLat * cos)
	return minLat, maxLat, lng - dLng, lng + dLng
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
