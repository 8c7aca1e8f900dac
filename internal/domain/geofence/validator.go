package geofence

import (
	"fmt"
	"math"

	"timeclock/internal/domain/geo"
)

// Validate checks a reported coordinate against the resolved geofence. A nil
// geofence means no location restriction applies and the verdict is always
// valid. A point exactly on the boundary counts as inside. Coordinates are
// assumed range-checked by the caller; Validate itself never fails.
func Validate(lat, lon float64, gf *Geofence) Validation {
	if gf == nil {
		return Validation{
			Valid:   true,
			Message: "no geofence restriction applies",
		}
	}

	distance := geo.DistanceMeters(lat, lon, gf.CenterLat, gf.CenterLon)
	if distance <= gf.RadiusM {
		return Validation{
			Valid:        true,
			DistanceM:    &distance,
			GeofenceName: gf.Name,
			Message:      fmt.Sprintf("%.0fm from center of %s", distance, gf.Name),
		}
	}

	beyond := int(math.Round(distance - gf.RadiusM))
	return Validation{
		Valid:        false,
		DistanceM:    &distance,
		GeofenceName: gf.Name,
		Message:      fmt.Sprintf("%dm beyond boundary of %s", beyond, gf.Name),
	}
}
