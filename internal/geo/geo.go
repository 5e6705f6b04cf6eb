// Package geo holds the distance calculations behind day-route warnings.
// Everything here is a pure function of its arguments.
package geo

import (
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/pkordes/hila-planner/internal/domain"
)

// EarthRadiusKm is the mean Earth radius used by HaversineDistance.
const EarthRadiusKm = 6371.0

// WarningThresholdKm is the distance above which consecutive activities are flagged.
const WarningThresholdKm = 50.0

// HaversineDistance returns the great-circle distance in kilometres between
// two points given in decimal degrees.
func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

func toRad(deg float64) float64 {
	return deg * (math.Pi / 180)
}

// DistanceWarning flags two consecutive activities of a day that are more
// than WarningThresholdKm apart. Indexes are positions in the day's
// sort order, starting at 0.
type DistanceWarning struct {
	FromAssetID uuid.UUID
	ToAssetID   uuid.UUID
	FromTitle   string
	ToTitle     string
	DistanceKm  int
	FromIndex   int
	ToIndex     int
}

// AssetLookup resolves an asset by id. ok is false when the asset no longer exists.
type AssetLookup func(id uuid.UUID) (asset domain.Asset, ok bool)

// CheckDayDistances sorts the activities by sort order and returns a warning
// for every consecutive pair further apart than WarningThresholdKm.
// A pair is skipped when either asset is unresolved or lacks a latitude or
// longitude.
func CheckDayDistances(activities []domain.Activity, lookup AssetLookup) []DistanceWarning {
	sorted := append([]domain.Activity(nil), activities...)
	domain.SortActivities(sorted)

	warnings := []DistanceWarning{}
	for i := 0; i+1 < len(sorted); i++ {
		from, okFrom := lookup(sorted[i].AssetID)
		to, okTo := lookup(sorted[i+1].AssetID)
		if !okFrom || !okTo || !from.HasLocation() || !to.HasLocation() {
			continue
		}

		d := HaversineDistance(*from.Lat, *from.Lng, *to.Lat, *to.Lng)
		if d <= WarningThresholdKm {
			continue
		}
		warnings = append(warnings, DistanceWarning{
			FromAssetID: sorted[i].AssetID,
			ToAssetID:   sorted[i+1].AssetID,
			FromTitle:   from.Title,
			ToTitle:     to.Title,
			DistanceKm:  int(math.Floor(d + 0.5)),
			FromIndex:   i,
			ToIndex:     i + 1,
		})
	}
	return warnings
}

// FormatDistance renders a distance for display. Values of 1000 km or more
// are shown in thousands with one decimal; smaller values are printed as is.
func FormatDistance(km float64) string {
	if km >= 1000 {
		return strconv.FormatFloat(km/1000, 'f', 1, 64) + ` אלף ק"מ`
	}
	return strconv.FormatFloat(km, 'f', -1, 64) + ` ק"מ`
}
