package geo

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

const (
	// EarthRadiusMeters is the mean earth radius used for haversine distances
	EarthRadiusMeters = 6371000.0
	// DefaultRadiusMeters applies when an entity carries no radius of its own
	DefaultRadiusMeters = 5000.0
	// OverFetchFactor is how many candidates storage returns per requested row
	OverFetchFactor = 2
)

// Point is a latitude/longitude pair in degrees
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ErrInvalidPoint is returned for coordinates outside the WGS84 ranges
var ErrInvalidPoint = errors.New("coordinates out of range")

// Validate rejects non-finite values, latitudes outside [-90,90] and
// longitudes outside [-180,180].
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return ErrInvalidPoint
	}
	if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return ErrInvalidPoint
	}
	return nil
}

// Haversine returns the great-circle distance between a and b in meters
func Haversine(a, b Point) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Located is what FilterByRadius needs to know about a candidate.
// A nil Location means the coordinates are unknown.
type Located struct {
	Location     *Point
	RadiusMeters float64
}

// Ranked is a candidate that passed the radius filter.
// DistanceMeters is nil when either side has no usable coordinates.
type Ranked[T any] struct {
	Item           T
	DistanceMeters *float64
}

// FilterByRadius keeps the items within their radius of origin and sorts them
// by ascending distance. Items without coordinates, and every item when origin
// is nil, are kept with an unknown distance and sorted last in input order.
// An origin failing Validate is treated like a nil one.
func FilterByRadius[T any](origin *Point, items []T, locate func(T) Located) []Ranked[T] {
	out := make([]Ranked[T], 0, len(items))
	hasOrigin := origin != nil && origin.Validate() == nil

	for _, item := range items {
		loc := locate(item)
		if !hasOrigin || loc.Location == nil {
			out = append(out, Ranked[T]{Item: item})
			continue
		}

		radius := loc.RadiusMeters
		if radius <= 0 {
			radius = DefaultRadiusMeters
		}

		d := Haversine(*origin, *loc.Location)
		if d > radius {
			continue
		}
		out = append(out, Ranked[T]{Item: item, DistanceMeters: &d})
	}

	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].DistanceMeters, out[j].DistanceMeters
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return *di < *dj
		}
	})
	return out
}

// RoundKm converts meters to kilometers rounded to two decimals
func RoundKm(meters float64) float64 {
	return math.Round(meters/1000*100) / 100
}

// FormatDistance renders a distance for display, e.g. "850m" or "1.3km"
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%dm", int(math.Round(meters)))
	}
	return fmt.Sprintf("%.1fkm", meters/1000)
}
