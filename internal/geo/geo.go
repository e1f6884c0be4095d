// Package geo provides great-circle distance and bearing math on a spherical
// Earth model, plus the distance unit system used throughout towerwitch.
package geo

import (
	"fmt"
	"math"
)

// Mean Earth radius in kilometers. All distances are computed in km and then
// scaled by a fixed per-unit factor.
const earthRadiusKm = 6371.0

const (
	kmToMiles    = 0.621371
	kmToNautical = 0.539957
)

// Unit is a distance unit accepted on the CLI and in the config file.
type Unit string

const (
	Kilometers    Unit = "km"
	StatuteMiles  Unit = "mi"
	NauticalMiles Unit = "nm"
)

// ParseUnit validates a unit abbreviation.
func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case Kilometers, StatuteMiles, NauticalMiles:
		return Unit(s), nil
	}
	return "", fmt.Errorf("invalid unit %q (use km, mi, or nm)", s)
}

// Label returns the long form of the unit for display.
func (u Unit) Label() string {
	switch u {
	case Kilometers:
		return "kilometers"
	case StatuteMiles:
		return "miles"
	case NauticalMiles:
		return "nautical miles"
	}
	return string(u)
}

func (u Unit) fromKm() float64 {
	switch u {
	case StatuteMiles:
		return kmToMiles
	case NauticalMiles:
		return kmToNautical
	}
	return 1.0
}

// InvalidCoordinateError reports a latitude/longitude pair outside the valid
// range. Out-of-range input is rejected, never clamped.
type InvalidCoordinateError struct {
	Lat, Lon float64
}

func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("invalid coordinate lat=%v lon=%v", e.Lat, e.Lon)
}

// LatLon is a point in decimal degrees.
type LatLon struct {
	Lat float64
	Lon float64
}

// NewLatLon builds a validated point.
func NewLatLon(lat, lon float64) (LatLon, error) {
	p := LatLon{Lat: lat, Lon: lon}
	if !p.Valid() {
		return LatLon{}, &InvalidCoordinateError{Lat: lat, Lon: lon}
	}
	return p, nil
}

// Valid reports whether the point is within [-90,90] x [-180,180].
func (p LatLon) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180 &&
		!math.IsNaN(p.Lat) && !math.IsNaN(p.Lon)
}

// Distance returns the haversine great-circle distance between a and b in the
// requested unit. Both points must be in range.
func Distance(a, b LatLon, unit Unit) (float64, error) {
	if !a.Valid() {
		return 0, &InvalidCoordinateError{Lat: a.Lat, Lon: a.Lon}
	}
	if !b.Valid() {
		return 0, &InvalidCoordinateError{Lat: b.Lat, Lon: b.Lon}
	}
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c * unit.fromKm(), nil
}

// Bearing returns the initial true bearing from a to b in degrees [0,360),
// 0=North, 90=East. The bearing from a point to itself is 0.
func Bearing(a, b LatLon) float64 {
	if a == b {
		return 0
	}
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLon := radians(b.Lon - a.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	deg := degrees(math.Atan2(y, x))
	return math.Mod(deg+360, 360)
}

// Convert converts a distance value between units.
func Convert(v float64, from, to Unit) float64 {
	if from == to {
		return v
	}
	return v / from.fromKm() * to.fromKm()
}

var cardinals = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// Cardinal returns the 16-point compass label for a bearing in degrees.
func Cardinal(deg float64) string {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return cardinals[int(deg/22.5+0.5)%16]
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
