// Package gps acquires a geographic position from one of several backends:
// manual coordinates, a saved position file, a gpsd daemon stream, or a raw
// NMEA serial device.
package gps

import (
	"errors"
	"fmt"

	"towerwitch/internal/geo"
)

// FixMode is the positioning quality indicator. The numeric values match the
// gpsd TPV "mode" field (0/1 = no fix, 2 = 2D, 3 = 3D).
type FixMode int

const (
	NoFix FixMode = 0
	Fix2D FixMode = 2
	Fix3D FixMode = 3
)

func (m FixMode) String() string {
	switch m {
	case Fix2D:
		return "2D fix"
	case Fix3D:
		return "3D fix"
	}
	return "no fix"
}

// fixModeFrom maps a raw gpsd mode integer onto the FixMode enum.
func fixModeFrom(mode int) FixMode {
	switch mode {
	case 2:
		return Fix2D
	case 3:
		return Fix3D
	}
	return NoFix
}

// Position is a single acquired fix. It is immutable once constructed.
type Position struct {
	Lat float64
	Lon float64

	// AltMeters and SpeedMPS are nil when the backend did not report them.
	AltMeters *float64
	SpeedMPS  *float64

	Fix FixMode
}

// NewPosition validates the coordinate pair before constructing a Position.
// Out-of-range input is a construction failure, never clamped.
func NewPosition(lat, lon float64, fix FixMode) (Position, error) {
	if _, err := geo.NewLatLon(lat, lon); err != nil {
		return Position{}, err
	}
	return Position{Lat: lat, Lon: lon, Fix: fix}, nil
}

// LatLon returns the coordinate pair for geodesy calls.
func (p Position) LatLon() geo.LatLon {
	return geo.LatLon{Lat: p.Lat, Lon: p.Lon}
}

func (p Position) String() string {
	return fmt.Sprintf("%.6f, %.6f (%s)", p.Lat, p.Lon, p.Fix)
}

// Acquisition failures, surfaced as typed results so the caller can decide
// whether to fall back or report.
var (
	// ErrTimeout: no usable fix arrived before the acquisition deadline.
	ErrTimeout = errors.New("gps: timed out waiting for fix")

	// ErrUnavailable: the daemon channel or device closed or was unreachable.
	ErrUnavailable = errors.New("gps: position source unavailable")

	// ErrNotFound: the position file does not exist.
	ErrNotFound = errors.New("gps: position file not found")

	// ErrMalformed: the position file exists but cannot be parsed.
	ErrMalformed = errors.New("gps: position file malformed")

	// ErrNoSource: every backend in the auto selection policy failed.
	ErrNoSource = errors.New("gps: no position source available")
)
