// Package grid converts latitude/longitude points to UTM, MGRS, and
// Maidenhead grid notations.
package grid

import (
	"errors"
	"fmt"
	"math"

	"towerwitch/internal/geo"
)

// WGS84 ellipsoid.
const (
	wgs84A = 6378137.0
	wgs84F = 1 / 298.257223563

	utmScale         = 0.9996
	utmFalseEasting  = 500000.0
	utmFalseNorthing = 10000000.0

	// Standard UTM is defined up to 84 degrees of latitude; beyond that the
	// projection is not extrapolated.
	utmMaxLat = 84.0
)

var (
	wgs84E2  = wgs84F * (2 - wgs84F)
	wgs84Ep2 = wgs84E2 / (1 - wgs84E2)
)

// ErrOutsideUTM reports a latitude outside the UTM validity band. Callers can
// distinguish it from acquisition failures and report "grid unavailable".
var ErrOutsideUTM = errors.New("latitude outside UTM validity band (|lat| > 84)")

// Hemisphere is the N/S half of the UTM grid.
type Hemisphere string

const (
	North Hemisphere = "N"
	South Hemisphere = "S"
)

// UTM is a Universal Transverse Mercator coordinate.
type UTM struct {
	Zone       int
	Hemisphere Hemisphere
	Easting    float64
	Northing   float64
}

func (u UTM) String() string {
	return fmt.Sprintf("Zone %d%s E:%.0f N:%.0f", u.Zone, u.Hemisphere, u.Easting, u.Northing)
}

// The irregular zones around Norway and Svalbard, keyed by latitude band and
// longitude range. First match wins; everything else uses the regular
// six-degree formula.
var zoneExceptions = []struct {
	minLat, maxLat float64
	minLon, maxLon float64
	zone           int
}{
	{56, 64, 3, 12, 32}, // southwest Norway, band V
	{72, 84, 0, 9, 31},  // Svalbard, band X
	{72, 84, 9, 21, 33},
	{72, 84, 21, 33, 35},
	{72, 84, 33, 42, 37},
}

// Zone returns the UTM zone number for a point, including the Norway and
// Svalbard exceptions.
func Zone(p geo.LatLon) int {
	for _, ex := range zoneExceptions {
		if p.Lat >= ex.minLat && p.Lat < ex.maxLat && p.Lon >= ex.minLon && p.Lon < ex.maxLon {
			return ex.zone
		}
	}
	z := int(math.Floor((p.Lon+180)/6)) + 1
	if z > 60 {
		z = 60 // lon == +180 wraps into zone 60
	}
	return z
}

// ToUTM projects a point with the standard Transverse Mercator series
// expansion on WGS84.
func ToUTM(p geo.LatLon) (UTM, error) {
	if !p.Valid() {
		return UTM{}, &geo.InvalidCoordinateError{Lat: p.Lat, Lon: p.Lon}
	}
	if math.Abs(p.Lat) > utmMaxLat {
		return UTM{}, ErrOutsideUTM
	}

	zone := Zone(p)
	lon0 := float64((zone-1)*6 - 180 + 3)

	phi := p.Lat * math.Pi / 180
	dLam := (p.Lon - lon0) * math.Pi / 180

	sinPhi := math.Sin(phi)
	cosPhi := math.Cos(phi)
	tanPhi := math.Tan(phi)

	n := wgs84A / math.Sqrt(1-wgs84E2*sinPhi*sinPhi)
	t := tanPhi * tanPhi
	c := wgs84Ep2 * cosPhi * cosPhi
	a := cosPhi * dLam

	e2 := wgs84E2
	m := wgs84A * ((1-e2/4-3*e2*e2/64-5*e2*e2*e2/256)*phi -
		(3*e2/8+3*e2*e2/32+45*e2*e2*e2/1024)*math.Sin(2*phi) +
		(15*e2*e2/256+45*e2*e2*e2/1024)*math.Sin(4*phi) -
		(35*e2*e2*e2/3072)*math.Sin(6*phi))

	easting := utmScale*n*(a+(1-t+c)*a*a*a/6+
		(5-18*t+t*t+72*c-58*wgs84Ep2)*a*a*a*a*a/120) + utmFalseEasting

	northing := utmScale * (m + n*tanPhi*(a*a/2+
		(5-t+9*c+4*c*c)*a*a*a*a/24+
		(61-58*t+t*t+600*c-330*wgs84Ep2)*a*a*a*a*a*a/720))

	hemi := North
	if p.Lat < 0 {
		hemi = South
		northing += utmFalseNorthing
	}

	return UTM{Zone: zone, Hemisphere: hemi, Easting: easting, Northing: northing}, nil
}
