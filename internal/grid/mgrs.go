package grid

import (
	"fmt"
	"math"

	"towerwitch/internal/geo"
)

// DefaultMGRSPrecision is five digits per axis, 1 meter resolution.
const DefaultMGRSPrecision = 5

// Latitude bands C..X, 8 degrees each from 80S, skipping I and O. Band X is
// stretched to cover up to 84N.
const latBands = "CDEFGHJKLMNPQRSTUVWX"

// 100 km square identifiers skip I and O as well.
const (
	colLetters = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	rowLetters = "ABCDEFGHJKLMNPQRSTUV"
)

// ToMGRS encodes a point as a Military Grid Reference System string built on
// the same UTM projection (and zone exceptions) as ToUTM. precision is the
// digit count per axis, 1 (10 km) through 5 (1 m); values are truncated, not
// rounded, per MGRS convention.
func ToMGRS(p geo.LatLon, precision int) (string, error) {
	if precision < 1 || precision > 5 {
		return "", fmt.Errorf("mgrs precision %d out of range [1,5]", precision)
	}
	u, err := ToUTM(p)
	if err != nil {
		return "", err
	}

	band := latBands[bandIndex(p.Lat)]

	// Column letters run in sets of eight (A-H, J-R, S-Z) repeating every
	// three zones; row letters alternate a half-set offset on even zones.
	colSet := ((u.Zone - 1) % 3) * 8
	col := colLetters[colSet+int(u.Easting/100000)-1]

	rowOffset := 0
	if u.Zone%2 == 0 {
		rowOffset = 5
	}
	row := rowLetters[(int(u.Northing/100000)+rowOffset)%len(rowLetters)]

	div := math.Pow(10, float64(5-precision))
	e := int(math.Mod(u.Easting, 100000) / div)
	n := int(math.Mod(u.Northing, 100000) / div)

	return fmt.Sprintf("%d%c%c%c%0*d%0*d", u.Zone, band, col, row, precision, e, precision, n), nil
}

func bandIndex(lat float64) int {
	i := int(math.Floor((lat + 80) / 8))
	if i < 0 {
		i = 0
	}
	if i >= len(latBands) {
		i = len(latBands) - 1
	}
	return i
}
