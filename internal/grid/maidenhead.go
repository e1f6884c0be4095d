package grid

import (
	"math"

	"towerwitch/internal/geo"
)

// Maidenhead locator lengths.
const (
	MaidenheadSquare    = 6 // e.g. EN34ix
	MaidenheadExtended  = 8 // e.g. EN34ix84
	maidenheadFieldLon  = 20.0
	maidenheadFieldLat  = 10.0
	maidenheadSquareLon = 2.0
	maidenheadSquareLat = 1.0
)

// ToMaidenhead encodes a point as a Maidenhead grid locator of the given
// length (6 or 8 characters; anything else falls back to 6). Fields are
// base-18 letters, squares base-10 digits, subsquares base-24 letters, and
// the optional fourth pair base-10 extended squares.
func ToMaidenhead(p geo.LatLon, length int) string {
	if length != MaidenheadExtended {
		length = MaidenheadSquare
	}

	// The north pole and the antimeridian land exactly on the top edge of
	// the last cell; keep them inside it.
	lon := math.Min(p.Lon+180, 360-1e-9)
	lat := math.Min(p.Lat+90, 180-1e-9)

	buf := make([]byte, 0, length)

	buf = append(buf, 'A'+byte(lon/maidenheadFieldLon))
	buf = append(buf, 'A'+byte(lat/maidenheadFieldLat))
	lon = math.Mod(lon, maidenheadFieldLon)
	lat = math.Mod(lat, maidenheadFieldLat)

	buf = append(buf, '0'+byte(lon/maidenheadSquareLon))
	buf = append(buf, '0'+byte(lat/maidenheadSquareLat))
	lon = math.Mod(lon, maidenheadSquareLon)
	lat = math.Mod(lat, maidenheadSquareLat)

	subLon := maidenheadSquareLon / 24
	subLat := maidenheadSquareLat / 24
	buf = append(buf, 'a'+byte(lon/subLon))
	buf = append(buf, 'a'+byte(lat/subLat))

	if length == MaidenheadExtended {
		lon = math.Mod(lon, subLon)
		lat = math.Mod(lat, subLat)
		buf = append(buf, '0'+byte(lon/(subLon/10)))
		buf = append(buf, '0'+byte(lat/(subLat/10)))
	}

	return string(buf)
}
