package grid

import "towerwitch/internal/geo"

// Representation bundles the display-grid strings for one position. It is a
// derived value, recomputed per query.
type Representation struct {
	// UTM is nil when the point lies outside the UTM validity band.
	UTM        *UTM
	MGRS       string
	Maidenhead string
}

// Describe computes all grid notations for a point. UTM and MGRS are left
// empty outside the UTM band; use ToUTM/ToMGRS directly when the caller needs
// to distinguish ErrOutsideUTM.
func Describe(p geo.LatLon) Representation {
	rep := Representation{Maidenhead: ToMaidenhead(p, MaidenheadSquare)}
	if u, err := ToUTM(p); err == nil {
		rep.UTM = &u
	}
	if m, err := ToMGRS(p, DefaultMGRSPrecision); err == nil {
		rep.MGRS = m
	}
	return rep
}
