package catalog

import (
	"sort"

	"towerwitch/internal/geo"
)

// RankedSite pairs a catalog site with its distance and bearing from the
// observer. The Site pointer aliases the catalog entry; the rest is computed
// fresh per query.
type RankedSite struct {
	Site       *Site
	Distance   float64
	BearingDeg float64
}

// rank computes distance and bearing from the observer to every site. The
// returned slice preserves catalog order.
func (c *Catalog) rank(from geo.LatLon, unit geo.Unit) ([]RankedSite, error) {
	ranked := make([]RankedSite, 0, len(c.Sites))
	for i := range c.Sites {
		site := &c.Sites[i]
		dist, err := geo.Distance(from, site.Location, unit)
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, RankedSite{
			Site:       site,
			Distance:   dist,
			BearingDeg: geo.Bearing(from, site.Location),
		})
	}
	return ranked, nil
}

// Nearest returns up to limit sites ordered by ascending distance. Equal
// distances keep catalog order. limit <= 0 returns the full ranking.
func (c *Catalog) Nearest(from geo.LatLon, unit geo.Unit, limit int) ([]RankedSite, error) {
	ranked, err := c.rank(from, unit)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Distance < ranked[j].Distance
	})
	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// WithinRange returns every site at most max away, ordered by ascending
// distance. max is in the supplied unit.
func (c *Catalog) WithinRange(from geo.LatLon, unit geo.Unit, max float64) ([]RankedSite, error) {
	ranked, err := c.rank(from, unit)
	if err != nil {
		return nil, err
	}
	filtered := ranked[:0]
	for _, r := range ranked {
		if r.Distance <= max {
			filtered = append(filtered, r)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Distance < filtered[j].Distance
	})
	return filtered, nil
}
