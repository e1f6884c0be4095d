package main

import (
	"fmt"
	"io"
	"strings"

	"towerwitch/internal/catalog"
	"towerwitch/internal/geo"
	"towerwitch/internal/gps"
	"towerwitch/internal/grid"
)

// writeReport prints the acquired position, its grid notations, and the site
// ranking for the surrounding catalog.
func writeReport(w io.Writer, pos gps.Position, cat *catalog.Catalog, unit geo.Unit, maxRange float64, limit int) error {
	fmt.Fprintf(w, "\nPosition: %s\n", pos)
	if pos.AltMeters != nil {
		fmt.Fprintf(w, "Altitude: %.1f m\n", *pos.AltMeters)
	}

	rep := grid.Describe(pos.LatLon())
	if rep.UTM != nil {
		fmt.Fprintf(w, "UTM:        %s\n", rep.UTM)
	}
	if rep.MGRS != "" {
		fmt.Fprintf(w, "MGRS:       %s\n", rep.MGRS)
	}
	fmt.Fprintf(w, "Maidenhead: %s\n", rep.Maidenhead)

	from := pos.LatLon()
	nearest, err := cat.Nearest(from, unit, limit)
	if err != nil {
		return err
	}
	if len(nearest) == 0 {
		fmt.Fprintf(w, "\nNo sites in catalog\n")
		return nil
	}

	fmt.Fprintf(w, "\nNearest site:\n%s\n", siteDetail(nearest[0], unit))

	fmt.Fprintf(w, "\nNearest %d sites:\n", len(nearest))
	for i, r := range nearest {
		fmt.Fprintf(w, "%2d. %7.2f %s %3.0f° %-3s NAC %-4s %-40s (%s)%s\n",
			i+1, r.Distance, unit, r.BearingDeg, geo.Cardinal(r.BearingDeg),
			r.Site.NAC, r.Site.Description, r.Site.County, controlSummary(r.Site))
	}

	within, err := cat.WithinRange(from, unit, maxRange)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nFound %d sites within %g %s\n", len(within), maxRange, unit)
	return nil
}

// siteDetail renders the full record for one ranked site, with the distance
// echoed in every unit.
func siteDetail(r catalog.RankedSite, unit geo.Unit) string {
	s := r.Site
	var b strings.Builder
	fmt.Fprintf(&b, "Site: %s\n", s.Description)
	fmt.Fprintf(&b, "County: %s\n", s.County)
	fmt.Fprintf(&b, "Location: %g, %g\n", s.Location.Lat, s.Location.Lon)
	if s.RFSS != "" {
		fmt.Fprintf(&b, "RFSS: %s, Site: %s (0x%s)\n", s.RFSS, s.SiteDec, s.SiteHex)
	}
	if s.NAC != "" {
		fmt.Fprintf(&b, "NAC: %s\n", s.NAC)
	}
	if s.RangeMiles > 0 {
		fmt.Fprintf(&b, "Site Range: %g miles\n", s.RangeMiles)
	}
	if cc := s.ControlChannels(); len(cc) > 0 {
		freqs := make([]string, len(cc))
		for i, f := range cc {
			freqs[i] = f.MHz
		}
		fmt.Fprintf(&b, "Control: %s\n", strings.Join(freqs, ", "))
	}
	fmt.Fprintf(&b, "Bearing: %.1f° (%s)\n", r.BearingDeg, geo.Cardinal(r.BearingDeg))
	fmt.Fprintf(&b, "Distance: %.2f %s (%s)", r.Distance, unit, allUnits(r.Distance, unit))
	return b.String()
}

// allUnits echoes a distance in km, mi and nm.
func allUnits(v float64, from geo.Unit) string {
	return fmt.Sprintf("%.2f km, %.2f mi, %.2f nm",
		geo.Convert(v, from, geo.Kilometers),
		geo.Convert(v, from, geo.StatuteMiles),
		geo.Convert(v, from, geo.NauticalMiles))
}

// controlSummary is the compact control-channel suffix for table rows.
func controlSummary(s *catalog.Site) string {
	cc := s.ControlChannels()
	if len(cc) == 0 {
		return ""
	}
	freqs := make([]string, len(cc))
	for i, f := range cc {
		freqs[i] = f.MHz
	}
	return "  CC " + strings.Join(freqs, ",")
}
