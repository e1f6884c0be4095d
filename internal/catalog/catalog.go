// Package catalog loads radio site directories and ranks them against an
// observer position. Catalogs are immutable after load and safe for
// concurrent readers.
package catalog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"towerwitch/internal/geo"
)

// The trunked systems of interest transmit in the 800 MHz band; anything
// outside it in a frequency column is noise (voter IDs, notes).
const (
	bandLowMHz  = 800.0
	bandHighMHz = 900.0
)

// Frequency is one channel assignment. MHz keeps the catalog's original
// string form so "851.0125" round-trips without float formatting drift.
type Frequency struct {
	MHz     string
	Control bool
}

// Site is one radio site record.
type Site struct {
	RFSS        string
	SiteDec     string
	SiteHex     string
	NAC         string
	Description string
	County      string
	Location    geo.LatLon
	RangeMiles  float64
	Frequencies []Frequency
}

// ControlChannels returns the subset of frequencies flagged as control
// channels, in catalog order.
func (s *Site) ControlChannels() []Frequency {
	var out []Frequency
	for _, f := range s.Frequencies {
		if f.Control {
			out = append(out, f)
		}
	}
	return out
}

// Catalog is a loaded set of sites plus the per-record problems found while
// loading. A record that cannot be placed on the map is skipped, never fatal.
type Catalog struct {
	Sites    []Site
	Warnings []string
}

// LoadCSV reads the RadioReference trs_sites export layout: RFSS, site
// decimal, site hex, NAC, description, county, latitude, longitude, range,
// then frequency columns through the end of the row. The first row is a
// header and is discarded.
func LoadCSV(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err == io.EOF {
		return &Catalog{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cat := &Catalog{}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			cat.warnf("line %d: %v", line, err)
			continue
		}
		site, err := siteFromRow(row)
		if err != nil {
			cat.warnf("line %d: %v", line, err)
			continue
		}
		cat.Sites = append(cat.Sites, site)
	}
	return cat, nil
}

func siteFromRow(row []string) (Site, error) {
	if len(row) < 9 {
		return Site{}, fmt.Errorf("want at least 9 columns, got %d", len(row))
	}
	if strings.TrimSpace(row[6]) == "" || strings.TrimSpace(row[7]) == "" {
		return Site{}, fmt.Errorf("empty coordinates")
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(row[6]), 64)
	if err != nil {
		return Site{}, fmt.Errorf("bad latitude %q", row[6])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(row[7]), 64)
	if err != nil {
		return Site{}, fmt.Errorf("bad longitude %q", row[7])
	}
	loc, err := geo.NewLatLon(lat, lon)
	if err != nil {
		return Site{}, err
	}

	site := Site{
		RFSS:        strings.TrimSpace(row[0]),
		SiteDec:     strings.TrimSpace(row[1]),
		SiteHex:     strings.TrimSpace(row[2]),
		NAC:         strings.TrimSpace(row[3]),
		Description: strings.TrimSpace(row[4]),
		County:      strings.TrimSpace(row[5]),
		Location:    loc,
	}
	if site.Description == "" {
		site.Description = "Unknown"
	}
	if rng, err := strconv.ParseFloat(strings.TrimSpace(row[8]), 64); err == nil {
		site.RangeMiles = rng
	}
	for _, cell := range row[9:] {
		if f, ok := parseFrequency(cell); ok {
			site.Frequencies = append(site.Frequencies, f)
		}
	}
	return site, nil
}

// parseFrequency validates one frequency cell. A trailing 'c' (either case)
// marks a control channel; the numeric part must land in the 800 MHz band.
func parseFrequency(cell string) (Frequency, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return Frequency{}, false
	}
	control := strings.HasSuffix(cell, "c") || strings.HasSuffix(cell, "C")
	mhzStr := strings.TrimRight(cell, "cC")
	mhz, err := strconv.ParseFloat(mhzStr, 64)
	if err != nil {
		return Frequency{}, false
	}
	if mhz < bandLowMHz || mhz > bandHighMHz {
		return Frequency{}, false
	}
	return Frequency{MHz: mhzStr, Control: control}, true
}

// flexMiles accepts a range value written either as a number or as the
// original export's quoted string; unparseable values read as zero.
type flexMiles float64

func (m *flexMiles) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*m = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*m = 0
		return nil
	}
	*m = flexMiles(v)
	return nil
}

type jsonSite struct {
	RFSS            string    `json:"rfss"`
	SiteDec         string    `json:"site_dec"`
	SiteHex         string    `json:"site_hex"`
	NAC             string    `json:"site_nac"`
	Description     string    `json:"description"`
	County          string    `json:"county"`
	Lat             *float64  `json:"latitude"`
	Lon             *float64  `json:"longitude"`
	Range           flexMiles `json:"range"`
	Frequencies     []string  `json:"frequencies"`
	ControlChannels []string  `json:"control_channels"`
}

// LoadJSON reads an array of site objects, the layout produced by the CSV
// converter tooling. Records without coordinates are skipped with a warning.
func LoadJSON(r io.Reader) (*Catalog, error) {
	var records []jsonSite
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode sites: %w", err)
	}

	cat := &Catalog{}
	for i, rec := range records {
		if rec.Lat == nil || rec.Lon == nil {
			cat.warnf("record %d (%s): missing coordinates", i, rec.Description)
			continue
		}
		loc, err := geo.NewLatLon(*rec.Lat, *rec.Lon)
		if err != nil {
			cat.warnf("record %d (%s): %v", i, rec.Description, err)
			continue
		}
		site := Site{
			RFSS:        rec.RFSS,
			SiteDec:     rec.SiteDec,
			SiteHex:     rec.SiteHex,
			NAC:         rec.NAC,
			Description: rec.Description,
			County:      rec.County,
			Location:    loc,
			RangeMiles:  float64(rec.Range),
		}
		if site.Description == "" {
			site.Description = "Unknown"
		}
		control := make(map[string]bool, len(rec.ControlChannels))
		for _, c := range rec.ControlChannels {
			control[strings.TrimRight(strings.TrimSpace(c), "cC")] = true
		}
		for _, raw := range rec.Frequencies {
			f, ok := parseFrequency(raw)
			if !ok {
				continue
			}
			if control[f.MHz] {
				f.Control = true
			}
			site.Frequencies = append(site.Frequencies, f)
		}
		cat.Sites = append(cat.Sites, site)
	}
	return cat, nil
}

func (c *Catalog) warnf(format string, args ...interface{}) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}
