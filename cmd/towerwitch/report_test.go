package main

import (
	"strings"
	"testing"

	"towerwitch/internal/catalog"
	"towerwitch/internal/config"
	"towerwitch/internal/geo"
	"towerwitch/internal/gps"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	data := "RFSS,Site Dec,Site Hex,NAC,Description,County,Lat,Lon,Range,Freq 1,Freq 2\n" +
		"1,1,001,4e1,Minneapolis Downtown,Hennepin,44.9778,-93.2650,15,852.975000c,853.950000\n" +
		"1,2,002,4e1,St. Paul Capitol,Ramsey,44.9537,-93.0900,12,851.112500c\n"
	cat, err := catalog.LoadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	return cat
}

func TestWriteReport(t *testing.T) {
	pos, err := gps.NewPosition(44.9778, -93.2650, gps.Fix3D)
	if err != nil {
		t.Fatalf("NewPosition: %v", err)
	}

	var out strings.Builder
	if err := writeReport(&out, pos, testCatalog(t), geo.StatuteMiles, 30, 5); err != nil {
		t.Fatalf("writeReport: %v", err)
	}
	got := out.String()

	for _, want := range []string{
		"Position: 44.977800, -93.265000 (3D fix)",
		"UTM:",
		"MGRS:       15TVK7910580518",
		"Maidenhead: EN34ix",
		"Minneapolis Downtown",
		"NAC 4e1",
		"CC 852.975000",
		"Found 2 sites within 30 mi",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("report missing %q:\n%s", want, got)
		}
	}

	// The observer sits on the first site; it must rank first at zero
	// distance with the multi-unit echo.
	if !strings.Contains(got, "Distance: 0.00 mi (0.00 km, 0.00 mi, 0.00 nm)") {
		t.Fatalf("multi-unit echo missing:\n%s", got)
	}
}

func TestWriteReport_EmptyCatalog(t *testing.T) {
	pos, err := gps.NewPosition(44.9778, -93.2650, gps.Fix2D)
	if err != nil {
		t.Fatalf("NewPosition: %v", err)
	}
	var out strings.Builder
	if err := writeReport(&out, pos, &catalog.Catalog{}, geo.Kilometers, 30, 5); err != nil {
		t.Fatalf("writeReport: %v", err)
	}
	if !strings.Contains(out.String(), "No sites in catalog") {
		t.Fatalf("got:\n%s", out.String())
	}
}

func TestBuildSource(t *testing.T) {
	debugf := func(string, ...any) {}
	cases := []struct {
		source string
		want   string
	}{
		{"manual", "manual"},
		{"gpsd", "gpsd"},
		{"nmea", "nmea"},
		{"file", "file"},
		{"auto", "auto"},
	}
	for _, tc := range cases {
		src, err := buildSource(config.GPSConfig{Source: tc.source, Lat: 1, Lon: 2}, debugf)
		if err != nil {
			t.Fatalf("buildSource(%s): %v", tc.source, err)
		}
		if src.Name() != tc.want {
			t.Fatalf("buildSource(%s).Name() = %s", tc.source, src.Name())
		}
	}

	if _, err := buildSource(config.GPSConfig{Source: "ouija"}, debugf); err == nil {
		t.Fatalf("unknown source must error")
	}
}

func TestAllUnits(t *testing.T) {
	got := allUnits(10, geo.StatuteMiles)
	if got != "16.09 km, 10.00 mi, 8.69 nm" {
		t.Fatalf("allUnits = %q", got)
	}
}
