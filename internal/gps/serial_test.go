package gps

import (
	"fmt"
	"math"
	"testing"

	nmea "github.com/adrianmo/go-nmea"
)

// nmeaLine appends the XOR checksum so constructed sentences parse cleanly.
func nmeaLine(payload string) string {
	ck := byte(0)
	for i := 0; i < len(payload); i++ {
		ck ^= payload[i]
	}
	return fmt.Sprintf("$%s*%02X", payload, ck)
}

func mustParse(t *testing.T, payload string) nmea.Sentence {
	t.Helper()
	s, err := nmea.Parse(nmeaLine(payload))
	if err != nil {
		t.Fatalf("nmea.Parse(%q): %v", payload, err)
	}
	return s
}

func TestSerialFixState_RMCActive(t *testing.T) {
	var st serialFixState
	s := mustParse(t, "GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W")
	if !st.apply(s) {
		t.Fatalf("active RMC should complete a fix")
	}
	pos, err := st.position()
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	if pos.Fix != Fix2D {
		t.Fatalf("fix=%v, want Fix2D without altitude", pos.Fix)
	}
	if math.Abs(pos.Lat-48.1173) > 1e-4 || math.Abs(pos.Lon-11.5166) > 1e-3 {
		t.Fatalf("lat/lon=%v/%v", pos.Lat, pos.Lon)
	}
	if pos.SpeedMPS == nil || math.Abs(*pos.SpeedMPS-22.4*knotsToMPS) > 1e-9 {
		t.Fatalf("speed=%v", pos.SpeedMPS)
	}
}

func TestSerialFixState_RMCVoidIgnored(t *testing.T) {
	var st serialFixState
	s := mustParse(t, "GPRMC,123519,V,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W")
	if st.apply(s) {
		t.Fatalf("void RMC must not complete a fix")
	}
}

func TestSerialFixState_GGAAltitudeUpgradesTo3D(t *testing.T) {
	var st serialFixState
	s := mustParse(t, "GNGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,")
	if !st.apply(s) {
		t.Fatalf("GGA with fix quality should complete a fix")
	}
	pos, err := st.position()
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	if pos.Fix != Fix3D {
		t.Fatalf("fix=%v, want Fix3D with altitude", pos.Fix)
	}
	if pos.AltMeters == nil || math.Abs(*pos.AltMeters-545.4) > 1e-9 {
		t.Fatalf("alt=%v", pos.AltMeters)
	}
}

func TestSerialFixState_GGANoQualityIgnored(t *testing.T) {
	var st serialFixState
	s := mustParse(t, "GNGGA,123519,4807.038,N,01131.000,E,0,08,0.9,545.4,M,46.9,M,,")
	if st.apply(s) {
		t.Fatalf("quality-0 GGA must not complete a fix")
	}
}

func TestSerialFixState_OtherSentencesIgnored(t *testing.T) {
	var st serialFixState
	s := mustParse(t, "GPGSV,3,1,11,03,03,111,00,04,15,270,00,06,01,010,00,13,06,292,00")
	if st.apply(s) {
		t.Fatalf("GSV must not complete a fix")
	}
}
