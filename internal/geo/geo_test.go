package geo

import (
	"errors"
	"math"
	"testing"
)

func TestDistance_SelfIsZero(t *testing.T) {
	pts := []LatLon{
		{Lat: 0, Lon: 0},
		{Lat: 44.9778, Lon: -93.2650},
		{Lat: -33.8688, Lon: 151.2093},
		{Lat: 89.9, Lon: 179.9},
	}
	for _, p := range pts {
		for _, u := range []Unit{Kilometers, StatuteMiles, NauticalMiles} {
			d, err := Distance(p, p, u)
			if err != nil {
				t.Fatalf("Distance(%v,%v): %v", p, p, err)
			}
			if d != 0 {
				t.Fatalf("Distance(%v,%v,%s)=%v, want 0", p, p, u, d)
			}
		}
		if b := Bearing(p, p); b != 0 {
			t.Fatalf("Bearing(%v,%v)=%v, want 0", p, p, b)
		}
	}
}

func TestDistance_Symmetry(t *testing.T) {
	a := LatLon{Lat: 44.9778, Lon: -93.2650}
	b := LatLon{Lat: 48.8566, Lon: 2.3522}
	ab, err := Distance(a, b, Kilometers)
	if err != nil {
		t.Fatalf("Distance: %v", err)
	}
	ba, err := Distance(b, a, Kilometers)
	if err != nil {
		t.Fatalf("Distance: %v", err)
	}
	if math.Abs(ab-ba) > 1e-9 {
		t.Fatalf("asymmetric distance: %v vs %v", ab, ba)
	}
}

func TestDistance_KnownFixture(t *testing.T) {
	a := LatLon{Lat: 44.9778, Lon: -93.2650}
	b := LatLon{Lat: 44.9799654, Lon: -93.2638361}
	mi, err := Distance(a, b, StatuteMiles)
	if err != nil {
		t.Fatalf("Distance: %v", err)
	}
	if math.Abs(mi-0.16) > 0.01 {
		t.Fatalf("distance=%v mi, want 0.16 +/- 0.01", mi)
	}
	km, err := Distance(a, b, Kilometers)
	if err != nil {
		t.Fatalf("Distance: %v", err)
	}
	if math.Abs(km-0.2576) > 0.001 {
		t.Fatalf("distance=%v km, want ~0.2576", km)
	}
}

func TestDistance_InvalidCoordinate(t *testing.T) {
	good := LatLon{Lat: 10, Lon: 10}
	bad := []LatLon{
		{Lat: 91, Lon: 0},
		{Lat: -90.0001, Lon: 0},
		{Lat: 0, Lon: 180.5},
		{Lat: 0, Lon: -181},
	}
	for _, p := range bad {
		_, err := Distance(p, good, StatuteMiles)
		var ice *InvalidCoordinateError
		if !errors.As(err, &ice) {
			t.Fatalf("Distance(%v,...): err=%v, want InvalidCoordinateError", p, err)
		}
		if _, err := NewLatLon(p.Lat, p.Lon); err == nil {
			t.Fatalf("NewLatLon(%v) accepted out-of-range input", p)
		}
	}
}

func TestBearing_ReciprocalDiffersBy180(t *testing.T) {
	// On a sphere the reciprocal property is exact only along meridians and
	// the equator; elsewhere the initial bearings converge on it as the
	// baseline shrinks, so the off-axis pairs here are short.
	pairs := [][2]LatLon{
		{{Lat: 44.9778, Lon: -93.2650}, {Lat: 44.9799654, Lon: -93.2638361}},
		{{Lat: 48.1173, Lon: 11.5166}, {Lat: 48.1250, Lon: 11.5300}},
		{{Lat: 10, Lon: 10}, {Lat: -20, Lon: 10}},
		{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 90}},
	}
	for _, pr := range pairs {
		fwd := Bearing(pr[0], pr[1])
		rev := Bearing(pr[1], pr[0])
		diff := math.Mod(rev-fwd+720, 360)
		if math.Abs(diff-180) > 0.5 {
			t.Fatalf("bearing %v->%v: fwd=%v rev=%v diff=%v", pr[0], pr[1], fwd, rev, diff)
		}
	}
}

func TestBearing_CardinalDirections(t *testing.T) {
	origin := LatLon{Lat: 0, Lon: 0}
	cases := []struct {
		to   LatLon
		want float64
	}{
		{LatLon{Lat: 1, Lon: 0}, 0},
		{LatLon{Lat: 0, Lon: 1}, 90},
		{LatLon{Lat: -1, Lon: 0}, 180},
		{LatLon{Lat: 0, Lon: -1}, 270},
	}
	for _, c := range cases {
		got := Bearing(origin, c.to)
		if math.Abs(got-c.want) > 1e-6 {
			t.Fatalf("Bearing(origin,%v)=%v, want %v", c.to, got, c.want)
		}
	}
	// Fixture from the Minneapolis reference pair.
	b := Bearing(LatLon{Lat: 44.9778, Lon: -93.2650}, LatLon{Lat: 44.9799654, Lon: -93.2638361})
	if math.Abs(b-20.82) > 0.05 {
		t.Fatalf("fixture bearing=%v, want ~20.82", b)
	}
}

func TestBearing_RangeIsNormalized(t *testing.T) {
	a := LatLon{Lat: 10, Lon: 170}
	b := LatLon{Lat: 10, Lon: -170} // across the antimeridian, due east
	deg := Bearing(a, b)
	if deg < 0 || deg >= 360 {
		t.Fatalf("bearing %v outside [0,360)", deg)
	}
	if math.Abs(deg-90) > 2 {
		t.Fatalf("antimeridian crossing bearing=%v, want ~90", deg)
	}
}

func TestConvert(t *testing.T) {
	cases := []struct {
		v        float64
		from, to Unit
		want     float64
	}{
		{10, StatuteMiles, Kilometers, 16.0934},
		{50, Kilometers, StatuteMiles, 31.0686},
		{25, NauticalMiles, Kilometers, 46.3},
		{1, Kilometers, Kilometers, 1},
	}
	for _, c := range cases {
		got := Convert(c.v, c.from, c.to)
		if math.Abs(got-c.want) > 0.01 {
			t.Fatalf("Convert(%v,%s,%s)=%v, want %v", c.v, c.from, c.to, got, c.want)
		}
	}
}

func TestParseUnit(t *testing.T) {
	for _, s := range []string{"km", "mi", "nm"} {
		u, err := ParseUnit(s)
		if err != nil || string(u) != s {
			t.Fatalf("ParseUnit(%q)=%v,%v", s, u, err)
		}
	}
	if _, err := ParseUnit("furlongs"); err == nil {
		t.Fatalf("expected error for unknown unit")
	}
	if Kilometers.Label() != "kilometers" || NauticalMiles.Label() != "nautical miles" {
		t.Fatalf("unexpected unit labels")
	}
}

func TestCardinal(t *testing.T) {
	cases := []struct {
		deg  float64
		want string
	}{
		{0, "N"}, {45, "NE"}, {90, "E"}, {180, "S"}, {270, "W"},
		{359, "N"}, {22.4, "NNE"}, {-90, "W"},
	}
	for _, c := range cases {
		if got := Cardinal(c.deg); got != c.want {
			t.Fatalf("Cardinal(%v)=%q, want %q", c.deg, got, c.want)
		}
	}
}
