package gps

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type stubSource struct {
	name string
	pos  Position
	err  error
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) Acquire(ctx context.Context) (Position, error) {
	return s.pos, s.err
}

// blockingSource waits for its context to expire, like a gpsd that never
// produces a fix.
type blockingSource struct{}

func (blockingSource) Name() string { return "blocking" }

func (blockingSource) Acquire(ctx context.Context) (Position, error) {
	<-ctx.Done()
	return Position{}, fmt.Errorf("%w: no fix", ErrTimeout)
}

func TestManual(t *testing.T) {
	pos, err := Manual{Lat: 44.9778, Lon: -93.2650}.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if pos.Lat != 44.9778 || pos.Lon != -93.2650 || pos.Fix != Fix3D {
		t.Fatalf("got %v", pos)
	}
}

func TestManual_Invalid(t *testing.T) {
	if _, err := (Manual{Lat: 91, Lon: 0}).Acquire(context.Background()); err == nil {
		t.Fatalf("latitude 91 must be rejected")
	}
	if _, err := (Manual{Lat: 0, Lon: -181}).Acquire(context.Background()); err == nil {
		t.Fatalf("longitude -181 must be rejected")
	}
}

func TestAuto_PrefersGpsd(t *testing.T) {
	want := Position{Lat: 1, Lon: 2, Fix: Fix3D}
	a := Auto{
		Gpsd: stubSource{name: "gpsd", pos: want},
		File: stubSource{name: "file", err: errors.New("must not be consulted")},
	}
	pos, err := a.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if pos != want {
		t.Fatalf("got %v, want %v", pos, want)
	}
}

func TestAuto_FallsBackToFile(t *testing.T) {
	want := Position{Lat: 3, Lon: 4, Fix: Fix3D}
	a := Auto{
		Gpsd: stubSource{name: "gpsd", err: fmt.Errorf("%w: connection refused", ErrUnavailable)},
		File: stubSource{name: "file", pos: want},
	}
	pos, err := a.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if pos != want {
		t.Fatalf("got %v, want %v", pos, want)
	}
}

func TestAuto_NoSource(t *testing.T) {
	a := Auto{
		Gpsd: stubSource{name: "gpsd", err: fmt.Errorf("%w: connection refused", ErrUnavailable)},
		File: stubSource{name: "file", err: fmt.Errorf("%w: no saved position", ErrNotFound)},
	}
	_, err := a.Acquire(context.Background())
	if !errors.Is(err, ErrNoSource) {
		t.Fatalf("err=%v, want ErrNoSource", err)
	}
}

func TestAuto_BoundsGpsdAttempt(t *testing.T) {
	want := Position{Lat: 5, Lon: 6, Fix: Fix3D}
	a := Auto{
		Gpsd:        blockingSource{},
		File:        stubSource{name: "file", pos: want},
		GpsdTimeout: 50 * time.Millisecond,
	}
	start := time.Now()
	pos, err := a.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if pos != want {
		t.Fatalf("got %v, want %v", pos, want)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("gpsd attempt not bounded, took %v", elapsed)
	}
}

func TestAcquireTimeout(t *testing.T) {
	start := time.Now()
	_, err := AcquireTimeout(context.Background(), blockingSource{}, 50*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err=%v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout not honored, took %v", elapsed)
	}
}
