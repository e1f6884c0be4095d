package gps

import (
	"context"
	"fmt"
	"time"
)

// Source is one position backend. Acquire blocks until a usable fix is
// available or the context expires, and returns one of the typed acquisition
// errors on failure. Backends that open a device or connection release it on
// every exit path.
type Source interface {
	Acquire(ctx context.Context) (Position, error)
	Name() string
}

// Manual wraps caller-supplied coordinates. The input is trusted apart from
// range validation and always reports a 3D fix.
type Manual struct {
	Lat float64
	Lon float64
}

func (m Manual) Name() string { return "manual" }

func (m Manual) Acquire(ctx context.Context) (Position, error) {
	return NewPosition(m.Lat, m.Lon, Fix3D)
}

// Auto is a selection policy, not a fifth backend: try gpsd with a short
// timeout, fall back to the position file on any gpsd failure, and report
// ErrNoSource only when both fail.
type Auto struct {
	Gpsd Source
	File Source

	// GpsdTimeout bounds the gpsd attempt so a missing daemon does not eat
	// the whole acquisition budget. Defaults to 3s.
	GpsdTimeout time.Duration
}

func (a Auto) Name() string { return "auto" }

func (a Auto) Acquire(ctx context.Context) (Position, error) {
	timeout := a.GpsdTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	gpsdCtx, cancel := context.WithTimeout(ctx, timeout)
	pos, gpsdErr := a.Gpsd.Acquire(gpsdCtx)
	cancel()
	if gpsdErr == nil {
		return pos, nil
	}

	pos, fileErr := a.File.Acquire(ctx)
	if fileErr == nil {
		return pos, nil
	}

	return Position{}, fmt.Errorf("%w (gpsd: %v; file: %v)", ErrNoSource, gpsdErr, fileErr)
}

// AcquireTimeout runs src.Acquire bounded by an explicit timeout.
func AcquireTimeout(ctx context.Context, src Source, timeout time.Duration) (Position, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return src.Acquire(ctx)
}
