package gps

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// DefaultGpsdAddr is the conventional local gpsd endpoint.
const DefaultGpsdAddr = "127.0.0.1:2947"

// GpsdSource streams NDJSON reports from a gpsd daemon and resolves on the
// first time-position-velocity message carrying a 2D or better fix.
type GpsdSource struct {
	Addr string

	// DialTimeout bounds the TCP connect. Defaults to 2s.
	DialTimeout time.Duration

	// Log, when set, receives diagnostic events (degraded fixes, unparsable
	// lines). Nil disables diagnostics.
	Log func(format string, args ...any)
}

func (s *GpsdSource) Name() string { return "gpsd" }

func (s *GpsdSource) logf(format string, args ...any) {
	if s.Log != nil {
		s.Log(format, args...)
	}
}

type gpsdReport struct {
	Class string `json:"class"`

	// TPV fields. Pointers distinguish absent from zero.
	Mode    *int     `json:"mode"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	Alt     *float64 `json:"alt"`
	AltMSL  *float64 `json:"altMSL"`
	SpeedMS *float64 `json:"speed"`
}

// parseReport decodes one gpsd line. Non-TPV classes (VERSION, DEVICES, SKY,
// WATCH, ...) return ok=false and are skipped without error; only broken
// JSON is reported.
func parseReport(line string) (rep gpsdReport, ok bool, err error) {
	if err := json.Unmarshal([]byte(line), &rep); err != nil {
		return gpsdReport{}, false, fmt.Errorf("gpsd json parse failed: %v", err)
	}
	if !strings.EqualFold(strings.TrimSpace(rep.Class), "TPV") {
		return gpsdReport{}, false, nil
	}
	return rep, true, nil
}

// position converts a TPV report into a Position when it carries a usable
// fix (mode >= 2 and both coordinates present).
func (r gpsdReport) position() (Position, bool) {
	if r.Mode == nil || *r.Mode < 2 || r.Lat == nil || r.Lon == nil {
		return Position{}, false
	}
	pos, err := NewPosition(*r.Lat, *r.Lon, fixModeFrom(*r.Mode))
	if err != nil {
		return Position{}, false
	}
	// gpsd reports either altMSL (newer) or alt.
	alt := r.AltMSL
	if alt == nil {
		alt = r.Alt
	}
	if alt != nil {
		v := *alt
		pos.AltMeters = &v
	}
	if r.SpeedMS != nil {
		v := *r.SpeedMS
		pos.SpeedMPS = &v
	}
	return pos, true
}

// Acquire dials gpsd, enables JSON watch mode, and scans reports until a
// fixed TPV arrives or ctx expires. A no-fix TPV mid-wait does not reset the
// clock. The connection is closed on every exit path.
func (s *GpsdSource) Acquire(ctx context.Context) (Position, error) {
	addr := strings.TrimSpace(s.Addr)
	if addr == "" {
		addr = DefaultGpsdAddr
	}
	dialTimeout := s.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 2 * time.Second
	}

	d := &net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return Position{}, fmt.Errorf("%w: dialing %s", ErrTimeout, addr)
		}
		return Position{}, fmt.Errorf("%w: dial %s: %v", ErrUnavailable, addr, err)
	}
	defer conn.Close()

	// Interrupt a blocked read when the context ends.
	watchdogDone := make(chan struct{})
	defer close(watchdogDone)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-watchdogDone:
		}
	}()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	}

	// scaled=true yields SI units (m/s, meters) and degrees.
	if _, err := conn.Write([]byte("?WATCH={\"enable\":true,\"json\":true,\"scaled\":true}\n")); err != nil {
		return Position{}, fmt.Errorf("%w: watch failed: %v", ErrUnavailable, err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), 256*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rep, ok, perr := parseReport(line)
		if perr != nil {
			s.logf("gpsd: %v", perr)
			continue
		}
		if !ok {
			continue
		}
		pos, fixed := rep.position()
		if !fixed {
			mode := 0
			if rep.Mode != nil {
				mode = *rep.Mode
			}
			s.logf("gpsd: TPV without fix (mode=%d)", mode)
			continue
		}
		return pos, nil
	}

	switch ctx.Err() {
	case context.DeadlineExceeded:
		return Position{}, fmt.Errorf("%w: no fix from %s", ErrTimeout, addr)
	case context.Canceled:
		return Position{}, fmt.Errorf("%w: acquisition canceled", ErrUnavailable)
	}
	err = scanner.Err()
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return Position{}, fmt.Errorf("%w: no fix from %s", ErrTimeout, addr)
	}
	if err == nil {
		err = io.EOF
	}
	return Position{}, fmt.Errorf("%w: gpsd stream ended: %v", ErrUnavailable, err)
}
