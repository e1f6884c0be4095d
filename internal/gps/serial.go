package gps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	"go.bug.st/serial"
)

const (
	defaultBaud = 9600

	knotsToMPS = 0.514444

	// How often a blocked serial read wakes up to check the context.
	serialPollInterval = 200 * time.Millisecond
)

// SerialSource reads raw NMEA sentences from a GNSS receiver on a serial
// device. Only the RMC and GGA sentences are consumed; everything else on the
// wire is ignored.
type SerialSource struct {
	// Device is the serial device path. Empty auto-detects the first
	// /dev/ttyACM* or /dev/ttyUSB* present.
	Device string
	Baud   int

	Log func(format string, args ...any)
}

func (s *SerialSource) Name() string { return "nmea" }

func (s *SerialSource) logf(format string, args ...any) {
	if s.Log != nil {
		s.Log(format, args...)
	}
}

// serialFixState accumulates position data across sentences until a usable
// fix is complete. RMC carries validity and speed, GGA carries altitude; a
// fix with altitude is reported as 3D.
type serialFixState struct {
	lat, lon float64
	hasPos   bool

	altM     *float64
	speedMPS *float64
}

// apply folds one parsed sentence into the state and reports whether a
// usable fix is now available.
func (st *serialFixState) apply(s nmea.Sentence) bool {
	switch m := s.(type) {
	case nmea.RMC:
		if m.Validity != "A" {
			// Void fix; observe but do not trust the coordinates.
			return false
		}
		st.lat, st.lon = m.Latitude, m.Longitude
		st.hasPos = true
		speed := m.Speed * knotsToMPS
		st.speedMPS = &speed
	case nmea.GGA:
		if m.FixQuality == "" || m.FixQuality == "0" {
			return false
		}
		st.lat, st.lon = m.Latitude, m.Longitude
		st.hasPos = true
		alt := m.Altitude
		st.altM = &alt
	default:
		return false
	}
	return st.hasPos
}

func (st *serialFixState) position() (Position, error) {
	mode := Fix2D
	if st.altM != nil {
		mode = Fix3D
	}
	pos, err := NewPosition(st.lat, st.lon, mode)
	if err != nil {
		return Position{}, err
	}
	pos.AltMeters = st.altM
	pos.SpeedMPS = st.speedMPS
	return pos, nil
}

// Acquire opens the device and reads sentences until a valid fix is
// assembled or ctx expires. The port is closed on every exit path; a pending
// read is interrupted within the poll interval.
func (s *SerialSource) Acquire(ctx context.Context) (Position, error) {
	device := strings.TrimSpace(s.Device)
	if device == "" {
		device = autoDetectDevice()
		if device == "" {
			return Position{}, fmt.Errorf("%w: no /dev/ttyACM* or /dev/ttyUSB* found", ErrUnavailable)
		}
	}
	baud := s.Baud
	if baud <= 0 {
		baud = defaultBaud
	}

	port, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return Position{}, fmt.Errorf("%w: open %s: %v", ErrUnavailable, device, err)
	}
	defer port.Close()

	// A short read timeout turns the blocking read into a poll so the
	// context deadline is honored.
	if err := port.SetReadTimeout(serialPollInterval); err != nil {
		return Position{}, fmt.Errorf("%w: %s: %v", ErrUnavailable, device, err)
	}

	s.logf("gps: reading %s at %d baud", device, baud)

	var st serialFixState
	var pending []byte
	buf := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			if err == context.DeadlineExceeded {
				return Position{}, fmt.Errorf("%w: no fix from %s", ErrTimeout, device)
			}
			return Position{}, fmt.Errorf("%w: acquisition canceled", ErrUnavailable)
		}

		n, err := port.Read(buf)
		if err != nil {
			return Position{}, fmt.Errorf("%w: read %s: %v", ErrUnavailable, device, err)
		}
		if n == 0 {
			continue // read timeout tick
		}
		pending = append(pending, buf[:n]...)

		for {
			nl := bytes.IndexByte(pending, '\n')
			if nl < 0 {
				break
			}
			line := strings.TrimSpace(string(pending[:nl]))
			pending = pending[nl+1:]
			if line == "" || !strings.HasPrefix(line, "$") {
				continue // receiver chatter
			}
			sent, perr := nmea.Parse(line)
			if perr != nil {
				s.logf("gps: %v", perr)
				continue
			}
			if st.apply(sent) {
				return st.position()
			}
		}
	}
}

// autoDetectDevice probes the usual USB GNSS device nodes.
func autoDetectDevice() string {
	candidates := make([]string, 0, 20)
	for i := 0; i < 10; i++ {
		candidates = append(candidates, fmt.Sprintf("/dev/ttyACM%d", i))
	}
	for i := 0; i < 10; i++ {
		candidates = append(candidates, fmt.Sprintf("/dev/ttyUSB%d", i))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
