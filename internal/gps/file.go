package gps

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// FileSource reads a previously saved position from disk. The file is either
// a JSON object with latitude/longitude (or lat/lon) keys or a bare "lat,lon"
// line; both forms are produced in the wild.
type FileSource struct {
	Path string
}

func (f FileSource) Name() string { return "file" }

func (f FileSource) Acquire(ctx context.Context) (Position, error) {
	b, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return Position{}, fmt.Errorf("%w: %s", ErrNotFound, f.Path)
	}
	if err != nil {
		return Position{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	lat, lon, err := parseSavedPosition(string(b))
	if err != nil {
		return Position{}, fmt.Errorf("%w: %s: %v", ErrMalformed, f.Path, err)
	}
	return NewPosition(lat, lon, Fix3D)
}

func parseSavedPosition(content string) (lat, lon float64, err error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return 0, 0, fmt.Errorf("empty file")
	}

	var rec struct {
		Lat      *float64 `json:"latitude"`
		Lon      *float64 `json:"longitude"`
		ShortLat *float64 `json:"lat"`
		ShortLon *float64 `json:"lon"`
	}
	if jsonErr := json.Unmarshal([]byte(content), &rec); jsonErr == nil {
		switch {
		case rec.Lat != nil && rec.Lon != nil:
			return *rec.Lat, *rec.Lon, nil
		case rec.ShortLat != nil && rec.ShortLon != nil:
			return *rec.ShortLat, *rec.ShortLon, nil
		default:
			return 0, 0, fmt.Errorf("missing latitude/longitude keys")
		}
	}

	parts := strings.Split(content, ",")
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("want JSON object or lat,lon line")
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad latitude %q", parts[0])
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad longitude %q", parts[1])
	}
	return lat, lon, nil
}

// SavePosition writes the JSON position record consumed by FileSource.
func SavePosition(path string, lat, lon float64) error {
	b, err := json.Marshal(struct {
		Lat float64 `json:"latitude"`
		Lon float64 `json:"longitude"`
	}{lat, lon})
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
