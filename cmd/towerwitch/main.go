package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"towerwitch/internal/catalog"
	"towerwitch/internal/config"
	"towerwitch/internal/geo"
	"towerwitch/internal/gps"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config")
		source     = flag.String("gps", "", "Position source: auto, gpsd, nmea, file, manual")
		gpsdAddr   = flag.String("gpsd-addr", "", "gpsd address (host:port)")
		device     = flag.String("gps-device", "", "NMEA serial device (auto-detected when empty)")
		baud       = flag.Int("gps-baud", 0, "NMEA serial baud rate")
		gpsFile    = flag.String("gps-file", "", "Saved position file")
		saveGPS    = flag.String("save-gps", "", "Write the acquired position to this file")
		lat        = flag.Float64("lat", 0, "Manual latitude")
		lon        = flag.Float64("lon", 0, "Manual longitude")
		csvPath    = flag.String("csv", "", "Site catalog CSV (trs_sites layout)")
		jsonPath   = flag.String("json", "", "Site catalog JSON")
		unitName   = flag.String("unit", "", "Distance unit: km, mi, nm")
		rangeMax   = flag.Float64("range", 0, "Search range in the selected unit")
		limit      = flag.Int("limit", 0, "Number of nearest sites to list")
		timeout    = flag.Duration("timeout", 0, "GPS acquisition timeout")
		debug      = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("config load failed: %v", err)
		}
	}

	// Flags given on the command line win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "gps":
			cfg.GPS.Source = *source
		case "gpsd-addr":
			cfg.GPS.GpsdAddr = *gpsdAddr
		case "gps-device":
			cfg.GPS.Device = *device
		case "gps-baud":
			cfg.GPS.Baud = *baud
		case "gps-file":
			cfg.GPS.PositionFile = *gpsFile
		case "lat":
			cfg.GPS.Lat = *lat
		case "lon":
			cfg.GPS.Lon = *lon
		case "timeout":
			cfg.GPS.Timeout = *timeout
		case "csv":
			cfg.Catalog.CSV = *csvPath
			cfg.Catalog.JSON = ""
		case "json":
			cfg.Catalog.JSON = *jsonPath
			cfg.Catalog.CSV = ""
		case "unit":
			cfg.Lookup.Unit = *unitName
		case "range":
			cfg.Lookup.Range = *rangeMax
		case "limit":
			cfg.Lookup.Limit = *limit
		}
	})
	// A bare --lat/--lon pair implies manual mode, matching the original
	// testing workflow.
	if cfg.GPS.Source == "auto" && *lat != 0 && *lon != 0 {
		cfg.GPS.Source = "manual"
	}

	// Flag overrides bypass Load, so the merged result is validated here.
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("%v", err)
	}

	unit, err := geo.ParseUnit(cfg.Lookup.Unit)
	if err != nil {
		log.Fatalf("%v", err)
	}

	debugf := func(format string, args ...any) {}
	if *debug {
		debugf = func(format string, args ...any) {
			log.Printf("debug: "+format, args...)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cat, path, err := loadCatalog(cfg.Catalog)
	if err != nil {
		log.Fatalf("catalog load failed: %v", err)
	}
	for _, w := range cat.Warnings {
		log.Printf("catalog %s: %s", path, w)
	}
	fmt.Printf("Loaded %d sites from %s\n", len(cat.Sites), path)

	src, err := buildSource(cfg.GPS, debugf)
	if err != nil {
		log.Fatalf("%v", err)
	}
	debugf("acquiring position via %s (timeout %s)", src.Name(), cfg.GPS.Timeout)

	pos, err := gps.AcquireTimeout(ctx, src, cfg.GPS.Timeout)
	if err != nil {
		log.Fatalf("no position: %v", err)
	}

	if *saveGPS != "" {
		if err := gps.SavePosition(*saveGPS, pos.Lat, pos.Lon); err != nil {
			log.Printf("save position: %v", err)
		} else {
			debugf("position saved to %s", *saveGPS)
		}
	}

	if err := writeReport(os.Stdout, pos, cat, unit, cfg.Lookup.Range, cfg.Lookup.Limit); err != nil {
		log.Fatalf("%v", err)
	}
}

// buildSource maps the configured source name to a backend.
func buildSource(cfg config.GPSConfig, debugf func(string, ...any)) (gps.Source, error) {
	gpsd := &gps.GpsdSource{Addr: cfg.GpsdAddr, Log: debugf}
	file := gps.FileSource{Path: cfg.PositionFile}

	switch cfg.Source {
	case "manual":
		return gps.Manual{Lat: cfg.Lat, Lon: cfg.Lon}, nil
	case "gpsd":
		return gpsd, nil
	case "nmea":
		return &gps.SerialSource{Device: cfg.Device, Baud: cfg.Baud, Log: debugf}, nil
	case "file":
		return file, nil
	case "auto":
		return gps.Auto{Gpsd: gpsd, File: file}, nil
	default:
		return nil, fmt.Errorf("unknown gps source %q", cfg.Source)
	}
}

func loadCatalog(cfg config.CatalogConfig) (*catalog.Catalog, string, error) {
	var (
		path   string
		loader func(*os.File) (*catalog.Catalog, error)
	)
	switch {
	case cfg.CSV != "":
		path = cfg.CSV
		loader = func(f *os.File) (*catalog.Catalog, error) { return catalog.LoadCSV(f) }
	case cfg.JSON != "":
		path = cfg.JSON
		loader = func(f *os.File) (*catalog.Catalog, error) { return catalog.LoadJSON(f) }
	default:
		return nil, "", fmt.Errorf("no site catalog: pass --csv or --json")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	cat, err := loader(f)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return cat, path, nil
}
