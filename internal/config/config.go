package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"towerwitch/internal/geo"
)

type Config struct {
	GPS     GPSConfig     `yaml:"gps"`
	Catalog CatalogConfig `yaml:"catalog"`
	Lookup  LookupConfig  `yaml:"lookup"`
}

type GPSConfig struct {
	// Source selects the position backend: auto, gpsd, nmea, file or manual.
	Source       string        `yaml:"source"`
	GpsdAddr     string        `yaml:"gpsd_addr"`
	Device       string        `yaml:"device"`
	Baud         int           `yaml:"baud"`
	Timeout      time.Duration `yaml:"timeout"`
	PositionFile string        `yaml:"position_file"`
	Lat          float64       `yaml:"lat"`
	Lon          float64       `yaml:"lon"`
}

type CatalogConfig struct {
	CSV  string `yaml:"csv"`
	JSON string `yaml:"json"`
}

type LookupConfig struct {
	Unit  string  `yaml:"unit"`
	Range float64 `yaml:"range"`
	Limit int     `yaml:"limit"`
}

var validSources = map[string]bool{
	"auto":   true,
	"gpsd":   true,
	"nmea":   true,
	"file":   true,
	"manual": true,
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cfg := Config{}
	applyDefaults(&cfg)
	return cfg
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	applyDefaults(&cfg)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks a fully merged configuration. Load runs it after filling
// defaults; the CLI runs it again once flag overrides are applied.
func Validate(cfg Config) error {
	if !validSources[cfg.GPS.Source] {
		return fmt.Errorf("gps.source must be one of auto, gpsd, nmea, file, manual")
	}
	if cfg.GPS.Source == "manual" && cfg.GPS.Lat == 0 && cfg.GPS.Lon == 0 {
		return fmt.Errorf("gps.lat and gps.lon are required when gps.source is manual")
	}
	if cfg.GPS.Baud < 0 {
		return fmt.Errorf("gps.baud must be >= 0")
	}
	if cfg.GPS.Timeout <= 0 {
		return fmt.Errorf("gps.timeout must be > 0")
	}
	if _, err := geo.ParseUnit(cfg.Lookup.Unit); err != nil {
		return fmt.Errorf("lookup.unit: %v", err)
	}
	if cfg.Lookup.Limit <= 0 {
		return fmt.Errorf("lookup.limit must be > 0")
	}
	if cfg.Lookup.Range <= 0 {
		return fmt.Errorf("lookup.range must be > 0")
	}
	if cfg.Catalog.CSV != "" && cfg.Catalog.JSON != "" {
		return fmt.Errorf("catalog.csv and catalog.json cannot both be set")
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.GPS.Source == "" {
		cfg.GPS.Source = "auto"
	}
	if cfg.GPS.Timeout <= 0 {
		cfg.GPS.Timeout = 10 * time.Second
	}
	if cfg.GPS.PositionFile == "" {
		cfg.GPS.PositionFile = "gps_position.json"
	}
	if cfg.Lookup.Unit == "" {
		cfg.Lookup.Unit = "mi"
	}
	if cfg.Lookup.Range == 0 {
		cfg.Lookup.Range = 30
	}
	if cfg.Lookup.Limit == 0 {
		cfg.Lookup.Limit = 5
	}
}
