// Package config holds the operational constants of a simulation run and
// loads them from TOML or YAML files and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Day        DayConfig        `toml:"day" yaml:"day"`
	Fleet      FleetConfig      `toml:"fleet" yaml:"fleet"`
	Load       LoadConfig       `toml:"load" yaml:"load"`
	Correction CorrectionConfig `toml:"correction" yaml:"correction"`
	Store      StoreConfig      `toml:"store" yaml:"store"`
	Source     SourceConfig     `toml:"source" yaml:"source"`
	Distance   DistanceConfig   `toml:"distance" yaml:"distance"`
	Server     ServerConfig     `toml:"server" yaml:"server"`
}

// DayConfig is the operating day as wall-clock times ("8:00 AM").
type DayConfig struct {
	Start string `toml:"start" yaml:"start"`
	End   string `toml:"end" yaml:"end"`
}

type FleetConfig struct {
	Depot   string        `toml:"depot" yaml:"depot"`
	Drivers int           `toml:"drivers" yaml:"drivers"`
	Trucks  []TruckConfig `toml:"trucks" yaml:"trucks"`
}

type TruckConfig struct {
	ID        int     `toml:"id" yaml:"id"`
	Departure string  `toml:"departure" yaml:"departure"`
	SpeedMPH  float64 `toml:"speed_mph" yaml:"speed_mph"`
	Capacity  int     `toml:"capacity" yaml:"capacity"`
}

type LoadConfig struct {
	DelayedTruck  int           `toml:"delayed_truck" yaml:"delayed_truck"`
	DelayedMarker string        `toml:"delayed_marker" yaml:"delayed_marker"`
	Release       string        `toml:"release" yaml:"release"`
	Groups        []GroupConfig `toml:"groups" yaml:"groups"`
}

type GroupConfig struct {
	Truck    int   `toml:"truck" yaml:"truck"`
	Packages []int `toml:"packages" yaml:"packages"`
}

// CorrectionConfig names the package whose address becomes valid at Cutoff.
// A zero PackageID disables the correction.
type CorrectionConfig struct {
	PackageID int    `toml:"package_id" yaml:"package_id"`
	Cutoff    string `toml:"cutoff" yaml:"cutoff"`
	Address   string `toml:"address" yaml:"address"`
}

type StoreConfig struct {
	Capacity int `toml:"capacity" yaml:"capacity"`
}

// SourceConfig selects the package input: "csv", "sqlite" or "postgres".
type SourceConfig struct {
	Kind        string `toml:"kind" yaml:"kind"`
	Path        string `toml:"path" yaml:"path"`
	DatabaseURL string `toml:"database_url" yaml:"database_url"`
}

// DistanceConfig selects the distance provider ("constant", "table" or "ors")
// and, for ors, the cache backend ("none", "sqlite", "postgres" or "redis").
type DistanceConfig struct {
	Provider      string  `toml:"provider" yaml:"provider"`
	ConstantMiles float64 `toml:"constant_miles" yaml:"constant_miles"`
	TablePath     string  `toml:"table_path" yaml:"table_path"`
	ORSAPIKey     string  `toml:"ors_api_key" yaml:"ors_api_key"`
	Cache         string  `toml:"cache" yaml:"cache"`
	SQLitePath    string  `toml:"sqlite_path" yaml:"sqlite_path"`
	RedisAddr     string  `toml:"redis_addr" yaml:"redis_addr"`
	CacheTTL      string  `toml:"cache_ttl" yaml:"cache_ttl"`
}

type ServerConfig struct {
	Port string `toml:"port" yaml:"port"`
}

// Default is the reference scenario: three trucks of sixteen, forty packages.
func Default() *Config {
	return &Config{
		Day: DayConfig{Start: "8:00 AM", End: "5:00 PM"},
		Fleet: FleetConfig{
			Depot:   "4001 South 700 East, Salt Lake City, UT 84107",
			Drivers: 3,
			Trucks: []TruckConfig{
				{ID: 1, Departure: "8:00 AM", SpeedMPH: 18, Capacity: 16},
				{ID: 2, Departure: "9:05 AM", SpeedMPH: 18, Capacity: 16},
				{ID: 3, Departure: "8:00 AM", SpeedMPH: 18, Capacity: 16},
			},
		},
		Load: LoadConfig{
			DelayedTruck:  2,
			DelayedMarker: "delayed on flight",
			Release:       "9:05 AM",
			Groups: []GroupConfig{
				{Truck: 1, Packages: []int{13, 14, 15, 16, 19, 20}},
				{Truck: 2, Packages: []int{3, 18, 36, 38}},
			},
		},
		Correction: CorrectionConfig{
			PackageID: 9,
			Cutoff:    "10:20 AM",
			Address:   "410 S State St, Salt Lake City, UT 84111",
		},
		Store:  StoreConfig{Capacity: 64},
		Source: SourceConfig{Kind: "csv", Path: "testdata/packages.csv"},
		Distance: DistanceConfig{
			Provider:      "constant",
			ConstantMiles: 3,
			Cache:         "none",
			SQLitePath:    "data/app.db",
			CacheTTL:      "720h",
		},
		Server: ServerConfig{Port: "8080"},
	}
}

// Load reads path over the defaults. The format follows the file extension:
// .toml, .yaml or .yml. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: read %q: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("load config: %q: unsupported format (want .toml, .yaml or .yml)", path)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: parse %q: %w", path, err)
	}

	return cfg, nil
}

// ApplyEnv overrides connection settings and secrets from the environment.
func (c *Config) ApplyEnv() {
	c.Source.Kind = Get("PACKAGE_SOURCE", c.Source.Kind)
	c.Source.Path = Get("PACKAGES_PATH", c.Source.Path)
	c.Source.DatabaseURL = Get("DATABASE_URL", c.Source.DatabaseURL)
	c.Distance.Provider = Get("DISTANCE_PROVIDER", c.Distance.Provider)
	c.Distance.TablePath = Get("DISTANCE_TABLE_PATH", c.Distance.TablePath)
	c.Distance.ORSAPIKey = Get("ORS_API_KEY", c.Distance.ORSAPIKey)
	c.Distance.Cache = Get("DISTANCE_CACHE", c.Distance.Cache)
	c.Distance.SQLitePath = Get("DB_PATH", c.Distance.SQLitePath)
	c.Distance.RedisAddr = Get("REDIS_ADDR", c.Distance.RedisAddr)
	c.Server.Port = Get("PORT", c.Server.Port)
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Validate checks the shape of the configuration. Time strings are checked
// when the configuration is resolved into simulation rules.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Fleet.Trucks) == 0 {
		errs = append(errs, errors.New("fleet: at least one truck is required"))
	}
	if strings.TrimSpace(c.Fleet.Depot) == "" {
		errs = append(errs, errors.New("fleet: depot must not be empty"))
	}
	if c.Fleet.Drivers < 0 {
		errs = append(errs, fmt.Errorf("fleet: drivers=%d must not be negative", c.Fleet.Drivers))
	}

	ids := make(map[int]struct{}, len(c.Fleet.Trucks))
	for i, t := range c.Fleet.Trucks {
		if t.ID <= 0 {
			errs = append(errs, fmt.Errorf("fleet: truck #%d: id must be positive", i+1))
		}
		if _, dup := ids[t.ID]; dup {
			errs = append(errs, fmt.Errorf("fleet: truck %d: duplicate id", t.ID))
		}
		ids[t.ID] = struct{}{}
		if t.Capacity <= 0 {
			errs = append(errs, fmt.Errorf("fleet: truck %d: capacity must be positive", t.ID))
		}
		if t.SpeedMPH <= 0 {
			errs = append(errs, fmt.Errorf("fleet: truck %d: speed_mph must be positive", t.ID))
		}
	}

	for _, g := range c.Load.Groups {
		if _, ok := ids[g.Truck]; !ok {
			errs = append(errs, fmt.Errorf("load: group names unknown truck %d", g.Truck))
		}
	}
	if c.Load.DelayedTruck != 0 {
		if _, ok := ids[c.Load.DelayedTruck]; !ok {
			errs = append(errs, fmt.Errorf("load: delayed_truck names unknown truck %d", c.Load.DelayedTruck))
		}
	}

	if c.Store.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("store: capacity=%d must be positive", c.Store.Capacity))
	}
	if c.Correction.PackageID < 0 {
		errs = append(errs, errors.New("correction: package_id must not be negative"))
	}

	switch c.Source.Kind {
	case "csv", "sqlite":
		if strings.TrimSpace(c.Source.Path) == "" {
			errs = append(errs, fmt.Errorf("source: path is required for kind %q", c.Source.Kind))
		}
	case "postgres":
		if strings.TrimSpace(c.Source.DatabaseURL) == "" {
			errs = append(errs, errors.New("source: database_url is required for kind \"postgres\""))
		}
	default:
		errs = append(errs, fmt.Errorf("source: unknown kind %q", c.Source.Kind))
	}

	switch c.Distance.Provider {
	case "constant":
		if c.Distance.ConstantMiles < 0 {
			errs = append(errs, errors.New("distance: constant_miles must not be negative"))
		}
	case "table":
		if strings.TrimSpace(c.Distance.TablePath) == "" {
			errs = append(errs, errors.New("distance: table_path is required for the table provider"))
		}
	case "ors":
		if strings.TrimSpace(c.Distance.ORSAPIKey) == "" {
			errs = append(errs, errors.New("distance: ors_api_key (or ORS_API_KEY) is required for the ors provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("distance: unknown provider %q", c.Distance.Provider))
	}

	switch c.Distance.Cache {
	case "", "none", "sqlite", "postgres", "redis":
	default:
		errs = append(errs, fmt.Errorf("distance: unknown cache %q", c.Distance.Cache))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
