package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Fleet.Trucks, 3)
	assert.Equal(t, "9:05 AM", cfg.Load.Release)
	assert.Equal(t, 9, cfg.Correction.PackageID)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadTOMLOverridesDefaults(t *testing.T) {
	path := writeFile(t, "dispatch.toml", `
[fleet]
drivers = 2

[[fleet.trucks]]
id = 1
departure = "8:30 AM"
speed_mph = 25
capacity = 10

[load]
release = "9:30 AM"

[[load.groups]]
truck = 1
packages = [1, 2]

[distance]
provider = "table"
table_path = "data/distances.csv"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Fleet.Drivers)
	require.Len(t, cfg.Fleet.Trucks, 1)
	assert.Equal(t, TruckConfig{ID: 1, Departure: "8:30 AM", SpeedMPH: 25, Capacity: 10}, cfg.Fleet.Trucks[0])
	assert.Equal(t, "9:30 AM", cfg.Load.Release)
	assert.Equal(t, []GroupConfig{{Truck: 1, Packages: []int{1, 2}}}, cfg.Load.Groups)
	assert.Equal(t, "table", cfg.Distance.Provider)

	// Untouched sections keep their defaults.
	assert.Equal(t, "8:00 AM", cfg.Day.Start)
	assert.Equal(t, "delayed on flight", cfg.Load.DelayedMarker)
	assert.Equal(t, Default().Fleet.Depot, cfg.Fleet.Depot)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "dispatch.yaml", `
day:
  start: "7:00 AM"
correction:
  package_id: 0
store:
  capacity: 128
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7:00 AM", cfg.Day.Start)
	assert.Equal(t, "5:00 PM", cfg.Day.End)
	assert.Zero(t, cfg.Correction.PackageID)
	assert.Equal(t, 128, cfg.Store.Capacity)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "dispatch.json", `{}`))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.toml", `[fleet`))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("ORS_API_KEY", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/dispatch")
	t.Setenv("PORT", "")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, "secret", cfg.Distance.ORSAPIKey)
	assert.Equal(t, "postgres://localhost/dispatch", cfg.Source.DatabaseURL)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no trucks", func(c *Config) { c.Fleet.Trucks = nil }},
		{"duplicate truck", func(c *Config) { c.Fleet.Trucks[1].ID = 1 }},
		{"zero capacity", func(c *Config) { c.Fleet.Trucks[0].Capacity = 0 }},
		{"zero speed", func(c *Config) { c.Fleet.Trucks[0].SpeedMPH = 0 }},
		{"unknown group truck", func(c *Config) { c.Load.Groups[0].Truck = 9 }},
		{"unknown delayed truck", func(c *Config) { c.Load.DelayedTruck = 9 }},
		{"store capacity", func(c *Config) { c.Store.Capacity = 0 }},
		{"source kind", func(c *Config) { c.Source.Kind = "ftp" }},
		{"postgres url", func(c *Config) { c.Source.Kind = "postgres" }},
		{"ors key", func(c *Config) { c.Distance.Provider = "ors" }},
		{"table path", func(c *Config) { c.Distance.Provider = "table" }},
		{"cache", func(c *Config) { c.Distance.Cache = "memcached" }},
		{"empty depot", func(c *Config) { c.Fleet.Depot = " " }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
