package app

import (
	"context"
	"parcel-dispatch-service/internal/adapters/repositories"
	"parcel-dispatch-service/internal/config"
	"parcel-dispatch-service/internal/platform/db"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDepsSQLiteSource(t *testing.T) {
	cfg := testConfig(t)
	rules, err := Resolve(cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "packages.db")
	conn, err := db.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, repositories.InitSchema(conn))
	require.NoError(t, repositories.SeedFromCSV(conn, cfg.Source.Path, rules.Day))
	require.NoError(t, conn.Close())

	cfg.Source = config.SourceConfig{Kind: "sqlite", Path: path}
	deps, err := OpenDeps(context.Background(), cfg, rules.Day)
	require.NoError(t, err)
	t.Cleanup(func() { _ = deps.Close() })

	sim, err := Simulate(context.Background(), cfg, rules, deps.Repo, deps.Provider)
	require.NoError(t, err)
	assert.Equal(t, 40, sim.Result.Delivered)
	assert.InDelta(t, 129.0, sim.Result.TotalMiles, 1e-9)
}

func TestOpenDepsSharesSQLiteConnection(t *testing.T) {
	cfg := testConfig(t)
	rules, err := Resolve(cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "app.db")
	cfg.Source = config.SourceConfig{Kind: "sqlite", Path: path}
	cfg.Distance.Provider = "ors"
	cfg.Distance.ORSAPIKey = "test-key"
	cfg.Distance.Cache = "sqlite"
	cfg.Distance.SQLitePath = path

	deps, err := OpenDeps(context.Background(), cfg, rules.Day)
	require.NoError(t, err)
	t.Cleanup(func() { _ = deps.Close() })

	assert.Len(t, deps.conns, 1)
}

func TestOpenDepsRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	rules, err := Resolve(cfg)
	require.NoError(t, err)

	cfg.Distance.Provider = "ors"
	cfg.Distance.ORSAPIKey = "test-key"
	cfg.Distance.Cache = "redis"
	cfg.Distance.RedisAddr = mr.Addr()

	deps, err := OpenDeps(context.Background(), cfg, rules.Day)
	require.NoError(t, err)
	assert.NoError(t, deps.Close())
}

func TestOpenDepsErrors(t *testing.T) {
	cases := map[string]func(*config.Config){
		"unknown source":   func(c *config.Config) { c.Source.Kind = "xml" },
		"unknown provider": func(c *config.Config) { c.Distance.Provider = "crow" },
		"missing table":    func(c *config.Config) { c.Distance.Provider = "table"; c.Distance.TablePath = "nope.csv" },
		"ors without key":  func(c *config.Config) { c.Distance.Provider = "ors"; c.Distance.ORSAPIKey = "" },
		"unknown cache": func(c *config.Config) {
			c.Distance.Provider = "ors"
			c.Distance.ORSAPIKey = "k"
			c.Distance.Cache = "memcached"
		},
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig(t)
			mutate(cfg)
			rules, err := Resolve(cfg)
			require.NoError(t, err)

			_, err = OpenDeps(context.Background(), cfg, rules.Day)
			assert.Error(t, err)
		})
	}
}
