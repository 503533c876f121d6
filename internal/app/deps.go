package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"parcel-dispatch-service/internal/adapters/cache"
	"parcel-dispatch-service/internal/adapters/distance"
	"parcel-dispatch-service/internal/adapters/repositories"
	"parcel-dispatch-service/internal/config"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/platform/db"
	"parcel-dispatch-service/internal/ports"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deps are the adapters selected by the configuration.
type Deps struct {
	Repo     ports.PackageRepository
	Provider ports.DistanceProvider

	closers []func() error
	conns   map[string]*sql.DB
}

// Close releases every connection opened by OpenDeps.
func (d *Deps) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OpenDeps wires the package repository and distance provider named by cfg.
func OpenDeps(ctx context.Context, cfg *config.Config, day domain.Day) (_ *Deps, err error) {
	d := &Deps{}
	defer func() {
		if err != nil {
			_ = d.Close()
		}
	}()

	d.Repo, err = d.openRepository(cfg, day)
	if err != nil {
		return nil, err
	}

	d.Provider, err = d.openProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Deps) openRepository(cfg *config.Config, day domain.Day) (ports.PackageRepository, error) {
	switch cfg.Source.Kind {
	case "csv":
		return repositories.NewCSVPackageRepository(cfg.Source.Path, day), nil
	case "sqlite":
		conn, err := d.sqlite(cfg.Source.Path)
		if err != nil {
			return nil, fmt.Errorf("open repository: %w", err)
		}
		return repositories.NewSqlitePackageRepository(conn), nil
	case "postgres":
		conn, err := d.postgres(cfg.Source.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open repository: %w", err)
		}
		return repositories.NewSQLPackageRepository(conn), nil
	default:
		return nil, fmt.Errorf("open repository: unknown source kind %q", cfg.Source.Kind)
	}
}

func (d *Deps) openProvider(ctx context.Context, cfg *config.Config) (ports.DistanceProvider, error) {
	switch cfg.Distance.Provider {
	case "constant":
		return distance.NewConstantDistanceProvider(cfg.Distance.ConstantMiles)
	case "table":
		return distance.LoadTableDistanceProvider(cfg.Distance.TablePath)
	case "ors":
		dc, gc, err := d.openCaches(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("open provider: %w", err)
		}
		return distance.NewORSDistanceProvider(cfg.Distance.ORSAPIKey, dc, gc)
	default:
		return nil, fmt.Errorf("open provider: unknown distance provider %q", cfg.Distance.Provider)
	}
}

// openCaches returns nil interfaces when caching is off.
func (d *Deps) openCaches(ctx context.Context, cfg *config.Config) (ports.DistanceCache, ports.GeocodeCache, error) {
	switch cfg.Distance.Cache {
	case "", "none":
		return nil, nil, nil
	case "sqlite":
		conn, err := d.sqlite(cfg.Distance.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return cache.NewSqliteDistanceCache(conn), cache.NewSqliteGeocodeCache(conn), nil
	case "postgres":
		conn, err := d.postgres(cfg.Source.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return cache.NewSQLDistanceCache(conn), cache.NewSQLGeocodeCache(conn), nil
	case "redis":
		ttl, err := time.ParseDuration(cfg.Distance.CacheTTL)
		if cfg.Distance.CacheTTL != "" && err != nil {
			return nil, nil, fmt.Errorf("redis cache: cache_ttl: %w", err)
		}
		client := redis.NewClient(&redis.Options{Addr: cfg.Distance.RedisAddr})
		d.closers = append(d.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("redis cache: ping %q: %w", cfg.Distance.RedisAddr, err)
		}
		return cache.NewRedisDistanceCache(client, ttl), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown distance cache %q", cfg.Distance.Cache)
	}
}

// sqlite and postgres share one pool per database between the repository and the caches.
func (d *Deps) sqlite(path string) (*sql.DB, error) {
	if conn, ok := d.conns["sqlite:"+path]; ok {
		return conn, nil
	}

	conn, err := db.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	d.track("sqlite:"+path, conn)

	if err := repositories.InitSchema(conn); err != nil {
		return nil, err
	}
	log.Printf("sqlite ready path=%s", path)
	return conn, nil
}

func (d *Deps) postgres(url string) (*sql.DB, error) {
	if conn, ok := d.conns["postgres:"+url]; ok {
		return conn, nil
	}

	conn, err := db.Open(url)
	if err != nil {
		return nil, err
	}
	d.track("postgres:"+url, conn)

	if err := repositories.InitPostgresSchema(conn); err != nil {
		return nil, err
	}
	log.Println("postgres ready")
	return conn, nil
}

func (d *Deps) track(key string, conn *sql.DB) {
	if d.conns == nil {
		d.conns = make(map[string]*sql.DB)
	}
	d.conns[key] = conn
	d.closers = append(d.closers, conn.Close)
}
