package main

import (
	"context"
	"flag"
	"log"
	"parcel-dispatch-service/internal/adapters/repositories"
	"parcel-dispatch-service/internal/config"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/platform/db"
	"strings"

	"github.com/joho/godotenv"
)

// dbtool creates the package schema and seeds it from the package CSV.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	target := flag.String("target", config.Get("PACKAGE_SOURCE", "sqlite"), "database to seed: sqlite or postgres")
	flag.Parse()

	cfg, err := config.Load(config.Get("CONFIG_PATH", ""))
	if err != nil {
		log.Fatal(err)
	}
	cfg.ApplyEnv()

	day, err := domain.NewDay(cfg.Day.Start, cfg.Day.End)
	if err != nil {
		log.Fatal(err)
	}

	seedPath := config.Get("SEED_PATH", "testdata/packages.csv")

	switch strings.ToLower(*target) {
	case "sqlite":
		seedSQLite(cfg.Source.Path, seedPath, day)
	case "postgres":
		seedPostgres(cfg.Source.DatabaseURL, seedPath, day)
	default:
		log.Fatalf("unknown target %q (want sqlite or postgres)", *target)
	}
}

func seedSQLite(path, seedPath string, day domain.Day) {
	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		path = config.Get("DB_PATH", "data/app.db")
	}

	conn, err := db.OpenSQLite(path)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	log.Printf("Initializing database schema path=%s", path)
	if err := repositories.InitSchema(conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding database...")
	if err := repositories.SeedFromCSV(conn, seedPath, day); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}

func seedPostgres(databaseURL, seedPath string, day domain.Day) {
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	log.Println("Initializing database schema...")
	if err := repositories.InitPostgresSchema(conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	pkgs, err := repositories.NewCSVPackageRepository(seedPath, day).ListPackages(context.Background())
	if err != nil {
		log.Fatalf("read seed: %v", err)
	}

	log.Println("Seeding database...")
	if err := repositories.SeedPostgresPackages(conn, pkgs); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}
