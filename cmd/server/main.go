package main

import (
	"context"
	"log"
	"parcel-dispatch-service/internal/api"
	"parcel-dispatch-service/internal/app"
	"parcel-dispatch-service/internal/config"

	"github.com/joho/godotenv"
)

// main runs the configured day once and serves point-in-time queries over it.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load(config.Get("CONFIG_PATH", ""))
	if err != nil {
		log.Fatal(err)
	}
	cfg.ApplyEnv()

	sim, err := app.Run(context.Background(), cfg)
	if err != nil {
		log.Fatal(err)
	}

	router := api.NewRouter(sim.View, sim.Day)

	log.Printf("Server listening addr=:%s", cfg.Server.Port)
	srv := api.NewServer(cfg.Server.Port, router)
	log.Fatal(srv.ListenAndServe())
}
