// Package main is the entry point for the dispatch CLI.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"parcel-dispatch-service/internal/cli"
	"syscall"

	"github.com/joho/godotenv"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(version).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
