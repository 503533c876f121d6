package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"parcel-dispatch-service/internal/api"
	"time"

	"github.com/spf13/cobra"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the day and serve point-in-time queries over HTTP",
		Long: `Run the configured day once, then serve it read-only:

  GET /health
  GET /report?at=10:30+AM
  GET /packages/{id}?at=10:30+AM
  GET /trucks?at=10:30+AM`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}

			sim, err := runSimulation(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			srv := api.NewServer(cfg.Server.Port, api.NewRouter(sim.View, sim.Day))
			return listen(cmd.Context(), srv)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (default from config or PORT)")
	return cmd
}

// listen serves until ctx is cancelled, then shuts down gracefully.
func listen(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening addr=%s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Println("Server stopped")
	return nil
}
