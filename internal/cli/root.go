// Package cli provides the dispatch command-line interface.
package cli

import (
	"fmt"
	"parcel-dispatch-service/internal/app"
	"parcel-dispatch-service/internal/config"

	"github.com/spf13/cobra"
)

// runSimulation is a function variable so tests can swap in a prepared run.
var runSimulation = app.Run

type rootOptions struct {
	ConfigPath string
}

// NewRootCommand creates the dispatch root command and its subcommands.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "dispatch",
		Short: "Parcel delivery fleet simulation",
		Long: `dispatch simulates one operating day of a parcel delivery fleet:
packages are loaded onto trucks, each truck delivers greedily by earliest
feasible deadline, and the finished day can be queried at any time of day.

Configuration is read from --config (.toml, .yaml or .yml) over the built-in
reference scenario, then from the environment (and a .env file).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to a TOML or YAML configuration file")

	root.AddCommand(
		newSimulateCommand(opts),
		newReportCommand(opts),
		newPackageCommand(opts),
		newMenuCommand(opts),
		newServeCommand(opts),
	)

	return root
}

func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

func (o *rootOptions) simulate(cmd *cobra.Command) (*app.Simulation, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}

	sim, err := runSimulation(cmd.Context(), cfg)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	return sim, nil
}
