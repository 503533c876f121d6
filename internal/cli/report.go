package cli

import (
	"errors"
	"fmt"
	"parcel-dispatch-service/internal/domain"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// queryTime resolves an --at value; empty means the end of the day.
func queryTime(day domain.Day, raw string) (time.Duration, error) {
	if strings.TrimSpace(raw) == "" {
		return day.Length(), nil
	}
	at, err := day.QueryOffset(raw)
	if err != nil {
		return 0, fmt.Errorf("--at %q: %w", raw, err)
	}
	return at, nil
}

func newReportCommand(root *rootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the status of every package at a time of day",
		Long: `Print every package's destination, deadline, status and delivery time
as of --at, followed by each truck's mileage and the fleet total.

Examples:
  # Status at 10:00 AM
  dispatch report --at "10:00 AM"

  # End of day
  dispatch report`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sim, err := root.simulate(cmd)
			if err != nil {
				return err
			}
			offset, err := queryTime(sim.Day, at)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), sim.Day, sim.View.StatusAt(offset))
		},
	}

	cmd.Flags().StringVar(&at, "at", "", `Time of day, e.g. "10:30 AM" (default end of day)`)
	return cmd
}

func newPackageCommand(root *rootOptions) *cobra.Command {
	var opts struct {
		ID int
		At string
	}

	cmd := &cobra.Command{
		Use:   "package",
		Short: "Print one package's status at a time of day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.ID <= 0 {
				return errors.New("--id must be a positive package id")
			}

			sim, err := root.simulate(cmd)
			if err != nil {
				return err
			}
			offset, err := queryTime(sim.Day, opts.At)
			if err != nil {
				return err
			}

			ps, ok := sim.View.PackageAt(opts.ID, offset)
			if !ok {
				return fmt.Errorf("package %d: %w", opts.ID, domain.ErrPackageNotFound)
			}
			return writePackage(cmd.OutOrStdout(), sim.Day, sim.Day.Format(offset), ps)
		},
	}

	cmd.Flags().IntVar(&opts.ID, "id", 0, "Package id")
	cmd.Flags().StringVar(&opts.At, "at", "", `Time of day, e.g. "10:30 AM" (default end of day)`)
	return cmd
}
