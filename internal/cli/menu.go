package cli

import (
	"bufio"
	"fmt"
	"io"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/services"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newMenuCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Query the finished day interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sim, err := root.simulate(cmd)
			if err != nil {
				return err
			}
			m := &menu{
				view: sim.View,
				day:  sim.Day,
				in:   bufio.NewScanner(cmd.InOrStdin()),
				out:  cmd.OutOrStdout(),
			}
			return m.run()
		},
	}
}

// menu reads one choice per line until exit or end of input.
// Bad times and unknown package ids are re-prompted, never fatal.
type menu struct {
	view *services.ReportView
	day  domain.Day
	in   *bufio.Scanner
	out  io.Writer
}

func (m *menu) run() error {
	for {
		_, _ = fmt.Fprintln(m.out)
		_, _ = fmt.Fprintln(m.out, styles.Title.Render("Parcel Dispatch"))
		_, _ = fmt.Fprintln(m.out, "  1. General report")
		_, _ = fmt.Fprintln(m.out, "  2. Package query")
		_, _ = fmt.Fprintln(m.out, "  3. Exit")

		choice, ok := m.prompt("Select an option: ")
		if !ok {
			return m.in.Err()
		}

		switch choice {
		case "1":
			at, ok := m.promptTime()
			if !ok {
				return m.in.Err()
			}
			if err := writeReport(m.out, m.day, m.view.StatusAt(at)); err != nil {
				return err
			}
		case "2":
			at, ok := m.promptTime()
			if !ok {
				return m.in.Err()
			}
			ps, ok := m.promptPackage(at)
			if !ok {
				return m.in.Err()
			}
			if err := writePackage(m.out, m.day, m.day.Format(at), ps); err != nil {
				return err
			}
		case "3":
			_, _ = fmt.Fprintln(m.out, "Goodbye.")
			return nil
		default:
			_, _ = fmt.Fprintln(m.out, styles.Error.Render("Invalid selection."))
		}
	}
}

// prompt returns false at end of input.
func (m *menu) prompt(label string) (string, bool) {
	_, _ = fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *menu) promptTime() (time.Duration, bool) {
	for {
		raw, ok := m.prompt(`Time of day [HH:MM AM/PM]: `)
		if !ok {
			return 0, false
		}
		at, err := m.day.QueryOffset(raw)
		if err == nil {
			return at, true
		}
		_, _ = fmt.Fprintln(m.out, styles.Error.Render("Invalid time, please try again."))
	}
}

func (m *menu) promptPackage(at time.Duration) (services.PackageStatus, bool) {
	for {
		raw, ok := m.prompt("Package id: ")
		if !ok {
			return services.PackageStatus{}, false
		}
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			_, _ = fmt.Fprintln(m.out, styles.Error.Render("Invalid package id."))
			continue
		}
		ps, found := m.view.PackageAt(id, at)
		if !found {
			_, _ = fmt.Fprintln(m.out, styles.Error.Render("Package not found."))
			continue
		}
		return ps, true
	}
}
