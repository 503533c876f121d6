package cli

import (
	"bytes"
	"context"
	"parcel-dispatch-service/internal/app"
	"parcel-dispatch-service/internal/config"
	"parcel-dispatch-service/internal/domain"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useFixture points every command at the shared package fixture.
func useFixture(t *testing.T) {
	t.Helper()
	original := runSimulation
	t.Cleanup(func() { runSimulation = original })

	runSimulation = func(ctx context.Context, cfg *config.Config) (*app.Simulation, error) {
		cfg.Source.Kind = "csv"
		cfg.Source.Path = filepath.Join("..", "..", "testdata", "packages.csv")
		return app.Run(ctx, cfg)
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	root := NewRootCommand("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSimulateCommand(t *testing.T) {
	useFixture(t)

	out, err := execute(t, "", "simulate")
	require.NoError(t, err)

	assert.Contains(t, out, "Delivered 40 of 40 packages, 129.00 miles")
	assert.Contains(t, out, "TRUCK")
	assert.NotContains(t, out, "delivered late")
}

func TestReportCommand(t *testing.T) {
	useFixture(t)

	out, err := execute(t, "", "report", "--at", "9:00 AM")
	require.NoError(t, err)

	assert.Contains(t, out, "Status of all packages at 9:00 AM")
	assert.Contains(t, out, "Truck 1 mileage at 9:00 AM: 18.00 miles")
	assert.Contains(t, out, "Total mileage at 9:00 AM: 36.00 miles")
}

func TestReportCommandRejectsBadTime(t *testing.T) {
	useFixture(t)

	_, err := execute(t, "", "report", "--at", "quarter past")
	assert.ErrorIs(t, err, domain.ErrInvalidTime)
}

func TestPackageCommand(t *testing.T) {
	useFixture(t)

	out, err := execute(t, "", "package", "--id", "15", "--at", "8:10 AM")
	require.NoError(t, err)
	assert.Contains(t, out, "Package 15 at 8:10 AM")
	assert.Contains(t, out, "Delivered")
	assert.Contains(t, out, "8:10 AM")

	_, err = execute(t, "", "package", "--id", "99")
	assert.ErrorIs(t, err, domain.ErrPackageNotFound)

	_, err = execute(t, "", "package")
	assert.Error(t, err)
}

func TestConfigFlagIsRead(t *testing.T) {
	useFixture(t)

	path := filepath.Join(t.TempDir(), "dispatch.toml")
	require.NoError(t, writeFile(path, "[fleet]\ndrivers = 2\n"))

	out, err := execute(t, "", "--config", path, "simulate")
	require.NoError(t, err)
	assert.Contains(t, out, "Delivered 40 of 40 packages")

	_, err = execute(t, "", "--config", filepath.Join(t.TempDir(), "missing.toml"), "simulate")
	assert.Error(t, err)
}
