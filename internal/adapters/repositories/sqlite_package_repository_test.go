package repositories

import (
	"context"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/platform/db"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqlitePackageRepositoryRoundTrip(t *testing.T) {
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, InitSchema(conn))
	require.NoError(t, SeedFromCSV(conn, "../../../testdata/packages.csv", testDay(t)))

	want, err := NewCSVPackageRepository("../../../testdata/packages.csv", testDay(t)).ListPackages(context.Background())
	require.NoError(t, err)

	got, err := NewSqlitePackageRepository(conn).ListPackages(context.Background())
	require.NoError(t, err)
	require.Len(t, got, len(want))

	for i := range want {
		assert.Equal(t, want[i].PackageID, got[i].PackageID)
		assert.Equal(t, want[i].Destination, got[i].Destination)
		assert.Equal(t, want[i].Deadline, got[i].Deadline)
		assert.Equal(t, want[i].Weight, got[i].Weight)
		assert.Equal(t, want[i].Note, got[i].Note)
	}
}

func TestSeedPackagesReplaces(t *testing.T) {
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, InitSchema(conn))

	pkg, err := newPackage(7, "1 Main St", "Salt Lake City", "UT", "84101", domain.Deadline{At: 9 * time.Hour, EndOfDay: true}, 2, "")
	require.NoError(t, err)
	require.NoError(t, SeedPackages(conn, nil))
	require.NoError(t, SeedPackages(conn, []*domain.Package{pkg}))

	pkg.Note = "fragile"
	require.NoError(t, SeedPackages(conn, []*domain.Package{pkg}))

	got, err := NewSqlitePackageRepository(conn).ListPackages(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fragile", got[0].Note)
}

func TestSqlitePackageRepositoryNilDB(t *testing.T) {
	_, err := NewSqlitePackageRepository(nil).ListPackages(context.Background())
	assert.Error(t, err)
	_, err = NewSQLPackageRepository(nil).ListPackages(context.Background())
	assert.Error(t, err)
	assert.Error(t, InitSchema(nil))
	assert.Error(t, InitPostgresSchema(nil))
}
