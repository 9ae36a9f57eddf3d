package storage

import (
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"probecov/internal/bundle"
	"probecov/internal/calc"
	cverrors "probecov/internal/errors"
	"probecov/internal/paths"
	"probecov/internal/probes"
	"probecov/internal/slogutil"
)

func setupTestDB(t *testing.T) (*DB, string) {
	t.Helper()
	root := t.TempDir()

	db, err := Open(root, slogutil.NewDiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, db.Close())
	})
	return db, root
}

func sampleRecords() []probes.ExecClassData {
	return []probes.ExecClassData{
		{ID: 42, ClassName: "com/example/Foo", Probes: probes.Parse("1011"), TestName: "FooTest.run", TestID: "t1"},
		{ID: -7, ClassName: "com/example/Bar", Probes: probes.Parse("000000001"), SessionID: "s1"},
		{ClassName: "com/example/Empty", Probes: probes.Parse("")},
	}
}

func TestDatabaseInitialization(t *testing.T) {
	db, root := setupTestDB(t)

	_, err := os.Stat(paths.DatabasePath(root, ""))
	require.NoError(t, err, "database file was not created")
	assert.Equal(t, paths.DatabasePath(root, ""), db.Path())

	version, err := db.getSchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, version)
}

func TestDatabaseReopen(t *testing.T) {
	root := t.TempDir()

	db, err := Open(root, nil)
	require.NoError(t, err)
	_, err = NewSnapshotRepository(db).Save("g", 1, sampleRecords())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(root, nil)
	require.NoError(t, err)
	defer db.Close()

	infos, err := NewSnapshotRepository(db).List("g")
	require.NoError(t, err)
	assert.Len(t, infos, 1)
}

func TestDatabaseRejectsNewerSchema(t *testing.T) {
	root := t.TempDir()

	db, err := Open(root, nil)
	require.NoError(t, err)
	require.NoError(t, db.WithTx(func(tx *sql.Tx) error {
		return setSchemaVersion(tx, currentSchemaVersion+1)
	}))
	require.NoError(t, db.Close())

	_, err = Open(root, nil)
	require.Error(t, err)
	assert.True(t, cverrors.Is(err, cverrors.StorageFailure))
}

func TestWithTxRollsBack(t *testing.T) {
	db, _ := setupTestDB(t)

	boom := errors.New("boom")
	err := db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	version, err := db.getSchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, version)
}

func TestCodecRoundTrip(t *testing.T) {
	records := sampleRecords()

	got, err := DecodeRecords(EncodeRecords(records))
	require.NoError(t, err)
	if diff := cmp.Diff(records, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestCodecRejectsGarbage(t *testing.T) {
	_, err := DecodeRecords([]byte("not zstd"))
	assert.Error(t, err)
}

func TestPackBits(t *testing.T) {
	p := probes.Parse("100000001")
	packed := packBits(p)
	assert.Equal(t, []byte{0x01, 0x01}, packed)
	assert.True(t, p.Equal(unpackBits(packed, len(p))))
}

func TestSnapshotRepository(t *testing.T) {
	db, _ := setupTestDB(t)
	repo := NewSnapshotRepository(db)

	latest, err := repo.Latest("agents")
	require.NoError(t, err)
	assert.Nil(t, latest, "empty group has no snapshot")

	first, err := repo.Save("agents", 3, sampleRecords()[:1])
	require.NoError(t, err)
	second, err := repo.Save("agents", 5, sampleRecords())
	require.NoError(t, err)
	_, err = repo.Save("other", 1, sampleRecords())
	require.NoError(t, err)

	assert.Equal(t, calc.NewCount(4, 13), second.Count)
	assert.NotEqual(t, first.ID, second.ID)

	latest, err = repo.Latest("agents")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, uint64(5), latest.Version)
	assert.Equal(t, 3, latest.RecordCount)
	if diff := cmp.Diff(sampleRecords(), latest.Records, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}

	infos, err := repo.List("agents")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, second.ID, infos[0].ID, "newest first")
	assert.Equal(t, first.ID, infos[1].ID)
}

func TestBundleRepository(t *testing.T) {
	db, _ := setupTestDB(t)
	repo := NewBundleRepository(db)

	b1 := &bundle.BundleCounter{Name: "b1", Count: calc.NewCount(1, 4)}
	b2 := &bundle.BundleCounter{
		Name:  "b1",
		Count: calc.NewCount(3, 4),
		Warnings: []cverrors.Warning{
			cverrors.NewWarning(cverrors.MalformedProbeLength, "com/a/A", "normalized"),
		},
	}

	id1, err := repo.Save("agents", "build-1", b1)
	require.NoError(t, err)
	id2, err := repo.Save("agents", "build-1", b2)
	require.NoError(t, err)

	got, err := repo.Get(id1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "build-1", got.BuildID)
	assert.Equal(t, b1.Count, got.Bundle.Count)

	latest, err := repo.LatestForBuild("agents", "build-1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, id2, latest.ID)
	if diff := cmp.Diff(b2, latest.Bundle, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("bundle mismatch (-want +got):\n%s", diff)
	}

	missing, err := repo.LatestForBuild("agents", "build-2")
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = repo.Get("no-such-id")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
