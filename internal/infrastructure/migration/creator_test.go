package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"add lot index", "add_lot_index"},
		{"Add-Lot-Index", "add_lot_index"},
		{"ADD_LOT_INDEX", "add_lot_index"},
		{"add__lot__index", "add_lot_index"},
		{"Backfill Balances 2", "backfill_balances_2"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, slugify(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add transfer index", "Index in-transit rows by transfer item")
	require.NoError(t, err)

	// Version is a sortable second-resolution timestamp.
	assert.Len(t, mf.Version, 14)
	assert.True(t, strings.HasSuffix(mf.UpPath, ".up.sql"))
	assert.True(t, strings.HasSuffix(mf.DownPath, ".down.sql"))

	upBase := strings.TrimSuffix(filepath.Base(mf.UpPath), ".up.sql")
	downBase := strings.TrimSuffix(filepath.Base(mf.DownPath), ".down.sql")
	assert.Equal(t, upBase, downBase)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "add transfer index")
	assert.Contains(t, string(up), "Index in-transit rows by transfer item")
	assert.Contains(t, string(up), "Write your UP migration SQL here")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback")
	assert.Contains(t, string(down), "Write your DOWN migration SQL here")
}

func TestCreateMigration_NoDescription(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "bare", "")
	require.NoError(t, err)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.NotContains(t, string(up), "Description:")
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "db", "migrations")

	_, err := CreateMigration(nested, "first", "initial schema")
	require.NoError(t, err)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{
		"000001_init_schema.up.sql",
		"000001_init_schema.down.sql",
		"000002_add_operation_keys.up.sql",
		"000002_add_operation_keys.down.sql",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("-- sql"), 0644))
	}

	names, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_init_schema", "000002_add_operation_keys"}, names)
}

func TestListMigrations_EmptyOrMissingDirectory(t *testing.T) {
	names, err := ListMigrations(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, names)

	names, err = ListMigrations(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestListMigrations_SkipsUnrelatedEntries(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000001_init.up.sql"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000001_init.down.sql"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.up.sql"), 0755))

	names, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_init"}, names)
}
