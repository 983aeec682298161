package db

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations_Embedded(t *testing.T) {
	migrations, err := LoadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "001_init", migrations[0].Name)
	assert.Contains(t, migrations[0].SQL, "CREATE TABLE IF NOT EXISTS patients")

	require.GreaterOrEqual(t, len(migrations), 2)
	assert.Equal(t, "002_cascade_doctor_ids", migrations[1].Name)
	assert.Equal(t, 3, strings.Count(migrations[1].SQL, "ON UPDATE CASCADE"))
}

func TestLoadMigrations_OrderAndSkips(t *testing.T) {
	fsys := fstest.MapFS{
		"m/010_later.sql":  {Data: []byte("SELECT 10")},
		"m/002_second.sql": {Data: []byte("SELECT 2")},
		"m/001_first.sql":  {Data: []byte("SELECT 1")},
		"m/README.md":      {Data: []byte("docs")},
		"m/nonumber.sql":   {Data: []byte("SELECT 0")},
		"m/abc_bad.sql":    {Data: []byte("SELECT 0")},
	}

	migrations, err := loadMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, migrations, 3)

	assert.Equal(t, []int{1, 2, 10}, []int{migrations[0].Version, migrations[1].Version, migrations[2].Version})
	assert.Equal(t, "SELECT 2", migrations[1].SQL)
}

func TestLoadMigrations_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"m/001_a.sql": {Data: []byte("SELECT 1")},
		"m/001_b.sql": {Data: []byte("SELECT 1")},
	}

	_, err := loadMigrations(fsys, "m")
	assert.Error(t, err)
}
