package migrations

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSortsAndFilters(t *testing.T) {
	fsys := fstest.MapFS{
		"002_likes.sql":   {Data: []byte("SELECT 2;")},
		"001_init.sql":    {Data: []byte("SELECT 1;")},
		"README.md":       {Data: []byte("docs")},
		"archive/003.sql": {Data: []byte("SELECT 3;")},
	}

	got, err := List(fsys)
	require.NoError(t, err)
	assert.Equal(t, []Migration{
		{Version: "001", Name: "001_init.sql"},
		{Version: "002", Name: "002_likes.sql"},
	}, got)
}

func TestBundledMigrations(t *testing.T) {
	got, err := List(Files())
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "001", got[0].Version)
}
