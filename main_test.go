package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()

	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "migrate")
	assert.NotNil(t, root.RunE, "serve should be the default command")
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestMigrateCommand_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tasks.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", dbPath)

	root := newRootCommand()
	root.SetArgs([]string{"migrate"})
	require.NoError(t, root.Execute())

	_, err := os.Stat(dbPath)
	assert.NoError(t, err, "migrate should create the database file")
}

func TestMigrateCommand_InvalidConfig(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	root := newRootCommand()
	root.SetArgs([]string{"migrate"})
	root.SetErr(nopWriter{})
	assert.Error(t, root.Execute())
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
