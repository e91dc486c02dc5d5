package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add evm records", "add_evm_records"},
		{"Add-Budget-Revisions", "add_budget_revisions"},
		{"ADD_COMMITMENT_INDEXES", "add_commitment_indexes"},
		{"add__control__accounts", "add_control_accounts"},
		{"Add Index 123", "add_index_123"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- test"), 0o644))
	}
}

func TestCreateMigration(t *testing.T) {
	t.Run("first migration is version 1", func(t *testing.T) {
		dir := t.TempDir()
		mf, err := CreateMigration(dir, "add evm records", "EVM record history")
		require.NoError(t, err)

		assert.Equal(t, uint(1), mf.Version)
		assert.Equal(t, "add_evm_records", mf.Name)
		assert.Equal(t, "000001_add_evm_records.up.sql", filepath.Base(mf.UpPath))
		assert.Equal(t, "000001_add_evm_records.down.sql", filepath.Base(mf.DownPath))

		up, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(up), "add evm records")
		assert.Contains(t, string(up), "EVM record history")

		down, err := os.ReadFile(mf.DownPath)
		require.NoError(t, err)
		assert.Contains(t, string(down), "rollback")
	})

	t.Run("numbers after the highest existing version", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "000001_init.up.sql", "000001_init.down.sql", "000007_budgets.up.sql", "000007_budgets.down.sql")

		mf, err := CreateMigration(dir, "budget indexes", "")
		require.NoError(t, err)
		assert.Equal(t, uint(8), mf.Version)
		assert.Equal(t, "000008_budget_indexes.up.sql", filepath.Base(mf.UpPath))
	})

	t.Run("creates the directory", func(t *testing.T) {
		nested := filepath.Join(t.TempDir(), "nested", "migrations")
		_, err := CreateMigration(nested, "test", "")
		require.NoError(t, err)

		info, err := os.Stat(nested)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("rejects a name without usable characters", func(t *testing.T) {
		_, err := CreateMigration(t.TempDir(), "!!!", "")
		require.Error(t, err)
	})
}

func TestListMigrations(t *testing.T) {
	t.Run("orders by version", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir,
			"000010_add_budgets.up.sql", "000010_add_budgets.down.sql",
			"000002_add_evm_records.up.sql", "000002_add_evm_records.down.sql",
			"000001_init_schema.up.sql", "000001_init_schema.down.sql",
		)

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		require.Len(t, migrations, 3)
		assert.Equal(t, uint(1), migrations[0].Version)
		assert.Equal(t, "init_schema", migrations[0].Name)
		assert.Equal(t, uint(2), migrations[1].Version)
		assert.Equal(t, uint(10), migrations[2].Version)
		assert.Equal(t, filepath.Join(dir, "000010_add_budgets.down.sql"), migrations[2].DownPath)
	})

	t.Run("ignores other files and directories", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "000001_init.up.sql", "000001_init.down.sql", "README.md", "notes.up.sql", ".gitkeep")
		require.NoError(t, os.Mkdir(filepath.Join(dir, "000002_dir.up.sql"), 0o755))

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		require.Len(t, migrations, 1)
		assert.Equal(t, "init", migrations[0].Name)
	})

	t.Run("missing directory is empty", func(t *testing.T) {
		migrations, err := ListMigrations("/nonexistent/path/to/migrations")
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})
}

func TestProjectMigrations(t *testing.T) {
	dir := filepath.Join("..", "..", "..", "migrations")
	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	for i, mf := range migrations {
		assert.Equal(t, uint(i+1), mf.Version, "versions are sequential")
		_, err := os.Stat(mf.DownPath)
		assert.NoError(t, err, "%s has a down migration", mf.Name)
	}
}
