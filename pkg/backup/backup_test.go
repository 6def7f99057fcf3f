package backup

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteArchive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	dbPath := filepath.Join(dir, "inkstone.db")
	require.NoError(t, os.WriteFile(dbPath, []byte("sqlite bytes"), 0o644))

	mediaDir := filepath.Join(dir, "media")
	require.NoError(t, os.MkdirAll(filepath.Join(mediaDir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(mediaDir, "cover.png"), []byte("png"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(mediaDir, "nested", "avatar.png"), []byte("png"), 0o644))

	backupDir := filepath.Join(dir, "backups")
	path, err := writeArchive(backupDir, dbPath, mediaDir, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(backupDir, "inkstone-20260301-120000.zip"), path)

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	assert.True(t, names["inkstone.db"])
	assert.True(t, names[filepath.Join("media", "cover.png")])
	assert.True(t, names[filepath.Join("media", "nested", "avatar.png")])
}

func TestWriteArchive_MissingMediaDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "inkstone.db")
	require.NoError(t, os.WriteFile(dbPath, []byte("sqlite bytes"), 0o644))

	path, err := writeArchive(filepath.Join(dir, "backups"), dbPath, filepath.Join(dir, "missing"), time.Now())
	require.NoError(t, err)

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	assert.Len(t, zr.File, 1)
}

func TestPrune(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	names := []string{
		"inkstone-20260101-000000.zip",
		"inkstone-20260102-000000.zip",
		"inkstone-20260103-000000.zip",
		"inkstone-20260104-000000.zip",
	}
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("zip"), 0o644))
	}
	// unrelated files are left alone
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0o644))

	require.NoError(t, prune(dir, 2))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	remaining := []string{}
	for _, entry := range entries {
		remaining = append(remaining, entry.Name())
	}
	assert.ElementsMatch(t, remaining, []string{
		"inkstone-20260103-000000.zip",
		"inkstone-20260104-000000.zip",
		"notes.txt",
	})
}
