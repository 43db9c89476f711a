package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
)

func TestFileStore_FetchAndStore(t *testing.T) {
	tempDir := t.TempDir()
	slip := filepath.Join(tempDir, "slip.xlsx")
	require.NoError(t, os.WriteFile(slip, []byte("workbook"), 0644))

	store := NewFileStore(filepath.Join(tempDir, "out"))
	ctx := context.Background()

	data, err := store.Fetch(ctx, slip)
	require.NoError(t, err)
	assert.Equal(t, []byte("workbook"), data)

	// file:// refs resolve to the same path.
	data, err = store.Fetch(ctx, "file://"+slip)
	require.NoError(t, err)
	assert.Equal(t, []byte("workbook"), data)

	ref, err := store.Store(ctx, "deck-populated.pptx", []byte("deck"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tempDir, "out", "deck-populated.pptx"), ref)

	written, err := os.ReadFile(ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("deck"), written)
}

func TestFileStore_FetchMissing(t *testing.T) {
	store := NewFileStore(t.TempDir())
	_, err := store.Fetch(context.Background(), "/no/such/slip.xlsx")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFileStore_EnsureFolder(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "out")
	store := NewFileStore(out)

	dir, err := store.EnsureFolder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, out, dir)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFileStore_NoOutputDirConfigured(t *testing.T) {
	store := NewFileStore("")
	_, err := store.EnsureFolder(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
