package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
)

func TestSignatureStore_DefaultsWrittenOnFirstUse(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewSignatureStore(tmpDir)
	require.NoError(t, err)

	// No I/O before first use.
	_, statErr := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(statErr))

	sigs, err := store.Signatures()
	require.NoError(t, err)
	require.Len(t, sigs, 5)

	// The default file now exists and round-trips.
	_, statErr = os.Stat(store.Path())
	assert.NoError(t, statErr)

	types := make(map[domain.SlideType]bool)
	for _, s := range sigs {
		types[s.Type] = true
		assert.NotEmpty(t, s.Primary)
		assert.Positive(t, s.Fallback)
	}
	assert.True(t, types[domain.SlideCover])
	assert.True(t, types[domain.SlideGTLOverview])
	assert.True(t, types[domain.SlideGHSSchedule])
}

func TestSignatureStore_UserFileWins(t *testing.T) {
	tmpDir := t.TempDir()
	custom := `
[[signatures]]
type = "CUSTOM"
primary = ["Some Heading"]
fallback = 3
group = "g"
sequence = 1
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "signatures.toml"), []byte(custom), 0600))

	store, err := NewSignatureStore(tmpDir)
	require.NoError(t, err)

	sigs, err := store.Signatures()
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.Equal(t, domain.SlideType("CUSTOM"), sigs[0].Type)
	assert.Equal(t, []string{"Some Heading"}, sigs[0].Primary)
	assert.Equal(t, 3, sigs[0].Fallback)
}

func TestSignatureStore_InvalidEntryRejected(t *testing.T) {
	tmpDir := t.TempDir()
	invalid := `
[[signatures]]
type = "NO_PRIMARY"
fallback = 1
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "signatures.toml"), []byte(invalid), 0600))

	store, err := NewSignatureStore(tmpDir)
	require.NoError(t, err)

	_, err = store.Signatures()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSignatureStore_CachesUntilReload(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewSignatureStore(tmpDir)
	require.NoError(t, err)

	first, err := store.Signatures()
	require.NoError(t, err)

	// Swap the file under the store; cached table still served.
	custom := `
[[signatures]]
type = "REPLACED"
primary = ["x"]
fallback = 1
`
	require.NoError(t, os.WriteFile(store.Path(), []byte(custom), 0600))

	cached, err := store.Signatures()
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()
	fresh, err := store.Signatures()
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, domain.SlideType("REPLACED"), fresh[0].Type)
}
