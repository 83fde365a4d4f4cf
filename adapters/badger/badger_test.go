package badger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_InMemoryRoundTrip(t *testing.T) {
	store, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer store.Close()

	_, ok, err := store.GetItem("trips")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetItem("trips", []byte(`[{"id":1}]`)))
	value, ok, err := store.GetItem("trips")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, string(value))

	require.NoError(t, store.RemoveItem("trips"))
	_, ok, err = store.GetItem("trips")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_RemoveMissingKeyIsNoop(t *testing.T) {
	store, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer store.Close()

	assert.NoError(t, store.RemoveItem("currentUser"))
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(DefaultConfig(dir))
	require.NoError(t, err)
	require.NoError(t, store.SetItem("users", []byte(`[]`)))
	require.NoError(t, store.Close())

	reopened, err := Open(DefaultConfig(dir))
	require.NoError(t, err)
	defer reopened.Close()

	value, ok, err := reopened.GetItem("users")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, string(value))
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")
}
