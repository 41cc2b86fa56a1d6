package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryApply(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Apply(Set("a", "1"), Set("b", "2")))

	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	require.NoError(t, m.Apply(Remove("a"), Remove("missing")))
	_, ok = m.Get("a")
	assert.False(t, ok)
}

func TestFileMissingIsEmpty(t *testing.T) {
	f, err := OpenFile(filepath.Join(t.TempDir(), "nested", "state.json"))
	require.NoError(t, err)
	assert.False(t, f.Corrupt())
	_, ok := f.Get("accessToken")
	assert.False(t, ok)
}

func TestFilePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	f, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Apply(Set("accessToken", "tok"), Set("user", `{"name":"Asha"}`)))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := OpenFile(path)
	require.NoError(t, err)
	v, ok := reopened.Get("user")
	require.True(t, ok)
	assert.Equal(t, `{"name":"Asha"}`, v)

	require.NoError(t, reopened.Apply(Remove("accessToken"), Remove("user")))
	again, err := OpenFile(path)
	require.NoError(t, err)
	_, ok = again.Get("accessToken")
	assert.False(t, ok)
}

func TestFileCorruptIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	f, err := OpenFile(path)
	require.NoError(t, err)
	assert.True(t, f.Corrupt())
	_, ok := f.Get("user")
	assert.False(t, ok)

	require.NoError(t, f.Apply(Set("k", "v")))
	assert.False(t, f.Corrupt())
}

func TestFileDirectoryPathFails(t *testing.T) {
	_, err := OpenFile(t.TempDir())
	assert.Error(t, err)
}
