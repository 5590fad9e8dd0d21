package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAbsentFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "visited.txt"))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Contains("https://example.com/apto-1"))
}

func TestAddAndContains(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visited.txt")
	s, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, s.Add("https://example.com/apto-1"))
	require.NoError(t, s.Add("https://example.com/apto-2"))
	assert.True(t, s.Contains("https://example.com/apto-1"))
	assert.Equal(t, 2, s.Len())

	// Each Add is durable immediately
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/apto-1\nhttps://example.com/apto-2\n", string(data))
}

func TestAddIsAppendOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visited.txt")
	s, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, s.Add("https://example.com/apto-1"))
	require.NoError(t, s.Add("https://example.com/apto-1"))
	require.NoError(t, s.Add(""))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/apto-1\n", string(data))
}

func TestPersistsAcrossLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visited.txt")

	s, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, s.Add("https://example.com/apto-1"))

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, reloaded.Contains("https://example.com/apto-1"))
	assert.Equal(t, 1, reloaded.Len())
}

func TestLoadSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visited.txt")
	require.NoError(t, os.WriteFile(path, []byte("https://example.com/a\n\n  \nhttps://example.com/b\n"), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
}

func TestClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visited.txt")
	require.NoError(t, os.WriteFile(path, []byte("https://example.com/a\n"), 0644))

	require.NoError(t, Clear(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Clearing an absent file is fine
	assert.NoError(t, Clear(path))
}
