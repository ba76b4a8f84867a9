package nvstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileNext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	f := NewFile(path)
	cur, err := f.Load()
	require.NoError(t, err)
	require.Equal(t, uint8(0), cur)

	n, err := f.Next()
	require.NoError(t, err)
	require.Equal(t, uint8(1), n)
	n, err = NewFile(path).Next()
	require.NoError(t, err)
	require.Equal(t, uint8(2), n)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), "session = 2")
}

func TestFileWraps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	require.NoError(t, os.WriteFile(path, []byte("session = 255\n"), 0644))
	n, err := NewFile(path).Next()
	require.NoError(t, err)
	require.Equal(t, uint8(0), n)
}

func TestFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	require.NoError(t, os.WriteFile(path, []byte("session = \"x\"\n"), 0644))
	_, err := NewFile(path).Next()
	require.Error(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "session = \"x\"\n", string(content))
}

func TestMemoryNext(t *testing.T) {
	m := &Memory{Session: 254}
	var s Store = m
	n, err := s.Next()
	require.NoError(t, err)
	require.Equal(t, uint8(255), n)
	n, err = s.Next()
	require.NoError(t, err)
	require.Equal(t, uint8(0), n)
}
