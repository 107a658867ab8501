package utils

import (
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func TestHashFields(t *testing.T) {
	require.Equal(t, HashFields("a", "b"), HashFields("a", "b"))
	require.NotEqual(t, HashFields("a", "bc"), HashFields("ab", "c"))
}

func TestReadList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\r\ntwo\n\nthree"), 0600))

	lines, err := ReadList(path)
	require.NoError(t, err)
	require.Equal(t, []string{"one", "two", "", "three"}, lines)

	_, err = ReadList(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}

func TestRecoverWithError(t *testing.T) {
	run := func() (err error) {
		defer RecoverWithError(&err)
		panic("boom")
	}
	err := run()
	require.EqualError(t, err, "got panic: boom")
}
