package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteIfChangedTracked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ini")

	wrote, err := WriteIfChangedTracked(path, []byte("a = 1\n"))
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = WriteIfChangedTracked(path, []byte("a = 1\n"))
	require.NoError(t, err)
	assert.False(t, wrote, "identical content must not rewrite")

	wrote, err = WriteIfChangedTracked(path, []byte("a = 2\n"))
	require.NoError(t, err)
	assert.True(t, wrote)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a = 2\n", string(content))
}

func TestMapKeysSorted(t *testing.T) {
	set := map[string]bool{"y": true, "x": true}
	assert.Equal(t, []string{"x", "y"}, MapKeysSorted(set))
}
