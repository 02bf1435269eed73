package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	viper.Reset()
	root := NewRootCommand("test")
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	return root.Execute()
}

func writeProfileFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestWrongTypeFlagRejected(t *testing.T) {
	dir := t.TempDir()

	err := runCommand(t, "list", "--dir", dir, "--type", "print", "--vendor", "Acme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--vendor does not apply to print profiles")

	err = runCommand(t, "list", "--dir", dir, "--type", "filament", "--nozzle", "0.4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--nozzle does not apply to filament profiles")
}

func TestCombineCommand(t *testing.T) {
	dir := t.TempDir()
	writeProfileFile(t, dir, "a.ini", "layer_height = 0.2\nfill_density = 20%\nperimeters = 2\n")
	writeProfileFile(t, dir, "b.ini", "layer_height = 0.2\nfill_density = 20%\nperimeters = 3\n")

	require.NoError(t, runCommand(t, "combine", "Common", "--dir", dir))

	parent := readFile(t, filepath.Join(dir, "Common.ini"))
	assert.Contains(t, parent, "fill_density = 20%")
	assert.Contains(t, parent, "layer_height = 0.2")

	a := readFile(t, filepath.Join(dir, "a.ini"))
	assert.Contains(t, a, "inherits = Common")
	assert.Contains(t, a, "perimeters = 2")
	assert.NotContains(t, a, "layer_height")
}

func TestBundleCommand(t *testing.T) {
	dir := t.TempDir()
	writeProfileFile(t, dir, "parent.ini", "layer_height = 0.2\nfill_density = 20%\n")
	writeProfileFile(t, dir, "child.ini", "inherits = parent\nperimeters = 3\n")

	require.NoError(t, runCommand(t, "bundle", "Acme", "--dir", dir))

	bundlePath := filepath.Join(dir, "bundle", "Acme.ini")
	text := readFile(t, bundlePath)
	assert.Contains(t, text, "[print:*parent*]")
	assert.Contains(t, text, "layer_height = 0.2")

	child := readFile(t, filepath.Join(dir, "child.ini"))
	assert.Contains(t, child, "inherits = *parent*")

	_, err := os.Stat(filepath.Join(dir, "parent.ini"))
	assert.True(t, os.IsNotExist(err), "emptied parent file should be deleted")
}

func TestCleanCommand(t *testing.T) {
	dir := t.TempDir()
	writeProfileFile(t, dir, "parent.ini", "layer_height = 0.2\nfill_density = 20%\n")
	writeProfileFile(t, dir, "child.ini", "inherits = parent\nlayer_height = 0.2\nperimeters = 3\n")

	require.NoError(t, runCommand(t, "clean", "--dir", dir))

	child := readFile(t, filepath.Join(dir, "child.ini"))
	assert.NotContains(t, child, "layer_height")
	assert.Contains(t, child, "perimeters = 3")
	assert.Contains(t, child, "inherits = parent")
}

func TestLineageCommands(t *testing.T) {
	dir := t.TempDir()
	writeProfileFile(t, dir, "root.ini", "layer_height = 0.2\n")
	writeProfileFile(t, dir, "mid.ini", "inherits = root\n")
	writeProfileFile(t, dir, "leaf.ini", "inherits = mid\n")

	require.NoError(t, runCommand(t, "ancestors", "leaf", "--dir", dir))
	require.NoError(t, runCommand(t, "descendants", "root", "--dir", dir))

	err := runCommand(t, "ancestors", "nosuch", "--dir", dir)
	require.Error(t, err)
}

func TestProfileDirFromConfig(t *testing.T) {
	dir := t.TempDir()
	writeProfileFile(t, dir, "solo.ini", "layer_height = 0.2\n")

	cfg := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("profile_dir: "+dir+"\n"), 0o644))

	require.NoError(t, runCommand(t, "list", "--config", cfg))
}
