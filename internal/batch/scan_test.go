package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, nil, 0644))
	}
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"Crash Bandicoot (USA).cue",
		"Crash Bandicoot (USA).bin",
		"Tekken 3.iso",
		"Loose Track.bin",
		"readme.txt",
		"cover.png",
		"Multi/Final Fantasy VII.m3u",
		"Multi/Final Fantasy VII (Disc 1).CUE",
		"Multi/Final Fantasy VII (Disc 1).bin",
	)

	t.Run("top level only", func(t *testing.T) {
		files, err := Scan(root, false)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"Crash Bandicoot (USA).cue",
			"Loose Track.bin",
			"Tekken 3.iso",
		}, files)
	})

	t.Run("recursive", func(t *testing.T) {
		files, err := Scan(root, true)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"Crash Bandicoot (USA).cue",
			"Loose Track.bin",
			filepath.Join("Multi", "Final Fantasy VII (Disc 1).CUE"),
			filepath.Join("Multi", "Final Fantasy VII.m3u"),
			"Tekken 3.iso",
		}, files)
	})
}

func TestScan_MissingRoot(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "nope"), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan ")
}
