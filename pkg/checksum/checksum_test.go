package checksum

import (
	"context"
	"fmt"
	"hash/crc32"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloWorld = "Hello, World!"

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "disc.bin")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestMD5_KnownVector(t *testing.T) {
	path := writeTemp(t, helloWorld)

	got, err := MD5(path)
	require.NoError(t, err)
	assert.Len(t, got, 32)
	assert.Equal(t, "65a8e27d8879283831b664bd8b7f0ad4", got)
}

func TestSHA1_KnownVector(t *testing.T) {
	path := writeTemp(t, helloWorld)

	got, err := SHA1(path)
	require.NoError(t, err)
	assert.Len(t, got, 40)
	assert.Equal(t, "0a0a9f2a6772942557ab5355d76af442f8f65e01", got)
}

func TestCRC32_KnownVector(t *testing.T) {
	path := writeTemp(t, helloWorld)

	got, err := CRC32(path)
	require.NoError(t, err)
	assert.Len(t, got, 8)
	assert.Equal(t, fmt.Sprintf("%08x", crc32.ChecksumIEEE([]byte(helloWorld))), got)
}

func TestCRC32_EmptyFileIsZeroPadded(t *testing.T) {
	path := writeTemp(t, "")

	got, err := CRC32(path)
	require.NoError(t, err)
	assert.Equal(t, "00000000", got)
}

func TestDigests_Deterministic(t *testing.T) {
	path := writeTemp(t, strings.Repeat("PSX", 100_000))

	for _, fn := range []func(string) (string, error){MD5, SHA1, CRC32} {
		first, err := fn(path)
		require.NoError(t, err)
		second, err := fn(path)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestFile_MatchesIndividualDigests(t *testing.T) {
	// Larger than one chunk so the streaming path is exercised.
	content := strings.Repeat("0123456789abcdef", 3*chunkSize/16+7)
	path := writeTemp(t, content)

	sums, err := File(context.Background(), path)
	require.NoError(t, err)

	md5sum, _ := MD5(path)
	sha1sum, _ := SHA1(path)
	crcsum, _ := CRC32(path)
	assert.Equal(t, md5sum, sums.MD5)
	assert.Equal(t, sha1sum, sums.SHA1)
	assert.Equal(t, crcsum, sums.CRC32)
	assert.Equal(t, int64(len(content)), sums.Size)
}

func TestFile_Canceled(t *testing.T) {
	path := writeTemp(t, helloWorld)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sums, err := File(ctx, path)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sums.MD5)
}

func TestDigests_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.bin")

	for _, fn := range []func(string) (string, error){MD5, SHA1, CRC32} {
		got, err := fn(missing)
		require.Error(t, err)
		assert.ErrorIs(t, err, fs.ErrNotExist)
		assert.Empty(t, got)
	}

	_, err := File(context.Background(), missing)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
