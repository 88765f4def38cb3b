// Package checksum computes the content identifiers ScreenScraper matches
// disc images by: MD5, SHA-1 and CRC-32, streamed from disk.
package checksum

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"os"
)

// chunkSize is the read size used when streaming a file through the hashes.
const chunkSize = 64 * 1024

// Sums holds the lowercase hex digests of a single file.
type Sums struct {
	MD5   string `json:"md5"`
	SHA1  string `json:"sha1"`
	CRC32 string `json:"crc32"`
	Size  int64  `json:"size"`
}

// MD5 returns the 32-character hex MD5 digest of the file at path.
func MD5(path string) (string, error) {
	return sumFile(path, md5.New())
}

// SHA1 returns the 40-character hex SHA-1 digest of the file at path.
func SHA1(path string) (string, error) {
	return sumFile(path, sha1.New())
}

// CRC32 returns the 8-character hex IEEE CRC-32 of the file at path.
func CRC32(path string) (string, error) {
	return sumFile(path, crc32.NewIEEE())
}

func sumFile(path string, h hash.Hash) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.CopyBuffer(h, f, make([]byte, chunkSize)); err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// File computes all three digests in a single pass over the file.
// The context is checked between chunks so long reads can be abandoned.
func File(ctx context.Context, path string) (Sums, error) {
	f, err := os.Open(path)
	if err != nil {
		return Sums{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	md5h, sha1h, crch := md5.New(), sha1.New(), crc32.NewIEEE()
	w := io.MultiWriter(md5h, sha1h, crch)

	n, err := io.CopyBuffer(w, &ctxReader{ctx: ctx, r: f}, make([]byte, chunkSize))
	if err != nil {
		return Sums{}, fmt.Errorf("read %s: %w", path, err)
	}

	return Sums{
		MD5:   hex.EncodeToString(md5h.Sum(nil)),
		SHA1:  hex.EncodeToString(sha1h.Sum(nil)),
		CRC32: hex.EncodeToString(crch.Sum(nil)),
		Size:  n,
	}, nil
}

// ctxReader stops reading once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
