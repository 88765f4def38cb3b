package metadata

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/psxpack/pkg/screenscraper"
)

// fakeClient returns canned results and counts calls.
type fakeClient struct {
	info  *screenscraper.GameInfo
	err   error
	calls atomic.Int32
}

func (f *fakeClient) Lookup(_ context.Context, _ screenscraper.Query) (*screenscraper.GameInfo, error) {
	f.calls.Add(1)
	return f.info, f.err
}

var ff7 = &screenscraper.GameInfo{
	ID:     "19125",
	Name:   "Final Fantasy VII",
	Genres: []string{"RPG"},
	Media:  screenscraper.MediaSet{Icon0URL: "https://img.example/box.png"},
}

func TestService_CacheMissThenHit(t *testing.T) {
	client := &fakeClient{info: ff7}
	svc := NewService(client, NewCache(setupTestDB(t)), nil)
	ctx := context.Background()
	q := screenscraper.Query{FileName: "ff7.bin", Size: 1, SHA1: "abc"}

	first, err := svc.Lookup(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, ff7, first)

	second, err := svc.Lookup(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, ff7, second)

	assert.Equal(t, int32(1), client.calls.Load(), "second lookup should be served from cache")
}

func TestService_CachesNotFound(t *testing.T) {
	client := &fakeClient{}
	svc := NewService(client, NewCache(setupTestDB(t)), nil)
	ctx := context.Background()
	q := screenscraper.Query{FileName: "homebrew.iso", Size: 2048}

	for range 2 {
		info, err := svc.Lookup(ctx, q)
		require.NoError(t, err)
		assert.Nil(t, info)
	}
	assert.Equal(t, int32(1), client.calls.Load())
}

func TestService_ErrorsNotCached(t *testing.T) {
	client := &fakeClient{err: &screenscraper.RetrievalError{Err: errors.New("connection refused")}}
	svc := NewService(client, NewCache(setupTestDB(t)), nil)
	ctx := context.Background()
	q := screenscraper.Query{FileName: "ff7.bin", SHA1: "abc"}

	_, err := svc.Lookup(ctx, q)
	var retrievalErr *screenscraper.RetrievalError
	require.ErrorAs(t, err, &retrievalErr)

	_, err = svc.Lookup(ctx, q)
	require.Error(t, err)
	assert.Equal(t, int32(2), client.calls.Load())
}

func TestService_NilCache(t *testing.T) {
	client := &fakeClient{info: ff7}
	svc := NewService(client, nil, nil)

	for range 2 {
		info, err := svc.Lookup(context.Background(), screenscraper.Query{FileName: "ff7.bin"})
		require.NoError(t, err)
		assert.Equal(t, ff7, info)
	}
	assert.Equal(t, int32(2), client.calls.Load())
}

func TestService_ConfigurationErrorPassesThrough(t *testing.T) {
	svc := NewService(screenscraper.New("", ""), NewCache(setupTestDB(t)), nil)

	_, err := svc.Lookup(context.Background(), screenscraper.Query{FileName: "ff7.bin"})
	assert.ErrorIs(t, err, screenscraper.ErrMissingCredentials)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "screenscraper:game:sha1:s", cacheKey(screenscraper.Query{SHA1: "s", MD5: "m"}))
	assert.Equal(t, "screenscraper:game:md5:m", cacheKey(screenscraper.Query{MD5: "m"}))

	byName := cacheKey(screenscraper.Query{FileName: "/roms/Game.bin", Size: 99})
	assert.True(t, strings.HasSuffix(byName, "name:Game.bin:99"), byName)
}

func TestService_Configured(t *testing.T) {
	assert.True(t, NewService(&fakeClient{}, nil, nil).Configured(), "clients without the check are assumed configured")
	assert.False(t, NewService(screenscraper.New("", ""), nil, nil).Configured())
	assert.True(t, NewService(screenscraper.New("dev", "pw"), nil, nil).Configured())
}
