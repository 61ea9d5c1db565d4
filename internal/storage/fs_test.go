package storage

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemFS() *FS {
	return NewFS(afero.NewMemMapFs(), "/data")
}

func TestFS_WriteRead(t *testing.T) {
	s := newMemFS()
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "in", "uploads/a.txt", []byte("hello"), "text/plain"))
	data, err := s.Read(ctx, "in", "uploads/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, s.Write(ctx, "in", "uploads/a.txt", []byte("again"), "text/plain"))
	data, _ = s.Read(ctx, "in", "uploads/a.txt")
	assert.Equal(t, "again", string(data))

	_, err = s.Read(ctx, "other", "uploads/a.txt")
	assert.True(t, errors.Is(err, ErrNotExist), "buckets are separate, got %v", err)
}

func TestFS_Exists(t *testing.T) {
	s := newMemFS()
	ctx := context.Background()

	ok, err := s.Exists(ctx, "in", "uploads/a.txt")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Write(ctx, "in", "uploads/a.txt", []byte("x"), ""))
	ok, err = s.Exists(ctx, "in", "uploads/a.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Exists(ctx, "in", "uploads")
	require.NoError(t, err)
	assert.False(t, ok, "prefixes are not objects")
}

func TestFS_CreateIfAbsent(t *testing.T) {
	s := newMemFS()
	ctx := context.Background()

	require.NoError(t, s.CreateIfAbsent(ctx, "in", "uploads/a.txt.processing", []byte("1"), "text/plain"))
	err := s.CreateIfAbsent(ctx, "in", "uploads/a.txt.processing", []byte("2"), "text/plain")
	assert.True(t, errors.Is(err, ErrExists), "got %v", err)

	data, _ := s.Read(ctx, "in", "uploads/a.txt.processing")
	assert.Equal(t, "1", string(data))
}

func TestFS_CreateIfAbsent_SingleWinner(t *testing.T) {
	s := NewFS(afero.NewOsFs(), t.TempDir())
	ctx := context.Background()

	var wins, losses atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.CreateIfAbsent(ctx, "in", "uploads/a.srt.processing", []byte("x"), "")
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, ErrExists):
				losses.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(15), losses.Load())
}

func TestFS_List(t *testing.T) {
	s := newMemFS()
	ctx := context.Background()

	for _, name := range []string{
		"translations/srt_outputs/ar_a.srt",
		"translations/srt_outputs/ja_a.srt",
		"translations/text_outputs/ar_b.txt",
		"uploads/a.srt",
	} {
		require.NoError(t, s.Write(ctx, "out", name, []byte("x"), ""))
	}

	names, err := s.List(ctx, "out", "translations/srt_outputs/")
	require.NoError(t, err)
	assert.Equal(t, []string{"translations/srt_outputs/ar_a.srt", "translations/srt_outputs/ja_a.srt"}, names)

	all, err := s.List(ctx, "out", "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	none, err := s.List(ctx, "missing", "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFS_Delete(t *testing.T) {
	s := newMemFS()
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "in", "uploads/a.txt", []byte("x"), ""))
	require.NoError(t, s.Delete(ctx, "in", "uploads/a.txt"))

	ok, _ := s.Exists(ctx, "in", "uploads/a.txt")
	assert.False(t, ok)

	err := s.Delete(ctx, "in", "uploads/a.txt")
	assert.True(t, errors.Is(err, ErrNotExist), "got %v", err)
}

func TestFS_InvalidNames(t *testing.T) {
	s := newMemFS()
	ctx := context.Background()

	assert.Error(t, s.Write(ctx, "", "a.txt", nil, ""))
	assert.Error(t, s.Write(ctx, "../x", "a.txt", nil, ""))
	assert.Error(t, s.Write(ctx, "in", "", nil, ""))

	// Names cannot climb out of their bucket.
	require.NoError(t, s.Write(ctx, "in", "../../etc/x", []byte("x"), ""))
	ok, err := s.Exists(ctx, "in", "etc/x")
	require.NoError(t, err)
	assert.True(t, ok)
}
