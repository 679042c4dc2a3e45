package blobstore

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]BlobStore {
	return map[string]BlobStore{
		"Memory": NewMemoryStore(),
		"Local":  NewLocalStore(t.TempDir()),
	}
}

func TestStores(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("NotFound", func(t *testing.T) {
				_, err := store.Open(ctx, "missing")
				assert.True(t, errors.Is(err, ErrNotFound))
			})

			t.Run("PutOpen", func(t *testing.T) {
				data := []byte("ensemble bytes")
				require.NoError(t, store.Put(ctx, "runs/a.xval", data))

				// Mutating the input after Put has no effect.
				data[0] = 'X'

				b, err := store.Open(ctx, "runs/a.xval")
				require.NoError(t, err)
				defer b.Close()
				assert.Equal(t, int64(14), b.Size())

				buf := make([]byte, 5)
				n, err := b.ReadAt(ctx, buf, 9)
				require.NoError(t, err)
				assert.Equal(t, 5, n)
				assert.Equal(t, "bytes", string(buf))

				n, err = b.ReadAt(ctx, make([]byte, 10), 9)
				assert.Equal(t, 5, n)
				assert.ErrorIs(t, err, io.EOF)

				rc, err := b.ReadRange(ctx, 0, 8)
				require.NoError(t, err)
				got, err := io.ReadAll(rc)
				require.NoError(t, err)
				assert.Equal(t, "ensemble", string(got))
				require.NoError(t, rc.Close())

				rc, err = NewReader(ctx, b)
				require.NoError(t, err)
				got, err = io.ReadAll(rc)
				require.NoError(t, err)
				assert.Equal(t, "ensemble bytes", string(got))
			})

			t.Run("Create", func(t *testing.T) {
				w, err := store.Create(ctx, "runs/b.xval")
				require.NoError(t, err)
				_, err = w.Write([]byte("part1-"))
				require.NoError(t, err)
				_, err = w.Write([]byte("part2"))
				require.NoError(t, err)
				require.NoError(t, w.Sync())

				// Not visible before Close.
				_, err = store.Open(ctx, "runs/b.xval")
				assert.True(t, errors.Is(err, ErrNotFound))

				require.NoError(t, w.Close())
				assert.Error(t, w.Close())

				b, err := store.Open(ctx, "runs/b.xval")
				require.NoError(t, err)
				defer b.Close()
				assert.Equal(t, int64(11), b.Size())
			})

			t.Run("Abort", func(t *testing.T) {
				w, err := store.Create(ctx, "runs/aborted.xval")
				require.NoError(t, err)
				_, err = w.Write([]byte("partial"))
				require.NoError(t, err)
				require.NoError(t, w.Abort())

				_, err = store.Open(ctx, "runs/aborted.xval")
				assert.True(t, errors.Is(err, ErrNotFound))
			})

			t.Run("List", func(t *testing.T) {
				require.NoError(t, store.Put(ctx, "other", []byte{1}))

				names, err := store.List(ctx, "runs/")
				require.NoError(t, err)
				assert.Equal(t, []string{"runs/a.xval", "runs/b.xval"}, names)

				names, err = store.List(ctx, "")
				require.NoError(t, err)
				assert.Len(t, names, 3)
			})

			t.Run("Delete", func(t *testing.T) {
				require.NoError(t, store.Delete(ctx, "other"))
				require.NoError(t, store.Delete(ctx, "other"))
				_, err := store.Open(ctx, "other")
				assert.True(t, errors.Is(err, ErrNotFound))
			})
		})
	}
}

func TestLocalStoreListMissingRoot(t *testing.T) {
	s := NewLocalStore(t.TempDir() + "/does-not-exist")
	names, err := s.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, store.Put(ctx, "x", []byte{1}), context.Canceled)
			_, err := store.Create(ctx, "x")
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}
