package blobstore

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]BlobStore {
	return map[string]BlobStore{
		"Local":  NewLocalStore(t.TempDir()),
		"Memory": NewMemoryStore(),
	}
}

func TestBlobStore_Lifecycle(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			data := []byte("data_NaCl\n_cell_length_a 5.64\n")

			w, err := store.Create(ctx, "in/NaCl.cif")
			require.NoError(t, err)
			n, err := w.Write(data)
			require.NoError(t, err)
			require.Equal(t, len(data), n)
			require.NoError(t, w.Sync())
			require.NoError(t, w.Close())

			blob, err := store.Open(ctx, "in/NaCl.cif")
			require.NoError(t, err)
			require.Equal(t, int64(len(data)), blob.Size())

			buf := make([]byte, 4)
			n, err = blob.ReadAt(ctx, buf, 5)
			require.NoError(t, err)
			assert.Equal(t, 4, n)
			assert.Equal(t, "NaCl", string(buf))
			require.NoError(t, blob.Close())

			got, err := ReadAll(ctx, store, "in/NaCl.cif")
			require.NoError(t, err)
			assert.Equal(t, data, got)

			require.NoError(t, store.Put(ctx, "out/lis_NaCl.cif", []byte("x")))

			names, err := store.List(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, []string{"in/NaCl.cif", "out/lis_NaCl.cif"}, names)

			names, err = store.List(ctx, "out/")
			require.NoError(t, err)
			assert.Equal(t, []string{"out/lis_NaCl.cif"}, names)

			require.NoError(t, store.Delete(ctx, "in/NaCl.cif"))
			require.NoError(t, store.Delete(ctx, "in/NaCl.cif"))

			_, err = store.Open(ctx, "in/NaCl.cif")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestReadAllLarge(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	data := bytes.Repeat([]byte("0123456789"), readChunk/5)
	require.NoError(t, store.Put(ctx, "big", data))

	got, err := ReadAll(ctx, store, "big")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestLocalStore_AtomicCreate(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewLocalStore(dir)

	w, err := store.Create(ctx, "out.xyz")
	require.NoError(t, err)
	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)

	// Nothing is visible under the final name before Close.
	_, err = os.Stat(filepath.Join(dir, "out.xyz"))
	assert.True(t, os.IsNotExist(err))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, w.Close())
	got, err := os.ReadFile(filepath.Join(dir, "out.xyz"))
	require.NoError(t, err)
	assert.Equal(t, "partial", string(got))
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	data := []byte("abc")
	require.NoError(t, store.Put(ctx, "k", data))
	data[0] = 'z'

	got, err := ReadAll(ctx, store, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestAbort(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			w, err := store.Create(ctx, "lis_NaCl.cif")
			require.NoError(t, err)
			_, err = w.Write([]byte("half a structure"))
			require.NoError(t, err)

			require.NoError(t, Abort(w))

			names, err := store.List(ctx, "")
			require.NoError(t, err)
			assert.Empty(t, names)

			_, err = store.Open(ctx, "lis_NaCl.cif")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}
