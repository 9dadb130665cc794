package minio

import (
	"context"
	"os"
	"testing"

	"github.com/hupe1980/lonelypoint/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMinioStore_Integration requires a running MinIO instance.
// Set LONELYPOINT_MINIO_ENDPOINT (e.g. localhost:9000) to enable it.
func TestMinioStore_Integration(t *testing.T) {
	endpoint := os.Getenv("LONELYPOINT_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("LONELYPOINT_MINIO_ENDPOINT not set")
	}

	store, err := New(endpoint, "lonelypoint-test",
		WithCredentials("minioadmin", "minioadmin"),
		WithPrefix("it/"),
	)
	require.NoError(t, err)

	ctx := context.Background()
	exists, err := store.client.BucketExists(ctx, store.bucket)
	if err != nil {
		t.Skipf("MinIO not available: %v", err)
	}
	if !exists {
		require.NoError(t, store.client.MakeBucket(ctx, store.bucket, minio.MakeBucketOptions{}))
	}

	data := []byte("data_NaCl\n")
	require.NoError(t, store.Put(ctx, "NaCl.cif", data))

	got, err := blobstore.ReadAll(ctx, store, "NaCl.cif")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	w, err := store.Create(ctx, "lis_NaCl.cif")
	require.NoError(t, err)
	_, err = w.Write([]byte("annotated"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Close(), ErrAlreadyClosed)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "lis_NaCl.cif")

	require.NoError(t, store.Delete(ctx, "NaCl.cif"))
	require.NoError(t, store.Delete(ctx, "lis_NaCl.cif"))

	_, err = store.Open(ctx, "NaCl.cif")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestNew(t *testing.T) {
	store, err := New("localhost:9000", "bucket", WithPrefix("p/"), WithSecure(true), WithRegion("us-east-1"))
	require.NoError(t, err)
	assert.Equal(t, "p/x.cif", store.key("x.cif"))
	assert.Equal(t, "bucket", store.bucket)
}
