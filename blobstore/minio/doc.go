// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works with MinIO and other S3-compatible storage such as Ceph or Garage,
// without pulling in AWS credentials handling.
//
// # Basic Usage
//
//	store, err := minio.New("localhost:9000", "structures",
//	    minio.WithCredentials("minioadmin", "minioadmin"),
//	)
//	data, err := blobstore.ReadAll(ctx, store, "NaCl.cif")
package minio
