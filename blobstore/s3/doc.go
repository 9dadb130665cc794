// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("structures/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//	data, err := blobstore.ReadAll(ctx, store, "NaCl.cif")
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads for large outputs
//   - Automatic pagination for listing
//   - Custom endpoints for S3-compatible services
package s3
