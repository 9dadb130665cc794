package main

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/hupe1980/lonelypoint/blobstore"
	"github.com/hupe1980/lonelypoint/blobstore/minio"
	"github.com/hupe1980/lonelypoint/blobstore/s3"
	"github.com/hupe1980/lonelypoint/structio"
)

// ErrInvalidLocation is returned for a malformed s3:// or minio:// URI.
var ErrInvalidLocation = errors.New("invalid location")

// Location is a structure file on local disk or in a bucket.
type Location struct {
	// Scheme is "file", "s3" or "minio".
	Scheme string
	Bucket string
	// Dir is the local directory, or the key prefix inside the bucket.
	Dir string
	// Name is the file name inside Dir.
	Name string
}

// ParseLocation parses "s3://bucket/key", "minio://bucket/key" or a local path.
func ParseLocation(uri string) (Location, error) {
	for _, scheme := range []string{"s3", "minio"} {
		rest, ok := strings.CutPrefix(uri, scheme+"://")
		if !ok {
			continue
		}
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" || strings.HasSuffix(key, "/") {
			return Location{}, fmt.Errorf("%w: %q needs a bucket and an object key", ErrInvalidLocation, uri)
		}
		dir, name := path.Split(key)
		return Location{Scheme: scheme, Bucket: bucket, Dir: strings.TrimSuffix(dir, "/"), Name: name}, nil
	}
	if uri == "" {
		return Location{}, fmt.Errorf("%w: empty path", ErrInvalidLocation)
	}
	if strings.Contains(uri, "://") {
		return Location{}, fmt.Errorf("%w: unsupported scheme in %q", ErrInvalidLocation, uri)
	}
	return Location{Scheme: "file", Dir: filepath.Dir(uri), Name: filepath.Base(uri)}, nil
}

// Sibling returns the location of name next to l.
func (l Location) Sibling(name string) Location {
	l.Name = name
	return l
}

// Tagged returns the location of the output file for l.
func (l Location) Tagged(tag string) Location {
	return l.Sibling(structio.OutputName(l.Name, tag))
}

func (l Location) String() string {
	if l.Scheme == "file" {
		return filepath.Join(l.Dir, l.Name)
	}
	return fmt.Sprintf("%s://%s/%s", l.Scheme, l.Bucket, path.Join(l.Dir, l.Name))
}

// Open returns the store holding l. Names in the store are relative to Dir.
func (l Location) Open(ctx context.Context, cfg *Config) (blobstore.BlobStore, error) {
	switch l.Scheme {
	case "file":
		return blobstore.NewLocalStore(l.Dir), nil
	case "s3":
		optFns := []func(*s3.Options){s3.WithPrefix(l.Dir)}
		if cfg.S3.Region != "" {
			optFns = append(optFns, s3.WithRegion(cfg.S3.Region))
		}
		if cfg.S3.Endpoint != "" {
			optFns = append(optFns, s3.WithEndpoint(cfg.S3.Endpoint))
		}
		return s3.New(ctx, l.Bucket, optFns...)
	case "minio":
		if cfg.MinIO.Endpoint == "" {
			return nil, fmt.Errorf("%w: minio endpoint is not configured", ErrInvalidLocation)
		}
		optFns := []func(*minio.Options){
			minio.WithPrefix(l.Dir),
			minio.WithSecure(cfg.MinIO.Secure),
		}
		if cfg.MinIO.AccessKey != "" {
			optFns = append(optFns, minio.WithCredentials(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey))
		}
		if cfg.MinIO.Region != "" {
			optFns = append(optFns, minio.WithRegion(cfg.MinIO.Region))
		}
		return minio.New(cfg.MinIO.Endpoint, l.Bucket, optFns...)
	default:
		return nil, fmt.Errorf("%w: scheme %q", ErrInvalidLocation, l.Scheme)
	}
}

// sameStore reports whether a and b live in the same store.
func sameStore(a, b Location) bool {
	return a.Scheme == b.Scheme && a.Bucket == b.Bucket && a.Dir == b.Dir
}
