package structio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/lonelypoint/blobstore"
	"github.com/hupe1980/lonelypoint/crystal"
)

// Options configures Read and Write.
type Options struct {
	// Format overrides detection from the file name.
	Format Format
	// Compression overrides detection from the file name.
	Compression *Compression
	// WrapWriter, if set, wraps the blob writer (e.g. to throttle output).
	WrapWriter func(io.Writer) io.Writer
}

// WithFormat forces a format.
func WithFormat(f Format) func(*Options) {
	return func(o *Options) { o.Format = f }
}

// WithCompression forces a compression.
func WithCompression(c Compression) func(*Options) {
	return func(o *Options) { o.Compression = &c }
}

// WithWriterWrapper wraps the underlying blob writer.
func WithWriterWrapper(fn func(io.Writer) io.Writer) func(*Options) {
	return func(o *Options) { o.WrapWriter = fn }
}

func resolve(name string, optFns []func(*Options)) (Options, Compression, error) {
	var o Options
	for _, fn := range optFns {
		fn(&o)
	}
	c := CompressionOf(name)
	if o.Compression != nil {
		c = *o.Compression
	}
	if o.Format == nil {
		f, err := Detect(name)
		if err != nil {
			return o, c, err
		}
		o.Format = f
	}
	return o, c, nil
}

// Read loads and decodes the structure stored under name.
// A missing blob yields an error matching blobstore.ErrNotFound.
func Read(ctx context.Context, store blobstore.BlobStore, name string, optFns ...func(*Options)) (*crystal.Structure, error) {
	o, c, err := resolve(name, optFns)
	if err != nil {
		return nil, err
	}

	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, err
	}
	plain, err := decompress(c, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, c, err)
	}

	s, err := o.Format.Decode(bytes.NewReader(plain))
	if err != nil {
		if errors.Is(err, ErrMalformed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, o.Format.Name(), err)
	}
	return s, nil
}

// Write encodes s and stores it under name, replacing any existing blob.
func Write(ctx context.Context, store blobstore.BlobStore, name string, s *crystal.Structure, optFns ...func(*Options)) error {
	o, c, err := resolve(name, optFns)
	if err != nil {
		return err
	}

	blob, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = blobstore.Abort(blob)
		}
	}()

	var w io.Writer = blob
	if o.WrapWriter != nil {
		w = o.WrapWriter(w)
	}
	cw, err := compressor(c, w)
	if err != nil {
		return err
	}
	if err := o.Format.Encode(cw, s); err != nil {
		return err
	}
	if err := cw.Close(); err != nil {
		return err
	}
	if err := blob.Sync(); err != nil {
		return err
	}
	committed = true
	return blob.Close()
}
