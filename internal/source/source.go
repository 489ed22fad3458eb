// Package source turns an input into the seekable stream both passes of an
// import rewind. Local files are opened in place; any other stream (an HTTP
// upload, stdin) is spooled once into a temporary file that is removed on
// Close. Either way the content is hashed with xxh3 on the way in.
package source

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
)

// File is a seekable, digested source.
type File struct {
	f      *os.File
	name   string
	digest string
	size   int64
	remove bool
}

var _ io.ReadSeekCloser = (*File)(nil)

func (s *File) Read(p []byte) (int, error) { return s.f.Read(p) }

func (s *File) Seek(offset int64, whence int) (int64, error) { return s.f.Seek(offset, whence) }

// Close closes the file and, for spooled sources, deletes it.
func (s *File) Close() error {
	err := s.f.Close()
	if s.remove {
		if rmErr := os.Remove(s.f.Name()); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
			err = rmErr
		}
	}
	return err
}

// Name is the original file name, or the spool file path.
func (s *File) Name() string { return s.name }

// Digest is the xxh3-64 hash of the content as 16 hex digits.
func (s *File) Digest() string { return s.digest }

// Size is the content length in bytes.
func (s *File) Size() int64 { return s.size }

// Open opens a local file and computes its digest. The file is left at
// offset zero.
//
// If ctx is already done, Open returns the context error without touching
// the filesystem.
func Open(ctx context.Context, path string) (*File, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	adviseSequential(f)
	h := xxh3.New()
	n, err := io.Copy(h, ctxReader{ctx: ctx, r: f})
	if err == nil {
		_, err = f.Seek(0, io.SeekStart)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("digest %s: %w", path, err)
	}
	return &File{f: f, name: path, digest: hexDigest(h), size: n}, nil
}

// Spool copies r into a new temporary file in dir (os.TempDir when empty),
// hashing it on the way, and returns the file rewound to offset zero. The
// file is deleted by Close, or immediately if spooling fails.
func Spool(ctx context.Context, r io.Reader, dir string) (*File, error) {
	if r == nil {
		return nil, fmt.Errorf("spool: nil reader")
	}
	f, err := os.CreateTemp(dir, "csvimport-"+uuid.NewString()+"-*.csv")
	if err != nil {
		return nil, fmt.Errorf("spool: create temp file: %w", err)
	}
	cleanup := func() {
		f.Close()
		os.Remove(f.Name())
	}

	h := xxh3.New()
	n, err := io.Copy(io.MultiWriter(f, h), ctxReader{ctx: ctx, r: r})
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("spool: copy: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return nil, fmt.Errorf("spool: rewind: %w", err)
	}
	adviseSequential(f)
	return &File{f: f, name: f.Name(), digest: hexDigest(h), size: n, remove: true}, nil
}

func hexDigest(h *xxh3.Hasher) string {
	return fmt.Sprintf("%016x", h.Sum64())
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
