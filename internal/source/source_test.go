package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zeebo/xxh3"
)

const payload = "id,amount\n1,$50.00\n2,100\n"

func wantDigest(s string) string { return fmt.Sprintf("%016x", xxh3.HashString(s)) }

// TestSpoolRoundTrip reads the spooled content twice, as the scan and import
// passes do, and checks the file is gone after Close.
func TestSpoolRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	f, err := Spool(context.Background(), strings.NewReader(payload), dir)
	if err != nil {
		t.Fatalf("Spool() error = %v", err)
	}
	if f.Digest() != wantDigest(payload) {
		t.Fatalf("Digest() = %s, want %s", f.Digest(), wantDigest(payload))
	}
	if f.Size() != int64(len(payload)) {
		t.Fatalf("Size() = %d, want %d", f.Size(), len(payload))
	}
	if filepath.Dir(f.Name()) != dir {
		t.Fatalf("Name() = %s, want a file in %s", f.Name(), dir)
	}

	for pass := 0; pass < 2; pass++ {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			t.Fatalf("pass %d: Seek() error = %v", pass, err)
		}
		got, err := io.ReadAll(f)
		if err != nil {
			t.Fatalf("pass %d: ReadAll() error = %v", pass, err)
		}
		if string(got) != payload {
			t.Fatalf("pass %d: content = %q, want %q", pass, got, payload)
		}
	}

	name := f.Name()
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := os.Stat(name); !os.IsNotExist(err) {
		t.Fatalf("Stat(%s) after Close error = %v, want not exist", name, err)
	}
}

func TestSpoolCanceledLeavesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Spool(ctx, strings.NewReader(payload), dir); !errors.Is(err, context.Canceled) {
		t.Fatalf("Spool() error = %v, want context.Canceled", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("spool dir has %d entries, want 0", len(entries))
	}
}

// TestOpen covers success, missing file, and a pre-canceled context.
func TestOpen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write test file: %v", err)
	}
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name      string
		ctx       context.Context
		path      string
		wantErrIs error
	}{
		{name: "success", ctx: context.Background(), path: path},
		{name: "missing", ctx: context.Background(), path: filepath.Join(dir, "missing.csv"), wantErrIs: os.ErrNotExist},
		{name: "canceled", ctx: canceled, path: path, wantErrIs: context.Canceled},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, err := Open(tt.ctx, tt.path)
			if tt.wantErrIs != nil {
				if !errors.Is(err, tt.wantErrIs) {
					t.Fatalf("Open() error = %v, want %v", err, tt.wantErrIs)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer f.Close()

			if f.Digest() != wantDigest(payload) {
				t.Fatalf("Digest() = %s, want %s", f.Digest(), wantDigest(payload))
			}
			got, err := io.ReadAll(f)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if string(got) != payload {
				t.Fatalf("content = %q, want %q", got, payload)
			}
		})
	}
}

func TestOpenCloseKeepsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "keep.csv")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write test file: %v", err)
	}
	f, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Stat() after Close error = %v, want file kept", err)
	}
}
