package output

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileTargetReplace(t *testing.T) {
	dir := t.TempDir()
	target := NewFileTarget(filepath.Join(dir, "journal.html"))
	ctx := context.Background()

	if err := target.Replace(ctx, []byte("first")); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if err := target.Replace(ctx, []byte("second")); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	got, err := target.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != "second" {
		t.Errorf("Read() = %q, want %q", got, "second")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("output directory holds %d files, want 1 (no leftover temp files)", len(entries))
	}
}

func TestFileTargetMissingDirectory(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "nope")
	target := NewFileTarget(filepath.Join(missing, "journal.html"))

	err := target.Replace(context.Background(), []byte("doc"))
	if !errors.Is(err, ErrMissingContainer) {
		t.Fatalf("Replace() error = %v, want ErrMissingContainer", err)
	}
	if _, statErr := os.Stat(missing); !os.IsNotExist(statErr) {
		t.Error("Replace() must not create the missing directory")
	}
}

func TestFileTargetDirectoryIsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}

	target := NewFileTarget(filepath.Join(file, "journal.html"))
	if err := target.Replace(context.Background(), []byte("doc")); !errors.Is(err, ErrMissingContainer) {
		t.Errorf("Replace() error = %v, want ErrMissingContainer", err)
	}
}

func TestFileTargetCanceledContext(t *testing.T) {
	target := NewFileTarget(filepath.Join(t.TempDir(), "journal.html"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := target.Replace(ctx, []byte("doc")); !errors.Is(err, context.Canceled) {
		t.Errorf("Replace() error = %v, want context.Canceled", err)
	}
	if _, err := os.Stat(target.Path); !os.IsNotExist(err) {
		t.Error("canceled Replace() should not write the document")
	}
}

func TestMemoryTarget(t *testing.T) {
	target := NewMemoryTarget()
	if target.Bytes() != nil {
		t.Error("Bytes() before first write should be nil")
	}

	doc := []byte("first")
	if err := target.Replace(context.Background(), doc); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	doc[0] = 'X'
	if string(target.Bytes()) != "first" {
		t.Errorf("Bytes() = %q, want a private copy of the document", target.Bytes())
	}

	if err := target.Replace(context.Background(), []byte("second")); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if string(target.Bytes()) != "second" {
		t.Errorf("Bytes() = %q, want second", target.Bytes())
	}
	if target.Writes() != 2 {
		t.Errorf("Writes() = %d, want 2", target.Writes())
	}
}
