// Package output holds the destinations a rendered journal document is
// written to. Every write fully replaces what the target held before.
package output

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
)

// ErrMissingContainer is returned when the place the document should land
// does not exist. Nothing is written in that case.
var ErrMissingContainer = errors.New("output container does not exist")

// Target receives a complete rendered document
type Target interface {
	// Replace swaps the target's content for doc in one step
	Replace(ctx context.Context, doc []byte) error
	// Name describes the target in logs
	Name() string
}

// FileTarget writes the document to a file on disk. The parent directory
// must already exist.
type FileTarget struct {
	Path string
}

// NewFileTarget creates a target for the file at path
func NewFileTarget(path string) *FileTarget {
	return &FileTarget{Path: path}
}

func (t *FileTarget) Name() string {
	return t.Path
}

// Replace writes doc to a temporary file next to the target and renames it
// over the target, so readers never observe a partial document
func (t *FileTarget) Replace(ctx context.Context, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(t.Path)
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrMissingContainer, dir)
		}
		return fmt.Errorf("failed to inspect output directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrMissingContainer, dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(t.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempPath := tmp.Name()

	cleanup := func() {
		if removeErr := os.Remove(tempPath); removeErr != nil && !os.IsNotExist(removeErr) {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove temporary file %s: %v\n", tempPath, removeErr)
		}
	}

	if _, err := tmp.Write(doc); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		cleanup()
		return fmt.Errorf("failed to set document permissions: %w", err)
	}

	// Rename temporary file over the document (atomic operation)
	if err := os.Rename(tempPath, t.Path); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace document: %w", err)
	}
	return nil
}

// Read returns the document currently on disk
func (t *FileTarget) Read() ([]byte, error) {
	return os.ReadFile(t.Path)
}

// MemoryTarget keeps the latest document in memory for the HTTP server
type MemoryTarget struct {
	doc    atomic.Pointer[[]byte]
	writes atomic.Int64
}

// NewMemoryTarget creates an empty in-memory target
func NewMemoryTarget() *MemoryTarget {
	return &MemoryTarget{}
}

func (t *MemoryTarget) Name() string {
	return "memory"
}

// Replace stores a private copy of doc
func (t *MemoryTarget) Replace(ctx context.Context, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := append([]byte(nil), doc...)
	t.doc.Store(&cp)
	t.writes.Add(1)
	return nil
}

// Bytes returns the current document, or nil before the first write
func (t *MemoryTarget) Bytes() []byte {
	p := t.doc.Load()
	if p == nil {
		return nil
	}
	return *p
}

// Writes counts completed replacements
func (t *MemoryTarget) Writes() int64 {
	return t.writes.Load()
}
