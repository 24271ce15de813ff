package local

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dev-tams/bucketsweep/internal/storage/object"
)

// Bucket is a filesystem-backed bucket rooted at a base directory. Used
// for local development and as the concrete backend in tests.
type Bucket struct {
	name string
	base string
}

func New(name, basePath string) *Bucket {
	return &Bucket{name: name, base: basePath}
}

func (b *Bucket) Name() string { return b.name }

func (b *Bucket) Location(key string) string {
	return filepath.Join(b.base, filepath.FromSlash(key))
}

func (b *Bucket) List(_ context.Context, prefix string) ([]object.Info, error) {
	dir := filepath.Join(b.base, filepath.FromSlash(prefix))

	var out []object.Info
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat: %w", err)
		}

		rel, err := filepath.Rel(b.base, p)
		if err != nil {
			return err
		}

		out = append(out, object.Info{
			Key:     filepath.ToSlash(rel),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	return out, nil
}

func (b *Bucket) Delete(_ context.Context, key string) error {
	p := filepath.Join(b.base, filepath.FromSlash(key))
	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete %s: %w", key, object.ErrNotFound)
		}
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Put writes an object under key, creating parent directories. When
// modTime is non-zero the file's mtime is set to it, so tests can seed
// objects of a chosen age.
func (b *Bucket) Put(key string, data []byte, modTime time.Time) error {
	p := filepath.Join(b.base, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if !modTime.IsZero() {
		if err := os.Chtimes(p, modTime, modTime); err != nil {
			return fmt.Errorf("chtimes %s: %w", key, err)
		}
	}
	return nil
}
