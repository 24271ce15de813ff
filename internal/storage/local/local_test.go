package local

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dev-tams/bucketsweep/internal/storage/object"
)

func TestListReturnsNestedObjectsUnderPrefix(t *testing.T) {
	b := New("test", t.TempDir())
	ctx := context.Background()

	old := time.Now().Add(-time.Hour)
	mustPut(t, b, "uploads/a.png", old)
	mustPut(t, b, "uploads/nested/b.png", old)
	mustPut(t, b, "output/c.png", old)

	got, err := b.List(ctx, "uploads/")
	if err != nil {
		t.Fatalf("List() unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 objects under uploads/, got %v", got)
	}
	for _, o := range got {
		if o.Key != "uploads/a.png" && o.Key != "uploads/nested/b.png" {
			t.Fatalf("unexpected key %q", o.Key)
		}
		if o.ModTime.IsZero() || o.Size != 4 {
			t.Fatalf("missing metadata for %q: %+v", o.Key, o)
		}
	}
}

func TestListMissingPrefixIsEmpty(t *testing.T) {
	b := New("test", t.TempDir())

	got, err := b.List(context.Background(), "nothing-here/")
	if err != nil {
		t.Fatalf("List() unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty listing, got %v", got)
	}
}

func TestDeleteRemovesObject(t *testing.T) {
	b := New("test", t.TempDir())
	ctx := context.Background()

	mustPut(t, b, "uploads/a.png", time.Now())
	if err := b.Delete(ctx, "uploads/a.png"); err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}

	got, err := b.List(ctx, "uploads/")
	if err != nil {
		t.Fatalf("List() unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("object should be gone, got %v", got)
	}
}

func TestDeleteAbsentKeyReturnsNotFound(t *testing.T) {
	b := New("test", t.TempDir())

	err := b.Delete(context.Background(), "uploads/missing.png")
	if !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutSetsModTime(t *testing.T) {
	b := New("test", t.TempDir())

	want := time.Now().Add(-90 * time.Hour).Truncate(time.Second)
	mustPut(t, b, "uploads/old.png", want)

	got, err := b.List(context.Background(), "uploads/")
	if err != nil {
		t.Fatalf("List() unexpected error: %v", err)
	}
	if len(got) != 1 || !got[0].ModTime.Equal(want) {
		t.Fatalf("expected mtime %s, got %v", want, got)
	}
}

func mustPut(t *testing.T, b *Bucket, key string, modTime time.Time) {
	t.Helper()
	if err := b.Put(key, []byte("data"), modTime); err != nil {
		t.Fatalf("Put(%s): %v", key, err)
	}
}
