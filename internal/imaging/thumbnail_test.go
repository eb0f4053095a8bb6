package imaging

import (
	"image"
	"os"
	"path/filepath"
	"testing"
)

func TestThumbnailStore(t *testing.T) {
	dir := t.TempDir()
	src := writeTestImage(t, dir, "big.png", quadrantImage(200, 100))

	store, err := NewThumbnailStore(filepath.Join(dir, "thumbs"), 32)
	if err != nil {
		t.Fatalf("NewThumbnailStore failed: %v", err)
	}

	thumbPath, err := store.Update(src)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if thumbPath != store.PathFor(src) {
		t.Errorf("Update returned %s, PathFor says %s", thumbPath, store.PathFor(src))
	}

	thumb, err := NewImageCache().Load(thumbPath)
	if err != nil {
		t.Fatalf("failed to load thumbnail: %v", err)
	}
	if thumb.Bounds().Size() != image.Pt(32, 32) {
		t.Errorf("thumbnail size: got %v, want 32x32", thumb.Bounds().Size())
	}

	if err := store.Remove(src); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(thumbPath); !os.IsNotExist(err) {
		t.Error("thumbnail should be gone")
	}
	if err := store.Remove(src); err != nil {
		t.Errorf("removing a missing thumbnail should succeed, got %v", err)
	}
}

func TestThumbnailStore_Defaults(t *testing.T) {
	store, err := NewThumbnailStore(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if store.size != DefaultThumbnailSize {
		t.Errorf("size: got %d, want %d", store.size, DefaultThumbnailSize)
	}
	if store.PathFor("a.png") == store.PathFor("b.png") {
		t.Error("different sources should map to different thumbnails")
	}
}

func TestThumbnailStore_MissingSource(t *testing.T) {
	store, err := NewThumbnailStore(t.TempDir(), 16)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Update("/nonexistent/image.png"); err == nil {
		t.Error("Update should fail for a missing source")
	}
}
