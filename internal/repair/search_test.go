package repair

import (
	"context"
	"path/filepath"
	"testing"

	"vpdkit/internal/logging"
	"vpdkit/internal/testsupport"
)

func TestFoldName(t *testing.T) {
	if FoldName("Photo.JPG") != "photo.jpg" {
		t.Fatalf("case folding failed: %q", FoldName("Photo.JPG"))
	}
	// Same name, composed vs decomposed e-acute.
	composed := "café.jpg"
	decomposed := "café.jpg"
	if FoldName(composed) != FoldName(decomposed) {
		t.Fatalf("NFC folding failed: %q vs %q", FoldName(composed), FoldName(decomposed))
	}
}

func TestFSSearchFindByName(t *testing.T) {
	root := t.TempDir()
	want := testsupport.WriteMedia(t, filepath.Join(root, "a", "Photo.JPG"))
	testsupport.WriteMedia(t, filepath.Join(root, "b", "other.jpg"))

	search := NewFSSearch([]string{root}, logging.NewNop())
	hits, err := search.FindByName(context.Background(), "photo.jpg")
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if len(hits) != 1 || hits[0] != want {
		t.Fatalf("hits = %v", hits)
	}
}

func TestFSSearchFindByStem(t *testing.T) {
	root := t.TempDir()
	want := testsupport.WriteMedia(t, filepath.Join(root, "clip.mov"))
	testsupport.WriteMedia(t, filepath.Join(root, "clipart.mov"))

	search := NewFSSearch([]string{root}, logging.NewNop())
	hits, err := search.FindByStem(context.Background(), "clip")
	if err != nil {
		t.Fatalf("FindByStem: %v", err)
	}
	if len(hits) != 1 || hits[0] != want {
		t.Fatalf("hits = %v", hits)
	}
}

func TestFSSearchMultipleRoots(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	first := testsupport.WriteMedia(t, filepath.Join(rootA, "same.jpg"))
	second := testsupport.WriteMedia(t, filepath.Join(rootB, "same.jpg"))

	search := NewFSSearch([]string{rootA, rootB}, logging.NewNop())
	hits, err := search.FindByName(context.Background(), "same.jpg")
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if len(hits) != 2 || hits[0] != first || hits[1] != second {
		t.Fatalf("hits = %v", hits)
	}
}
