package timeline_test

import (
	"os"
	"path/filepath"
	"testing"

	"vpdkit/internal/logging"
	"vpdkit/internal/testsupport"
	"vpdkit/internal/timeline"
	"vpdkit/internal/vpd"
)

func TestExtractWalksTracksInOrder(t *testing.T) {
	project := testsupport.NewManifest().
		AddImage("aaaa-1111", "/media/a.jpg", "a").
		AddImageLink("LINKAAAA", "aaaa-1111").
		AddTrack("Video Track",
			testsupport.BlockSpec{Type: "ImageFileBlock", ResID: "LINKAAAA", Start: 3, Duration: 2},
		).
		AddTrack("Overlay Track",
			testsupport.BlockSpec{Type: "ImageFileBlock", ResID: "LINKAAAA", Start: 0, Duration: 1},
		).
		WriteProject(t, t.TempDir(), "Tracks")

	doc, err := vpd.Load(project.ManifestPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	blocks, stats := timeline.Extract(doc, logging.NewNop())
	if stats.Tracks != 2 || stats.Blocks != 2 || stats.Skipped != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if blocks[0].Track != "Video Track" || blocks[0].TrackIndex != 0 {
		t.Fatalf("first block = %+v", blocks[0])
	}
	if blocks[1].Track != "Overlay Track" || blocks[1].TrackIndex != 1 {
		t.Fatalf("second block = %+v", blocks[1])
	}
}

func TestExtractSkipsMalformedBlocks(t *testing.T) {
	manifest := `{
        "imagelist": {"scapegoat": [], "subitems": []},
        "timeline": {"subitems": [
            {"title": "Video Track", "type": "track", "subitems": [
                {"type": "ImageFileBlock", "resid": "REF1", "tstart": 0, "duration": 2},
                {"type": "ImageFileBlock", "tstart": 1, "duration": 2},
                {"type": "ImageFileBlock", "resid": "REF2", "duration": 2},
                {"type": "TextBlock", "tstart": 0, "duration": 2}
            ]}
        ]}
    }`
	dir := t.TempDir()
	path := filepath.Join(dir, "blocks.vpd")
	if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc, err := vpd.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	blocks, stats := timeline.Extract(doc, logging.NewNop())
	if len(blocks) != 1 {
		t.Fatalf("expected 1 usable block, got %d", len(blocks))
	}
	if blocks[0].RawRef != "REF1" {
		t.Fatalf("kept block = %+v", blocks[0])
	}
	// Missing resid and missing tstart are skipped with a warning; text and
	// effect blocks are not media placements and do not count as skips.
	if stats.Skipped != 2 {
		t.Fatalf("skipped = %d, want 2", stats.Skipped)
	}
}
