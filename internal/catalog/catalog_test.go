package catalog_test

import (
	"testing"

	"vpdkit/internal/catalog"
	"vpdkit/internal/logging"
	"vpdkit/internal/testsupport"
	"vpdkit/internal/timeline"
	"vpdkit/internal/vpd"
)

func buildCatalog(t *testing.T, builder *testsupport.ManifestBuilder) (*catalog.Catalog, []*timeline.Block) {
	t.Helper()
	project := builder.WriteProject(t, t.TempDir(), "Sample")
	doc, err := vpd.Load(project.ManifestPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cat := catalog.FromDocument(doc, logging.NewNop())
	blocks, _ := timeline.Extract(doc, logging.NewNop())
	return cat, blocks
}

func TestSequenceFollowsTimelineOrder(t *testing.T) {
	builder := testsupport.NewManifest().
		AddImage("aaaa-1111", "/media/late.jpg", "late").
		AddImage("bbbb-2222", "/media/early.jpg", "early").
		AddImageLink("LINKAAAA", "aaaa-1111").
		AddImageLink("LINKBBBB", "bbbb-2222").
		AddTrack("Video Track",
			testsupport.BlockSpec{Type: "ImageFileBlock", ResID: "LINKAAAA", Start: 5, Duration: 2},
			testsupport.BlockSpec{Type: "ImageFileBlock", ResID: "LINKBBBB", Start: 1, Duration: 2},
		)

	cat, blocks := buildCatalog(t, builder)
	stats := cat.Resolve(blocks)
	if stats.Linked != 2 || stats.Orphaned != 0 {
		t.Fatalf("resolve stats = %+v", stats)
	}

	sequenced := cat.Sequence()
	if len(sequenced) != 2 {
		t.Fatalf("expected 2 sequenced resources, got %d", len(sequenced))
	}
	if sequenced[0].UUID != catalog.Normalize("bbbb-2222") || sequenced[0].Seq != 1 {
		t.Fatalf("first = %s seq %d", sequenced[0].UUID, sequenced[0].Seq)
	}
	if sequenced[1].UUID != catalog.Normalize("aaaa-1111") || sequenced[1].Seq != 2 {
		t.Fatalf("second = %s seq %d", sequenced[1].UUID, sequenced[1].Seq)
	}
}

func TestSequenceOrdinalsAreDense(t *testing.T) {
	builder := testsupport.NewManifest().
		AddImage("aaaa-1111", "/media/used.jpg", "used").
		AddImage("cccc-3333", "/media/unused.jpg", "unused").
		AddImageLink("LINKAAAA", "aaaa-1111").
		AddImageLink("LINKCCCC", "cccc-3333").
		AddTrack("Video Track",
			testsupport.BlockSpec{Type: "ImageFileBlock", ResID: "LINKAAAA", Start: 0, Duration: 2},
		)

	cat, blocks := buildCatalog(t, builder)
	cat.Resolve(blocks)
	sequenced := cat.Sequence()

	if len(sequenced) != 1 || sequenced[0].Seq != 1 {
		t.Fatalf("sequenced = %+v", sequenced)
	}
	unused, ok := cat.Get(catalog.Normalize("cccc-3333"))
	if !ok {
		t.Fatal("unused resource missing from catalog")
	}
	if unused.Seq != 0 || unused.Used() {
		t.Fatalf("unused resource got sequenced: seq=%d used=%v", unused.Seq, unused.Used())
	}
	if unused.State != catalog.StateUnused {
		t.Fatalf("unused state = %s", unused.State)
	}
}

func TestTieBreakPrefersEarlierTrack(t *testing.T) {
	builder := testsupport.NewManifest().
		AddImage("aaaa-1111", "/media/a.jpg", "a").
		AddImage("bbbb-2222", "/media/b.jpg", "b").
		AddImageLink("LINKAAAA", "aaaa-1111").
		AddImageLink("LINKBBBB", "bbbb-2222").
		AddTrack("Video Track",
			testsupport.BlockSpec{Type: "ImageFileBlock", ResID: "LINKBBBB", Start: 0, Duration: 2},
		).
		AddTrack("Overlay Track",
			testsupport.BlockSpec{Type: "ImageFileBlock", ResID: "LINKAAAA", Start: 0, Duration: 2},
		)

	cat, blocks := buildCatalog(t, builder)
	cat.Resolve(blocks)
	sequenced := cat.Sequence()

	if len(sequenced) != 2 {
		t.Fatalf("expected 2 sequenced, got %d", len(sequenced))
	}
	if sequenced[0].UUID != catalog.Normalize("bbbb-2222") {
		t.Fatalf("same start should order by track, first = %s", sequenced[0].UUID)
	}
}

func TestAudioPoolEntryIsNotCataloged(t *testing.T) {
	builder := testsupport.NewManifest().
		AddImage("aaaa-1111", "/media/a.jpg", "a").
		AddImage("bbbb-2222", "/media/b.jpg", "b").
		AddImageLink("LINKAAAA", "aaaa-1111").
		AddImageLink("LINKBBBB", "bbbb-2222").
		AddAudioPoolEntry("dddd-4444", "/media/song.mp3").
		AddTrack("Video Track",
			testsupport.BlockSpec{Type: "ImageFileBlock", ResID: "LINKAAAA", Start: 0, Duration: 2},
			testsupport.BlockSpec{Type: "ImageFileBlock", ResID: "LINKBBBB", Start: 2, Duration: 2},
		).
		AddTrack("Audio Track",
			testsupport.BlockSpec{Type: "AudioFileBlock", ResID: "dddd-4444", Start: 0, Duration: 10},
		)

	cat, blocks := buildCatalog(t, builder)
	if cat.Len() != 2 {
		t.Fatalf("catalog should hold only the images, got %d entries", cat.Len())
	}

	stats := cat.Resolve(blocks)
	if stats.Orphaned != 1 {
		t.Fatalf("audio block should be orphaned, stats = %+v", stats)
	}

	sequenced := cat.Sequence()
	if len(sequenced) != 2 || sequenced[0].Seq != 1 || sequenced[1].Seq != 2 {
		t.Fatalf("sequence should be exactly 1..2, got %+v", sequenced)
	}
}

func TestDirectAudioEntrySelfLinks(t *testing.T) {
	builder := testsupport.NewManifest().
		AddAudio("dddd-4444", "/media/song.mp3", "song", 30).
		AddTrack("Audio Track",
			testsupport.BlockSpec{Type: "AudioFileBlock", ResID: "dddd-4444", Start: 0, Duration: 10},
		)

	cat, blocks := buildCatalog(t, builder)
	if cat.Len() != 1 {
		t.Fatalf("expected 1 audio resource, got %d", cat.Len())
	}
	stats := cat.Resolve(blocks)
	if stats.Linked != 1 || stats.Orphaned != 0 {
		t.Fatalf("resolve stats = %+v", stats)
	}
	if sequenced := cat.Sequence(); len(sequenced) != 1 || sequenced[0].Kind != vpd.KindAudio {
		t.Fatalf("sequenced = %+v", sequenced)
	}
}

func TestResolveMarksOrphanedBlocks(t *testing.T) {
	builder := testsupport.NewManifest().
		AddImage("aaaa-1111", "/media/a.jpg", "a").
		AddImageLink("LINKAAAA", "aaaa-1111").
		AddTrack("Video Track",
			testsupport.BlockSpec{Type: "ImageFileBlock", ResID: "NOSUCHID", Start: 0, Duration: 2},
		)

	cat, blocks := buildCatalog(t, builder)
	stats := cat.Resolve(blocks)
	if stats.Orphaned != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if !blocks[0].Orphaned {
		t.Fatal("block should be marked orphaned")
	}
}
