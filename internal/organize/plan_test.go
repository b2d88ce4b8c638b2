package organize

import (
	"path/filepath"
	"testing"

	"vpdkit/internal/catalog"
	"vpdkit/internal/timeline"
	"vpdkit/internal/vpd"
)

func TestCleanName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"photo.jpg", "photo.jpg"},
		{"0001_Video_Track_photo.jpg", "photo.jpg"},
		{"1234_My_Track_file.png", "file.png"},
		{"12_Video_Track_short_prefix.png", "12_Video_Track_short_prefix.png"},
		{"0001_photo.jpg", "0001_photo.jpg"},
	}
	for _, tc := range cases {
		if got := CleanName(tc.in); got != tc.want {
			t.Fatalf("CleanName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDestNameIsIdempotent(t *testing.T) {
	first := destName(1, "Video Track", "photo.jpg")
	if first != "0001_Video_Track_photo.jpg" {
		t.Fatalf("destName = %q", first)
	}
	second := destName(2, "Video Track", first)
	if second != "0002_Video_Track_photo.jpg" {
		t.Fatalf("re-run destName = %q, prefix not stripped", second)
	}
}

func TestDestNameSanitizesTrack(t *testing.T) {
	got := destName(3, "My Cool/Track", "clip.mp4")
	if got != "0003_My_Cool_Track_clip.mp4" {
		t.Fatalf("destName = %q", got)
	}
	if got := destName(1, "", "clip.mp4"); got != "0001_unknown_clip.mp4" {
		t.Fatalf("empty track destName = %q", got)
	}
}

func TestDestNameCollapsesDoubledSeparators(t *testing.T) {
	got := destName(1, "Video Track", "_photo.jpg")
	if got != "0001_Video_Track_photo.jpg" {
		t.Fatalf("destName = %q", got)
	}
}

func sequencedResource(seq int, uuid, path, track string) *catalog.MediaResource {
	return &catalog.MediaResource{
		UUID:  catalog.Normalize(uuid),
		Kind:  vpd.KindImage,
		Path:  path,
		Seq:   seq,
		State: catalog.StateSequenced,
		Uses: []*timeline.Block{
			{Track: track, Start: float64(seq)},
		},
	}
}

func TestBuildAssignsDestinations(t *testing.T) {
	layout := Layout{
		MediaDir:     "/target/Proj_media",
		ManifestRoot: "/manifest/Proj_media",
	}
	resources := []*catalog.MediaResource{
		sequencedResource(1, "aaaa", "/old/a.jpg", "Video Track"),
		sequencedResource(2, "bbbb", "/old/b.jpg", "Video Track"),
	}

	plan := Build(resources, layout)
	if plan.Collisions != 0 || len(plan.Entries) != 2 {
		t.Fatalf("plan = %+v", plan)
	}
	if plan.Entries[0].Dest != filepath.Join("/target/Proj_media", "images", "0001_Video_Track_a.jpg") {
		t.Fatalf("dest = %q", plan.Entries[0].Dest)
	}
	if plan.Entries[0].ManifestPath != filepath.Join("/manifest/Proj_media", "images", "0001_Video_Track_a.jpg") {
		t.Fatalf("manifest path = %q", plan.Entries[0].ManifestPath)
	}
	if resources[0].State != catalog.StatePlanned || resources[0].TargetPath == "" {
		t.Fatalf("resource not planned: %+v", resources[0])
	}
}

func TestBuildCollisionKeepsFirst(t *testing.T) {
	layout := Layout{MediaDir: "/t", ManifestRoot: "/t"}
	resources := []*catalog.MediaResource{
		sequencedResource(1, "aaaa", "/old/one/same.jpg", "Video Track"),
		sequencedResource(1, "bbbb", "/old/two/same.jpg", "Video Track"),
	}
	// Both claim seq 1 and the same basename, so the destinations collide.
	plan := Build(resources, layout)

	if plan.Collisions != 1 {
		t.Fatalf("collisions = %d", plan.Collisions)
	}
	if plan.Entries[0].Status != StatusPending {
		t.Fatalf("first entry status = %s", plan.Entries[0].Status)
	}
	if plan.Entries[1].Status != StatusSkipped {
		t.Fatalf("second entry status = %s", plan.Entries[1].Status)
	}
	if resources[1].State != catalog.StateSkipped {
		t.Fatalf("second resource state = %s", resources[1].State)
	}
}
