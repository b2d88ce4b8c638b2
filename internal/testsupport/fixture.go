package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"vpdkit/internal/vpd"
)

// BlockSpec describes one timeline block for a fixture manifest.
type BlockSpec struct {
	Type     string
	ResID    string
	Start    float64
	Duration float64
}

// ManifestBuilder assembles the raw JSON shape of a project manifest the way
// the editor writes it: resource entries in per-kind pools, link entries
// pointing into them, and timeline tracks referencing the links.
type ManifestBuilder struct {
	images     []map[string]any
	imageLinks []map[string]any
	videos     []map[string]any
	videoLinks []map[string]any
	audios     []map[string]any
	audioPool  []map[string]any
	tracks     []map[string]any
}

func NewManifest() *ManifestBuilder {
	return &ManifestBuilder{}
}

func (b *ManifestBuilder) AddImage(uuid, path, title string) *ManifestBuilder {
	b.images = append(b.images, map[string]any{
		"uuid":   uuid,
		"path":   path,
		"title":  title,
		"width":  1920,
		"height": 1080,
	})
	return b
}

func (b *ManifestBuilder) AddImageLink(linkUUID, resID string) *ManifestBuilder {
	b.imageLinks = append(b.imageLinks, map[string]any{
		"type":  "link",
		"uuid":  linkUUID,
		"resid": resID,
	})
	return b
}

func (b *ManifestBuilder) AddVideo(uuid, path, title string, duration float64) *ManifestBuilder {
	b.videos = append(b.videos, map[string]any{
		"uuid":     uuid,
		"path":     path,
		"title":    title,
		"duration": duration,
	})
	return b
}

func (b *ManifestBuilder) AddVideoLink(linkUUID, resID string) *ManifestBuilder {
	b.videoLinks = append(b.videoLinks, map[string]any{
		"type":  "link",
		"uuid":  linkUUID,
		"resid": resID,
	})
	return b
}

// AddAudio appends a direct audio entry; audio needs no link indirection.
func (b *ManifestBuilder) AddAudio(uuid, path, title string, duration float64) *ManifestBuilder {
	b.audios = append(b.audios, map[string]any{
		"uuid":     uuid,
		"path":     path,
		"title":    title,
		"duration": duration,
	})
	return b
}

// AddAudioPoolEntry puts an audio entry in the scapegoat pool only, the way
// the editor parks imported-but-never-placed audio.
func (b *ManifestBuilder) AddAudioPoolEntry(uuid, path string) *ManifestBuilder {
	b.audioPool = append(b.audioPool, map[string]any{
		"uuid": uuid,
		"path": path,
	})
	return b
}

func (b *ManifestBuilder) AddTrack(title string, blocks ...BlockSpec) *ManifestBuilder {
	items := make([]any, 0, len(blocks))
	for _, blk := range blocks {
		items = append(items, map[string]any{
			"type":     blk.Type,
			"resid":    blk.ResID,
			"tstart":   blk.Start,
			"duration": blk.Duration,
		})
	}
	b.tracks = append(b.tracks, map[string]any{
		"title":    title,
		"type":     "track",
		"subitems": items,
	})
	return b
}

// Build produces the raw manifest document.
func (b *ManifestBuilder) Build() map[string]any {
	imageItems := make([]any, 0, len(b.imageLinks))
	for _, link := range b.imageLinks {
		imageItems = append(imageItems, link)
	}
	videoItems := make([]any, 0, len(b.videoLinks))
	for _, link := range b.videoLinks {
		videoItems = append(videoItems, link)
	}
	audioItems := make([]any, 0, len(b.audios))
	for _, entry := range b.audios {
		audioItems = append(audioItems, entry)
	}
	trackItems := make([]any, 0, len(b.tracks))
	for _, track := range b.tracks {
		trackItems = append(trackItems, track)
	}

	return map[string]any{
		"projinfo": map[string]any{
			"projectfile": "",
			"savetime": map[string]any{
				"year": 2024, "month": 1, "day": 1,
				"hour": 0, "minute": 0, "second": 0,
			},
		},
		"imagelist": map[string]any{
			"scapegoat": anySlice(b.images),
			"subitems":  imageItems,
		},
		"videolist": map[string]any{
			"scapegoat": anySlice(b.videos),
			"subitems":  videoItems,
		},
		"audiolist": map[string]any{
			"scapegoat": anySlice(b.audioPool),
			"subitems":  audioItems,
		},
		"timeline": map[string]any{
			"subitems": trackItems,
		},
	}
}

// WriteProject lays the manifest down as dir/name.dvp/name.vpd and resolves
// it into a project.
func (b *ManifestBuilder) WriteProject(t testing.TB, dir, name string) vpd.Project {
	t.Helper()

	folder := filepath.Join(dir, name+".dvp")
	if err := os.MkdirAll(folder, 0o755); err != nil {
		t.Fatalf("mkdir project folder: %v", err)
	}
	manifest := filepath.Join(folder, name+".vpd")
	data, err := json.MarshalIndent(b.Build(), "", "    ")
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	if err := os.WriteFile(manifest, data, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	project, _, err := vpd.ResolveProject(folder)
	if err != nil {
		t.Fatalf("resolve project: %v", err)
	}
	return project
}

// WriteMedia creates a small file at path, making parent directories as
// needed, and returns path.
func WriteMedia(t testing.TB, path string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir media dir: %v", err)
	}
	if err := os.WriteFile(path, []byte("media:"+filepath.Base(path)), 0o644); err != nil {
		t.Fatalf("write media file: %v", err)
	}
	return path
}

func anySlice(entries []map[string]any) []any {
	out := make([]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, e)
	}
	return out
}
