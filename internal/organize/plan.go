package organize

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"vpdkit/internal/catalog"
)

// EntryStatus is the lifecycle of a single planned rename.
type EntryStatus string

const (
	StatusPending EntryStatus = "pending"
	StatusCopied  EntryStatus = "copied"
	StatusMoved   EntryStatus = "moved"
	// StatusSkipped marks duplicates: a later resource whose destination an
	// earlier one already claimed is never silently overwritten.
	StatusSkipped EntryStatus = "skipped-duplicate"
	StatusErrored EntryStatus = "errored"
)

// Entry is one planned relocation.
type Entry struct {
	Resource *catalog.MediaResource
	Source   string
	// Dest is the physical destination; ManifestPath the path written into
	// the manifest (differs when a media root override is in effect).
	Dest         string
	ManifestPath string
	Seq          int
	Track        string
	Status       EntryStatus
	Note         string
}

// Plan is the full set of relocations for one organize run, in sequence
// order.
type Plan struct {
	Entries    []Entry
	Collisions int
}

// Layout fixes the physical and manifest-visible media directories for a run.
type Layout struct {
	MediaDir     string
	ManifestRoot string
}

// seqPrefix matches a destination prefix from an earlier organize run, so
// re-running on organized output never double-prefixes.
var seqPrefix = regexp.MustCompile(`^\d{4}_[^_]+_Track_`)

// CleanName strips any pre-existing sequence prefix from a filename.
func CleanName(name string) string {
	return seqPrefix.ReplaceAllString(name, "")
}

func sanitizeTrack(track string) string {
	replaced := strings.NewReplacer(" ", "_", "/", "_", "\\", "_").Replace(track)
	if replaced == "" {
		return "unknown"
	}
	return replaced
}

// destName computes the destination filename for a sequenced resource:
// {seq:04d}_{track}_{cleaned original name}. Doubled underscores from names
// that already carry the separator are collapsed.
func destName(seq int, track, original string) string {
	name := fmt.Sprintf("%04d_%s_%s", seq, sanitizeTrack(track), CleanName(original))
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	return name
}

// Build computes the rename plan for the sequenced resources. Destination
// collisions keep the first resource and mark later ones errored; planning
// itself never fails.
func Build(sequenced []*catalog.MediaResource, layout Layout) *Plan {
	plan := &Plan{Entries: make([]Entry, 0, len(sequenced))}
	claimed := make(map[string]catalog.UUID, len(sequenced))

	for _, res := range sequenced {
		subdir := res.Kind.Subdir()
		name := destName(res.Seq, res.TrackName(), filepath.Base(res.Path))
		dest := filepath.Join(layout.MediaDir, subdir, name)
		manifestPath := filepath.Join(layout.ManifestRoot, subdir, name)

		entry := Entry{
			Resource:     res,
			Source:       res.Path,
			Dest:         dest,
			ManifestPath: manifestPath,
			Seq:          res.Seq,
			Track:        res.TrackName(),
			Status:       StatusPending,
		}

		if first, taken := claimed[dest]; taken {
			entry.Status = StatusSkipped
			entry.Note = fmt.Sprintf("destination already claimed by resource %s", first.Short())
			res.State = catalog.StateSkipped
			plan.Collisions++
		} else {
			claimed[dest] = res.UUID
			res.State = catalog.StatePlanned
			res.TargetPath = manifestPath
		}

		plan.Entries = append(plan.Entries, entry)
	}

	return plan
}
