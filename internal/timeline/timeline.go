// Package timeline extracts placed media blocks from a manifest's track tree.
//
// Extraction preserves encounter order within each track and records the
// owning track's title and position so the sequencer can break start-offset
// ties deterministically. Blocks missing a reference or start offset are
// skipped with a warning; they never abort a run.
package timeline

import (
	"log/slog"

	"vpdkit/internal/logging"
	"vpdkit/internal/vpd"
)

// mediaBlockTypes are the block kinds that place a media resource on a track.
var mediaBlockTypes = map[string]struct{}{
	"ImageFileBlock": {},
	"VideoFileBlock": {},
	"AudioFileBlock": {},
	"MediaFileBlock": {},
}

// Block is one media placement on a track.
type Block struct {
	// RawRef is the link identifier exactly as it appears on the block.
	RawRef string
	// ResourceUUID is the normalized owning-resource identifier, set by the
	// link resolver; empty while unresolved.
	ResourceUUID string
	// Orphaned is set when the reference cannot be resolved to a resource.
	Orphaned bool
	Type     string
	Start    float64
	Duration float64
	Track    string
	// TrackIndex is the encounter position of the owning track.
	TrackIndex int
}

// Stats summarizes an extraction pass.
type Stats struct {
	Tracks  int
	Blocks  int
	Skipped int
}

// Extract walks the timeline's tracks and returns one Block per recognized
// media placement, in track order then block encounter order.
func Extract(doc *vpd.Document, logger *slog.Logger) ([]*Block, Stats) {
	log := logging.NewComponentLogger(logger, "timeline")

	var blocks []*Block
	var stats Stats
	for trackIndex, track := range doc.Tracks() {
		stats.Tracks++
		for _, raw := range track.Blocks {
			if _, ok := mediaBlockTypes[raw.Type]; !ok {
				continue
			}
			if !raw.HasResID || !raw.HasStart {
				stats.Skipped++
				log.Warn("skipping incomplete timeline block",
					logging.String("track", track.Title),
					logging.String("type", raw.Type),
					logging.Bool("has_ref", raw.HasResID),
					logging.Bool("has_start", raw.HasStart),
				)
				continue
			}
			blocks = append(blocks, &Block{
				RawRef:     raw.ResID,
				Type:       raw.Type,
				Start:      raw.Start,
				Duration:   raw.Duration,
				Track:      track.Title,
				TrackIndex: trackIndex,
			})
			stats.Blocks++
		}
	}

	log.Debug("timeline extracted",
		logging.Int("tracks", stats.Tracks),
		logging.Int("blocks", stats.Blocks),
		logging.Int("skipped", stats.Skipped),
	)
	return blocks, stats
}
