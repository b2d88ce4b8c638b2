package catalog

import (
	"log/slog"
	"sort"

	"vpdkit/internal/logging"
	"vpdkit/internal/timeline"
	"vpdkit/internal/vpd"
)

// Catalog indexes the document's media resources by normalized UUID and
// carries the link indirection table connecting timeline references to them.
type Catalog struct {
	byUUID map[UUID]*MediaResource
	order  []*MediaResource
	links  map[UUID]UUID

	// SkippedEntries counts resource records dropped for missing uuid/path.
	SkippedEntries int

	logger *slog.Logger
}

// ResolveStats summarizes a link resolution pass.
type ResolveStats struct {
	Linked   int
	Orphaned int
}

// FromDocument builds the catalog and link table from every media section.
// Entries missing a uuid or path are counted and skipped, never fatal.
// Duplicate normalized UUIDs keep the first occurrence.
func FromDocument(doc *vpd.Document, logger *slog.Logger) *Catalog {
	log := logging.NewComponentLogger(logger, "catalog")
	c := &Catalog{
		byUUID: make(map[UUID]*MediaResource),
		links:  make(map[UUID]UUID),
		logger: log,
	}

	for _, kind := range vpd.Kinds() {
		for _, entry := range doc.Resources(kind) {
			if !entry.HasUUID || !entry.HasPath {
				c.SkippedEntries++
				log.Warn("skipping incomplete resource entry",
					logging.String("kind", string(kind)),
					logging.String("title", entry.Title),
				)
				continue
			}
			uuid := Normalize(entry.UUID)
			if _, exists := c.byUUID[uuid]; exists {
				log.Warn("duplicate resource uuid, keeping first",
					logging.String("uuid", uuid.Short()),
					logging.String("kind", string(kind)),
				)
				continue
			}
			res := &MediaResource{
				UUID:     uuid,
				RawUUID:  entry.UUID,
				Kind:     kind,
				Path:     entry.Path,
				Title:    entry.Title,
				Duration: entry.Duration,
				State:    StateDiscovered,
			}
			c.byUUID[uuid] = res
			c.order = append(c.order, res)
			if vpd.SelfLinking(kind) {
				// Timeline blocks reference these resources directly.
				c.links[uuid] = uuid
			}
		}

		for _, link := range doc.Links(kind) {
			c.links[Normalize(link.UUID)] = Normalize(link.ResID)
		}
	}

	log.Debug("catalog built",
		logging.Int("resources", len(c.order)),
		logging.Int("links", len(c.links)),
		logging.Int("skipped", c.SkippedEntries),
	)
	return c
}

// Get looks up a resource by normalized UUID.
func (c *Catalog) Get(uuid UUID) (*MediaResource, bool) {
	res, ok := c.byUUID[uuid]
	return res, ok
}

// Resources returns all resources in catalog insertion order.
func (c *Catalog) Resources() []*MediaResource {
	return c.order
}

// Len returns the number of cataloged resources.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Resolve links every timeline block to its owning resource through the
// indirection table, falling back to a direct lookup for references that
// already name a resource. Unresolvable blocks are marked orphaned and
// excluded from everything downstream; resolution never fails the run.
func (c *Catalog) Resolve(blocks []*timeline.Block) ResolveStats {
	var stats ResolveStats
	for _, block := range blocks {
		ref := Normalize(block.RawRef)
		target, ok := c.links[ref]
		if !ok {
			target = ref
		}

		res, found := c.byUUID[target]
		if !found {
			block.Orphaned = true
			stats.Orphaned++
			c.logger.Warn("timeline block references unknown resource",
				logging.String("ref", ref.Short()),
				logging.String("track", block.Track),
			)
			continue
		}

		block.ResourceUUID = string(res.UUID)
		res.Uses = append(res.Uses, block)
		res.State = StateLinked
		stats.Linked++
	}

	for _, res := range c.order {
		if !res.Used() {
			res.State = StateUnused
		}
	}
	return stats
}

// Sequence assigns ordinals 1..N to resources with at least one timeline
// use and returns them in assignment order. Ordering key: earliest start
// offset among uses, then encounter index of the owning track of that
// earliest use, then catalog insertion order. Resources with no use keep
// Seq == 0 and are excluded.
func (c *Catalog) Sequence() []*MediaResource {
	used := make([]*MediaResource, 0, len(c.order))
	for _, res := range c.order {
		if res.Used() {
			used = append(used, res)
		}
	}

	sort.SliceStable(used, func(i, j int) bool {
		a, b := used[i].earliestUse(), used[j].earliestUse()
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.TrackIndex < b.TrackIndex
	})

	for i, res := range used {
		res.Seq = i + 1
		res.State = StateSequenced
	}

	c.logger.Debug("sequence assigned", logging.Int("resources", len(used)))
	return used
}
