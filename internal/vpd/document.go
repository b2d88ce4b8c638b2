package vpd

import (
	"time"
)

// Kind identifies a media kind carried by the manifest.
type Kind string

const (
	KindImage Kind = "image"
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

// Kinds returns the media kinds in document order.
func Kinds() []Kind {
	return []Kind{KindImage, KindAudio, KindVideo}
}

// Subdir returns the media directory name used for this kind when organizing.
func (k Kind) Subdir() string {
	switch k {
	case KindImage:
		return "images"
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	default:
		return string(k)
	}
}

// sectionLayout describes where a media kind keeps its resources and links.
// Image and video resources live in the section's flat "scapegoat" array with
// a separate link table in "subitems"; audio entries sit directly in
// "subitems" carrying their own uuid and path, with no indirection.
type sectionLayout struct {
	kind        Kind
	key         string
	flat        bool // resources in "scapegoat", links in "subitems"
	linkGroups  bool // links may nest inside ResourceList group entries
	selfLinking bool // resources referenced by their own uuid
}

var sectionLayouts = []sectionLayout{
	{kind: KindImage, key: "imagelist", flat: true, linkGroups: true},
	{kind: KindAudio, key: "audiolist", selfLinking: true},
	{kind: KindVideo, key: "videolist", flat: true},
}

func layoutFor(kind Kind) (sectionLayout, bool) {
	for _, layout := range sectionLayouts {
		if layout.kind == kind {
			return layout, true
		}
	}
	return sectionLayout{}, false
}

// SelfLinking reports whether resources of this kind are referenced from the
// timeline by their own uuid rather than through the link table.
func SelfLinking(kind Kind) bool {
	layout, ok := layoutFor(kind)
	return ok && layout.selfLinking
}

// ResourceEntry is one record of a media-kind resource array, fields as they
// appear in the document.
type ResourceEntry struct {
	Kind     Kind
	UUID     string
	Path     string
	Title    string
	Duration float64
	HasUUID  bool
	HasPath  bool
}

// LinkEntry is one record of a media-kind link table: UUID is the timeline
// instance identifier, ResID the resource it names.
type LinkEntry struct {
	Kind  Kind
	UUID  string
	ResID string
	Group string
}

// RawBlock is one placed block inside a timeline track.
type RawBlock struct {
	Type     string
	ResID    string
	Start    float64
	Duration float64
	HasResID bool
	HasStart bool
}

// RawTrack is one timeline track with its blocks in encounter order.
type RawTrack struct {
	Title  string
	Type   string
	Blocks []RawBlock
}

// Document is the in-memory manifest aggregate. The raw decoded JSON is
// retained so a rewrite preserves fields this tool does not model.
type Document struct {
	path string
	raw  map[string]any
}

// Path returns the manifest location the document was loaded from.
func (d *Document) Path() string { return d.path }

// Resources returns the resource array of the given kind. Entries missing a
// uuid or path are still returned with the corresponding Has flag unset so
// callers can count skips.
func (d *Document) Resources(kind Kind) []ResourceEntry {
	layout, ok := layoutFor(kind)
	if !ok {
		return nil
	}
	section := getMap(d.raw, layout.key)
	if section == nil {
		return nil
	}

	var items []any
	if layout.flat {
		items = getSlice(section, "scapegoat")
	} else {
		// Self-linking sections keep resources directly in subitems; link
		// records (uuid + resid, no path) are not resources.
		for _, item := range getSlice(section, "subitems") {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if getString(entry, "type") == "link" {
				continue
			}
			items = append(items, item)
		}
	}

	entries := make([]ResourceEntry, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		uuid, hasUUID := entry["uuid"].(string)
		path, hasPath := entry["path"].(string)
		entries = append(entries, ResourceEntry{
			Kind:     kind,
			UUID:     uuid,
			Path:     path,
			Title:    getString(entry, "title"),
			Duration: getNumber(entry, "duration"),
			HasUUID:  hasUUID && uuid != "",
			HasPath:  hasPath && path != "",
		})
	}
	return entries
}

// Links returns the link indirection table of the given kind, including links
// nested inside ResourceList groups (folder imports).
func (d *Document) Links(kind Kind) []LinkEntry {
	layout, ok := layoutFor(kind)
	if !ok || layout.selfLinking {
		return nil
	}
	section := getMap(d.raw, layout.key)
	if section == nil {
		return nil
	}

	var links []LinkEntry
	for _, item := range getSlice(section, "subitems") {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		switch getString(entry, "type") {
		case "link":
			if link, ok := linkFrom(kind, entry, ""); ok {
				links = append(links, link)
			}
		case "ResourceList":
			if !layout.linkGroups {
				continue
			}
			group := getString(entry, "title")
			for _, sub := range getSlice(entry, "subitems") {
				nested, ok := sub.(map[string]any)
				if !ok || getString(nested, "type") != "link" {
					continue
				}
				if link, ok := linkFrom(kind, nested, group); ok {
					links = append(links, link)
				}
			}
		}
	}
	return links
}

func linkFrom(kind Kind, entry map[string]any, group string) (LinkEntry, bool) {
	uuid := getString(entry, "uuid")
	resid := getString(entry, "resid")
	if uuid == "" || resid == "" {
		return LinkEntry{}, false
	}
	return LinkEntry{Kind: kind, UUID: uuid, ResID: resid, Group: group}, true
}

// Tracks returns the timeline tracks in document order.
func (d *Document) Tracks() []RawTrack {
	timeline := getMap(d.raw, "timeline")
	if timeline == nil {
		return nil
	}

	items := getSlice(timeline, "subitems")
	tracks := make([]RawTrack, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		track := RawTrack{
			Title: getString(entry, "title"),
			Type:  getString(entry, "type"),
		}
		for _, blockItem := range getSlice(entry, "subitems") {
			blockEntry, ok := blockItem.(map[string]any)
			if !ok {
				continue
			}
			resid, hasResID := blockEntry["resid"].(string)
			start, hasStart := numberValue(blockEntry["tstart"])
			track.Blocks = append(track.Blocks, RawBlock{
				Type:     getString(blockEntry, "type"),
				ResID:    resid,
				Start:    start,
				Duration: getNumber(blockEntry, "duration"),
				HasResID: hasResID && resid != "",
				HasStart: hasStart,
			})
		}
		tracks = append(tracks, track)
	}
	return tracks
}

// SetResourcePath updates the path (and, when title is non-empty, the title)
// of the resource entry whose raw uuid equals rawUUID in the given kind's
// array. It reports whether an entry was updated.
func (d *Document) SetResourcePath(kind Kind, rawUUID, path, title string) bool {
	layout, ok := layoutFor(kind)
	if !ok {
		return false
	}
	section := getMap(d.raw, layout.key)
	if section == nil {
		return false
	}

	var items []any
	if layout.flat {
		items = getSlice(section, "scapegoat")
	} else {
		items = getSlice(section, "subitems")
	}

	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if uuid, _ := entry["uuid"].(string); uuid != rawUUID {
			continue
		}
		if !layout.flat && getString(entry, "type") == "link" {
			continue
		}
		entry["path"] = path
		if title != "" {
			entry["title"] = title
		}
		return true
	}
	return false
}

// SetProjectFile points projinfo.projectfile at the rewritten manifest
// location. Documents without a projinfo section are left alone.
func (d *Document) SetProjectFile(path string) {
	projinfo := getMap(d.raw, "projinfo")
	if projinfo == nil {
		return
	}
	projinfo["projectfile"] = path
}

// TouchSaveTime refreshes projinfo.savetime to the given moment.
func (d *Document) TouchSaveTime(now time.Time) {
	projinfo := getMap(d.raw, "projinfo")
	if projinfo == nil {
		return
	}
	projinfo["savetime"] = map[string]any{
		"year":   now.Year(),
		"month":  int(now.Month()),
		"day":    now.Day(),
		"hour":   now.Hour(),
		"minute": now.Minute(),
		"second": now.Second(),
	}
}

func getMap(m map[string]any, key string) map[string]any {
	value, ok := m[key].(map[string]any)
	if !ok {
		return nil
	}
	return value
}

func getSlice(m map[string]any, key string) []any {
	value, ok := m[key].([]any)
	if !ok {
		return nil
	}
	return value
}

func getString(m map[string]any, key string) string {
	value, _ := m[key].(string)
	return value
}

func getNumber(m map[string]any, key string) float64 {
	value, _ := numberValue(m[key])
	return value
}

func numberValue(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	default:
		return 0, false
	}
}
