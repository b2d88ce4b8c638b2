package vpd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vpdkit/internal/faults"
	"vpdkit/internal/fileutil"
)

// Load reads and validates a manifest. Unreadable or syntactically invalid
// files surface as faults.ErrLoad; a document missing required top-level
// sections as faults.ErrSchema.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrLoad, "load", "read manifest", path, err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, faults.Wrap(faults.ErrLoad, "load", "parse manifest", "invalid JSON", err)
	}

	doc := &Document{path: path, raw: raw}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *Document) validate() error {
	if getMap(d.raw, "timeline") == nil {
		return faults.Wrap(faults.ErrSchema, "load", "validate manifest", "missing timeline section", nil)
	}
	for _, layout := range sectionLayouts {
		if getMap(d.raw, layout.key) != nil {
			return nil
		}
	}
	return faults.Wrap(faults.ErrSchema, "load", "validate manifest", "no media sections present", nil)
}

// Save writes the document to path atomically, using the same four-space
// indentation the editor produces.
func (d *Document) Save(path string) error {
	data, err := json.MarshalIndent(d.raw, "", "    ")
	if err != nil {
		return faults.Wrap(faults.ErrPersistence, "persist", "encode manifest", path, err)
	}
	if err := fileutil.WriteFileAtomic(filepath.Dir(path), filepath.Base(path), data); err != nil {
		return faults.Wrap(faults.ErrPersistence, "persist", "write manifest", path, err)
	}
	return nil
}

// Project identifies a VideoProc Vlogger project on disk: the manifest, the
// .dvp folder holding it (empty when the manifest sits outside one), and the
// project name used for target and backup naming.
type Project struct {
	ManifestPath string
	Folder       string
	Name         string
}

// ResolveProject accepts either a .dvp project folder or a .vpd manifest path
// and locates the manifest. A folder with several manifests yields the first
// in lexical order; a folder with none is an error.
func ResolveProject(source string) (Project, string, error) {
	info, err := os.Stat(source)
	if err != nil {
		return Project{}, "", faults.Wrap(faults.ErrLoad, "load", "resolve project", source, err)
	}

	switch {
	case info.IsDir() && strings.EqualFold(filepath.Ext(source), ".dvp"):
		matches, err := filepath.Glob(filepath.Join(source, "*.vpd"))
		if err != nil {
			return Project{}, "", faults.Wrap(faults.ErrLoad, "load", "scan project folder", source, err)
		}
		if len(matches) == 0 {
			return Project{}, "", faults.Wrap(faults.ErrLoad, "load", "resolve project", fmt.Sprintf("no .vpd file in %s", source), nil)
		}
		var warning string
		if len(matches) > 1 {
			warning = fmt.Sprintf("multiple .vpd files in %s, using %s", source, filepath.Base(matches[0]))
		}
		name := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
		return Project{ManifestPath: matches[0], Folder: source, Name: name}, warning, nil

	case !info.IsDir() && strings.EqualFold(filepath.Ext(source), ".vpd"):
		folder := ""
		parent := filepath.Dir(source)
		if strings.EqualFold(filepath.Ext(parent), ".dvp") {
			folder = parent
		}
		name := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
		if folder != "" {
			name = strings.TrimSuffix(filepath.Base(folder), filepath.Ext(folder))
		}
		return Project{ManifestPath: source, Folder: folder, Name: name}, "", nil

	default:
		return Project{}, "", faults.Wrap(faults.ErrLoad, "load", "resolve project", fmt.Sprintf("%s is neither a .dvp folder nor a .vpd file", source), nil)
	}
}

// BackupRoot returns the folder whose copy serves as the pre-mutation backup:
// the .dvp folder when the project has one, otherwise the manifest's parent.
func (p Project) BackupRoot() string {
	if p.Folder != "" {
		return p.Folder
	}
	return filepath.Dir(p.ManifestPath)
}

// BackupPath computes the timestamped sibling path a project backup is
// written to.
func (p Project) BackupPath(now time.Time) string {
	root := p.BackupRoot()
	stem := strings.TrimSuffix(filepath.Base(root), filepath.Ext(root))
	name := fmt.Sprintf("%s.backup.%s.dvp", stem, now.Format("20060102_150405"))
	return filepath.Join(filepath.Dir(root), name)
}
