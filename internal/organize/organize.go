package organize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vpdkit/internal/catalog"
	"vpdkit/internal/config"
	"vpdkit/internal/faults"
	"vpdkit/internal/fileutil"
	"vpdkit/internal/logging"
	"vpdkit/internal/timeline"
	"vpdkit/internal/vpd"
)

// Options selects the target of a single organize run.
type Options struct {
	TargetDir string
	// MediaRoot overrides the directory prefix written into the manifest.
	// Empty means paths are rooted at TargetDir.
	MediaRoot string
	DryRun    bool
	NoBackup  bool
}

// Summary reports what an organize run did (or, in dry-run mode, would do).
type Summary struct {
	TotalResources int
	Used           int
	Unused         int
	Orphaned       int
	Copied         int
	Moved          int
	Errored        int
	Collisions     int
	UnusedCopied   int
	BackupPath     string
	ManifestPath   string
	DryRun         bool
}

// Organizer renumbers a project's media by timeline order and rewrites the
// manifest to match.
type Organizer struct {
	cfg    *config.Config
	logger *slog.Logger
	now    func() time.Time
}

func New(cfg *config.Config, logger *slog.Logger) *Organizer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Organizer{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "organize"),
		now:    time.Now,
	}
}

// Run executes one organize pass over the loaded project. Dry runs build the
// identical plan but touch nothing on disk.
func (o *Organizer) Run(ctx context.Context, project vpd.Project, doc *vpd.Document, opts Options) (*Summary, *Plan, error) {
	cat := catalog.FromDocument(doc, o.logger)
	blocks, blockStats := timeline.Extract(doc, o.logger)
	resolveStats := cat.Resolve(blocks)
	sequenced := cat.Sequence()

	mediaDir := filepath.Join(opts.TargetDir, project.Name+o.cfg.Organize.MediaDirSuffix)
	manifestRoot := opts.TargetDir
	if opts.MediaRoot != "" {
		manifestRoot = opts.MediaRoot
	}
	manifestMediaRoot := filepath.Join(manifestRoot, project.Name+o.cfg.Organize.MediaDirSuffix)
	plan := Build(sequenced, Layout{
		MediaDir:     mediaDir,
		ManifestRoot: manifestMediaRoot,
	})

	summary := &Summary{
		TotalResources: cat.Len(),
		Used:           len(sequenced),
		Unused:         cat.Len() - len(sequenced),
		Orphaned:       resolveStats.Orphaned,
		Collisions:     plan.Collisions,
		DryRun:         opts.DryRun,
	}

	o.logger.Info("catalog resolved",
		logging.Int("resources", cat.Len()),
		logging.Int("tracks", blockStats.Tracks),
		logging.Int("blocks", blockStats.Blocks),
		logging.Int("sequenced", len(sequenced)),
		logging.Int("orphaned", resolveStats.Orphaned))

	if opts.DryRun {
		o.previewPlan(cat, plan, mediaDir)
		summary.ManifestPath = o.manifestDest(project, opts)
		return summary, plan, nil
	}

	dvpDir := filepath.Dir(o.manifestDest(project, opts))
	if err := o.createTargetDirs(dvpDir, mediaDir); err != nil {
		return summary, plan, err
	}

	if !opts.NoBackup {
		backupPath, err := o.backupProject(project)
		if err != nil {
			return summary, plan, err
		}
		summary.BackupPath = backupPath
	}

	if err := o.executePlan(ctx, plan, summary, doc); err != nil {
		return summary, plan, err
	}

	if o.cfg.Organize.CopyUnused {
		if err := o.relocateUnused(ctx, cat, mediaDir, manifestMediaRoot, summary, doc); err != nil {
			return summary, plan, err
		}
	}

	manifestDest := o.manifestDest(project, opts)
	doc.SetProjectFile(manifestDest)
	doc.TouchSaveTime(o.now())
	if err := doc.Save(manifestDest); err != nil {
		if summary.BackupPath != "" {
			o.logger.Error("manifest write failed, original preserved in backup",
				logging.String("backup", summary.BackupPath))
		}
		return summary, plan, err
	}
	summary.ManifestPath = manifestDest

	if err := o.copySidecars(project, dvpDir); err != nil {
		o.logger.Warn("sidecar copy incomplete", logging.Error(err))
	}

	if !o.cfg.Organize.KeepBackup && summary.BackupPath != "" {
		if err := os.RemoveAll(summary.BackupPath); err != nil {
			o.logger.Warn("backup removal failed", logging.Error(err))
		} else {
			summary.BackupPath = ""
		}
	}

	return summary, plan, nil
}

func (o *Organizer) manifestDest(project vpd.Project, opts Options) string {
	return filepath.Join(opts.TargetDir, project.Name+".dvp", filepath.Base(project.ManifestPath))
}

func (o *Organizer) createTargetDirs(dvpDir, mediaDir string) error {
	dirs := []string{dvpDir}
	for _, kind := range vpd.Kinds() {
		dirs = append(dirs, filepath.Join(mediaDir, kind.Subdir()))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return faults.Wrap(faults.ErrIO, "organize", "prepare", "create target directory", err)
		}
	}
	return nil
}

func (o *Organizer) backupProject(project vpd.Project) (string, error) {
	backupPath := project.BackupPath(o.now())
	if err := fileutil.CopyTree(project.BackupRoot(), backupPath); err != nil {
		return "", faults.Wrap(faults.ErrIO, "organize", "backup", "copy project folder", err)
	}
	o.logger.Info("project backed up",
		logging.String(logging.FieldEvent, "backup"),
		logging.String("path", backupPath))
	return backupPath, nil
}

func (o *Organizer) executePlan(ctx context.Context, plan *Plan, summary *Summary, doc *vpd.Document) error {
	for i := range plan.Entries {
		entry := &plan.Entries[i]
		if err := ctx.Err(); err != nil {
			return faults.Wrap(faults.ErrIO, "organize", "relocate", "run interrupted", err)
		}
		if entry.Status != StatusPending {
			// Collisions are already counted by the planner.
			o.logger.Error("destination collision",
				logging.String("source", entry.Source),
				logging.String("dest", entry.Dest),
				logging.String("detail", entry.Note))
			continue
		}

		if _, err := os.Stat(entry.Source); err != nil {
			entry.Status = StatusErrored
			entry.Note = "source file missing"
			entry.Resource.State = catalog.StateErrored
			summary.Errored++
			o.logger.Error("source file missing",
				logging.String("uuid", entry.Resource.UUID.Short()),
				logging.String("path", entry.Source))
			continue
		}

		var err error
		if o.cfg.Organize.MoveFiles {
			err = fileutil.MoveFile(entry.Source, entry.Dest)
		} else {
			err = fileutil.CopyFileVerified(entry.Source, entry.Dest)
		}
		if err != nil {
			entry.Status = StatusErrored
			entry.Note = err.Error()
			entry.Resource.State = catalog.StateErrored
			summary.Errored++
			o.logger.Error("relocation failed",
				logging.String("source", entry.Source),
				logging.String("dest", entry.Dest),
				logging.Error(err))
			continue
		}

		if o.cfg.Organize.MoveFiles {
			entry.Status = StatusMoved
			entry.Resource.State = catalog.StateMoved
			summary.Moved++
		} else {
			entry.Status = StatusCopied
			entry.Resource.State = catalog.StateCopied
			summary.Copied++
		}

		title := stem(filepath.Base(entry.Dest))
		doc.SetResourcePath(entry.Resource.Kind, entry.Resource.RawUUID, entry.ManifestPath, title)

		o.logger.Info("resource relocated",
			logging.String(logging.FieldEvent, "relocate"),
			logging.String("uuid", entry.Resource.UUID.Short()),
			logging.Int("seq", entry.Seq),
			logging.String("dest", entry.Dest))
	}
	return nil
}

// relocateUnused copies resources no timeline block references into
// unused/{kind}/ under the media directory, keeping the original filename and
// tagging the manifest title so they stand out in the library panel.
func (o *Organizer) relocateUnused(ctx context.Context, cat *catalog.Catalog, mediaDir, manifestMediaRoot string, summary *Summary, doc *vpd.Document) error {
	for _, res := range cat.Resources() {
		if res.Used() || res.State == catalog.StateErrored {
			continue
		}
		if err := ctx.Err(); err != nil {
			return faults.Wrap(faults.ErrIO, "organize", "unused", "run interrupted", err)
		}

		name := filepath.Base(res.Path)
		dest := filepath.Join(mediaDir, "unused", res.Kind.Subdir(), name)
		if _, err := os.Stat(res.Path); err != nil {
			o.logger.Warn("unused resource missing on disk",
				logging.String("uuid", res.UUID.Short()),
				logging.String("path", res.Path))
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return faults.Wrap(faults.ErrIO, "organize", "unused", "create unused directory", err)
		}
		if err := fileutil.CopyFileVerified(res.Path, dest); err != nil {
			o.logger.Warn("unused resource copy failed",
				logging.String("path", res.Path),
				logging.Error(err))
			continue
		}

		manifestPath := filepath.Join(manifestMediaRoot, "unused", res.Kind.Subdir(), name)
		title := "[unused] " + stem(name)
		doc.SetResourcePath(res.Kind, res.RawUUID, manifestPath, title)
		summary.UnusedCopied++

		o.logger.Info("unused resource set aside",
			logging.String(logging.FieldEvent, "unused"),
			logging.String("uuid", res.UUID.Short()),
			logging.String("dest", dest))
	}
	return nil
}

// copySidecars carries non-manifest files living next to the manifest (caches,
// thumbnails, autosaves) into the new project folder. Backups are left behind.
func (o *Organizer) copySidecars(project vpd.Project, dvpDir string) error {
	if project.Folder == "" {
		return nil
	}
	entries, err := os.ReadDir(project.Folder)
	if err != nil {
		return faults.Wrap(faults.ErrIO, "organize", "sidecar", "read project folder", err)
	}
	var firstErr error
	for _, entry := range entries {
		name := entry.Name()
		if strings.EqualFold(filepath.Ext(name), ".vpd") || strings.Contains(name, ".backup.") {
			continue
		}
		src := filepath.Join(project.Folder, name)
		dst := filepath.Join(dvpDir, name)
		if entry.IsDir() {
			err = fileutil.CopyTree(src, dst)
		} else {
			err = fileutil.CopyFile(src, dst)
		}
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("copy sidecar %s: %w", name, err)
		}
	}
	return firstErr
}

func (o *Organizer) previewPlan(cat *catalog.Catalog, plan *Plan, mediaDir string) {
	for _, entry := range plan.Entries {
		if entry.Status == StatusSkipped {
			o.logger.Warn("would skip collision",
				logging.String("source", entry.Source),
				logging.String("dest", entry.Dest))
			continue
		}
		verb := "copy"
		if o.cfg.Organize.MoveFiles {
			verb = "move"
		}
		o.logger.Info("would "+verb,
			logging.Int("seq", entry.Seq),
			logging.String("source", entry.Source),
			logging.String("dest", entry.Dest))
	}
	if o.cfg.Organize.CopyUnused {
		for _, res := range cat.Resources() {
			if res.Used() {
				continue
			}
			o.logger.Info("would set aside unused",
				logging.String("uuid", res.UUID.Short()),
				logging.String("dest", filepath.Join(mediaDir, "unused", res.Kind.Subdir(), filepath.Base(res.Path))))
		}
	}
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
