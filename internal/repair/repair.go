package repair

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"vpdkit/internal/catalog"
	"vpdkit/internal/config"
	"vpdkit/internal/faults"
	"vpdkit/internal/fileutil"
	"vpdkit/internal/logging"
	"vpdkit/internal/vpd"
)

// Outcome classifies the resolution of one missing resource.
type Outcome string

const (
	OutcomeIntact    Outcome = "intact"
	OutcomeFound     Outcome = "found"
	OutcomeMissing   Outcome = "missing"
	OutcomeAmbiguous Outcome = "ambiguous"
)

// Resolution is the answer for one resource. Exactly one candidate resolves
// it; several candidates are reported, never guessed among.
type Resolution struct {
	Outcome    Outcome
	Path       string
	Candidates []string
	ViaStem    bool
}

// Finding pairs a resource with its resolution for reporting.
type Finding struct {
	Resource   *catalog.MediaResource
	Resolution Resolution
}

// Options selects the behavior of a single repair run.
type Options struct {
	SearchRoots []string
	DryRun      bool
	NoBackup    bool
}

// Summary reports the run's totals.
type Summary struct {
	Total      int
	Intact     int
	Repaired   int
	Missing    int
	Ambiguous  int
	BackupPath string
	DryRun     bool
}

// Repairer verifies that every cataloged resource exists on disk and patches
// the manifest for files that moved.
type Repairer struct {
	cfg    *config.Config
	logger *slog.Logger
	now    func() time.Time
}

func New(cfg *config.Config, logger *slog.Logger) *Repairer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Repairer{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "repair"),
		now:    time.Now,
	}
}

// Run verifies and repairs the loaded project. The manifest is rewritten in
// place, after a backup, only when at least one resource was resolved and the
// run is live.
func (r *Repairer) Run(ctx context.Context, project vpd.Project, doc *vpd.Document, searcher Searcher, opts Options) (*Summary, []Finding, error) {
	cat := catalog.FromDocument(doc, r.logger)
	summary := &Summary{Total: cat.Len(), DryRun: opts.DryRun}
	findings := make([]Finding, 0, cat.Len())

	r.logger.Debug("repair run starting",
		logging.Int("resources", cat.Len()),
		logging.Int("search_roots", len(opts.SearchRoots)),
		logging.Bool("dry_run", opts.DryRun))

	for _, res := range cat.Resources() {
		if err := ctx.Err(); err != nil {
			return summary, findings, faults.Wrap(faults.ErrIO, "repair", "verify", "run interrupted", err)
		}
		resolution, err := r.resolve(ctx, res, searcher)
		if err != nil {
			return summary, findings, err
		}
		findings = append(findings, Finding{Resource: res, Resolution: resolution})

		switch resolution.Outcome {
		case OutcomeIntact:
			summary.Intact++
			res.State = catalog.StateVerified
		case OutcomeFound:
			summary.Repaired++
			res.State = catalog.StateResolved
			if !opts.DryRun {
				doc.SetResourcePath(res.Kind, res.RawUUID, resolution.Path, res.Title)
			}
			r.logger.Info("resource resolved",
				logging.String(logging.FieldEvent, "resolve"),
				logging.String("uuid", res.UUID.Short()),
				logging.String("old", res.Path),
				logging.String("new", resolution.Path),
				logging.Bool("stem_match", resolution.ViaStem))
		case OutcomeAmbiguous:
			summary.Ambiguous++
			res.State = catalog.StateAmbiguous
			r.logger.Warn("multiple candidates, not guessing",
				logging.String("uuid", res.UUID.Short()),
				logging.String("name", filepath.Base(res.Path)),
				logging.Int("candidates", len(resolution.Candidates)))
		default:
			summary.Missing++
			res.State = catalog.StateMissing
			r.logger.Warn("resource missing",
				logging.String("uuid", res.UUID.Short()),
				logging.String("path", res.Path))
		}
	}

	if summary.Repaired == 0 || opts.DryRun {
		return summary, findings, nil
	}

	if !opts.NoBackup {
		backupPath := project.BackupPath(r.now())
		if err := fileutil.CopyTree(project.BackupRoot(), backupPath); err != nil {
			return summary, findings, faults.Wrap(faults.ErrIO, "repair", "backup", "copy project folder", err)
		}
		summary.BackupPath = backupPath
		r.logger.Info("project backed up",
			logging.String(logging.FieldEvent, "backup"),
			logging.String("path", backupPath))
	}

	doc.TouchSaveTime(r.now())
	if err := doc.Save(project.ManifestPath); err != nil {
		if summary.BackupPath != "" {
			r.logger.Error("manifest write failed, original preserved in backup",
				logging.String("backup", summary.BackupPath))
		}
		return summary, findings, err
	}

	return summary, findings, nil
}

// Verify reports findings without ever touching the manifest, search roots,
// or disk beyond stat calls.
func (r *Repairer) Verify(ctx context.Context, doc *vpd.Document) (*Summary, []Finding, error) {
	cat := catalog.FromDocument(doc, r.logger)
	summary := &Summary{Total: cat.Len(), DryRun: true}
	findings := make([]Finding, 0, cat.Len())

	for _, res := range cat.Resources() {
		if err := ctx.Err(); err != nil {
			return summary, findings, faults.Wrap(faults.ErrIO, "repair", "verify", "run interrupted", err)
		}
		resolution := Resolution{Outcome: OutcomeMissing}
		if _, err := os.Stat(res.Path); err == nil {
			resolution.Outcome = OutcomeIntact
			summary.Intact++
			res.State = catalog.StateVerified
		} else {
			summary.Missing++
			res.State = catalog.StateMissing
		}
		findings = append(findings, Finding{Resource: res, Resolution: resolution})
	}
	return summary, findings, nil
}

func (r *Repairer) resolve(ctx context.Context, res *catalog.MediaResource, searcher Searcher) (Resolution, error) {
	if res.Path != "" {
		if _, err := os.Stat(res.Path); err == nil {
			return Resolution{Outcome: OutcomeIntact, Path: res.Path}, nil
		}
	}

	name := filepath.Base(res.Path)
	candidates, err := searcher.FindByName(ctx, name)
	if err != nil {
		return Resolution{}, err
	}
	candidates = existingOnly(candidates)

	viaStem := false
	if len(candidates) == 0 && r.cfg.Repair.StemFallback {
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if stem != "" && stem != name {
			candidates, err = searcher.FindByStem(ctx, stem)
			if err != nil {
				return Resolution{}, err
			}
			candidates = existingOnly(candidates)
			viaStem = true
		}
	}

	switch len(candidates) {
	case 0:
		return Resolution{Outcome: OutcomeMissing}, nil
	case 1:
		return Resolution{Outcome: OutcomeFound, Path: candidates[0], ViaStem: viaStem}, nil
	default:
		sort.Strings(candidates)
		return Resolution{Outcome: OutcomeAmbiguous, Candidates: candidates, ViaStem: viaStem}, nil
	}
}

// existingOnly drops candidates that vanished since they were indexed and
// dedupes paths that several roots reached.
func existingOnly(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	kept := paths[:0]
	for _, p := range paths {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			kept = append(kept, p)
		}
	}
	return kept
}
