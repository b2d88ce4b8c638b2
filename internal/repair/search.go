package repair

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"vpdkit/internal/faults"
	"vpdkit/internal/logging"
)

// Searcher locates candidate files for a missing resource. Matching is by
// basename first; stem matching is the weaker fallback for files that changed
// extension.
type Searcher interface {
	FindByName(ctx context.Context, name string) ([]string, error)
	FindByStem(ctx context.Context, stem string) ([]string, error)
}

// FoldName canonicalizes a filename for comparison: NFC so macOS-decomposed
// names match their composed spellings, then case folded.
func FoldName(name string) string {
	return strings.ToLower(norm.NFC.String(name))
}

// FSSearch walks one or more roots on every lookup. It needs no preparation
// and always reflects the live filesystem; large trees are better served by
// the prebuilt index.
type FSSearch struct {
	roots  []string
	logger *slog.Logger
}

func NewFSSearch(roots []string, logger *slog.Logger) *FSSearch {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &FSSearch{roots: roots, logger: logger}
}

func (s *FSSearch) FindByName(ctx context.Context, name string) ([]string, error) {
	want := FoldName(name)
	return s.scan(ctx, func(base string) bool {
		return FoldName(base) == want
	})
}

func (s *FSSearch) FindByStem(ctx context.Context, stem string) ([]string, error) {
	want := FoldName(stem)
	return s.scan(ctx, func(base string) bool {
		return FoldName(strings.TrimSuffix(base, filepath.Ext(base))) == want
	})
}

func (s *FSSearch) scan(ctx context.Context, match func(base string) bool) ([]string, error) {
	var hits []string
	for _, root := range s.roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable subtrees are logged and skipped, not fatal.
				s.logger.Debug("search skipping unreadable path",
					logging.String("path", path),
					logging.Error(err))
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if cerr := ctx.Err(); cerr != nil {
				return cerr
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			if match(d.Name()) {
				hits = append(hits, path)
			}
			return nil
		})
		if err != nil {
			return nil, faults.Wrap(faults.ErrIO, "repair", "search", "walk search root", err)
		}
	}
	return hits, nil
}
