// Package searchindex maintains a SQLite index of filenames under one or more
// search roots, so repeated repair runs over large media libraries do not walk
// the filesystem for every missing resource. Lookups satisfy the repair
// searcher contract; callers re-verify hits against the live filesystem.
package searchindex

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"vpdkit/internal/faults"
	"vpdkit/internal/logging"
	"vpdkit/internal/repair"
)

const schema = `
CREATE TABLE IF NOT EXISTS files (
    path TEXT PRIMARY KEY,
    name_fold TEXT NOT NULL,
    stem_fold TEXT NOT NULL,
    size INTEGER NOT NULL,
    indexed_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_files_name ON files(name_fold);
CREATE INDEX IF NOT EXISTS idx_files_stem ON files(stem_fold);
`

// Index is a persistent basename index backed by a single SQLite file.
type Index struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens or creates the index database at path and ensures the schema.
func Open(path string, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, faults.Wrap(faults.ErrPersistence, "searchindex", "open", "create index directory", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, faults.Wrap(faults.ErrPersistence, "searchindex", "open", "open index database", err)
	}
	// SQLite serializes writers; a single connection avoids lock churn.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, faults.Wrap(faults.ErrPersistence, "searchindex", "open", "apply index schema", err)
	}

	return &Index{db: db, logger: logging.NewComponentLogger(logger, "searchindex")}, nil
}

func (ix *Index) Close() error {
	return ix.db.Close()
}

// Build drops the current contents and reindexes every regular file under the
// given roots. It returns the number of files indexed.
func (ix *Index) Build(ctx context.Context, roots []string) (int, error) {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, faults.Wrap(faults.ErrPersistence, "searchindex", "build", "begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM files`); err != nil {
		return 0, faults.Wrap(faults.ErrPersistence, "searchindex", "build", "clear index", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO files (path, name_fold, stem_fold, size, indexed_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(path) DO UPDATE SET
            name_fold = excluded.name_fold,
            stem_fold = excluded.stem_fold,
            size = excluded.size,
            indexed_at = excluded.indexed_at`)
	if err != nil {
		return 0, faults.Wrap(faults.ErrPersistence, "searchindex", "build", "prepare insert", err)
	}
	defer stmt.Close()

	indexedAt := time.Now().UTC().Format(time.RFC3339)
	total := 0
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				ix.logger.Debug("index skipping unreadable path",
					logging.String("path", path),
					logging.Error(walkErr))
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
			info, err := d.Info()
			if err != nil {
				return nil
			}
			name := d.Name()
			stem := strings.TrimSuffix(name, filepath.Ext(name))
			if _, err := stmt.ExecContext(ctx, path, repair.FoldName(name), repair.FoldName(stem), info.Size(), indexedAt); err != nil {
				return err
			}
			total++
			return nil
		})
		if err != nil {
			return 0, faults.Wrap(faults.ErrPersistence, "searchindex", "build", "index search root", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, faults.Wrap(faults.ErrPersistence, "searchindex", "build", "commit index", err)
	}

	ix.logger.Info("index rebuilt",
		logging.Int("files", total),
		logging.Int("roots", len(roots)))
	return total, nil
}

// FindByName returns every indexed path whose basename matches name under
// case and Unicode-normalization folding.
func (ix *Index) FindByName(ctx context.Context, name string) ([]string, error) {
	return ix.query(ctx, `SELECT path FROM files WHERE name_fold = ? ORDER BY path`, repair.FoldName(name))
}

// FindByStem matches on the basename with its extension stripped.
func (ix *Index) FindByStem(ctx context.Context, stem string) ([]string, error) {
	return ix.query(ctx, `SELECT path FROM files WHERE stem_fold = ? ORDER BY path`, repair.FoldName(stem))
}

// Count reports how many files the index currently holds.
func (ix *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := ix.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&n); err != nil {
		return 0, faults.Wrap(faults.ErrPersistence, "searchindex", "count", "count indexed files", err)
	}
	return n, nil
}

func (ix *Index) query(ctx context.Context, stmt, arg string) ([]string, error) {
	rows, err := ix.db.QueryContext(ctx, stmt, arg)
	if err != nil {
		return nil, faults.Wrap(faults.ErrPersistence, "searchindex", "lookup", "query index", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, faults.Wrap(faults.ErrPersistence, "searchindex", "lookup", "scan index row", err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Wrap(faults.ErrPersistence, "searchindex", "lookup", "iterate index rows", err)
	}
	return paths, nil
}
