package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"vpdkit/internal/config"
	"vpdkit/internal/logging"
	"vpdkit/internal/vpd"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	runID string
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		runID:      uuid.NewString(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger.With(logging.String(logging.FieldRunID, c.runID))
	})
	return c.logger, c.loggerErr
}

// loadProject resolves the source argument to a project and loads its
// manifest. Resolution warnings (several manifests in one folder) are logged,
// not fatal.
func (c *commandContext) loadProject(source string) (vpd.Project, *vpd.Document, error) {
	logger, err := c.ensureLogger()
	if err != nil {
		return vpd.Project{}, nil, err
	}

	project, warning, err := vpd.ResolveProject(source)
	if err != nil {
		return vpd.Project{}, nil, err
	}
	if warning != "" {
		logger.Warn(warning, logging.String("source", source))
	}

	doc, err := vpd.Load(project.ManifestPath)
	if err != nil {
		return vpd.Project{}, nil, err
	}
	return project, doc, nil
}

// withProjectLock serializes mutating runs against the same project. The lock
// file lives in the cache directory so backups never pick it up.
func (c *commandContext) withProjectLock(project vpd.Project, fn func() error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	lockDir := filepath.Join(cfg.Paths.CacheDir, "locks")
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	abs, err := filepath.Abs(project.ManifestPath)
	if err != nil {
		abs = project.ManifestPath
	}
	sum := sha256.Sum256([]byte(abs))
	lock := flock.New(filepath.Join(lockDir, hex.EncodeToString(sum[:8])+".lock"))

	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire project lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("project %s is locked by another vpdkit run", project.Name)
	}
	defer lock.Unlock()

	return fn()
}

func (c *commandContext) indexPath() (string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg.Paths.CacheDir, "searchindex.db"), nil
}
