package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/dashloom/internal/dashboard"
	"github.com/KaramelBytes/dashloom/internal/datasource"
	"github.com/KaramelBytes/dashloom/internal/utils"
)

const (
	dashboardsFile = "dashboards.json"
	sourcesFile    = "sources.json"
)

// session binds one workspace directory to a pair of stores. One workspace
// is one user session; commands load it, mutate, and save.
type session struct {
	dir        string
	sources    *datasource.Store
	dashboards *dashboard.Store
}

// openSession loads the workspace state from disk. Missing files mean a
// fresh session, not an error.
func openSession() (*session, error) {
	if cfg == nil || cfg.Workspace == "" {
		return nil, errors.New("workspace directory not configured")
	}
	s := &session{dir: cfg.Workspace}
	s.sources = datasource.NewStore(nil)
	s.dashboards = dashboard.NewStore(s.sources)
	s.sources.SetDependencyChecker(s.dashboards)

	if b, err := os.ReadFile(filepath.Join(s.dir, sourcesFile)); err == nil {
		if _, err := s.sources.Import(b); err != nil {
			return nil, fmt.Errorf("load %s: %w", sourcesFile, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", sourcesFile, err)
	}

	if b, err := os.ReadFile(filepath.Join(s.dir, dashboardsFile)); err == nil {
		if _, err := s.dashboards.Import(b); err != nil {
			return nil, fmt.Errorf("load %s: %w", dashboardsFile, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", dashboardsFile, err)
	}
	return s, nil
}

// save persists both stores atomically (per file).
func (s *session) save() error {
	if err := utils.EnsureDir(s.dir); err != nil {
		return fmt.Errorf("ensure workspace dir: %w", err)
	}
	b, err := s.sources.Export()
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(filepath.Join(s.dir, sourcesFile), b); err != nil {
		return fmt.Errorf("write %s: %w", sourcesFile, err)
	}
	b, err = s.dashboards.Export()
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(filepath.Join(s.dir, dashboardsFile), b); err != nil {
		return fmt.Errorf("write %s: %w", dashboardsFile, err)
	}
	return nil
}
