package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/agentic-research/switch/internal/schema"
)

var errNoSchema = errors.New("no schema given and none opened before; pass --schema")

// schemaFile resolves --schema. A bare name is looked up in the configs
// directory; without the flag the last opened config is used.
func schemaFile() (string, error) {
	p := schemaPath
	if p == "" {
		last, err := store.LastOpened()
		if err != nil {
			return "", err
		}
		if last == "" {
			return "", errNoSchema
		}
		return last, nil
	}
	if !strings.ContainsAny(p, `/\`) {
		if _, err := os.Stat(p); err != nil {
			p = filepath.Join(appCfg.ConfigsDir, p)
		}
	}
	if filepath.Ext(p) == "" {
		p += ".json"
	}
	return filepath.Abs(p)
}

// openSchema loads the selected config and records it as last opened.
func openSchema() (*schema.Config, string, error) {
	path, err := schemaFile()
	if err != nil {
		return nil, "", err
	}
	cfg, err := schema.LoadExisting(path)
	if err != nil {
		return nil, "", err
	}
	if err := store.SetLastOpened(path); err != nil {
		logger.WithError(err).Warn("could not record last opened config")
	}
	logger.WithField("config", schema.NameFromPath(path)).Debug("opened schema")
	return cfg, path, nil
}

// hostFS is the real filesystem rooted at "/". Paths given to it must be
// absolute.
func hostFS() billy.Filesystem {
	return osfs.New("/")
}

func absPath(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("empty path")
	}
	return filepath.Abs(p)
}

// absProject makes the project path of cfg absolute for use with hostFS.
func absProject(cfg *schema.Config) error {
	if cfg.ProjectPath == "" {
		return nil
	}
	p, err := filepath.Abs(filepath.FromSlash(cfg.ProjectPath))
	if err != nil {
		return err
	}
	cfg.ProjectPath = filepath.ToSlash(p)
	return nil
}
