// Package materialize creates the folders of a resolved schema on a
// filesystem. It only ever creates directories: existing ones are left as
// they are and nothing is deleted, renamed or written.
package materialize

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	billy "github.com/go-git/go-billy/v5"
	"github.com/sirupsen/logrus"

	"github.com/agentic-research/switch/api"
	"github.com/agentic-research/switch/internal/logging"
	"github.com/agentic-research/switch/internal/resolve"
	"github.com/agentic-research/switch/internal/schema"
)

// DefaultPerm is the mode of created directories.
const DefaultPerm os.FileMode = 0o755

// Materializer creates schema folders on a billy filesystem.
type Materializer struct {
	fs   billy.Filesystem
	log  logrus.FieldLogger
	perm os.FileMode
}

// Option configures a Materializer.
type Option func(*Materializer)

// WithLogger sets the logger used for debug tracing.
func WithLogger(l logrus.FieldLogger) Option {
	return func(m *Materializer) { m.log = l }
}

// WithPerm sets the mode of created directories.
func WithPerm(perm os.FileMode) Option {
	return func(m *Materializer) { m.perm = perm }
}

// New returns a Materializer writing to fsys.
func New(fsys billy.Filesystem, opts ...Option) *Materializer {
	m := &Materializer{fs: fsys, log: logging.Discard(), perm: DefaultPerm}
	for _, o := range opts {
		o(m)
	}
	return m
}

// AssetPath returns projectPath/configRoot/assetType/assetName. The asset
// type and name must each be a single folder name.
func AssetPath(cfg *schema.Config, assetType, assetName string) (string, error) {
	t, err := schema.CleanName(assetType)
	if err != nil {
		return "", fmt.Errorf("asset type: %w", err)
	}
	n, err := schema.CleanName(assetName)
	if err != nil {
		return "", fmt.Errorf("asset name: %w", err)
	}
	return filepath.Join(cfg.RootPath(), t, n), nil
}

// CreateAsset resolves the base folders of cfg and creates them under the
// asset's folder. It returns the asset folder path. A reference cycle is
// reported before anything is created.
func (m *Materializer) CreateAsset(cfg *schema.Config, assetType, assetName string) (string, error) {
	dir, err := AssetPath(cfg, assetType, assetName)
	if err != nil {
		return "", err
	}
	nodes, err := resolve.New(cfg, resolve.WithLogger(m.log)).BaseFolders()
	if err != nil {
		return "", err
	}
	m.log.WithFields(logrus.Fields{
		"type":  assetType,
		"asset": assetName,
		"path":  dir,
	}).Debug("creating asset folders")
	if err := m.Materialize(dir, nodes); err != nil {
		return "", err
	}
	return dir, nil
}

// Materialize creates dir and one folder per node below it. Leaf markers
// are skipped. Folders created before a failure are kept.
func (m *Materializer) Materialize(dir string, nodes []api.Node) error {
	if err := m.mkdir(dir); err != nil {
		return err
	}
	return m.create(dir, nodes)
}

func (m *Materializer) create(dir string, nodes []api.Node) error {
	for _, n := range nodes {
		if schema.IsLeafMarker(n.Name) {
			continue
		}
		p := filepath.Join(dir, n.Name)
		if err := m.mkdir(p); err != nil {
			return err
		}
		if err := m.create(p, n.Children); err != nil {
			return err
		}
	}
	return nil
}

// EnsureProject creates the project root folder and one folder per root.
func (m *Materializer) EnsureProject(cfg *schema.Config) error {
	if err := m.mkdir(cfg.RootPath()); err != nil {
		return err
	}
	for r := range cfg.IterRoots() {
		name, err := schema.CleanName(r)
		if err != nil {
			return fmt.Errorf("root %q: %w", r, err)
		}
		if err := m.mkdir(filepath.Join(cfg.RootPath(), name)); err != nil {
			return err
		}
	}
	return nil
}

func (m *Materializer) mkdir(p string) error {
	if fi, err := m.fs.Stat(p); err == nil {
		if fi.IsDir() {
			return nil
		}
		return &fs.PathError{Op: "mkdir", Path: p, Err: syscall.ENOTDIR}
	}
	if err := m.fs.MkdirAll(p, m.perm); err != nil {
		var pe *fs.PathError
		if errors.As(err, &pe) {
			return err
		}
		return &fs.PathError{Op: "mkdir", Path: p, Err: err}
	}
	m.log.WithField("path", p).Debug("created directory")
	return nil
}
