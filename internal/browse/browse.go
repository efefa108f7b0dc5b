// Package browse lists and rearranges the files of a project the way the
// project browser shows them.
package browse

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/sirupsen/logrus"

	"github.com/agentic-research/switch/internal/logging"
	"github.com/agentic-research/switch/internal/schema"
)

// ProjectRoot names the project folder itself in RootPath.
const ProjectRoot = "root"

var (
	ErrUnknownRoot = errors.New("unknown root folder")
	ErrExists      = errors.New("destination already exists")
)

// Entry is one listed file or folder.
type Entry struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Dir     bool      `json:"dir"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	// Valid marks files whose extension is one of the project's.
	Valid bool `json:"valid"`
}

// Browser navigates the project of one config.
type Browser struct {
	fs   billy.Filesystem
	cfg  *schema.Config
	exts []string
	log  logrus.FieldLogger
}

// Option configures a Browser.
type Option func(*Browser)

// WithLogger sets the logger used for debug tracing.
func WithLogger(l logrus.FieldLogger) Option {
	return func(b *Browser) { b.log = l }
}

// New returns a Browser over fsys for the project described by cfg.
func New(fsys billy.Filesystem, cfg *schema.Config, opts ...Option) *Browser {
	b := &Browser{fs: fsys, cfg: cfg, exts: cfg.ValidExtensions(), log: logging.Discard()}
	for _, o := range opts {
		o(b)
	}
	return b
}

// RootPath returns the folder of a root, or the project folder for "root"
// and "".
func (b *Browser) RootPath(root string) (string, error) {
	if root == "" || root == ProjectRoot {
		return b.cfg.RootPath(), nil
	}
	if !b.cfg.HasRoot(root) {
		return "", fmt.Errorf("%s: %w", root, ErrUnknownRoot)
	}
	return filepath.Join(b.cfg.RootPath(), root), nil
}

// IsValidFile reports whether path has one of the project's extensions.
// The comparison is case-sensitive.
func (b *Browser) IsValidFile(path string) bool {
	ext := filepath.Ext(path)
	return ext != "" && slices.Contains(b.exts, ext)
}

// List returns the contents of dir, folders first, each group sorted by
// name.
func (b *Browser) List(dir string) ([]Entry, error) {
	infos, err := b.fs.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(infos))
	for _, fi := range infos {
		p := filepath.Join(dir, fi.Name())
		entries = append(entries, Entry{
			Name:    fi.Name(),
			Path:    p,
			Dir:     fi.IsDir(),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
			Valid:   !fi.IsDir() && b.IsValidFile(p),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Dir != entries[j].Dir {
			return entries[i].Dir
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
	return entries, nil
}

func (b *Browser) target(src, dstDir string) (string, error) {
	if _, err := b.fs.Stat(src); err != nil {
		return "", err
	}
	fi, err := b.fs.Stat(dstDir)
	if err != nil {
		return "", err
	}
	if !fi.IsDir() {
		return "", &fs.PathError{Op: "move", Path: dstDir, Err: errors.New("not a directory")}
	}
	dst := filepath.Join(dstDir, filepath.Base(src))
	if _, err := b.fs.Stat(dst); err == nil {
		return "", fmt.Errorf("%s: %w", dst, ErrExists)
	}
	return dst, nil
}

// Move moves src into dstDir and returns the new path.
func (b *Browser) Move(src, dstDir string) (string, error) {
	dst, err := b.target(src, dstDir)
	if err != nil {
		return "", err
	}
	if err := b.fs.Rename(src, dst); err != nil {
		return "", err
	}
	b.log.WithFields(logrus.Fields{"from": src, "to": dst}).Debug("moved")
	return dst, nil
}

// Copy copies the file or folder src into dstDir and returns the new path.
func (b *Browser) Copy(src, dstDir string) (string, error) {
	dst, err := b.target(src, dstDir)
	if err != nil {
		return "", err
	}
	err = util.Walk(b.fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		to := filepath.Join(dst, rel)
		if info.IsDir() {
			return b.fs.MkdirAll(to, info.Mode().Perm()|0o700)
		}
		return b.copyFile(path, to, info.Mode().Perm())
	})
	if err != nil {
		return "", err
	}
	b.log.WithFields(logrus.Fields{"from": src, "to": dst}).Debug("copied")
	return dst, nil
}

func (b *Browser) copyFile(from, to string, perm os.FileMode) error {
	in, err := b.fs.Open(from)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := b.fs.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Delete removes a file or a whole folder.
func (b *Browser) Delete(path string) error {
	fi, err := b.fs.Stat(path)
	if err != nil {
		return err
	}
	if err := util.RemoveAll(b.fs, path); err != nil {
		return err
	}
	if fi.IsDir() {
		b.log.WithField("path", path).Debug("Successfully removed directory!")
	} else {
		b.log.WithField("path", path).Debug("Successfully removed file!")
	}
	return nil
}
