// Package archive zips folders and files of a project and restores them.
// An existing archive is never overwritten.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/sirupsen/logrus"

	"github.com/agentic-research/switch/internal/logging"
)

var (
	// ErrSourceMissing is returned when the folder, file or archive to read
	// does not exist.
	ErrSourceMissing = errors.New("source does not exist")
	// ErrDestinationExists is returned instead of overwriting an archive.
	ErrDestinationExists = errors.New("destination already exists")
	// ErrUnsafeEntry is returned for archive entries that would be written
	// outside the restore directory.
	ErrUnsafeEntry = errors.New("archive entry escapes destination")
)

// Archiver reads and writes zip archives on a billy filesystem.
type Archiver struct {
	fs  billy.Filesystem
	log logrus.FieldLogger
}

// Option configures an Archiver.
type Option func(*Archiver)

// WithLogger sets the logger failures and progress are reported to.
func WithLogger(l logrus.FieldLogger) Option {
	return func(a *Archiver) { a.log = l }
}

// New returns an Archiver over fsys.
func New(fsys billy.Filesystem, opts ...Option) *Archiver {
	a := &Archiver{fs: fsys, log: logging.Discard()}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Folder zips src and everything below it into dst. Empty folders are
// kept as directory entries. Entry names are relative to
// the parent of src, so the archive holds src's own folder.
func (a *Archiver) Folder(src, dst string) error {
	fi, err := a.fs.Stat(src)
	if err != nil || !fi.IsDir() {
		a.log.Errorf("Directory path %s does not exist!", src)
		return fmt.Errorf("%s: %w", src, ErrSourceMissing)
	}
	base := filepath.Dir(filepath.Clean(src))
	return a.write(dst, func(zw *zip.Writer) error {
		return util.Walk(a.fs, src, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if filepath.Clean(path) == filepath.Clean(dst) {
				return nil
			}
			if info.IsDir() {
				return addDir(zw, path, base)
			}
			return a.add(zw, path, base)
		})
	})
}

// File zips the single file src into dst.
func (a *Archiver) File(src, dst string) error {
	fi, err := a.fs.Stat(src)
	if err != nil || fi.IsDir() {
		a.log.Errorf("File path %s does not exist!", src)
		return fmt.Errorf("%s: %w", src, ErrSourceMissing)
	}
	base := filepath.Dir(filepath.Clean(src))
	return a.write(dst, func(zw *zip.Writer) error {
		return a.add(zw, src, base)
	})
}

func (a *Archiver) write(dst string, fill func(*zip.Writer) error) error {
	if _, err := a.fs.Stat(dst); err == nil {
		a.log.Errorf("%s already exists!", dst)
		return fmt.Errorf("%s: %w", dst, ErrDestinationExists)
	}
	if dir := filepath.Dir(dst); dir != "." {
		if err := a.fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := a.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(f)
	if err := fill(zw); err != nil {
		zw.Close()
		f.Close()
		_ = a.fs.Remove(dst)
		return err
	}
	if err := zw.Close(); err != nil {
		f.Close()
		_ = a.fs.Remove(dst)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	a.log.WithField("archive", dst).Info("archive written")
	return nil
}

func addDir(zw *zip.Writer, path, base string) error {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return err
	}
	_, err = zw.Create(filepath.ToSlash(rel) + "/")
	return err
}

func (a *Archiver) add(zw *zip.Writer, path, base string) error {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return err
	}
	in, err := a.fs.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	w, err := zw.Create(filepath.ToSlash(rel))
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("archive %s: %w", path, err)
	}
	return nil
}

// Restore extracts the archive src into dir. Existing files with the same
// names are replaced.
func (a *Archiver) Restore(src, dir string) error {
	fi, err := a.fs.Stat(src)
	if err != nil || fi.IsDir() {
		a.log.Errorf("File path %s does not exist!", src)
		return fmt.Errorf("%s: %w", src, ErrSourceMissing)
	}
	f, err := a.fs.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	zr, err := zip.NewReader(f, fi.Size())
	if err != nil {
		return fmt.Errorf("open archive %s: %w", src, err)
	}
	for _, zf := range zr.File {
		target, err := entryPath(dir, zf.Name)
		if err != nil {
			return err
		}
		if zf.FileInfo().IsDir() {
			if err := a.fs.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := a.extract(zf, target); err != nil {
			return err
		}
	}
	a.log.Infof("Successfully restored %s to %s", src, dir)
	return nil
}

func (a *Archiver) extract(zf *zip.File, target string) error {
	rc, err := zf.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	if err := a.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	out, err := a.fs.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("restore %s: %w", zf.Name, err)
	}
	return out.Close()
}

// entryPath maps an archive entry name below dir, refusing names that
// would leave it.
func entryPath(dir, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", name, ErrUnsafeEntry)
	}
	return filepath.Join(dir, clean), nil
}
