package schema

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/agentic-research/switch/internal/logging"
)

// Format is an on-disk config encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatHCL
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatHCL:
		return "hcl"
	default:
		return "json"
	}
}

// FormatFor picks the format from the file extension. Anything that is not
// YAML or HCL is read as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".hcl":
		return FormatHCL
	default:
		return FormatJSON
	}
}

// Decode parses data in the given format.
func Decode(data []byte, f Format) (*Config, error) {
	switch f {
	case FormatYAML:
		return decodeYAML(data)
	case FormatHCL:
		return decodeHCL(data, "config.hcl")
	default:
		return decodeJSON(data)
	}
}

// Encode renders c in the given format. HCL is read-only.
func Encode(c *Config, f Format) ([]byte, error) {
	switch f {
	case FormatYAML:
		return encodeYAML(c)
	case FormatHCL:
		return nil, fmt.Errorf("%s: %w", f, ErrUnsupportedFormat)
	default:
		return encodeJSON(c)
	}
}

// withExt appends ".json" to a path that has no extension.
func withExt(path string) string {
	if filepath.Ext(path) == "" {
		return path + ".json"
	}
	return path
}

func readConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigNotFoundError{Path: path}
		}
		return nil, err
	}
	var c *Config
	if FormatFor(path) == FormatHCL {
		c, err = decodeHCL(data, path)
	} else {
		c, err = Decode(data, FormatFor(path))
	}
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return c, nil
}

// LoadOption configures Load.
type LoadOption func(*loader)

type loader struct {
	log logrus.FieldLogger
}

// WithLogger sets the logger Load warns through.
func WithLogger(l logrus.FieldLogger) LoadOption {
	return func(ld *loader) { ld.log = l }
}

// Load reads a config leniently. A missing file yields an empty config and
// no error. A malformed file is logged as a warning and yields an empty
// config together with its *ParseError.
func Load(path string, opts ...LoadOption) (*Config, error) {
	ld := &loader{log: logging.Discard()}
	for _, o := range opts {
		o(ld)
	}
	path = withExt(path)
	c, err := readConfig(path)
	if err != nil {
		var nf *ConfigNotFoundError
		if errors.As(err, &nf) {
			return New(), nil
		}
		ld.log.WithError(err).WithField("config", path).Warn("config could not be read, starting empty")
		return New(), err
	}
	return c, nil
}

// LoadExisting reads a config that must exist and parse.
func LoadExisting(path string) (*Config, error) {
	return readConfig(withExt(path))
}

// LoadNamed reads the config called name from dir.
func LoadNamed(dir, name string) (*Config, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	return LoadExisting(filepath.Join(dir, name))
}

// Save writes c to path, replacing any previous content atomically. A path
// without an extension gets ".json". It returns the path written.
func Save(path string, c *Config) (string, error) {
	path = withExt(path)
	data, err := Encode(c, FormatFor(path))
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("replace %s: %w", path, err)
	}
	return path, nil
}

// NameFromPath returns the config name for a file path: the base name up to
// the first dot.
func NameFromPath(path string) string {
	base := filepath.Base(filepath.FromSlash(path))
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}
