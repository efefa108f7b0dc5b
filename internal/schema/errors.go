package schema

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

var (
	ErrReservedName      = errors.New("reserved name")
	ErrEmptyName         = errors.New("name cannot be empty")
	ErrInvalidName       = errors.New("invalid folder name")
	ErrDuplicate         = errors.New("name already exists")
	ErrUnsupportedFormat = errors.New("unsupported config format")
)

// ConfigNotFoundError is returned when a caller requires an existing config
// file and there is none.
type ConfigNotFoundError struct {
	Path string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config not found: %s", e.Path)
}

// Is lets errors.Is(err, fs.ErrNotExist) match.
func (e *ConfigNotFoundError) Is(target error) bool { return target == fs.ErrNotExist }

// ParseError reports a config file that exists but cannot be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse config %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RequiredFieldsError lists the mandatory fields left blank.
type RequiredFieldsError struct {
	Fields []string
}

func (e *RequiredFieldsError) Error() string {
	return "required fields are blank: " + strings.Join(e.Fields, ", ")
}
