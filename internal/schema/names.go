package schema

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CleanName trims a folder or group name and normalizes it to NFC so names
// typed on different platforms compare equal. Names that cannot be a single
// path segment are rejected.
func CleanName(name string) (string, error) {
	s := norm.NFC.String(strings.TrimSpace(name))
	switch {
	case s == "":
		return "", ErrEmptyName
	case s == "." || s == "..":
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(s, `/\`):
		return "", fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	}
	return s, nil
}

// CheckRequired reports the fields that must be filled in before a config
// can be saved or previewed: the project name, the project path and every
// root name.
func CheckRequired(c *Config) error {
	var missing []string
	if strings.TrimSpace(c.ProjectName) == "" {
		missing = append(missing, KeyProjectName)
	}
	if strings.TrimSpace(c.ProjectPath) == "" {
		missing = append(missing, KeyProjectPath)
	}
	for i, r := range c.roots {
		if strings.TrimSpace(r) == "" {
			missing = append(missing, fmt.Sprintf("%s[%d]", KeyRoots, i))
		}
	}
	if len(missing) > 0 {
		return &RequiredFieldsError{Fields: missing}
	}
	return nil
}
