package schema

import (
	"fmt"
)

// member is one key of a decoded object. Every decoder turns its input into
// ordered members so the config keeps the key order of the file. Values are
// nil, string, []any, []member, or some other scalar that is ignored.
type member struct {
	key   string
	value any
}

// fromMembers builds a Config from the top-level object of a config file.
// Non-object values under non-reserved keys cannot be linked groups and are
// skipped.
func fromMembers(top []member) (*Config, error) {
	c := New()
	for _, m := range top {
		switch m.key {
		case KeyProjectName:
			c.ProjectName = scalarString(m.value)
		case KeyProjectPath:
			c.ProjectPath = scalarString(m.value)
		case KeyConfigRoot:
			c.ConfigRoot = scalarString(m.value)
		case KeyValidExt:
			if m.value != nil {
				c.ValidExt = stringList(m.value)
				if c.ValidExt == nil {
					c.ValidExt = []string{}
				}
			}
		case KeyRoots:
			for _, name := range memberKeys(m.value) {
				if c.HasRoot(name) {
					continue
				}
				c.roots = append(c.roots, name)
			}
		case KeyBaseFolders:
			g, err := groupFrom(KeyBaseFolders, m.value)
			if err != nil {
				return nil, err
			}
			c.baseFolders = g
		default:
			switch m.value.(type) {
			case nil, []member:
			default:
				continue
			}
			g, err := groupFrom(m.key, m.value)
			if err != nil {
				return nil, err
			}
			if i := c.linkedIndex(g.Name); i >= 0 {
				c.linked[i] = g
				continue
			}
			c.linked = append(c.linked, g)
		}
	}
	return c, nil
}

func groupFrom(name string, v any) (*Group, error) {
	g := NewGroup(name)
	switch t := v.(type) {
	case nil:
		return g, nil
	case []member:
		for _, m := range t {
			g.Set(m.key, linksFrom(m.value)...)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("%s: expected an object, got %T", name, v)
	}
}

// linksFrom accepts null, a single group name, or a list of names and nulls.
func linksFrom(v any) []string {
	switch t := v.(type) {
	case string:
		return NormalizeLinks([]string{t})
	case []any:
		return NormalizeLinks(stringList(t))
	default:
		return nil
	}
}

// memberKeys returns the keys of an object value. A list of names is
// accepted too.
func memberKeys(v any) []string {
	switch t := v.(type) {
	case []member:
		keys := make([]string, 0, len(t))
		for _, m := range t {
			keys = append(keys, m.key)
		}
		return keys
	case []any:
		return stringList(t)
	default:
		return nil
	}
}

func stringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, e := range list {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func scalarString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
