package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

func decodeJSON(data []byte) (*Config, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return New(), nil
	}
	v, err := jsonValue(data)
	if err != nil {
		return nil, err
	}
	top, ok := v.([]member)
	if !ok {
		return nil, fmt.Errorf("top level must be an object, got %T", v)
	}
	return fromMembers(top)
}

// jsonValue decodes one JSON value, keeping object key order.
func jsonValue(raw json.RawMessage) (any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}
	switch raw[0] {
	case '{':
		om := orderedmap.New[string, json.RawMessage]()
		if err := json.Unmarshal(raw, om); err != nil {
			return nil, err
		}
		members := make([]member, 0, om.Len())
		for pair := om.Oldest(); pair != nil; pair = pair.Next() {
			v, err := jsonValue(pair.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", pair.Key, err)
			}
			members = append(members, member{key: pair.Key, value: v})
		}
		return members, nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		list := make([]any, 0, len(items))
		for _, item := range items {
			v, err := jsonValue(item)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	default:
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

func encodeJSON(c *Config) ([]byte, error) {
	doc := orderedmap.New[string, any]()
	doc.Set(KeyProjectName, c.ProjectName)
	doc.Set(KeyProjectPath, c.ProjectPath)
	doc.Set(KeyConfigRoot, c.ConfigRoot)

	roots := orderedmap.New[string, any]()
	for _, r := range c.roots {
		roots.Set(r, nil)
	}
	doc.Set(KeyRoots, roots)
	doc.Set(KeyBaseFolders, jsonGroup(c.baseFolders))
	for _, g := range c.linked {
		doc.Set(g.Name, jsonGroup(g))
	}
	if c.ValidExt != nil {
		doc.Set(KeyValidExt, c.ValidExt)
	}

	out, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func jsonGroup(g *Group) *orderedmap.OrderedMap[string, any] {
	om := orderedmap.New[string, any]()
	for _, e := range g.entries() {
		om.Set(e.Name, linkValues(e.Links))
	}
	return om
}
