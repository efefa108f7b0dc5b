package schema

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

func decodeYAML(data []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return New(), nil
	}
	v, err := yamlValue(doc.Content[0])
	if err != nil {
		return nil, err
	}
	switch top := v.(type) {
	case nil:
		return New(), nil
	case []member:
		return fromMembers(top)
	default:
		return nil, fmt.Errorf("top level must be a mapping, got %T", v)
	}
}

func yamlValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return yamlValue(n.Alias)
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return yamlValue(n.Content[0])
	case yaml.MappingNode:
		members := make([]member, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
			}
			val, err := yamlValue(v)
			if err != nil {
				return nil, err
			}
			members = append(members, member{key: k.Value, value: val})
		}
		return members, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := yamlValue(item)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil, nil
		}
		return n.Value, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported yaml node", n.Line)
	}
}

func encodeYAML(c *Config) ([]byte, error) {
	top := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value *yaml.Node) {
		top.Content = append(top.Content, yamlString(key), value)
	}
	add(KeyProjectName, yamlString(c.ProjectName))
	add(KeyProjectPath, yamlString(c.ProjectPath))
	add(KeyConfigRoot, yamlString(c.ConfigRoot))

	roots := &yaml.Node{Kind: yaml.MappingNode}
	for _, r := range c.roots {
		roots.Content = append(roots.Content, yamlString(r), yamlNull())
	}
	add(KeyRoots, roots)
	add(KeyBaseFolders, yamlGroup(c.baseFolders))
	for _, g := range c.linked {
		add(g.Name, yamlGroup(g))
	}
	if c.ValidExt != nil {
		exts := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, e := range c.ValidExt {
			exts.Content = append(exts.Content, yamlString(e))
		}
		add(KeyValidExt, exts)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{top}}); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func yamlGroup(g *Group) *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range g.entries() {
		links := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		if e.IsLeaf() {
			links.Content = append(links.Content, yamlNull())
		}
		for _, l := range e.Links {
			links.Content = append(links.Content, yamlString(l))
		}
		m.Content = append(m.Content, yamlString(e.Name), links)
	}
	return m
}

func yamlString(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func yamlNull() *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}
