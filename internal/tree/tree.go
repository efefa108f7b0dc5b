// Package tree converts between the flat schema config and the editable
// folder tree shown to the user, and implements the edits made on that
// tree.
//
// A tree has three regions. The project root holds one node per root, each
// with a read-only asset placeholder whose children are the base folders.
// The linked region holds one node per linked group with its entries. A
// detached template placeholder keeps the canonical copy of the base
// folders, so they survive a config without roots.
package tree

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/agentic-research/switch/api"
	"github.com/agentic-research/switch/internal/logging"
	"github.com/agentic-research/switch/internal/resolve"
	"github.com/agentic-research/switch/internal/schema"
)

// Mode selects how base folder links are shown.
type Mode int

const (
	// ModeEdit shows each link as a single node carrying the group name.
	ModeEdit Mode = iota
	// ModePreview expands links into the folders they resolve to. Preview
	// trees cannot be edited.
	ModePreview
)

// DefaultPreviewAsset names the asset shown by Preview when none is given.
const DefaultPreviewAsset = "TestName"

// Tree is an editable schema tree. It is owned by one editing session.
type Tree struct {
	mode Mode
	meta *schema.Config
	log  logrus.FieldLogger

	root     *Node
	template *Node
	groups   []*Node
	refs     map[string]*GroupRef
}

// Option configures a Tree.
type Option func(*Tree)

// WithLogger sets the logger used for debug tracing.
func WithLogger(l logrus.FieldLogger) Option {
	return func(t *Tree) { t.log = l }
}

// FromConfig builds a tree from cfg. In preview mode base folders and linked
// groups are expanded through the resolver and a reference cycle is
// reported as *resolve.CyclicReferenceError.
func FromConfig(cfg *schema.Config, mode Mode, opts ...Option) (*Tree, error) {
	t := &Tree{
		mode: mode,
		meta: cfg.Clone(),
		log:  logging.Discard(),
		refs: make(map[string]*GroupRef),
	}
	for _, o := range opts {
		o(t)
	}

	t.root = &Node{Kind: ProjectRoot, Name: cfg.ConfigRoot}
	t.template = &Node{Kind: DynamicPlaceholder, Name: AssetPlaceholder}

	if mode == ModePreview {
		if err := t.buildPreview(cfg); err != nil {
			return nil, err
		}
	} else {
		t.buildEdit(cfg)
	}

	for r := range cfg.IterRoots() {
		t.newRoot(r)
	}
	t.log.WithFields(logrus.Fields{
		"roots":  len(t.root.Children),
		"groups": len(t.groups),
		"mode":   mode,
	}).Debug("built schema tree")
	return t, nil
}

func (t *Tree) buildEdit(cfg *schema.Config) {
	for _, name := range cfg.LinkedFolderNames() {
		g := t.newGroupRoot(name)
		for _, e := range cfg.LinkedSubFolder(name).Entries {
			entry := g.add(&Node{Kind: LinkedGroupEntry, Name: e.Name})
			for _, l := range e.Links {
				entry.add(t.linkNode(l))
			}
		}
	}
	for name, links := range cfg.IterBaseFolders() {
		base := t.template.add(&Node{Kind: BaseFolder, Name: name, Base: &BaseRef{Name: name}})
		for _, l := range schema.NormalizeLinks(links) {
			base.add(t.linkNode(l))
		}
	}
}

func (t *Tree) buildPreview(cfg *schema.Config) error {
	r := resolve.New(cfg, resolve.WithLogger(t.log))
	for _, name := range cfg.LinkedFolderNames() {
		nodes, err := r.Linked(name)
		if err != nil {
			return err
		}
		g := t.newGroupRoot(name)
		for _, n := range nodes {
			entry := g.add(&Node{Kind: LinkedGroupEntry, Name: n.Name})
			addResolved(entry, n.Children)
		}
	}
	nodes, err := r.BaseFolders()
	if err != nil {
		return err
	}
	for _, n := range nodes {
		base := t.template.add(&Node{Kind: BaseFolder, Name: n.Name, Base: &BaseRef{Name: n.Name}})
		addResolved(base, n.Children)
	}
	return nil
}

func addResolved(parent *Node, nodes []api.Node) {
	for _, n := range nodes {
		addResolved(parent.add(&Node{Kind: PlainFolder, Name: n.Name}), n.Children)
	}
}

// ref returns the identity of the named group, creating it for groups that
// are linked before they exist.
func (t *Tree) ref(name string) *GroupRef {
	r, ok := t.refs[name]
	if !ok {
		r = &GroupRef{Name: name}
		t.refs[name] = r
	}
	return r
}

func (t *Tree) linkNode(name string) *Node {
	if schema.IsLeafMarker(name) {
		return &Node{Kind: PlainFolder, Name: schema.LeafMarker}
	}
	return &Node{Kind: PlainFolder, Name: name, Group: t.ref(name)}
}

func (t *Tree) newGroupRoot(name string) *Node {
	g := &Node{Kind: LinkedGroupRoot, Name: name, Group: t.ref(name)}
	t.groups = append(t.groups, g)
	return g
}

func (t *Tree) newRoot(name string) *Node {
	r := t.root.add(&Node{Kind: RootEntry, Name: name})
	r.add(t.template.clone())
	return r
}

// Mode returns the mode the tree was built in.
func (t *Tree) Mode() Mode { return t.mode }

// Root returns the project root node.
func (t *Tree) Root() *Node { return t.root }

// Template returns the canonical asset placeholder holding the base folders.
func (t *Tree) Template() *Node { return t.template }

// Groups returns the linked group roots in order.
func (t *Tree) Groups() []*Node { return append([]*Node(nil), t.groups...) }

// Group returns the root node of the named linked group.
func (t *Tree) Group(name string) *Node {
	for _, g := range t.groups {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// Walk visits the project region, the template and the linked region in that
// order, parents before children. Returning false stops the walk.
func (t *Tree) Walk(fn func(depth int, n *Node) bool) {
	if !walk(t.root, 0, fn) {
		return
	}
	if !walk(t.template, 0, fn) {
		return
	}
	for _, g := range t.groups {
		if !walk(g, 0, fn) {
			return
		}
	}
}

// placeholders returns the template followed by every root's placeholder.
func (t *Tree) placeholders() []*Node {
	out := []*Node{t.template}
	for _, r := range t.root.Children {
		for _, c := range r.Children {
			if c.Kind == DynamicPlaceholder {
				out = append(out, c)
			}
		}
	}
	return out
}

// baseInstances returns every node instantiating the base folder ref.
func (t *Tree) baseInstances(ref *BaseRef) []*Node {
	var out []*Node
	for _, p := range t.placeholders() {
		for _, b := range p.Children {
			if b.Base == ref {
				out = append(out, b)
			}
		}
	}
	return out
}

// ToConfig flattens the tree. Roots map to null, base folders to the names
// of their immediate children and group entries to their link names.
// Project fields of the source config are carried over.
func (t *Tree) ToConfig() (*schema.Config, error) {
	if t.mode == ModePreview {
		return nil, ErrPreviewMode
	}
	return t.snapshot(), nil
}

func (t *Tree) snapshot() *schema.Config {
	c := schema.New()
	c.ProjectName = t.meta.ProjectName
	c.ProjectPath = t.meta.ProjectPath
	c.ValidExt = slices.Clone(t.meta.ValidExt)
	c.ConfigRoot = t.root.Name

	for _, r := range t.root.Children {
		_ = c.AddRoot(r.Name)
	}
	base := schema.NewGroup(schema.KeyBaseFolders)
	for _, b := range t.template.Children {
		base.Set(b.Name, b.childNames()...)
	}
	c.SetBaseFolders(base)

	for _, g := range t.groups {
		grp := schema.NewGroup(g.Name)
		for _, e := range g.Children {
			grp.Set(e.Name, e.childNames()...)
		}
		_ = c.SetLinked(grp)
	}
	return c
}

// Preview resolves the current tree into the topology of one asset.
func (t *Tree) Preview(asset string) (api.Topology, error) {
	if strings.TrimSpace(asset) == "" {
		asset = DefaultPreviewAsset
	}
	cfg := t.meta
	if t.mode == ModeEdit {
		cfg = t.snapshot()
	}
	nodes, err := resolve.New(cfg, resolve.WithLogger(t.log)).BaseFolders()
	if err != nil {
		return api.Topology{}, err
	}
	return api.Topology{
		Root:  t.root.Name,
		Roots: cfg.Roots(),
		Asset: asset,
		Nodes: nodes,
	}, nil
}

// Find looks a node up by address:
//
//	""                              project root
//	roots/<root>                    a root entry
//	base/<folder>[/<link>]          template base folders
//	linked/<group>[/<entry>[/<link>]]
func (t *Tree) Find(path string) (*Node, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return t.root, nil
	}
	parts := strings.Split(path, "/")
	var (
		n    *Node
		rest []string
	)
	switch parts[0] {
	case "roots":
		n, rest = t.root, parts[1:]
		if len(rest) > 1 {
			return nil, fmt.Errorf("%s: roots have no addressable children", path)
		}
	case "base":
		n, rest = t.template, parts[1:]
		if len(rest) > 2 {
			return nil, fmt.Errorf("%s: too deep", path)
		}
	case "linked":
		if len(parts) < 2 {
			return nil, fmt.Errorf("%s: missing group name", path)
		}
		n = t.Group(parts[1])
		if n == nil {
			return nil, fmt.Errorf("%s: %w", parts[1], ErrUnknownGroup)
		}
		rest = parts[2:]
		if len(rest) > 2 {
			return nil, fmt.Errorf("%s: too deep", path)
		}
	default:
		return nil, fmt.Errorf("%s: unknown region %q", path, parts[0])
	}
	for _, name := range rest {
		next := n.Child(name)
		if next == nil {
			return nil, fmt.Errorf("%s: no folder %q under %q", path, name, n.Name)
		}
		n = next
	}
	return n, nil
}
