package tree

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/agentic-research/switch/internal/resolve"
	"github.com/agentic-research/switch/internal/schema"
)

func (t *Tree) editable() error {
	if t.mode == ModePreview {
		return ErrPreviewMode
	}
	return nil
}

// owns reports whether n hangs off one of the tree's regions.
func (t *Tree) owns(n *Node) bool {
	top := n
	for top.Parent != nil {
		top = top.Parent
	}
	if top == t.root || top == t.template {
		return true
	}
	return slices.Contains(t.groups, top)
}

func (t *Tree) check(n *Node) error {
	if err := t.editable(); err != nil {
		return err
	}
	if n == nil || !t.owns(n) {
		return ErrForeignNode
	}
	return nil
}

// container returns the linked group a position belongs to, or "" outside
// the linked region.
func container(n *Node) string {
	for at := n; at != nil; at = at.Parent {
		if at.Kind == LinkedGroupRoot {
			return at.Name
		}
	}
	return ""
}

// AddRoot appends a root with its own copy of the base folders.
func (t *Tree) AddRoot(name string) (*Node, error) {
	if err := t.editable(); err != nil {
		return nil, err
	}
	name, err := schema.CleanName(name)
	if err != nil {
		return nil, err
	}
	if t.root.Child(name) != nil {
		return nil, fmt.Errorf("root %q: %w", name, schema.ErrDuplicate)
	}
	return t.newRoot(name), nil
}

// AddGroup creates an empty linked group. Links made to the name before the
// group existed now refer to it.
func (t *Tree) AddGroup(name string) (*Node, error) {
	if err := t.editable(); err != nil {
		return nil, err
	}
	name, err := groupName(name)
	if err != nil {
		return nil, err
	}
	if t.Group(name) != nil {
		return nil, fmt.Errorf("linked group %q: %w", name, schema.ErrDuplicate)
	}
	return t.newGroupRoot(name), nil
}

func groupName(name string) (string, error) {
	name, err := schema.CleanName(name)
	if err != nil {
		return "", err
	}
	if schema.IsReserved(name) || name == schema.LeafMarker {
		return "", fmt.Errorf("linked group %q: %w", name, schema.ErrReservedName)
	}
	return name, nil
}

// AddFolder adds a folder named name under parent and returns it. What the
// folder means depends on the parent:
//
//	project root      a new root
//	asset placeholder a new base folder, added under every root
//	base folder       a link, added to every instance of the base folder
//	linked group      a new entry
//	linked entry      a link
//
// A link named "None" marks the position as terminal. Nothing can be added
// under a "None" node or under a link.
func (t *Tree) AddFolder(parent *Node, name string) (*Node, error) {
	if err := t.check(parent); err != nil {
		return nil, err
	}
	if parent.IsTerminal() {
		return nil, fmt.Errorf("%s: %w", parent.Path(), ErrTerminalNode)
	}
	name, err := schema.CleanName(name)
	if err != nil {
		return nil, err
	}

	switch parent.Kind {
	case ProjectRoot:
		return t.AddRoot(name)
	case RootEntry:
		return nil, fmt.Errorf("%s: root folders only hold the asset placeholder: %w", parent.Path(), ErrReadOnly)
	case DynamicPlaceholder:
		return t.addBaseFolder(parent, name)
	case BaseFolder:
		return t.addBaseLink(parent, name)
	case LinkedGroupRoot:
		if parent.Child(name) != nil {
			return nil, fmt.Errorf("%s/%s: %w", parent.Name, name, schema.ErrDuplicate)
		}
		return parent.add(&Node{Kind: LinkedGroupEntry, Name: name}), nil
	case LinkedGroupEntry:
		return t.addEntryLink(parent, name)
	default:
		return nil, fmt.Errorf("%s: links have no folders of their own: %w", parent.Path(), ErrTerminalNode)
	}
}

func (t *Tree) addBaseFolder(placeholder *Node, name string) (*Node, error) {
	if placeholder.Child(name) != nil {
		return nil, fmt.Errorf("base folder %q: %w", name, schema.ErrDuplicate)
	}
	ref := &BaseRef{Name: name}
	var added *Node
	for _, p := range t.placeholders() {
		n := p.add(&Node{Kind: BaseFolder, Name: name, Base: ref})
		if p == placeholder {
			added = n
		}
	}
	t.log.WithFields(logrus.Fields{"folder": name, "instances": len(t.root.Children) + 1}).Debug("added base folder")
	return added, nil
}

func (t *Tree) addBaseLink(base *Node, name string) (*Node, error) {
	if base.Child(name) != nil {
		return nil, fmt.Errorf("%s/%s: %w", base.Name, name, schema.ErrDuplicate)
	}
	var added *Node
	for _, inst := range t.baseInstances(base.Base) {
		n := t.attachLink(inst, name)
		if inst == base {
			added = n
		}
	}
	return added, nil
}

func (t *Tree) addEntryLink(entry *Node, name string) (*Node, error) {
	if entry.Child(name) != nil {
		return nil, fmt.Errorf("%s/%s: %w", entry.Name, name, schema.ErrDuplicate)
	}
	if name != schema.LeafMarker && t.Group(name) != nil {
		if err := t.checkCycle(entry, name); err != nil {
			return nil, err
		}
	}
	return t.attachLink(entry, name), nil
}

// attachLink adds a link under n. A real link replaces a "None" marker and a
// "None" marker replaces every link.
func (t *Tree) attachLink(n *Node, name string) *Node {
	if name == schema.LeafMarker {
		for _, c := range slices.Clone(n.Children) {
			n.remove(c)
		}
	} else if marker := n.Child(schema.LeafMarker); marker != nil {
		n.remove(marker)
	}
	return n.add(t.linkNode(name))
}

// checkCycle refuses to link group below entry when the result would make
// the group containing entry reference itself.
func (t *Tree) checkCycle(entry *Node, group string) error {
	owner := container(entry)
	if owner == "" {
		return nil
	}
	trial := t.snapshot()
	g := trial.LinkedSubFolder(owner)
	e, _ := g.Get(entry.Name)
	g.Set(entry.Name, append(e.Links, group)...)
	if err := trial.SetLinked(g); err != nil {
		return err
	}
	_, err := resolve.New(trial).Linked(owner)
	return err
}

// Link links an existing group below a base folder or a linked entry.
func (t *Tree) Link(n *Node, group string) (*Node, error) {
	if err := t.check(n); err != nil {
		return nil, err
	}
	if t.Group(group) == nil {
		return nil, fmt.Errorf("%s: %w", group, ErrUnknownGroup)
	}
	switch n.Kind {
	case BaseFolder, LinkedGroupEntry:
		return t.AddFolder(n, group)
	default:
		return nil, fmt.Errorf("%s: only base folders and linked entries take links: %w", n.Path(), ErrReadOnly)
	}
}

// LinkCandidates lists the groups that can be linked below n without
// creating a cycle, leaving out those already linked there.
func (t *Tree) LinkCandidates(n *Node) ([]string, error) {
	if n == nil || !t.owns(n) {
		return nil, ErrForeignNode
	}
	g := resolve.NewGraph(t.snapshot())
	var out []string
	for _, name := range g.LinkCandidates(container(n)) {
		if n.Child(name) == nil {
			out = append(out, name)
		}
	}
	return out, nil
}

// Remove deletes n. Base folders and their links are removed from every
// instance. Removing a group root removes the group.
func (t *Tree) Remove(n *Node) error {
	if err := t.check(n); err != nil {
		return err
	}
	switch n.Kind {
	case ProjectRoot, DynamicPlaceholder:
		return fmt.Errorf("%s: %w", n.Path(), ErrReadOnly)
	case LinkedGroupRoot:
		return t.RemoveGroup(n.Name)
	case BaseFolder:
		for _, inst := range t.baseInstances(n.Base) {
			inst.Parent.remove(inst)
		}
		return nil
	}

	parent := n.Parent
	if parent.Kind == BaseFolder {
		for _, inst := range t.baseInstances(parent.Base) {
			for _, c := range slices.Clone(inst.Children) {
				if sameSlot(c, n) {
					inst.remove(c)
				}
			}
		}
		return nil
	}
	parent.remove(n)
	return nil
}

// Rename renames n. Root folders, base folders, linked entries, group roots
// and the project root can be renamed. Links follow their group and are
// renamed through RenameGroup.
func (t *Tree) Rename(n *Node, name string) error {
	if err := t.check(n); err != nil {
		return err
	}
	if n.Kind == LinkedGroupRoot {
		return t.RenameGroup(n.Name, name)
	}
	name, err := schema.CleanName(name)
	if err != nil {
		return err
	}
	if name == n.Name {
		return nil
	}

	switch n.Kind {
	case ProjectRoot:
		n.Name = name
	case RootEntry, LinkedGroupEntry:
		if n.Parent.Child(name) != nil {
			return fmt.Errorf("%q: %w", name, schema.ErrDuplicate)
		}
		n.Name = name
	case BaseFolder:
		if n.Parent.Child(name) != nil {
			return fmt.Errorf("base folder %q: %w", name, schema.ErrDuplicate)
		}
		n.Base.Name = name
		for _, inst := range t.baseInstances(n.Base) {
			inst.Name = name
		}
	default:
		return fmt.Errorf("%s: %w", n.Path(), ErrReadOnly)
	}
	return nil
}

// RenameGroup renames a linked group and every link to it.
func (t *Tree) RenameGroup(oldName, newName string) error {
	if err := t.editable(); err != nil {
		return err
	}
	g := t.Group(oldName)
	if g == nil {
		return fmt.Errorf("%s: %w", oldName, ErrUnknownGroup)
	}
	newName, err := groupName(newName)
	if err != nil {
		return err
	}
	if newName == oldName {
		return nil
	}
	if t.Group(newName) != nil {
		return fmt.Errorf("linked group %q: %w", newName, schema.ErrDuplicate)
	}

	ref := g.Group
	// Dangling links already using the new name now point at this group.
	if stale, ok := t.refs[newName]; ok {
		if err := t.checkRename(oldName, newName); err != nil {
			return err
		}
		t.retarget(stale, ref)
	}
	delete(t.refs, oldName)
	ref.Name = newName
	t.refs[newName] = ref

	count := 0
	var parents []*Node
	t.Walk(func(_ int, n *Node) bool {
		if n.Group == ref {
			n.Name = newName
			count++
			if n.Parent != nil {
				parents = append(parents, n.Parent)
			}
		}
		return true
	})
	for _, p := range parents {
		dedupeLinks(p, ref)
	}
	t.log.WithFields(logrus.Fields{"from": oldName, "to": newName, "nodes": count}).Debug("renamed linked group")
	return nil
}

// checkRename refuses a rename whose result would make the renamed group
// reach itself through links that already use the new name.
func (t *Tree) checkRename(oldName, newName string) error {
	trial := t.snapshot()
	swap := func(g *schema.Group) *schema.Group {
		out := schema.NewGroup(g.Name)
		for _, e := range g.Entries {
			links := slices.Clone(e.Links)
			for i, l := range links {
				if l == oldName {
					links[i] = newName
				}
			}
			out.Set(e.Name, links...)
		}
		return out
	}
	trial.SetBaseFolders(swap(trial.BaseFolders()))
	for _, name := range trial.LinkedFolderNames() {
		g := swap(trial.LinkedSubFolder(name))
		if name == oldName {
			trial.RemoveLinked(oldName)
			g.Name = newName
		}
		if err := trial.SetLinked(g); err != nil {
			return err
		}
	}
	_, err := resolve.New(trial, resolve.WithLogger(t.log)).Linked(newName)
	return err
}

// dedupeLinks keeps the first link to ref under p.
func dedupeLinks(p *Node, ref *GroupRef) {
	seen := false
	for _, c := range slices.Clone(p.Children) {
		if c.Group != ref || c.Kind != PlainFolder {
			continue
		}
		if seen {
			p.remove(c)
		}
		seen = true
	}
}

func (t *Tree) retarget(from, to *GroupRef) {
	t.Walk(func(_ int, n *Node) bool {
		if n.Group == from {
			n.Group = to
		}
		return true
	})
}

// RemoveGroup deletes a linked group and every link to it. Entries left
// without links become leaves.
func (t *Tree) RemoveGroup(name string) error {
	if err := t.editable(); err != nil {
		return err
	}
	g := t.Group(name)
	if g == nil {
		return fmt.Errorf("%s: %w", name, ErrUnknownGroup)
	}
	ref := g.Group
	t.groups = slices.DeleteFunc(t.groups, func(n *Node) bool { return n == g })

	var links []*Node
	t.Walk(func(_ int, n *Node) bool {
		if n.Group == ref && n.Kind == PlainFolder {
			links = append(links, n)
		}
		return true
	})
	for _, l := range links {
		l.Parent.remove(l)
	}
	delete(t.refs, name)
	t.log.WithFields(logrus.Fields{"group": name, "links": len(links)}).Debug("removed linked group")
	return nil
}
