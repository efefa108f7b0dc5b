package tree

import (
	"strings"

	"github.com/agentic-research/switch/internal/schema"
)

// Kind tags what a node stands for in the schema.
type Kind int

const (
	ProjectRoot Kind = iota
	RootEntry
	DynamicPlaceholder
	BaseFolder
	LinkedGroupRoot
	LinkedGroupEntry
	PlainFolder
)

var kindNames = [...]string{
	ProjectRoot:        "project-root",
	RootEntry:          "root",
	DynamicPlaceholder: "asset-placeholder",
	BaseFolder:         "base-folder",
	LinkedGroupRoot:    "linked-group",
	LinkedGroupEntry:   "linked-entry",
	PlainFolder:        "folder",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// AssetPlaceholder is the display name of the read-only node standing in
// for the asset name typed at creation time.
const AssetPlaceholder = "---AssetName---"

// GroupRef identifies a linked group. Every node that instantiates the
// group, its root in the linked region and each link to it, shares the
// same GroupRef.
type GroupRef struct {
	Name string
}

// BaseRef identifies a base folder. The copies of a base folder under every
// asset placeholder share the same BaseRef.
type BaseRef struct {
	Name string
}

// Node is one folder of an editable schema tree. Fields are read-only for
// callers; change the tree through the Tree methods.
type Node struct {
	Kind     Kind
	Name     string
	Parent   *Node
	Children []*Node

	// Group is set on linked group roots and on link nodes.
	Group *GroupRef
	// Base is set on base folder instances.
	Base *BaseRef
}

// IsLink reports whether the node is a reference to a linked group.
func (n *Node) IsLink() bool {
	return n.Kind == PlainFolder && n.Group != nil
}

// IsTerminal reports whether the node is an explicit "None" marker.
func (n *Node) IsTerminal() bool {
	return n.Name == schema.LeafMarker
}

// Child returns the direct child with the given name.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Path joins the names from the top of the node's region down to n.
func (n *Node) Path() string {
	var parts []string
	for at := n; at != nil; at = at.Parent {
		parts = append(parts, at.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

func (n *Node) add(c *Node) *Node {
	c.Parent = n
	n.Children = append(n.Children, c)
	return c
}

func (n *Node) remove(c *Node) bool {
	for i, x := range n.Children {
		if x == c {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			c.Parent = nil
			return true
		}
	}
	return false
}

// childNames lists the children as link values.
func (n *Node) childNames() []string {
	names := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		names = append(names, c.Name)
	}
	return names
}

// clone deep-copies n. Identity references are shared, not copied.
func (n *Node) clone() *Node {
	cp := &Node{Kind: n.Kind, Name: n.Name, Group: n.Group, Base: n.Base}
	for _, c := range n.Children {
		cp.add(c.clone())
	}
	return cp
}

// sameSlot reports whether a and b occupy the same position in two
// instances of a base folder.
func sameSlot(a, b *Node) bool {
	if a.Group != nil || b.Group != nil {
		return a.Group == b.Group
	}
	return a.Name == b.Name
}

func walk(n *Node, depth int, fn func(depth int, n *Node) bool) bool {
	if !fn(depth, n) {
		return false
	}
	for _, c := range n.Children {
		if !walk(c, depth+1, fn) {
			return false
		}
	}
	return true
}
