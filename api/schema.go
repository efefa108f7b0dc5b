package api

// Topology is a resolved project preview: the project root folder, the
// top-level asset roots beneath it and the folder structure that would be
// created for a single asset.
type Topology struct {
	// Root is the configRoot folder name under the project path.
	Root string `json:"root"`
	// Roots are the asset-type folders (e.g. "Characters", "Props").
	Roots []string `json:"roots,omitempty"`
	// Asset is the placeholder or concrete asset name the Nodes hang under.
	Asset string `json:"asset"`
	// Nodes is the resolved base-folder structure of one asset.
	Nodes []Node `json:"nodes,omitempty"`
}

// Node is a directory in a resolved folder schema.
// A node without children is a leaf.
type Node struct {
	Name     string `json:"name"`
	Children []Node `json:"children,omitempty"`
}

// IsLeaf reports whether the node terminates its branch.
func (n Node) IsLeaf() bool { return len(n.Children) == 0 }

// Leaves counts the leaf nodes under nodes, i.e. the number of distinct
// root-to-leaf paths.
func Leaves(nodes []Node) int {
	count := 0
	for _, n := range nodes {
		if n.IsLeaf() {
			count++
			continue
		}
		count += Leaves(n.Children)
	}
	return count
}

// Map renders nodes as nested maps keyed by folder name. Leaves map to nil.
func Map(nodes []Node) map[string]any {
	out := make(map[string]any, len(nodes))
	for _, n := range nodes {
		if n.IsLeaf() {
			out[n.Name] = nil
			continue
		}
		out[n.Name] = Map(n.Children)
	}
	return out
}

// Walk visits every node depth-first, parents before children. path holds
// the folder names from the top of nodes down to and including n.
// Returning false from fn skips the node's children.
func Walk(nodes []Node, fn func(path []string, n Node) bool) {
	walk(nil, nodes, fn)
}

func walk(prefix []string, nodes []Node, fn func([]string, Node) bool) {
	for _, n := range nodes {
		path := append(append([]string(nil), prefix...), n.Name)
		if fn(path, n) {
			walk(path, n.Children, fn)
		}
	}
}
