package resolve

import (
	"slices"

	"github.com/RoaringBitmap/roaring"

	"github.com/agentic-research/switch/internal/schema"
)

// Graph is the reference graph between the linked groups of a config with
// its transitive closure. Group ids are their position in config order.
type Graph struct {
	names []string
	index map[string]uint32
	edges []*roaring.Bitmap
	reach []*roaring.Bitmap
}

// NewGraph builds the reference graph of cfg. Links to groups that do not
// exist are not edges.
func NewGraph(cfg *schema.Config) *Graph {
	g := &Graph{
		names: cfg.LinkedFolderNames(),
		index: make(map[string]uint32),
	}
	for i, name := range g.names {
		g.index[name] = uint32(i)
	}

	g.edges = make([]*roaring.Bitmap, len(g.names))
	for i, name := range g.names {
		out := roaring.New()
		for _, e := range cfg.LinkedSubFolder(name).Entries {
			for _, link := range e.Links {
				if id, ok := g.index[link]; ok {
					out.Add(id)
				}
			}
		}
		g.edges[i] = out
	}

	g.reach = make([]*roaring.Bitmap, len(g.names))
	for i := range g.names {
		g.reach[i] = g.closure(uint32(i))
	}
	return g
}

// closure collects every group reachable from id in one or more steps.
func (g *Graph) closure(id uint32) *roaring.Bitmap {
	seen := roaring.New()
	stack := g.edges[id].ToArray()
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen.Contains(n) {
			continue
		}
		seen.Add(n)
		stack = append(stack, g.edges[n].ToArray()...)
	}
	return seen
}

// Reaches reports whether group from references group to, directly or
// transitively.
func (g *Graph) Reaches(from, to string) bool {
	f, ok := g.index[from]
	if !ok {
		return false
	}
	t, ok := g.index[to]
	if !ok {
		return false
	}
	return g.reach[f].Contains(t)
}

// Descendants returns every group reachable from name, in config order.
func (g *Graph) Descendants(name string) []string {
	id, ok := g.index[name]
	if !ok {
		return nil
	}
	return g.namesOf(g.reach[id])
}

func (g *Graph) namesOf(b *roaring.Bitmap) []string {
	ids := b.ToArray()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = g.names[id]
	}
	return out
}

// Cycles returns one reference cycle per strongly connected set of groups,
// each written as a path that starts and ends with the same group.
func (g *Graph) Cycles() [][]string {
	var cycles [][]string
	covered := roaring.New()
	for i := range g.names {
		id := uint32(i)
		if covered.Contains(id) || !g.reach[id].Contains(id) {
			continue
		}
		path := g.shortestCycle(id)
		for _, n := range path {
			covered.Add(g.index[n])
		}
		// Groups on a cycle through id reach id and are reached by it.
		for _, other := range g.reach[id].ToArray() {
			if g.reach[other].Contains(id) {
				covered.Add(other)
			}
		}
		cycles = append(cycles, path)
	}
	return cycles
}

// shortestCycle finds the shortest path from id back to itself.
func (g *Graph) shortestCycle(id uint32) []string {
	parent := make(map[uint32]uint32)
	visited := roaring.New()
	queue := []uint32{id}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, next := range g.edges[n].ToArray() {
			if next == id {
				path := []string{g.names[id]}
				for at := n; at != id; at = parent[at] {
					path = append(path, g.names[at])
				}
				slices.Reverse(path[1:])
				return append(path, g.names[id])
			}
			if visited.Contains(next) {
				continue
			}
			visited.Add(next)
			parent[next] = n
			queue = append(queue, next)
		}
	}
	return nil
}

// LinkCandidates returns the groups that may be linked below a position
// inside container without closing a cycle: every group other than container
// that does not reach container. An empty container means a position outside
// any linked group, where every group that is not itself cyclic qualifies.
func (g *Graph) LinkCandidates(container string) []string {
	var out []string
	for i, name := range g.names {
		id := uint32(i)
		if container == "" {
			if !g.reach[id].Contains(id) {
				out = append(out, name)
			}
			continue
		}
		if name == container || g.Reaches(name, container) {
			continue
		}
		out = append(out, name)
	}
	return out
}
