// Package resolve expands linked-group references of a schema into concrete
// folder trees and analyses the reference graph between groups.
package resolve

import (
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/agentic-research/switch/api"
	"github.com/agentic-research/switch/internal/logging"
	"github.com/agentic-research/switch/internal/schema"
)

// Resolver expands groups of one config. It never modifies the config and
// every call returns freshly allocated nodes.
type Resolver struct {
	cfg *schema.Config
	log logrus.FieldLogger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for debug tracing.
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Resolver) { r.log = l }
}

// New returns a resolver over cfg.
func New(cfg *schema.Config, opts ...Option) *Resolver {
	r := &Resolver{cfg: cfg, log: logging.Discard()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// BaseFolders resolves the BASEFOLDERS group of cfg.
func BaseFolders(cfg *schema.Config) ([]api.Node, error) {
	return New(cfg).BaseFolders()
}

// BaseFolders resolves the folders created under every asset.
func (r *Resolver) BaseFolders() ([]api.Node, error) {
	return r.Group(r.cfg.BaseFolders())
}

// Roots returns the root folders as leaf nodes.
func (r *Resolver) Roots() []api.Node {
	var nodes []api.Node
	for name := range r.cfg.IterRoots() {
		nodes = append(nodes, api.Node{Name: name})
	}
	return nodes
}

// Linked resolves the entries of the named linked group. The group itself is
// on the expansion path, so a self reference is reported as a cycle.
func (r *Resolver) Linked(name string) ([]api.Node, error) {
	if !r.cfg.HasLinked(name) {
		return nil, nil
	}
	return r.entries(r.cfg.LinkedSubFolder(name), []string{name})
}

// Group resolves the entries of g. Entries named after reserved keys are
// skipped. A link to a missing group contributes no children.
func (r *Resolver) Group(g *schema.Group) ([]api.Node, error) {
	return r.entries(g, nil)
}

func (r *Resolver) entries(g *schema.Group, path []string) ([]api.Node, error) {
	if g == nil {
		return nil, nil
	}
	var nodes []api.Node
	for _, e := range g.Entries {
		if schema.IsReserved(e.Name) {
			r.log.WithField("entry", e.Name).Debug("skipping reserved key")
			continue
		}
		n := api.Node{Name: e.Name}
		for _, link := range e.Links {
			children, err := r.expand(link, path)
			if err != nil {
				return nil, err
			}
			n.Children = merge(n.Children, children)
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (r *Resolver) expand(link string, path []string) ([]api.Node, error) {
	if i := slices.Index(path, link); i >= 0 {
		cycle := append(slices.Clone(path[i:]), link)
		return nil, &CyclicReferenceError{Cycle: cycle}
	}
	if !r.cfg.HasLinked(link) {
		r.log.WithField("group", link).Debug("linked group not found, treating as leaf")
		return nil, nil
	}
	r.log.WithFields(logrus.Fields{"group": link, "depth": len(path)}).Debug("expanding linked group")
	next := append(slices.Clone(path), link)
	return r.entries(r.cfg.LinkedSubFolder(link), next)
}

// merge appends src to dst, folding nodes with the same name together.
func merge(dst, src []api.Node) []api.Node {
	for _, n := range src {
		i := slices.IndexFunc(dst, func(d api.Node) bool { return d.Name == n.Name })
		if i < 0 {
			dst = append(dst, n)
			continue
		}
		dst[i].Children = merge(dst[i].Children, n.Children)
	}
	return dst
}
