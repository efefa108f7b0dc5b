package resolve

import (
	"github.com/agentic-research/switch/internal/schema"
)

// Reference is one link from an entry to a group.
type Reference struct {
	Owner  string `json:"owner"`
	Entry  string `json:"entry"`
	Target string `json:"target"`
}

// Report lists the reference problems of a config.
type Report struct {
	// Dangling links name groups that do not exist. They resolve to nothing.
	Dangling []Reference `json:"dangling,omitempty"`
	// Cycles make resolution fail.
	Cycles [][]string `json:"cycles,omitempty"`
}

// OK reports whether the config has no cycles. Dangling links are allowed.
func (r Report) OK() bool { return len(r.Cycles) == 0 }

// Check validates every reference of cfg.
func Check(cfg *schema.Config) Report {
	var rep Report
	collect := func(owner string, g *schema.Group) {
		for _, e := range g.Entries {
			for _, link := range e.Links {
				if !cfg.HasLinked(link) {
					rep.Dangling = append(rep.Dangling, Reference{Owner: owner, Entry: e.Name, Target: link})
				}
			}
		}
	}
	collect(schema.KeyBaseFolders, cfg.BaseFolders())
	for _, name := range cfg.LinkedFolderNames() {
		collect(name, cfg.LinkedSubFolder(name))
	}
	rep.Cycles = NewGraph(cfg).Cycles()
	return rep
}
