// Package schema holds the persisted folder-schema configuration: project
// paths, the asset roots, the base folders created for every asset and the
// named linked groups they reference.
package schema

import (
	"fmt"
	"iter"
	"path/filepath"
	"slices"
	"strings"
)

// Reserved top-level keys of the persisted config. They never name a
// linked group.
const (
	KeyProjectName = "projectName"
	KeyProjectPath = "projectPath"
	KeyConfigRoot  = "configRoot"
	KeyValidExt    = "validExt"
	KeyRoots       = "ROOTS"
	KeyBaseFolders = "BASEFOLDERS"
)

// LeafMarker is the literal link value that terminates a branch.
const LeafMarker = "None"

var reservedKeys = map[string]bool{
	KeyProjectName: true,
	KeyProjectPath: true,
	KeyConfigRoot:  true,
	KeyValidExt:    true,
	KeyRoots:       true,
	KeyBaseFolders: true,
}

// IsReserved reports whether key is one of the reserved top-level keys.
func IsReserved(key string) bool { return reservedKeys[key] }

// IsLeafMarker reports whether a link value means "no children".
func IsLeafMarker(link string) bool { return link == "" || link == LeafMarker }

// NormalizeLinks drops leaf markers and duplicates, preserving order.
// It returns nil when nothing is left.
func NormalizeLinks(links []string) []string {
	var out []string
	for _, l := range links {
		if IsLeafMarker(l) || slices.Contains(out, l) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Entry is one folder of a group together with the linked groups that
// define its children. An entry without links is a leaf.
type Entry struct {
	Name  string
	Links []string
}

// IsLeaf reports whether the entry has no linked children.
func (e Entry) IsLeaf() bool { return len(e.Links) == 0 }

// Group is an ordered mapping of folder name to links. BASEFOLDERS and
// every named linked group are Groups.
type Group struct {
	Name    string
	Entries []Entry
}

// NewGroup returns an empty group.
func NewGroup(name string) *Group {
	return &Group{Name: name}
}

// Len returns the number of entries. A nil group is empty.
func (g *Group) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Entries)
}

func (g *Group) index(name string) int {
	if g == nil {
		return -1
	}
	for i, e := range g.Entries {
		if e.Name == name {
			return i
		}
	}
	return -1
}

func (g *Group) entries() []Entry {
	if g == nil {
		return nil
	}
	return g.Entries
}

// Get returns the entry with the given folder name.
func (g *Group) Get(name string) (Entry, bool) {
	i := g.index(name)
	if i < 0 {
		return Entry{}, false
	}
	return g.Entries[i], true
}

// Set stores links under name, replacing an existing entry in place or
// appending a new one.
func (g *Group) Set(name string, links ...string) {
	e := Entry{Name: name, Links: NormalizeLinks(links)}
	if i := g.index(name); i >= 0 {
		g.Entries[i] = e
		return
	}
	g.Entries = append(g.Entries, e)
}

// Delete removes the entry with the given name.
func (g *Group) Delete(name string) bool {
	i := g.index(name)
	if i < 0 {
		return false
	}
	g.Entries = slices.Delete(g.Entries, i, i+1)
	return true
}

// Names returns the folder names in order.
func (g *Group) Names() []string {
	if g == nil {
		return nil
	}
	names := make([]string, len(g.Entries))
	for i, e := range g.Entries {
		names[i] = e.Name
	}
	return names
}

// Clone returns a deep copy. Cloning nil yields an empty, unnamed group.
func (g *Group) Clone() *Group {
	if g == nil {
		return &Group{}
	}
	c := &Group{Name: g.Name}
	for _, e := range g.Entries {
		c.Entries = append(c.Entries, Entry{Name: e.Name, Links: slices.Clone(e.Links)})
	}
	return c
}

// Config is the in-memory schema store. The zero value is not usable;
// construct with New or DefaultConfig, or load one from disk.
type Config struct {
	ProjectName string
	ProjectPath string
	ConfigRoot  string
	// ValidExt is nil when the config does not list extensions.
	ValidExt []string

	roots       []string
	baseFolders *Group
	linked      []*Group
}

// New returns an empty config.
func New() *Config {
	return &Config{baseFolders: NewGroup(KeyBaseFolders)}
}

// IterRoots yields the root folder names in insertion order.
func (c *Config) IterRoots() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, r := range c.roots {
			if !yield(r) {
				return
			}
		}
	}
}

// Roots returns a copy of the root folder names.
func (c *Config) Roots() []string { return slices.Clone(c.roots) }

// HasRoot reports whether name is a root folder.
func (c *Config) HasRoot(name string) bool { return slices.Contains(c.roots, name) }

// AddRoot appends a root folder. Roots form an ordered set.
func (c *Config) AddRoot(name string) error {
	if c.HasRoot(name) {
		return fmt.Errorf("root %q: %w", name, ErrDuplicate)
	}
	c.roots = append(c.roots, name)
	return nil
}

// RemoveRoot removes a root folder.
func (c *Config) RemoveRoot(name string) bool {
	i := slices.Index(c.roots, name)
	if i < 0 {
		return false
	}
	c.roots = slices.Delete(c.roots, i, i+1)
	return true
}

// IterBaseFolders yields each base folder with its linked group names.
// The slice is never nil: a leaf yields a single empty reference.
func (c *Config) IterBaseFolders() iter.Seq2[string, []string] {
	return func(yield func(string, []string) bool) {
		for _, e := range c.baseFolders.entries() {
			links := slices.Clone(e.Links)
			if len(links) == 0 {
				links = []string{""}
			}
			if !yield(e.Name, links) {
				return
			}
		}
	}
}

// BaseFolders returns a copy of the BASEFOLDERS group.
func (c *Config) BaseFolders() *Group {
	g := c.baseFolders.Clone()
	g.Name = KeyBaseFolders
	return g
}

// SetBaseFolders replaces the BASEFOLDERS group with a copy of g.
func (c *Config) SetBaseFolders(g *Group) {
	c.baseFolders = g.Clone()
	c.baseFolders.Name = KeyBaseFolders
}

// LinkedFolderNames returns every named linked group, in config order.
func (c *Config) LinkedFolderNames() []string {
	names := make([]string, len(c.linked))
	for i, g := range c.linked {
		names[i] = g.Name
	}
	return names
}

func (c *Config) linkedIndex(name string) int {
	for i, g := range c.linked {
		if g.Name == name {
			return i
		}
	}
	return -1
}

// HasLinked reports whether a linked group with the given name exists.
func (c *Config) HasLinked(name string) bool {
	return !IsReserved(name) && c.linkedIndex(name) >= 0
}

// LinkedSubFolder returns a copy of the named linked group. An unknown or
// reserved name yields an empty group, never an error.
func (c *Config) LinkedSubFolder(name string) *Group {
	if IsReserved(name) {
		return NewGroup(name)
	}
	i := c.linkedIndex(name)
	if i < 0 {
		return NewGroup(name)
	}
	return c.linked[i].Clone()
}

// SetLinked stores a copy of g as a named linked group, replacing any group
// with the same name in place.
func (c *Config) SetLinked(g *Group) error {
	if IsReserved(g.Name) {
		return fmt.Errorf("linked group %q: %w", g.Name, ErrReservedName)
	}
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("linked group: %w", ErrEmptyName)
	}
	cp := g.Clone()
	if i := c.linkedIndex(g.Name); i >= 0 {
		c.linked[i] = cp
		return nil
	}
	c.linked = append(c.linked, cp)
	return nil
}

// RemoveLinked deletes a linked group. References to it are left alone and
// resolve to nothing.
func (c *Config) RemoveLinked(name string) bool {
	i := c.linkedIndex(name)
	if i < 0 {
		return false
	}
	c.linked = slices.Delete(c.linked, i, i+1)
	return true
}

// ValidExtensions returns the configured file extensions, or the built-in
// 3D asset list when the config does not define any.
func (c *Config) ValidExtensions() []string {
	if c.ValidExt == nil {
		return DefaultExtensions()
	}
	return slices.Clone(c.ValidExt)
}

// ProjectPathTokens splits the project path on "/".
func (c *Config) ProjectPathTokens() []string {
	return strings.Split(c.ProjectPath, "/")
}

// RootPathTokens returns the project path tokens followed by configRoot.
func (c *Config) RootPathTokens() []string {
	return append(c.ProjectPathTokens(), c.ConfigRoot)
}

// RootPath is projectPath/configRoot in OS form.
func (c *Config) RootPath() string {
	return filepath.Join(filepath.FromSlash(c.ProjectPath), c.ConfigRoot)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := &Config{
		ProjectName: c.ProjectName,
		ProjectPath: c.ProjectPath,
		ConfigRoot:  c.ConfigRoot,
		ValidExt:    slices.Clone(c.ValidExt),
		roots:       slices.Clone(c.roots),
		baseFolders: c.baseFolders.Clone(),
	}
	cp.baseFolders.Name = KeyBaseFolders
	for _, g := range c.linked {
		cp.linked = append(cp.linked, g.Clone())
	}
	return cp
}

// Document renders the persisted form as generic JSON-like values:
// map[string]any, []any, string and nil.
func (c *Config) Document() map[string]any {
	doc := map[string]any{
		KeyProjectName: c.ProjectName,
		KeyProjectPath: c.ProjectPath,
		KeyConfigRoot:  c.ConfigRoot,
	}
	roots := make(map[string]any, len(c.roots))
	for _, r := range c.roots {
		roots[r] = nil
	}
	doc[KeyRoots] = roots
	doc[KeyBaseFolders] = groupDocument(c.baseFolders)
	for _, g := range c.linked {
		doc[g.Name] = groupDocument(g)
	}
	if c.ValidExt != nil {
		exts := make([]any, len(c.ValidExt))
		for i, e := range c.ValidExt {
			exts[i] = e
		}
		doc[KeyValidExt] = exts
	}
	return doc
}

func groupDocument(g *Group) map[string]any {
	out := make(map[string]any, g.Len())
	for _, e := range g.entries() {
		out[e.Name] = linkValues(e.Links)
	}
	return out
}

// linkValues is the persisted form of a link list; a leaf is [null].
func linkValues(links []string) []any {
	if len(links) == 0 {
		return []any{nil}
	}
	out := make([]any, len(links))
	for i, l := range links {
		out[i] = l
	}
	return out
}
