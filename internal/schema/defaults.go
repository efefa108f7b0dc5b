package schema

import "slices"

var defaultExtensions = []string{
	".ma", ".mb", ".obj", ".jpg", ".png", ".ZPR", ".tif", ".tga",
	".zpr", ".stl", ".ZTL", ".lys", ".dlp",
}

// DefaultExtensions returns the built-in list of 3D asset file extensions.
func DefaultExtensions() []string { return slices.Clone(defaultExtensions) }

// DefaultConfigRoot is the configRoot placeholder of the default schema.
const DefaultConfigRoot = "type project root name to update..."

// DefaultConfig returns a fresh copy of the starter schema offered when no
// config has been chosen yet. baseFolder02 links to a group that does not
// exist and therefore resolves to nothing.
func DefaultConfig() *Config {
	c := New()
	c.ConfigRoot = DefaultConfigRoot
	c.roots = []string{"rootFolder01", "rootFolder02"}

	base := NewGroup(KeyBaseFolders)
	base.Set("baseFolder01", "LINKED01")
	base.Set("baseFolder02", "test")
	c.baseFolders = base

	linked01 := NewGroup("LINKED01")
	linked01.Set("photos")

	linked02 := NewGroup("LINKED02")
	linked02.Set("supports")
	linked02.Set("noSupports")

	linked03 := NewGroup("LINKED03")
	linked03.Set("objs", "LINKED02")
	linked03.Set("maya")
	linked03.Set("stl", "LINKED02")

	c.linked = []*Group{linked01, linked02, linked03}
	c.ValidExt = DefaultExtensions()
	return c
}
