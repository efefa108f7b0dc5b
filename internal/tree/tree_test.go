package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/switch/api"
	"github.com/agentic-research/switch/internal/resolve"
	"github.com/agentic-research/switch/internal/schema"
)

// rigConfig: ROOTS={root01}, BASEFOLDERS={Characters: [rig]},
// rig={skeleton: [null], weights: [null]}.
func rigConfig(t *testing.T) *schema.Config {
	t.Helper()
	c := schema.New()
	c.ProjectName = "demo"
	c.ProjectPath = "/jobs/demo"
	c.ConfigRoot = "assets"
	require.NoError(t, c.AddRoot("root01"))
	base := schema.NewGroup(schema.KeyBaseFolders)
	base.Set("Characters", "rig")
	c.SetBaseFolders(base)
	rig := schema.NewGroup("rig")
	rig.Set("skeleton")
	rig.Set("weights")
	require.NoError(t, c.SetLinked(rig))
	return c
}

func mustFind(t *testing.T, tr *Tree, path string) *Node {
	t.Helper()
	n, err := tr.Find(path)
	require.NoError(t, err, path)
	return n
}

func names(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func TestFromConfigStructure(t *testing.T) {
	tr, err := FromConfig(schema.DefaultConfig(), ModeEdit)
	require.NoError(t, err)

	root := tr.Root()
	assert.Equal(t, ProjectRoot, root.Kind)
	assert.Equal(t, schema.DefaultConfigRoot, root.Name)
	assert.Equal(t, []string{"rootFolder01", "rootFolder02"}, names(root.Children))

	for _, r := range root.Children {
		assert.Equal(t, RootEntry, r.Kind)
		require.Len(t, r.Children, 1)
		ph := r.Children[0]
		assert.Equal(t, DynamicPlaceholder, ph.Kind)
		assert.Equal(t, AssetPlaceholder, ph.Name)
		assert.Equal(t, []string{"baseFolder01", "baseFolder02"}, names(ph.Children))
		assert.Equal(t, []string{"LINKED01"}, names(ph.Children[0].Children))
	}

	assert.Equal(t, []string{"LINKED01", "LINKED02", "LINKED03"}, names(tr.Groups()))
	objs := mustFind(t, tr, "linked/LINKED03/objs")
	assert.Equal(t, LinkedGroupEntry, objs.Kind)
	link := mustFind(t, tr, "linked/LINKED03/objs/LINKED02")
	assert.True(t, link.IsLink())
	assert.Same(t, tr.Group("LINKED02").Group, link.Group, "links share the group identity")

	b1 := tr.Root().Children[0].Children[0].Children[0]
	b2 := tr.Root().Children[1].Children[0].Children[0]
	assert.Same(t, b1.Base, b2.Base, "base folder instances share identity")
	assert.Same(t, mustFind(t, tr, "base/baseFolder01").Base, b1.Base)
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		cfg  func(t *testing.T) *schema.Config
	}{
		{"default", func(*testing.T) *schema.Config { return schema.DefaultConfig() }},
		{"rig", rigConfig},
		{"no roots", func(t *testing.T) *schema.Config {
			c := rigConfig(t)
			c.RemoveRoot("root01")
			return c
		}},
		{"empty", func(*testing.T) *schema.Config { return schema.New() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := tt.cfg(t)
			tr, err := FromConfig(want, ModeEdit)
			require.NoError(t, err)
			got, err := tr.ToConfig()
			require.NoError(t, err)
			assert.Equal(t, want.Document(), got.Document())
			assert.Equal(t, want.LinkedFolderNames(), got.LinkedFolderNames())

			tr2, err := FromConfig(got, ModeEdit)
			require.NoError(t, err)
			again, err := tr2.ToConfig()
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestLeafSemanticsThroughCodec(t *testing.T) {
	c, err := schema.Decode([]byte(`{
		"ROOTS": {"r": null},
		"BASEFOLDERS": {"a": null, "b": "None", "c": [null], "d": ["None"]}
	}`), schema.FormatJSON)
	require.NoError(t, err)

	tr, err := FromConfig(c, ModeEdit)
	require.NoError(t, err)
	for _, b := range tr.Template().Children {
		assert.Empty(t, b.Children, b.Name)
	}
	out, err := tr.ToConfig()
	require.NoError(t, err)
	for name, links := range out.IterBaseFolders() {
		assert.Equal(t, []string{""}, links, name)
	}
}

func TestRenameGroupPropagates(t *testing.T) {
	tr, err := FromConfig(rigConfig(t), ModeEdit)
	require.NoError(t, err)

	require.NoError(t, tr.RenameGroup("rig", "skeleton_rig"))

	link := mustFind(t, tr, "base/Characters/skeleton_rig")
	assert.True(t, link.IsLink())
	inst := tr.Root().Child("root01").Children[0].Child("Characters")
	assert.Equal(t, []string{"skeleton_rig"}, names(inst.Children))

	out, err := tr.ToConfig()
	require.NoError(t, err)
	chars, ok := out.BaseFolders().Get("Characters")
	require.True(t, ok)
	assert.Equal(t, []string{"skeleton_rig"}, chars.Links)
	assert.Equal(t, []string{"skeleton_rig"}, out.LinkedFolderNames())

	data, err := schema.Encode(out, schema.FormatJSON)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"rig"`)
}

func TestRenameGroupErrors(t *testing.T) {
	tr, err := FromConfig(schema.DefaultConfig(), ModeEdit)
	require.NoError(t, err)

	assert.ErrorIs(t, tr.RenameGroup("nope", "x"), ErrUnknownGroup)
	assert.ErrorIs(t, tr.RenameGroup("LINKED01", "LINKED02"), schema.ErrDuplicate)
	assert.ErrorIs(t, tr.RenameGroup("LINKED01", schema.KeyRoots), schema.ErrReservedName)
	assert.ErrorIs(t, tr.RenameGroup("LINKED01", "a/b"), schema.ErrInvalidName)
}

func TestDanglingLinkAdoptsNewGroup(t *testing.T) {
	tr, err := FromConfig(schema.DefaultConfig(), ModeEdit)
	require.NoError(t, err)

	// baseFolder02 links to "test", which does not exist yet.
	g, err := tr.AddGroup("test")
	require.NoError(t, err)
	assert.Same(t, g.Group, mustFind(t, tr, "base/baseFolder02/test").Group)

	require.NoError(t, tr.RenameGroup("test", "tests"))
	assert.Equal(t, []string{"tests"}, names(mustFind(t, tr, "base/baseFolder02").Children))

	// Renaming onto a dangling name takes over its links.
	_, err = tr.AddFolder(mustFind(t, tr, "base/baseFolder01"), "later")
	require.NoError(t, err)
	require.NoError(t, tr.RenameGroup("LINKED01", "later"))
	later := mustFind(t, tr, "base/baseFolder01/later")
	assert.Same(t, tr.Group("later").Group, later.Group)
}

func TestRenameOntoDanglingNameRefusesCycle(t *testing.T) {
	// A={sub: [X]} with X missing, B={inner: [A]}. Renaming B to X would
	// close A -> X -> A.
	c := rigConfig(t)
	a := schema.NewGroup("A")
	a.Set("sub", "X")
	require.NoError(t, c.SetLinked(a))
	b := schema.NewGroup("B")
	b.Set("inner", "A")
	require.NoError(t, c.SetLinked(b))
	base := schema.NewGroup(schema.KeyBaseFolders)
	base.Set("Characters", "B")
	c.SetBaseFolders(base)

	tr, err := FromConfig(c, ModeEdit)
	require.NoError(t, err)

	err = tr.RenameGroup("B", "X")
	var cyc *resolve.CyclicReferenceError
	require.ErrorAs(t, err, &cyc)
	assert.Equal(t, "X", cyc.Cycle[0])

	out, err := tr.ToConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"rig", "A", "B"}, out.LinkedFolderNames())
	assert.Equal(t, []string{"B"}, names(mustFind(t, tr, "base/Characters").Children))
	assert.Equal(t, []string{"X"}, names(mustFind(t, tr, "linked/A/sub").Children))
	assert.Empty(t, resolve.Check(out).Cycles)

	// A name nothing reaches back from is still fine.
	require.NoError(t, tr.RenameGroup("B", "Y"))
	assert.Equal(t, []string{"Y"}, names(mustFind(t, tr, "base/Characters").Children))
}

func TestToConfigDoesNotShareExtensions(t *testing.T) {
	c := rigConfig(t)
	c.ValidExt = []string{".ma", ".mb"}
	tr, err := FromConfig(c, ModeEdit)
	require.NoError(t, err)

	out, err := tr.ToConfig()
	require.NoError(t, err)
	out.ValidExt[0] = ".obj"

	again, err := tr.ToConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{".ma", ".mb"}, again.ValidExt)
}

func TestBaseFolderFanOut(t *testing.T) {
	c := rigConfig(t)
	require.NoError(t, c.AddRoot("root02"))
	// A linked entry that happens to share a base folder's name.
	props := schema.NewGroup("props")
	props.Set("Characters")
	require.NoError(t, c.SetLinked(props))

	tr, err := FromConfig(c, ModeEdit)
	require.NoError(t, err)

	ph2 := tr.Root().Child("root02").Children[0]
	added, err := tr.AddFolder(ph2, "Props")
	require.NoError(t, err)
	assert.Same(t, ph2, added.Parent)

	for _, ph := range tr.placeholders() {
		assert.Equal(t, []string{"Characters", "Props"}, names(ph.Children))
	}

	chars1 := tr.Root().Child("root01").Children[0].Child("Characters")
	_, err = tr.AddFolder(chars1, "textures")
	require.NoError(t, err)
	for _, ph := range tr.placeholders() {
		assert.Equal(t, []string{"rig", "textures"}, names(ph.Child("Characters").Children))
	}
	assert.Empty(t, mustFind(t, tr, "linked/props/Characters").Children, "linked region is not fanned out")

	out, err := tr.ToConfig()
	require.NoError(t, err)
	chars, _ := out.BaseFolders().Get("Characters")
	assert.Equal(t, []string{"rig", "textures"}, chars.Links)
	p, _ := out.BaseFolders().Get("Props")
	assert.True(t, p.IsLeaf())

	require.NoError(t, tr.Remove(mustFind(t, tr, "base/Characters/textures")))
	for _, ph := range tr.placeholders() {
		assert.Equal(t, []string{"rig"}, names(ph.Child("Characters").Children))
	}

	require.NoError(t, tr.Rename(chars1, "Chars"))
	for _, ph := range tr.placeholders() {
		assert.Equal(t, []string{"Chars", "Props"}, names(ph.Children))
	}

	require.NoError(t, tr.Remove(mustFind(t, tr, "base/Props")))
	for _, ph := range tr.placeholders() {
		assert.Equal(t, []string{"Chars"}, names(ph.Children))
	}
}

func TestNoneIsTerminal(t *testing.T) {
	tr, err := FromConfig(rigConfig(t), ModeEdit)
	require.NoError(t, err)

	chars := mustFind(t, tr, "base/Characters")
	marker, err := tr.AddFolder(chars, "None")
	require.NoError(t, err)
	assert.True(t, marker.IsTerminal())
	assert.Equal(t, []string{"None"}, names(chars.Children), "None replaces the links")

	_, err = tr.AddFolder(marker, "x")
	assert.ErrorIs(t, err, ErrTerminalNode)

	out, err := tr.ToConfig()
	require.NoError(t, err)
	e, _ := out.BaseFolders().Get("Characters")
	assert.True(t, e.IsLeaf())

	_, err = tr.AddFolder(chars, "rig")
	require.NoError(t, err)
	assert.Equal(t, []string{"rig"}, names(chars.Children), "a link replaces None")

	_, err = tr.AddFolder(mustFind(t, tr, "base/Characters/rig"), "deeper")
	assert.ErrorIs(t, err, ErrTerminalNode)
}

func TestLinkRefusesCycles(t *testing.T) {
	tr, err := FromConfig(schema.DefaultConfig(), ModeEdit)
	require.NoError(t, err)

	supports := mustFind(t, tr, "linked/LINKED02/supports")
	_, err = tr.Link(supports, "LINKED03")
	var cyc *resolve.CyclicReferenceError
	require.ErrorAs(t, err, &cyc)
	assert.Equal(t, []string{"LINKED02", "LINKED03", "LINKED02"}, cyc.Cycle)
	assert.Empty(t, supports.Children)

	_, err = tr.Link(supports, "LINKED02")
	require.ErrorAs(t, err, &cyc)

	cands, err := tr.LinkCandidates(supports)
	require.NoError(t, err)
	assert.Equal(t, []string{"LINKED01"}, cands)

	link, err := tr.Link(supports, "LINKED01")
	require.NoError(t, err)
	assert.True(t, link.IsLink())

	cands, err = tr.LinkCandidates(mustFind(t, tr, "base/baseFolder01"))
	require.NoError(t, err)
	assert.Equal(t, []string{"LINKED02", "LINKED03"}, cands)

	_, err = tr.Link(supports, "missing")
	assert.ErrorIs(t, err, ErrUnknownGroup)
}

func TestRemoveGroup(t *testing.T) {
	tr, err := FromConfig(schema.DefaultConfig(), ModeEdit)
	require.NoError(t, err)

	require.NoError(t, tr.RemoveGroup("LINKED02"))
	assert.Nil(t, tr.Group("LINKED02"))

	out, err := tr.ToConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"LINKED01", "LINKED03"}, out.LinkedFolderNames())
	for _, e := range out.LinkedSubFolder("LINKED03").Entries {
		assert.True(t, e.IsLeaf(), e.Name)
	}
	assert.ErrorIs(t, tr.RemoveGroup("LINKED02"), ErrUnknownGroup)

	require.NoError(t, tr.Remove(tr.Group("LINKED01")))
	assert.Equal(t, []string{"LINKED03"}, names(tr.Groups()))
	assert.Empty(t, mustFind(t, tr, "base/baseFolder01").Children)
}

func TestRootsAndGroups(t *testing.T) {
	tr, err := FromConfig(rigConfig(t), ModeEdit)
	require.NoError(t, err)

	r, err := tr.AddFolder(tr.Root(), "props")
	require.NoError(t, err)
	assert.Equal(t, RootEntry, r.Kind)
	assert.Equal(t, []string{"Characters"}, names(r.Children[0].Children))
	assert.NotSame(t, tr.Template().Children[0], r.Children[0].Children[0])

	_, err = tr.AddRoot("props")
	assert.ErrorIs(t, err, schema.ErrDuplicate)

	_, err = tr.AddFolder(r, "x")
	assert.ErrorIs(t, err, ErrReadOnly)

	g, err := tr.AddGroup("textures")
	require.NoError(t, err)
	entry, err := tr.AddFolder(g, "png")
	require.NoError(t, err)
	assert.Equal(t, LinkedGroupEntry, entry.Kind)

	_, err = tr.AddGroup(schema.KeyBaseFolders)
	assert.ErrorIs(t, err, schema.ErrReservedName)
	_, err = tr.AddGroup("textures")
	assert.ErrorIs(t, err, schema.ErrDuplicate)

	require.NoError(t, tr.Rename(tr.Root(), "library"))
	require.NoError(t, tr.Rename(r, "sets"))
	require.NoError(t, tr.Rename(g, "maps"))
	require.NoError(t, tr.Rename(entry, "exr"))

	out, err := tr.ToConfig()
	require.NoError(t, err)
	assert.Equal(t, "library", out.ConfigRoot)
	assert.Equal(t, []string{"root01", "sets"}, out.Roots())
	assert.Equal(t, []string{"rig", "maps"}, out.LinkedFolderNames())
	assert.Equal(t, []string{"exr"}, out.LinkedSubFolder("maps").Names())

	require.NoError(t, tr.Remove(r))
	out, err = tr.ToConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"root01"}, out.Roots())
}

func TestReadOnlyNodes(t *testing.T) {
	tr, err := FromConfig(rigConfig(t), ModeEdit)
	require.NoError(t, err)

	ph := tr.Root().Child("root01").Children[0]
	assert.ErrorIs(t, tr.Rename(ph, "x"), ErrReadOnly)
	assert.ErrorIs(t, tr.Remove(ph), ErrReadOnly)
	assert.ErrorIs(t, tr.Remove(tr.Root()), ErrReadOnly)
	assert.ErrorIs(t, tr.Rename(mustFind(t, tr, "base/Characters/rig"), "x"), ErrReadOnly)

	_, err = tr.AddFolder(&Node{Kind: LinkedGroupRoot, Name: "stray"}, "x")
	assert.ErrorIs(t, err, ErrForeignNode)
}

func TestPreviewMode(t *testing.T) {
	tr, err := FromConfig(rigConfig(t), ModePreview)
	require.NoError(t, err)

	assert.Equal(t, PlainFolder, mustFind(t, tr, "base/Characters/skeleton").Kind)
	inst := tr.Root().Child("root01").Children[0].Child("Characters")
	assert.Equal(t, []string{"skeleton", "weights"}, names(inst.Children))

	_, err = tr.ToConfig()
	assert.ErrorIs(t, err, ErrPreviewMode)
	_, err = tr.AddFolder(tr.Root(), "x")
	assert.ErrorIs(t, err, ErrPreviewMode)
	assert.ErrorIs(t, tr.RenameGroup("rig", "x"), ErrPreviewMode)

	top, err := tr.Preview("Hero")
	require.NoError(t, err)
	assert.Equal(t, "Hero", top.Asset)
	assert.Equal(t, "assets", top.Root)
	assert.Equal(t, []string{"root01"}, top.Roots)
	assert.Equal(t, map[string]any{
		"Characters": map[string]any{"skeleton": nil, "weights": nil},
	}, api.Map(top.Nodes))
}

func TestPreviewModeCycle(t *testing.T) {
	c := rigConfig(t)
	rig := c.LinkedSubFolder("rig")
	rig.Set("loop", "rig")
	require.NoError(t, c.SetLinked(rig))

	_, err := FromConfig(c, ModePreview)
	var cyc *resolve.CyclicReferenceError
	require.ErrorAs(t, err, &cyc)
	assert.Equal(t, []string{"rig", "rig"}, cyc.Cycle)

	tr, err := FromConfig(c, ModeEdit)
	require.NoError(t, err, "edit mode does not expand links")
	_, err = tr.Preview("")
	assert.ErrorAs(t, err, &cyc)
}

func TestPreviewFromEditTree(t *testing.T) {
	tr, err := FromConfig(rigConfig(t), ModeEdit)
	require.NoError(t, err)
	_, err = tr.AddFolder(mustFind(t, tr, "linked/rig"), "blendshapes")
	require.NoError(t, err)

	top, err := tr.Preview("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPreviewAsset, top.Asset)
	assert.Equal(t, 3, api.Leaves(top.Nodes))
}

func TestFind(t *testing.T) {
	tr, err := FromConfig(schema.DefaultConfig(), ModeEdit)
	require.NoError(t, err)

	n, err := tr.Find("")
	require.NoError(t, err)
	assert.Same(t, tr.Root(), n)
	assert.Equal(t, RootEntry, mustFind(t, tr, "roots/rootFolder02").Kind)
	assert.Equal(t, "LINKED03/objs/LINKED02", mustFind(t, tr, "linked/LINKED03/objs/LINKED02").Path())

	for _, bad := range []string{"roots/x", "roots/rootFolder01/y", "base/a/b/c", "linked", "linked/none", "other/x"} {
		_, err := tr.Find(bad)
		assert.Error(t, err, bad)
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "asset-placeholder", DynamicPlaceholder.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
