package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/switch/internal/schema"
)

func graphConfig(t *testing.T, links map[string][]string, order ...string) *schema.Config {
	t.Helper()
	c := schema.New()
	for _, name := range order {
		g := schema.NewGroup(name)
		for i, target := range links[name] {
			g.Set(name+"_"+string(rune('a'+i)), target)
		}
		if len(links[name]) == 0 {
			g.Set("leaf")
		}
		require.NoError(t, c.SetLinked(g))
	}
	return c
}

func TestGraphClosure(t *testing.T) {
	c := schema.DefaultConfig()
	g := NewGraph(c)

	assert.True(t, g.Reaches("LINKED03", "LINKED02"))
	assert.False(t, g.Reaches("LINKED02", "LINKED03"))
	assert.False(t, g.Reaches("LINKED03", "missing"))
	assert.Equal(t, []string{"LINKED02"}, g.Descendants("LINKED03"))
	assert.Empty(t, g.Descendants("LINKED01"))
	assert.Empty(t, g.Cycles())
}

func TestGraphCycles(t *testing.T) {
	c := graphConfig(t, map[string][]string{
		"A": {"B"},
		"B": {"C"},
		"C": {"A"},
		"D": {"D"},
		"E": {"A"},
	}, "A", "B", "C", "D", "E")

	g := NewGraph(c)
	assert.Equal(t, [][]string{{"A", "B", "C", "A"}, {"D", "D"}}, g.Cycles())
	assert.True(t, g.Reaches("E", "C"))
}

func TestLinkCandidates(t *testing.T) {
	// X -> Y -> Z; W stands alone.
	c := graphConfig(t, map[string][]string{
		"X": {"Y"},
		"Y": {"Z"},
	}, "X", "Y", "Z", "W")
	g := NewGraph(c)

	assert.Equal(t, []string{"W"}, g.LinkCandidates("Z"), "nothing that reaches Z, nor Z itself")
	assert.Equal(t, []string{"Z", "W"}, g.LinkCandidates("Y"))
	assert.Equal(t, []string{"X", "Y", "Z", "W"}, g.LinkCandidates(""))
}

func TestCheck(t *testing.T) {
	c := schema.DefaultConfig()
	rep := Check(c)
	assert.True(t, rep.OK())
	assert.Equal(t, []Reference{{Owner: schema.KeyBaseFolders, Entry: "baseFolder02", Target: "test"}}, rep.Dangling)

	loop := schema.NewGroup("LINKED02")
	loop.Set("back", "LINKED03")
	require.NoError(t, c.SetLinked(loop))
	rep = Check(c)
	assert.False(t, rep.OK())
	assert.Equal(t, [][]string{{"LINKED02", "LINKED03", "LINKED02"}}, rep.Cycles)
}
