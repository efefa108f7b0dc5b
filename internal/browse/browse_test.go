package browse

import (
	"os"
	"path/filepath"
	"testing"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/switch/internal/schema"
)

func project(t *testing.T) (billy.Filesystem, *schema.Config) {
	t.Helper()
	c := schema.New()
	c.ProjectPath = "/jobs/demo"
	c.ConfigRoot = "assets"
	require.NoError(t, c.AddRoot("chars"))
	require.NoError(t, c.AddRoot("props"))

	fsys := memfs.New()
	for path, body := range map[string]string{
		"/jobs/demo/assets/chars/Hero/hero.ma":    "m",
		"/jobs/demo/assets/chars/Hero/notes.txt":  "n",
		"/jobs/demo/assets/chars/Hero/Sculpt.ZPR": "z",
		"/jobs/demo/assets/chars/Hero/ref/a.png":  "p",
		"/jobs/demo/assets/chars/Hero/Anim/w.fbx": "f",
		"/jobs/demo/assets/props/Rock/rock.obj":   "o",
	} {
		require.NoError(t, util.WriteFile(fsys, path, []byte(body), 0o644))
	}
	return fsys, c
}

func TestRootPath(t *testing.T) {
	fsys, c := project(t)
	b := New(fsys, c)

	p, err := b.RootPath(ProjectRoot)
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/jobs/demo/assets"), p)

	p, err = b.RootPath("props")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/jobs/demo/assets/props"), p)

	_, err = b.RootPath("sets")
	assert.ErrorIs(t, err, ErrUnknownRoot)
}

func TestList(t *testing.T) {
	fsys, c := project(t)
	entries, err := New(fsys, c).List("/jobs/demo/assets/chars/Hero")
	require.NoError(t, err)

	var names []string
	valid := map[string]bool{}
	for _, e := range entries {
		names = append(names, e.Name)
		valid[e.Name] = e.Valid
	}
	assert.Equal(t, []string{"Anim", "ref", "hero.ma", "notes.txt", "Sculpt.ZPR"}, names)
	assert.True(t, valid["hero.ma"])
	assert.True(t, valid["Sculpt.ZPR"])
	assert.False(t, valid["notes.txt"])
	assert.False(t, valid["ref"])
	assert.True(t, entries[0].Dir)

	_, err = New(fsys, c).List("/missing")
	assert.Error(t, err)
}

func TestIsValidFileUsesConfigExtensions(t *testing.T) {
	fsys, c := project(t)
	c.ValidExt = []string{".blend"}
	b := New(fsys, c)
	assert.True(t, b.IsValidFile("scene.blend"))
	assert.False(t, b.IsValidFile("hero.ma"))
	assert.False(t, b.IsValidFile("noext"))
	assert.False(t, b.IsValidFile("scene.BLEND"))
}

func TestMoveAndCopy(t *testing.T) {
	fsys, c := project(t)
	b := New(fsys, c)

	dst, err := b.Copy("/jobs/demo/assets/chars/Hero", "/jobs/demo/assets/props")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/jobs/demo/assets/props/Hero"), dst)
	data, err := util.ReadFile(fsys, "/jobs/demo/assets/props/Hero/ref/a.png")
	require.NoError(t, err)
	assert.Equal(t, "p", string(data))
	_, err = fsys.Stat("/jobs/demo/assets/chars/Hero/ref/a.png")
	assert.NoError(t, err, "copy keeps the source")

	_, err = b.Copy("/jobs/demo/assets/chars/Hero", "/jobs/demo/assets/props")
	assert.ErrorIs(t, err, ErrExists)

	dst, err = b.Move("/jobs/demo/assets/props/Rock/rock.obj", "/jobs/demo/assets/chars/Hero")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/jobs/demo/assets/chars/Hero/rock.obj"), dst)
	_, err = fsys.Stat("/jobs/demo/assets/props/Rock/rock.obj")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = b.Move("/jobs/demo/assets/nope", "/jobs/demo/assets/chars")
	assert.Error(t, err)
	_, err = b.Move("/jobs/demo/assets/chars/Hero/hero.ma", "/jobs/demo/assets/chars/Hero/notes.txt")
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	fsys, c := project(t)
	b := New(fsys, c)

	require.NoError(t, b.Delete("/jobs/demo/assets/chars/Hero/notes.txt"))
	require.NoError(t, b.Delete("/jobs/demo/assets/chars/Hero/ref"))
	_, err := fsys.Stat("/jobs/demo/assets/chars/Hero/ref")
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.Error(t, b.Delete("/jobs/demo/assets/chars/Hero/ref"))
}
