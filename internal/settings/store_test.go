package settings

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetSet(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.Get("theme")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("theme", "core"))
	require.NoError(t, s.Set("theme", "dark"))
	v, ok, err := s.Get("theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)
}

func TestLastOpened(t *testing.T) {
	s := openTestStore(t)

	v, err := s.LastOpened()
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.SetLastOpened("/configs/a.json"))
	require.NoError(t, s.SetLastOpened("/configs/b.json"))
	v, err = s.LastOpened()
	require.NoError(t, err)
	assert.Equal(t, "/configs/b.json", v)

	recent, err := s.Recent(KindConfigs)
	require.NoError(t, err)
	assert.Equal(t, []string{"/configs/b.json", "/configs/a.json"}, recent)
}

func TestTouchKeepsNewest(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < MaxRecent+3; i++ {
		require.NoError(t, s.Touch(KindFiles, fmt.Sprintf("/f/%02d.ma", i)))
	}
	// Re-touching moves an entry back to the top.
	require.NoError(t, s.Touch(KindFiles, "/f/05.ma"))

	recent, err := s.Recent(KindFiles)
	require.NoError(t, err)
	require.Len(t, recent, MaxRecent)
	assert.Equal(t, "/f/05.ma", recent[0])
	assert.Equal(t, "/f/12.ma", recent[1])
	assert.NotContains(t, recent, "/f/00.ma")
	assert.NotContains(t, recent, "/f/02.ma")
	assert.Contains(t, recent, "/f/03.ma")

	other, err := s.Recent(KindConfigs)
	require.NoError(t, err)
	assert.Empty(t, other, "lists are separate")
}

func TestPrune(t *testing.T) {
	s := openTestStore(t)
	for _, p := range []string{"/a", "/gone", "/b"} {
		require.NoError(t, s.Touch(KindFiles, p))
	}

	removed, err := s.Prune(KindFiles, func(p string) bool { return p != "/gone" })
	require.NoError(t, err)
	assert.Equal(t, []string{"/gone"}, removed)

	recent, err := s.Recent(KindFiles)
	require.NoError(t, err)
	assert.Equal(t, []string{"/b", "/a"}, recent)
}

func TestUnknownKind(t *testing.T) {
	s := openTestStore(t)
	assert.ErrorIs(t, s.Touch(Kind("themes"), "/x"), ErrUnknownKind)
	_, err := s.Recent(Kind("themes"))
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestReopenKeepsData(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "settings.db")
	s, err := Open(dsn)
	require.NoError(t, err)
	require.NoError(t, s.SetLastOpened("/configs/show.json"))
	require.NoError(t, s.Close())

	s, err = Open(dsn)
	require.NoError(t, err)
	defer s.Close()
	v, err := s.LastOpened()
	require.NoError(t, err)
	assert.Equal(t, "/configs/show.json", v)
}

func TestMigrationsAppliedOnce(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "settings.db")
	s, err := Open(dsn)
	require.NoError(t, err)
	applied, err := s.Migrations()
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql"}, applied)
	require.NoError(t, s.Close())

	s, err = Open(dsn)
	require.NoError(t, err)
	defer s.Close()
	applied, err = s.Migrations()
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql"}, applied)
}

func TestOpenErrorNamesDatabase(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings "+dir)
}
