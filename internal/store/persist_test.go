package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcadehub/gamehub/internal/model"
)

func TestSaveLoadJSON_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snap.json")

	type doc struct {
		Name string `json:"name"`
		N    int    `json:"n"`
	}
	want := doc{Name: "alice", N: 7}

	require.NoError(t, SaveJSON(path, want))

	var got doc
	require.NoError(t, LoadJSON(path, &got))
	assert.Equal(t, want, got)
}

func TestSaveJSON_NoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snap.json")

	require.NoError(t, SaveJSON(path, map[string]int{"a": 1}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "snap.json", entries[0].Name())
}

func TestLoadJSON_MissingFile(t *testing.T) {
	var out map[string]any
	err := LoadJSON(filepath.Join(t.TempDir(), "missing.json"), &out)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestCatalogue_LoadMissingReturnsEmptySnapshot(t *testing.T) {
	snap, err := LoadCatalogue(filepath.Join(t.TempDir(), "catalogue.json"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.NextGameID)
	assert.Empty(t, snap.Games)
}

func TestCatalogue_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalogue.json")
	snap := &CatalogueSnapshot{
		NextGameID: 3,
		Games: []model.Game{
			{ID: 1, Name: "pong", Owner: "dev1", Versions: map[string]model.Version{}},
			{ID: 2, Name: "chess", Owner: "dev2", Versions: map[string]model.Version{}},
		},
	}
	require.NoError(t, SaveCatalogue(path, snap))

	got, err := LoadCatalogue(path)
	require.NoError(t, err)
	assert.Equal(t, snap.NextGameID, got.NextGameID)
	assert.Len(t, got.Games, 2)
}

func TestUsers_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	snap := &UsersSnapshot{Users: []model.User{
		{Username: "alice", Password: "abc", Role: model.RolePlayer},
	}}
	require.NoError(t, SaveUsers(path, snap))

	got, err := LoadUsers(path)
	require.NoError(t, err)
	require.Len(t, got.Users, 1)
	assert.Equal(t, "alice", got.Users[0].Username)
}
