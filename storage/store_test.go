package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundtrace/engine"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracks.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndListTracks(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	meta := engine.TrackMeta{ID: 1, Name: "track one", FingerprintCount: 42, DurationSeconds: 10.5}
	require.NoError(t, s.SaveTrack(ctx, meta))

	rows, err := s.ListTracks(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, meta.ID, rows[0].ID)
	assert.Equal(t, meta.Name, rows[0].Name)
	assert.Equal(t, meta.FingerprintCount, rows[0].FingerprintCount)
}

func TestSaveTrack_UpsertsOnConflict(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveTrack(ctx, engine.TrackMeta{ID: 1, Name: "v1", FingerprintCount: 10}))
	require.NoError(t, s.SaveTrack(ctx, engine.TrackMeta{ID: 1, Name: "v2", FingerprintCount: 20}))

	rows, err := s.ListTracks(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "v2", rows[0].Name)
	assert.Equal(t, 20, rows[0].FingerprintCount)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, ok, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	data := []byte{1, 2, 3, 4, 5}
	require.NoError(t, s.SaveSnapshot(ctx, data))

	loaded, ok, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, data, loaded)
}

func TestEraseAll(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveTrack(ctx, engine.TrackMeta{ID: 1, Name: "x"}))
	require.NoError(t, s.SaveSnapshot(ctx, []byte{9}))

	require.NoError(t, s.EraseAll(ctx))

	rows, err := s.ListTracks(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, ok, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteTrack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveTrack(ctx, engine.TrackMeta{ID: 1, Name: "a"}))
	require.NoError(t, s.SaveTrack(ctx, engine.TrackMeta{ID: 2, Name: "b"}))
	require.NoError(t, s.DeleteTrack(ctx, 1))

	rows, err := s.ListTracks(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, engine.TrackID(2), rows[0].ID)
}
