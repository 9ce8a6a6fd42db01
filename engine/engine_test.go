package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sr = 44100

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(DefaultConfig())
	require.NoError(t, err)
	return e
}

// Scenario 1: self-match against a synthetic chirp.
func TestRecognize_SelfMatch_Chirp(t *testing.T) {
	e := newTestEngine(t)
	full := chirp(200, 4000, 120, sr)

	_, err := e.Ingest("chirp", full, sr, 120)
	require.NoError(t, err)

	clip := slice(full, 30, 6, sr)
	result, err := e.Recognize(clip, sr)
	require.NoError(t, err)

	require.True(t, result.Matched)
	assert.Equal(t, "chirp", result.TrackName)
	assert.InDelta(t, 30.0, result.OffsetSeconds, 0.2)
	assert.Equal(t, High, result.Confidence)
}

// Scenario 2: querying a clip from track B returns B, not A.
func TestRecognize_WrongTrack(t *testing.T) {
	e := newTestEngine(t)

	a := whiteNoise(1, 60, sr)
	b := toneMixture([]float64{440, 880, 1320}, 60, sr)

	_, err := e.Ingest("A", a, sr, 60)
	require.NoError(t, err)
	_, err = e.Ingest("B", b, sr, 60)
	require.NoError(t, err)

	clip := slice(b, 10, 6, sr)
	result, err := e.Recognize(clip, sr)
	require.NoError(t, err)

	require.True(t, result.Matched)
	assert.Equal(t, "B", result.TrackName)
}

// Scenario 3: a query unrelated to anything ingested yields NoMatch.
func TestRecognize_UnknownQuery(t *testing.T) {
	e := newTestEngine(t)

	a := whiteNoise(2, 60, sr)
	_, err := e.Ingest("A", a, sr, 60)
	require.NoError(t, err)

	query := whiteNoise(999, 6, sr)
	result, err := e.Recognize(query, sr)
	require.NoError(t, err)

	assert.False(t, result.Matched)
	assert.Less(t, result.Score, 200)
}

// Scenario 4: an empty query is InvalidInput.
func TestRecognize_EmptyQuery(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Recognize(nil, sr)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// Scenario 5: three distinct tracks, each found from its own clip.
func TestRecognize_MultiTrack(t *testing.T) {
	e := newTestEngine(t)

	tracks := map[string][]float32{
		"sweepA": chirp(300, 3000, 45, sr),
		"sweepB": chirp(500, 5000, 45, sr),
		"tones":  toneMixture([]float64{220, 660, 990}, 45, sr),
	}
	for name, samples := range tracks {
		_, err := e.Ingest(name, samples, sr, 45)
		require.NoError(t, err)
	}

	for name, samples := range tracks {
		clip := slice(samples, 10, 6, sr)
		result, err := e.Recognize(clip, sr)
		require.NoError(t, err)
		require.Truef(t, result.Matched, "expected a match for %s", name)
		assert.Equalf(t, name, result.TrackName, "wrong track for %s clip", name)
		assert.GreaterOrEqualf(t, result.Score, 1000, "expected score>=1000 for %s", name)
	}
}

// Scenario 6: determinism — ingesting the same audio into two independent
// engines yields snapshots with identical postings per hash key.
func TestIngest_Deterministic(t *testing.T) {
	samples := chirp(220, 2200, 20, sr)

	e1 := newTestEngine(t)
	e2 := newTestEngine(t)

	_, err := e1.Ingest("t", samples, sr, 20)
	require.NoError(t, err)
	_, err = e2.Ingest("t", samples, sr, 20)
	require.NoError(t, err)

	snap1, err := e1.Index().Snapshot()
	require.NoError(t, err)
	snap2, err := e2.Index().Snapshot()
	require.NoError(t, err)

	restored := NewIndex()
	require.NoError(t, restored.Restore(snap1))
	_, h1 := restored.Stats()

	restored2 := NewIndex()
	require.NoError(t, restored2.Restore(snap2))
	_, h2 := restored2.Stats()

	assert.Equal(t, h1, h2)
	require.Len(t, restored2.buckets, len(restored.buckets))
	for key, postings := range restored.buckets {
		assert.ElementsMatch(t, postings, restored2.buckets[key])
	}
}

// Invariant 6/7: index monotonicity and snapshot round-trip.
func TestIndex_MonotonicityAndRoundTrip(t *testing.T) {
	ix := NewIndex()
	fps := []Fingerprint{
		{F1: 1, F2: 2, Dt: 5, T1: 10},
		{F1: 1, F2: 2, Dt: 5, T1: 20},
		{F1: 3, F2: 4, Dt: 7, T1: 30},
	}
	id := ix.AllocateTrackID()
	ix.Insert(id, TrackMeta{ID: id, Name: "x"}, fps)

	_, hashCount := ix.Stats()
	require.Equal(t, len(fps), hashCount)

	before := ix.ProbeTriple(1, 2, 5)
	require.Len(t, before, 2)

	fps2 := []Fingerprint{{F1: 1, F2: 2, Dt: 5, T1: 99}}
	id2 := ix.AllocateTrackID()
	ix.Insert(id2, TrackMeta{ID: id2, Name: "y"}, fps2)

	after := ix.ProbeTriple(1, 2, 5)
	assert.Len(t, after, 3)
	for _, p := range before {
		assert.Contains(t, after, p)
	}

	snap, err := ix.Snapshot()
	require.NoError(t, err)

	restored := NewIndex()
	require.NoError(t, restored.Restore(snap))
	assert.ElementsMatch(t, ix.ProbeTriple(1, 2, 5), restored.ProbeTriple(1, 2, 5))
	assert.ElementsMatch(t, ix.ProbeTriple(3, 4, 7), restored.ProbeTriple(3, 4, 7))
}

func TestIndex_RestoreCorruptData(t *testing.T) {
	ix := NewIndex()
	err := ix.Restore([]byte("not a gob stream"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorruptIndex)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NFFT = 0
	_, err := New(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFormatOffset(t *testing.T) {
	assert.Equal(t, "0:05", FormatOffset(5.9))
	assert.Equal(t, "1:05", FormatOffset(65))
	assert.Equal(t, "-0:03", FormatOffset(-3.2))
}
