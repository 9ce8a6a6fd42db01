// Package engine implements the audio fingerprinting and recognition core:
// spectral front-end, banded peak picking, anchor-target fingerprint
// generation, an in-memory fingerprint index, and an offset-histogram
// matcher. Everything outside this package (audio decoding, HTTP, the CLI,
// persistence) is treated as an external collaborator that merely feeds
// the engine decoded samples and renders its results.
package engine

// Engine owns one Config and one Index for its lifetime. It is created
// once by the application and never mutated by configuration changes: a
// different Config requires a new Engine (and re-ingesting tracks).
type Engine struct {
	cfg   Config
	index *Index
}

// New constructs an Engine with an empty index. It returns InvalidInput if
// cfg fails basic validation (non-positive sizes, etc).
func New(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, index: NewIndex()}, nil
}

// Config returns the Engine's (immutable) configuration.
func (e *Engine) Config() Config { return e.cfg }

// Index exposes the underlying fingerprint index, primarily so an external
// persistence collaborator can call Snapshot/Restore on it directly.
func (e *Engine) Index() *Index { return e.index }

// IngestResult is the outcome of a successful Ingest call.
type IngestResult struct {
	TrackID          TrackID
	FingerprintCount int
}

// Ingest computes fingerprints for samples and inserts them into the index
// under trackName, returning the newly allocated TrackID and fingerprint
// count. The full fingerprint list is built before the index write lock is
// taken (Index.Insert), so a cancelled or failed ingest never becomes
// partially visible to concurrent Probe calls.
func (e *Engine) Ingest(trackName string, samples []float32, sr int, durationSeconds float64) (IngestResult, error) {
	fps, err := e.computeFingerprints(samples, sr)
	if err != nil {
		return IngestResult{}, err
	}

	id := e.index.AllocateTrackID()
	meta := TrackMeta{
		ID:              id,
		Name:            trackName,
		DurationSeconds: durationSeconds,
	}
	e.index.Insert(id, meta, fps)

	return IngestResult{TrackID: id, FingerprintCount: len(fps)}, nil
}

// Recognize fingerprints a query buffer and matches it against the index.
// It returns InvalidInput only for malformed input (empty buffer, wrong
// sample rate); "no match found" is a successful MatchResult with
// Matched=false, never an error.
func (e *Engine) Recognize(samples []float32, sr int) (MatchResult, error) {
	fps, err := e.computeFingerprints(samples, sr)
	if err != nil {
		return MatchResult{}, err
	}
	if len(fps) == 0 {
		return noMatchResult(0), nil
	}
	return e.recognize(fps), nil
}

func (e *Engine) computeFingerprints(samples []float32, sr int) ([]Fingerprint, error) {
	if len(samples) == 0 {
		return nil, wrapInvalid("audio buffer is empty")
	}
	grid, err := e.spectrogram(samples, sr)
	if err != nil {
		return nil, err
	}
	pks := e.peaks(grid)
	return e.fingerprints(pks), nil
}

// ListTracks returns every ingested track's metadata.
func (e *Engine) ListTracks() []TrackMeta {
	return e.index.Tracks()
}

// Stats summarizes the index for the stats() API operation.
type Stats struct {
	TrackCount int
	HashCount  int
}

// Stats returns the current track and hash-bucket-entry counts.
func (e *Engine) Stats() Stats {
	tracks, hashes := e.index.Stats()
	return Stats{TrackCount: tracks, HashCount: hashes}
}
