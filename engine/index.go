package engine

import (
	"bytes"
	"encoding/gob"
	"sync"
	"sync/atomic"
)

// Index is the fingerprint store: a mapping from hash key to an
// append-only list of postings, plus a side table of track metadata. A
// single Index instance supports concurrent Probe calls and serializes
// Insert against Probe with a single-writer/many-reader lock. The
// zero-value Index is not usable; use NewIndex.
type Index struct {
	mu      sync.RWMutex
	buckets map[HashKey][]Posting
	meta    map[TrackID]TrackMeta
	nextID  uint32
}

// NewIndex returns an empty, ready-to-use Index.
func NewIndex() *Index {
	return &Index{
		buckets: make(map[HashKey][]Posting),
		meta:    make(map[TrackID]TrackMeta),
	}
}

// AllocateTrackID interns a new, stable TrackID. Callers build the full
// fingerprint list for an ingest before calling Insert, so allocating the
// id here does not itself need the write lock held across fingerprinting.
func (ix *Index) AllocateTrackID() TrackID {
	return TrackID(atomic.AddUint32(&ix.nextID, 1))
}

// Insert appends a posting for every fingerprint under trackID, and
// records meta in the side table. The whole batch is applied under one
// write-lock critical section, so a concurrent Probe observes either none
// or all of this ingest's postings for any given hash key.
func (ix *Index) Insert(trackID TrackID, meta TrackMeta, fps []Fingerprint) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	for _, fp := range fps {
		key := packKey(fp.F1, fp.F2, fp.Dt)
		ix.buckets[key] = append(ix.buckets[key], Posting{Track: trackID, T1: fp.T1})
	}
	meta.FingerprintCount = len(fps)
	ix.meta[trackID] = meta
}

// Probe returns the postings for a single hash key. The returned slice is
// a copy: callers may not observe later appends through it, and the index
// never reorders or deletes postings in place.
func (ix *Index) Probe(key HashKey) []Posting {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	bucket := ix.buckets[key]
	if len(bucket) == 0 {
		return nil
	}
	out := make([]Posting, len(bucket))
	copy(out, bucket)
	return out
}

// ProbeTriple is a convenience wrapper over Probe that packs (f1, f2, dt)
// into a HashKey.
func (ix *Index) ProbeTriple(f1, f2, dt int) []Posting {
	return ix.Probe(packKey(f1, f2, dt))
}

// Tracks returns the current track metadata table.
func (ix *Index) Tracks() []TrackMeta {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := make([]TrackMeta, 0, len(ix.meta))
	for _, m := range ix.meta {
		out = append(out, m)
	}
	return out
}

// TrackMeta looks up a single track's metadata.
func (ix *Index) TrackMeta(id TrackID) (TrackMeta, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	m, ok := ix.meta[id]
	return m, ok
}

// Stats returns the number of distinct tracks and the total number of
// postings (hash_count) currently stored.
func (ix *Index) Stats() (trackCount, hashCount int) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	trackCount = len(ix.meta)
	for _, bucket := range ix.buckets {
		hashCount += len(bucket)
	}
	return trackCount, hashCount
}

// gobIndex is the wire shape used by Snapshot/Restore. The bucket key type
// (HashKey) is a plain uint32 so gob can encode the map directly.
type gobIndex struct {
	Buckets map[HashKey][]Posting
	Meta    map[TrackID]TrackMeta
	NextID  uint32
}

// Snapshot opaquely serializes the index. The format is not part of the
// external contract (per spec, persistence is an external collaborator);
// Restore(Snapshot(ix)) reproduces identical Probe results for every key.
func (ix *Index) Snapshot() ([]byte, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	snap := gobIndex{Buckets: ix.buckets, Meta: ix.meta, NextID: ix.nextID}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, wrapCorrupt("failed to encode index snapshot: " + err.Error())
	}
	return buf.Bytes(), nil
}

// Restore replaces the index's contents with a previously captured
// Snapshot. It fails with ErrCorruptIndex if data cannot be decoded or
// fails basic structural checks (nil maps).
func (ix *Index) Restore(data []byte) error {
	var snap gobIndex
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return wrapCorrupt("failed to decode index snapshot: " + err.Error())
	}
	if snap.Buckets == nil || snap.Meta == nil {
		return wrapCorrupt("snapshot missing required tables")
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.buckets = snap.Buckets
	ix.meta = snap.Meta
	ix.nextID = snap.NextID
	return nil
}
