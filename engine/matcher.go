package engine

type voteKey struct {
	track  TrackID
	offset int
}

// recognize probes the index for every query fingerprint, accumulates an
// offset histogram per track, and returns the single best (track, offset)
// by vote count. It never errors on "no match" — that is a successful
// result with Matched=false.
func (e *Engine) recognize(queryFPs []Fingerprint) MatchResult {
	votes := make(map[voteKey]int)

	for _, fp := range queryFPs {
		postings := e.index.ProbeTriple(fp.F1, fp.F2, fp.Dt)
		for _, p := range postings {
			offset := p.T1 - fp.T1
			votes[voteKey{track: p.Track, offset: offset}]++
		}
	}

	if len(votes) == 0 {
		return noMatchResult(0)
	}

	var best voteKey
	bestScore := -1
	for k, v := range votes {
		if v > bestScore || (v == bestScore && lessVoteKey(k, best)) {
			bestScore = v
			best = k
		}
	}

	return e.resultFor(best, bestScore)
}

// lessVoteKey breaks vote-count ties by lexicographic (track_id, offset).
func lessVoteKey(a, b voteKey) bool {
	if a.track != b.track {
		return a.track < b.track
	}
	return a.offset < b.offset
}

func (e *Engine) resultFor(k voteKey, score int) MatchResult {
	conf := confidenceFor(score)
	if score < 200 {
		return noMatchResult(score)
	}

	name := ""
	if meta, ok := e.index.TrackMeta(k.track); ok {
		name = meta.Name
	}

	offsetSeconds := float64(k.offset) * float64(e.cfg.Hop()) / float64(e.cfg.SampleRate)

	return MatchResult{
		Matched:       true,
		Track:         k.track,
		TrackName:     name,
		OffsetSeconds: offsetSeconds,
		Score:         score,
		Confidence:    conf,
	}
}

func noMatchResult(score int) MatchResult {
	return MatchResult{
		Matched:    false,
		Score:      score,
		Confidence: NoMatch,
		Message:    "no confident match found",
	}
}
