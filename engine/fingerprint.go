package engine

import "sort"

// fingerprints pairs each peak (anchor) with up to Fanout later peaks
// (targets) within [DtMin, DtMaxFrames] frames, producing hashable
// (f1, f2, dt, t1) quadruples. Peaks are sorted by (t, f) first so that
// "scan forward, stop once dt exceeds the max" is a valid short-circuit.
func (e *Engine) fingerprints(peaks []Peak) []Fingerprint {
	if len(peaks) == 0 {
		return nil
	}

	sorted := make([]Peak, len(peaks))
	copy(sorted, peaks)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].T != sorted[j].T {
			return sorted[i].T < sorted[j].T
		}
		return sorted[i].F < sorted[j].F
	})

	dtMin := e.cfg.DtMin
	dtMax := e.cfg.DtMaxFrames()
	fanout := e.cfg.Fanout

	var out []Fingerprint
	for i, anchor := range sorted {
		emitted := 0
		for j := i + 1; j < len(sorted) && emitted < fanout; j++ {
			target := sorted[j]
			dt := target.T - anchor.T
			if dt > dtMax {
				break
			}
			if dt < dtMin {
				continue
			}
			out = append(out, Fingerprint{
				F1: anchor.F,
				F2: target.F,
				Dt: dt,
				T1: anchor.T,
			})
			emitted++
		}
	}
	return out
}
