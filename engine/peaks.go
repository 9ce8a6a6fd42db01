package engine

// peaks selects sparse, locally dominant points from a spectrogram: the
// frequency axis is split into NumBands contiguous bands, and within each
// band a cell is accepted iff it equals the maximum of its
// (2*TimeNeighborhood+1) x (2*FreqNeighborhood+1) neighborhood (clipped to
// the band) and is >= AmplitudeThresholdDB relative to the spectrogram's
// own maximum (already baked into the dB values by spectrogram()).
func (e *Engine) peaks(grid *Spectrogram) []Peak {
	cfg := e.cfg
	minFrames := 2*cfg.TimeNeighborhood + 1
	if minFrames < 1 {
		minFrames = 1
	}
	if grid.T < minFrames {
		return nil
	}

	bandEdges := partitionBands(grid.F, cfg.NumBands)

	var out []Peak
	for b := 0; b < len(bandEdges)-1; b++ {
		lo, hi := bandEdges[b], bandEdges[b+1]
		if lo >= hi {
			continue
		}
		out = append(out, peaksInBand(grid, lo, hi, cfg.FreqNeighborhood, cfg.TimeNeighborhood, cfg.AmplitudeThresholdDB)...)
	}
	return out
}

// partitionBands splits [0, f) into numBands contiguous, roughly
// equal-width ranges, returning numBands+1 edges.
func partitionBands(f, numBands int) []int {
	edges := make([]int, numBands+1)
	for i := 0; i <= numBands; i++ {
		edges[i] = i * f / numBands
	}
	return edges
}

func peaksInBand(grid *Spectrogram, loF, hiF, freqR, timeR int, threshDB float64) []Peak {
	var band []Peak
	for t := 0; t < grid.T; t++ {
		row := grid.Data[t]
		for f := loF; f < hiF; f++ {
			amp := row[f]
			if amp < threshDB {
				continue
			}
			if isLocalMax(grid, t, f, loF, hiF, freqR, timeR) {
				band = append(band, Peak{F: f, T: t, A: amp})
			}
		}
	}
	return band
}

func isLocalMax(grid *Spectrogram, t, f, loF, hiF, freqR, timeR int) bool {
	val := grid.Data[t][f]
	tMin, tMax := t-timeR, t+timeR
	if tMin < 0 {
		tMin = 0
	}
	if tMax >= grid.T {
		tMax = grid.T - 1
	}
	fMin, fMax := f-freqR, f+freqR
	if fMin < loF {
		fMin = loF
	}
	if fMax >= hiF {
		fMax = hiF - 1
	}

	for nt := tMin; nt <= tMax; nt++ {
		row := grid.Data[nt]
		for nf := fMin; nf <= fMax; nf++ {
			if row[nf] > val {
				return false
			}
		}
	}
	return true
}
