package engine

// Config holds the tunable parameters of the fingerprinting and
// recognition pipeline. A Config is immutable once passed to New: changing
// any field requires building a fresh Engine (and re-ingesting reference
// tracks), since fingerprints computed under one Config are not comparable
// to fingerprints computed under another.
type Config struct {
	SampleRate int // audio sample rate in Hz

	NFFT     int // STFT window length, samples
	HopRatio int // hop = NFFT / HopRatio

	FreqNeighborhood int // peak picker bin radius
	TimeNeighborhood int // peak picker frame radius

	AmplitudeThresholdDB float64 // peak floor, relative to grid max
	NumBands             int     // frequency partitions for peak distribution

	Fanout     int     // max targets per anchor
	DtMin      int     // minimum t2-t1 in frames
	DtMaxSecs  float64 // maximum anchor->target span, seconds
}

// DefaultConfig returns the parameters named in the specification.
func DefaultConfig() Config {
	return Config{
		SampleRate:           44100,
		NFFT:                 2048,
		HopRatio:             4,
		FreqNeighborhood:     20,
		TimeNeighborhood:     20,
		AmplitudeThresholdDB: -35,
		NumBands:             6,
		Fanout:               10,
		DtMin:                2,
		DtMaxSecs:            2.0,
	}
}

// DefaultAudiobookConfig favors long-form spoken word: wider hops, fewer
// bands and a lower fanout trade time resolution for roughly an order of
// magnitude fewer fingerprints per second, which keeps storage and index
// memory practical for multi-hour files.
func DefaultAudiobookConfig() Config {
	cfg := DefaultConfig()
	cfg.NFFT = 2048
	cfg.HopRatio = 1
	cfg.NumBands = 3
	cfg.Fanout = 3
	cfg.DtMaxSecs = 4.0
	return cfg
}

// DefaultMusicConfig is the original Shazam-style preset: short windows
// and high fanout for short, noisy music clips.
func DefaultMusicConfig() Config {
	cfg := DefaultConfig()
	cfg.NFFT = 1024
	cfg.HopRatio = 2
	cfg.NumBands = 6
	cfg.Fanout = 5
	cfg.DtMaxSecs = 2.0
	return cfg
}

// Hop returns the STFT hop size in samples.
func (c Config) Hop() int {
	return c.NFFT / c.HopRatio
}

// FreqBins returns the number of frequency bins in a spectrogram computed
// under this Config (N_FFT/2 + 1).
func (c Config) FreqBins() int {
	return c.NFFT/2 + 1
}

// DtMaxFrames returns DT_MAX_SECONDS converted to a frame count using this
// Config's hop size and sample rate.
func (c Config) DtMaxFrames() int {
	return int(c.DtMaxSecs * float64(c.SampleRate) / float64(c.Hop()))
}

func (c Config) validate() error {
	if c.SampleRate <= 0 {
		return wrapInvalid("sample rate must be positive")
	}
	if c.NFFT <= 0 || c.NFFT%2 != 0 {
		return wrapInvalid("n_fft must be a positive even number")
	}
	if c.HopRatio <= 0 {
		return wrapInvalid("hop_ratio must be positive")
	}
	if c.NumBands <= 0 {
		return wrapInvalid("num_bands must be positive")
	}
	if c.Fanout <= 0 {
		return wrapInvalid("fanout must be positive")
	}
	if c.DtMin < 0 {
		return wrapInvalid("dt_min must be non-negative")
	}
	if c.DtMaxSecs <= 0 {
		return wrapInvalid("dt_max_seconds must be positive")
	}
	return nil
}
