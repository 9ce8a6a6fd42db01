package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"

	"soundtrace/audio"
	"soundtrace/catalog"
	"soundtrace/engine"
	"soundtrace/manifest"
)

func (a *application) find(ctx context.Context, filePath string) {
	log.Printf("[find] decoding %s...", filePath)

	buf, err := audio.Load(ctx, filePath)
	if err != nil {
		color.Red("error decoding audio: %v", err)
		return
	}

	result, err := a.engine.Recognize(buf.Samples, buf.SampleRate)
	if err != nil {
		color.Red("error recognizing audio: %v", err)
		return
	}

	if !result.Matched {
		fmt.Println("no match found.")
		return
	}

	color.Green("match: %s (offset %s, score %d, confidence %s)",
		result.TrackName, engine.FormatOffset(result.OffsetSeconds), result.Score, result.Confidence)
}

func (a *application) serve(ctx context.Context, protocol, port string) {
	protocol = strings.ToLower(protocol)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/index", a.handleIndex)
	mux.HandleFunc("/api/match", a.handleMatch)
	mux.HandleFunc("/api/stats", a.handleStats)
	mux.HandleFunc("/api/entries", a.handleEntries)

	mux.Handle("/", http.FileServer(http.Dir("static")))

	handler := requestLogger(corsMiddleware(timeoutMiddleware(30*time.Second, mux)))

	log.Printf("starting server on port %s (%s)\n", port, protocol)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: 200}
		next.ServeHTTP(rec, r)

		if strings.HasPrefix(r.URL.Path, "/api/") {
			log.Printf("[http] %s %s -> %d (%s)", r.Method, r.URL.Path, rec.status, time.Since(start))
		}
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// timeoutMiddleware bounds every HTTP request's server-side processing
// time; the engine itself stays non-cancellable (per its single-caller
// in-process contract), so this is purely an HTTP-layer backstop against a
// stuck upload or an unresponsive ffmpeg subprocess.
func timeoutMiddleware(d time.Duration, next http.Handler) http.Handler {
	return http.TimeoutHandler(next, d, `{"error":"request timed out"}`)
}

func (a *application) erase(ctx context.Context, dir string, dbOnly bool, all bool) {
	if err := a.store.EraseAll(ctx); err != nil {
		color.Red("error erasing store: %v", err)
		return
	}
	color.Green("index cleared")

	if !all {
		fmt.Println("erase complete")
		return
	}

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext == ".wav" || ext == ".m4a" || ext == ".mp3" || ext == ".flac" || ext == ".ogg" {
			return os.Remove(path)
		}
		return nil
	})
	if err != nil {
		color.Red("error cleaning files in %s: %v", dir, err)
	}
	fmt.Println("audio files cleared")
	fmt.Println("erase complete")
}

func (a *application) save(ctx context.Context, path string, force bool) {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		entries, err := manifest.Load(path)
		if err != nil {
			color.Red("error loading manifest: %v", err)
			return
		}
		a.processManifestConcurrently(ctx, entries, force)
		return
	}

	fileInfo, err := os.Stat(path)
	if err != nil {
		color.Red("error: %v", err)
		return
	}

	if !fileInfo.IsDir() {
		if err := a.saveEntry(ctx, manifest.Entry{Path: path}, force); err != nil {
			color.Red("error saving (%v): %v", path, err)
		}
		return
	}

	var entries []manifest.Entry
	filepath.Walk(path, func(fp string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			entries = append(entries, manifest.Entry{Path: fp})
		}
		return nil
	})

	a.processManifestConcurrently(ctx, entries, force)
}

func (a *application) processManifestConcurrently(ctx context.Context, entries []manifest.Entry, force bool) {
	numFiles := len(entries)
	if numFiles == 0 {
		return
	}

	maxWorkers := runtime.NumCPU() / 2
	if numFiles < maxWorkers {
		maxWorkers = numFiles
	}
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	jobs := make(chan manifest.Entry, numFiles)
	results := make(chan error, numFiles)

	for w := 0; w < maxWorkers; w++ {
		go func() {
			for entry := range jobs {
				results <- a.saveEntry(ctx, entry, force)
			}
		}()
	}

	for _, entry := range entries {
		jobs <- entry
	}
	close(jobs)

	successCount, errorCount := 0, 0
	for i := 0; i < numFiles; i++ {
		if err := <-results; err != nil {
			color.Red("error: %v", err)
			errorCount++
		} else {
			successCount++
		}
	}

	fmt.Printf("\nprocessed %d files: %d successful, %d failed\n", numFiles, successCount, errorCount)
}

func (a *application) saveEntry(ctx context.Context, entry manifest.Entry, force bool) error {
	name := entry.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(entry.Path), filepath.Ext(entry.Path))
	}

	if entry.YouTubeID != "" && a.yt != nil {
		if info, err := a.yt.Lookup(ctx, entry.YouTubeID); err != nil {
			log.Printf("[save] youtube metadata lookup failed for %s: %v", entry.YouTubeID, err)
		} else if info.Title != "" {
			name = info.Title
		}
	}

	sourcePath := entry.Path
	if entry.SkipSeconds > 0 {
		trimmed, terr := a.trimLeadingSeconds(ctx, entry.Path, entry.SkipSeconds)
		if terr != nil {
			log.Printf("[save] failed to skip leading %.1fs of %s, indexing from start: %v", entry.SkipSeconds, entry.Path, terr)
		} else {
			sourcePath = trimmed
			defer os.Remove(trimmed)
		}
	}

	buf, err := audio.Load(ctx, sourcePath)
	if err != nil {
		if force {
			log.Printf("[save] forcing index of %s despite decode warning: %v", entry.Path, err)
		} else {
			return fmt.Errorf("failed to decode %q: %w", entry.Path, err)
		}
	}
	if buf == nil {
		return fmt.Errorf("no audio decoded for %q", entry.Path)
	}

	result, err := a.engine.Ingest(name, buf.Samples, buf.SampleRate, audio.Duration(buf))
	if err != nil {
		return fmt.Errorf("failed to fingerprint %q: %w", entry.Path, err)
	}

	meta := engine.TrackMeta{
		ID:               result.TrackID,
		Name:             name,
		FingerprintCount: result.FingerprintCount,
		DurationSeconds:  audio.Duration(buf),
	}
	if err := a.store.SaveTrack(ctx, meta); err != nil {
		return fmt.Errorf("failed to persist track %q: %w", name, err)
	}
	if err := a.persistSnapshot(ctx); err != nil {
		return fmt.Errorf("failed to persist index snapshot: %w", err)
	}

	if a.catalog != nil && entry.YouTubeID != "" {
		catEntry := catalog.Entry{TrackID: result.TrackID, SourceURL: "https://www.youtube.com/watch?v=" + entry.YouTubeID}
		if err := a.catalog.Upsert(ctx, catEntry); err != nil {
			log.Printf("[save] catalog enrichment failed for %q: %v", name, err)
		}
	}

	fmt.Printf("indexed '%s' (%d fingerprints)\n", name, result.FingerprintCount)
	return nil
}

// trimLeadingSeconds extracts everything past skipSeconds into a fresh
// temp WAV via ffmpeg, used when a manifest entry's "options.skipSeconds"
// asks to skip an intro (e.g. a podcast cold-open) before fingerprinting.
func (a *application) trimLeadingSeconds(ctx context.Context, path string, skipSeconds float64) (string, error) {
	total, err := audio.GetAudioDuration(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to probe duration of %q: %w", path, err)
	}
	remaining := total - skipSeconds
	if remaining <= 0 {
		return "", fmt.Errorf("skipSeconds %.1f exceeds file duration %.1f", skipSeconds, total)
	}
	return audio.ExtractChunkAsWAV(ctx, path, skipSeconds, remaining)
}
