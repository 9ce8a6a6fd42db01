package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mdobak/go-xerrors"

	"soundtrace/audio"
	"soundtrace/catalog"
	"soundtrace/engine"
)

const maxUploadSize = 5000 << 20 // 5 GB

var boundaryLogger = slog.New(slog.NewTextHandler(os.Stderr, nil))

type indexResponse struct {
	Name            string `json:"name"`
	Fingerprints    int    `json:"fingerprints"`
	StorageEstimate string `json:"storageEstimate"`
	DurationSec     int    `json:"durationSec"`
}

type matchResponse struct {
	Matched       bool   `json:"matched"`
	Track         string `json:"track,omitempty"`
	OffsetSeconds string `json:"offsetSeconds,omitempty"` // M:SS
	Score         int    `json:"score"`
	Confidence    string `json:"confidence"`
	Message       string `json:"message,omitempty"`
}

type statsResponse struct {
	TotalEntries      int    `json:"totalEntries"`
	TotalFingerprints int    `json:"totalFingerprints"`
	StorageEstimate   string `json:"storageEstimate"`
}

type entryResponse struct {
	ID           uint32 `json:"id"`
	Name         string `json:"name"`
	Fingerprints int    `json:"fingerprints"`
	SourceURL    string `json:"sourceUrl,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	log.Printf("[error] %d: %s", status, msg)
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServerError logs err with a captured stack trace before responding,
// the only place besides main's fatal startup path that reaches for
// go-xerrors: a 500 here is always worth a full trace in the logs.
func writeServerError(w http.ResponseWriter, label string, err error) {
	boundaryLogger.Error(label, xerrors.Attr(xerrors.New(err.Error())))
	writeError(w, http.StatusInternalServerError, err.Error())
}

func logMemUsage(label string) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	log.Printf("[mem] %s: alloc=%s, sys=%s, heap_in_use=%s",
		label, formatBytes(int64(m.Alloc)), formatBytes(int64(m.Sys)), formatBytes(int64(m.HeapInuse)))
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func saveUploadedFile(r *http.Request) (string, string, int64, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", "", 0, fmt.Errorf("no file provided: %w", err)
	}
	defer file.Close()

	tmpPath := filepath.Join("tmp", header.Filename)
	dst, err := os.Create(tmpPath)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, file)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to write file: %w", err)
	}

	return tmpPath, header.Filename, written, nil
}

func (a *application) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := r.Context()
	reqStart := time.Now()
	log.Printf("[index] received request from %s", r.RemoteAddr)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	tmpPath, filename, fileSize, err := saveUploadedFile(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer os.Remove(tmpPath)

	log.Printf("[index] file saved: %s (%s)", filename, formatBytes(fileSize))

	name := r.FormValue("name")
	if name == "" {
		name = strings.TrimSuffix(filename, filepath.Ext(filename))
	}

	logMemUsage("before processing")
	buf, err := audio.Load(ctx, tmpPath)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decode error: %v", err))
		return
	}

	result, err := a.engine.Ingest(name, buf.Samples, buf.SampleRate, audio.Duration(buf))
	if err != nil {
		writeServerError(w, "ingest failed", err)
		return
	}
	logMemUsage("after processing")

	meta := engine.TrackMeta{
		ID:               result.TrackID,
		Name:             name,
		FingerprintCount: result.FingerprintCount,
		DurationSeconds:  audio.Duration(buf),
	}
	if err := a.store.SaveTrack(ctx, meta); err != nil {
		writeServerError(w, "failed to persist track", err)
		return
	}
	if err := a.persistSnapshot(ctx); err != nil {
		writeServerError(w, "failed to persist index snapshot", err)
		return
	}

	if a.catalog != nil {
		if sourceURL := r.FormValue("sourceUrl"); sourceURL != "" {
			entry := catalog.Entry{TrackID: result.TrackID, SourceURL: sourceURL, Notes: r.FormValue("notes")}
			if err := a.catalog.Upsert(ctx, entry); err != nil {
				log.Printf("[index] catalog enrichment failed: %v", err)
			}
		}
	}

	resp := indexResponse{
		Name:            name,
		Fingerprints:    result.FingerprintCount,
		StorageEstimate: formatBytes(int64(result.FingerprintCount) * 12),
		DurationSec:     int(audio.Duration(buf)),
	}

	log.Printf("[index] completed %q: %d fingerprints, %s total time", name, result.FingerprintCount, time.Since(reqStart))
	writeJSON(w, http.StatusOK, resp)
}

func (a *application) handleMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := r.Context()
	reqStart := time.Now()
	log.Printf("[match] received request from %s", r.RemoteAddr)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	tmpPath, filename, fileSize, err := saveUploadedFile(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer os.Remove(tmpPath)

	log.Printf("[match] file saved: %s (%s)", filename, formatBytes(fileSize))
	logMemUsage("before processing")

	buf, err := audio.Load(ctx, tmpPath)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decode error: %v", err))
		return
	}

	result, err := a.engine.Recognize(buf.Samples, buf.SampleRate)
	if err != nil {
		writeServerError(w, "recognize failed", err)
		return
	}
	logMemUsage("after processing")

	resp := matchResponse{
		Matched:    result.Matched,
		Track:      result.TrackName,
		Score:      result.Score,
		Confidence: string(result.Confidence),
		Message:    result.Message,
	}
	if result.Matched {
		resp.OffsetSeconds = engine.FormatOffset(result.OffsetSeconds)
	}

	log.Printf("[match] completed in %s, matched=%v", time.Since(reqStart), result.Matched)
	writeJSON(w, http.StatusOK, resp)
}

func (a *application) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	stats := a.engine.Stats()
	writeJSON(w, http.StatusOK, statsResponse{
		TotalEntries:      stats.TrackCount,
		TotalFingerprints: stats.HashCount,
		StorageEstimate:   formatBytes(int64(stats.HashCount) * 12),
	})
}

func (a *application) handleEntries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := r.Context()
	tracks := a.engine.ListTracks()

	entries := make([]entryResponse, 0, len(tracks))
	for _, t := range tracks {
		entry := entryResponse{ID: uint32(t.ID), Name: t.Name, Fingerprints: t.FingerprintCount}
		if a.catalog != nil {
			if catEntry, ok, err := a.catalog.Get(ctx, t.ID); err == nil && ok {
				entry.SourceURL = catEntry.SourceURL
			}
		}
		entries = append(entries, entry)
	}

	writeJSON(w, http.StatusOK, entries)
}
