// Package manifest parses the bulk-ingest manifest consumed by the "save"
// CLI subcommand: a JSON array of {path, name, youtubeID, options} entries
// describing files to fingerprint in one pass. Entries are parsed with
// jsonparser.ArrayEach to avoid unmarshaling the whole file into an
// intermediate struct slice, and gjson handles the loosely-typed
// "options" object.
package manifest

import (
	"fmt"
	"os"

	"github.com/buger/jsonparser"
	"github.com/tidwall/gjson"
)

// Entry describes one file to ingest.
type Entry struct {
	Path        string
	Name        string
	YouTubeID   string
	SkipSeconds float64
}

// Load reads and parses a manifest file at path.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %q: %w", path, err)
	}

	var entries []Entry
	var parseErr error

	_, err = jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, offset int, err error) {
		if parseErr != nil || err != nil {
			if err != nil {
				parseErr = err
			}
			return
		}

		entry, perr := parseEntry(value)
		if perr != nil {
			parseErr = perr
			return
		}
		entries = append(entries, entry)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %q: %w", path, err)
	}
	if parseErr != nil {
		return nil, fmt.Errorf("failed to parse manifest entry in %q: %w", path, parseErr)
	}

	return entries, nil
}

func parseEntry(value []byte) (Entry, error) {
	path, err := jsonparser.GetString(value, "path")
	if err != nil {
		return Entry{}, fmt.Errorf("entry missing required \"path\" field: %w", err)
	}

	name, _ := jsonparser.GetString(value, "name")
	youtubeID, _ := jsonparser.GetString(value, "youtubeID")

	skipSeconds := gjson.GetBytes(value, "options.skipSeconds").Float()

	return Entry{Path: path, Name: name, YouTubeID: youtubeID, SkipSeconds: skipSeconds}, nil
}
