package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"soundtrace/catalog"
	"soundtrace/engine"
	"soundtrace/storage"
	"soundtrace/utils"
	"soundtrace/ytmeta"
)

const (
	songsDir        = "songs"
	defaultDBPath   = "soundtrace.db"
	snapshotLogName = "index snapshot"
)

// application holds the long-lived collaborators wired together for the
// life of one CLI invocation or server process: the recognition engine,
// its SQLite-backed persistence, and the two optional enrichment
// collaborators (catalog, ytmeta) that degrade gracefully when unconfigured.
type application struct {
	engine  *engine.Engine
	store   *storage.Store
	catalog *catalog.Catalog
	yt      *ytmeta.Client
}

// newApplication loads .env (if present), opens the track store, restores
// any previously saved index snapshot, and connects catalog/ytmeta only if
// their respective environment variables are set. A missing catalog or
// ytmeta configuration is not an error: both are additive collaborators.
func newApplication(ctx context.Context) (*application, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("[config] no .env file loaded: %v", err)
	}

	eng, err := engine.New(engine.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to construct engine: %w", err)
	}

	dbPath := utils.GetEnv("SQLITE_PATH", defaultDBPath)
	store, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open track store at %q: %w", dbPath, err)
	}

	if err := restoreSnapshot(ctx, eng, store); err != nil {
		log.Printf("[config] %s not restored: %v", snapshotLogName, err)
	}

	app := &application{engine: eng, store: store}

	if uri := utils.GetEnv("MONGO_URI", ""); uri != "" {
		cat, err := catalog.Connect(ctx, uri)
		if err != nil {
			log.Printf("[config] catalog disabled: %v", err)
		} else {
			app.catalog = cat
		}
	}

	if apiKey := utils.GetEnv("YOUTUBE_API_KEY", ""); apiKey != "" {
		yt, err := ytmeta.New(ctx, apiKey)
		if err != nil {
			log.Printf("[config] youtube metadata lookup disabled: %v", err)
		} else {
			app.yt = yt
		}
	}

	return app, nil
}

func restoreSnapshot(ctx context.Context, eng *engine.Engine, store *storage.Store) error {
	data, ok, err := store.LoadSnapshot(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return eng.Index().Restore(data)
}

// persistSnapshot writes the engine's current index state to the store,
// called after every successful ingest so a restart picks up where it
// left off.
func (a *application) persistSnapshot(ctx context.Context) error {
	data, err := a.engine.Index().Snapshot()
	if err != nil {
		return fmt.Errorf("failed to snapshot index: %w", err)
	}
	return a.store.SaveSnapshot(ctx, data)
}

// close releases the optional collaborators; the store is always present.
func (a *application) close(ctx context.Context) {
	if a.catalog != nil {
		_ = a.catalog.Close(ctx)
	}
	_ = a.store.Close()
}
