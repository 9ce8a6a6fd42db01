package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/mdobak/go-xerrors"

	"soundtrace/utils"
)

func main() {
	_ = utils.CreateFolder("tmp")
	_ = utils.CreateFolder(songsDir)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	app, err := newApplication(ctx)
	if err != nil {
		fail(err)
	}
	defer app.close(ctx)

	switch os.Args[1] {
	case "find":
		if len(os.Args) < 3 {
			fmt.Println("usage: soundtrace find <path_to_audio_file>")
			os.Exit(1)
		}
		app.find(ctx, os.Args[2])

	case "serve":
		serveCmd := flag.NewFlagSet("serve", flag.ExitOnError)
		protocol := serveCmd.String("proto", "http", "protocol label for the startup log (the server listens over plain HTTP only)")
		port := serveCmd.String("p", "5000", "port to use")
		serveCmd.Parse(os.Args[2:])
		app.serve(ctx, *protocol, *port)

	case "erase":
		dbOnly := true
		all := false

		if len(os.Args) > 2 {
			switch os.Args[2] {
			case "db":
				dbOnly = true
			case "all":
				dbOnly = false
				all = true
			default:
				fmt.Println("usage: soundtrace erase [db | all]")
				os.Exit(1)
			}
		}

		app.erase(ctx, songsDir, dbOnly, all)

	case "save":
		indexCmd := flag.NewFlagSet("save", flag.ExitOnError)
		force := indexCmd.Bool("force", false, "index file even without complete metadata")
		indexCmd.BoolVar(force, "f", false, "index file even without complete metadata (shorthand)")
		indexCmd.Parse(os.Args[2:])
		if indexCmd.NArg() < 1 {
			fmt.Println("usage: soundtrace save [-f|--force] <path_to_file_dir_or_manifest.json>")
			os.Exit(1)
		}
		app.save(ctx, indexCmd.Arg(0), *force)

	default:
		printUsage()
		os.Exit(1)
	}
}

// fail logs a boundary error with its stack trace and exits. It is only
// used for errors that abort the whole process (e.g. the track store
// itself cannot be opened); request-scoped errors are written to the HTTP
// response instead.
func fail(err error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	logger.Error("fatal startup error", xerrors.Attr(xerrors.New(err.Error())))
	os.Exit(1)
}

func printUsage() {
	bold := color.New(color.Bold)
	bold.Println("usage: soundtrace <command>")
	fmt.Println()
	fmt.Println("commands:")
	fmt.Println("  find  <audio_file>                match a file against the index")
	fmt.Println("  save  [-f] <file_dir_or_manifest>  index audio file(s) into the index")
	fmt.Println("  erase [db | all]                   clear the index (and optionally audio files)")
	fmt.Println("  serve [-proto http] [-p 5000]      start the web server")
}
