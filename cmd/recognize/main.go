package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/raine/photo-pricer/internal/config"
	"github.com/raine/photo-pricer/internal/recognizer"
	"github.com/raine/photo-pricer/internal/storage"
	"github.com/raine/photo-pricer/internal/vision"
)

func main() {
	imagePath := flag.String("image", "", "Path to the photo to recognize")
	base64Path := flag.String("base64", "", "Path to a file holding a base64 image or data: URL")
	noCache := flag.Bool("no-cache", false, "Skip the annotation cache")
	dbPath := flag.String("db", "", "Database path for the annotation cache (default from DB_PATH)")
	timeout := flag.Duration("timeout", 60*time.Second, "Overall timeout")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if (*imagePath == "") == (*base64Path == "") {
		fmt.Fprintf(os.Stderr, "Usage: %s -image <path> | -base64 <path> [-no-cache] [-db path]\n", os.Args[0])
		os.Exit(2)
	}

	config.LoadEnvFile()
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if missing := cfg.MissingPipeline(); len(missing) > 0 {
		fmt.Fprintf(os.Stderr, "Error: missing required config: %s\n", strings.Join(missing, ", "))
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var cache vision.CacheStore
	if !*noCache {
		store, err := storage.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		cache = store
	}

	annotator, err := recognizer.NewAnnotator(ctx, cfg, cache)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	searcher, closeSearcher, err := recognizer.NewSearcher(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeSearcher()

	rec, err := recognizer.New(recognizer.DefaultConfig(), annotator, searcher)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var result *recognizer.Result
	if *imagePath != "" {
		data, readErr := os.ReadFile(*imagePath)
		if readErr != nil {
			fmt.Fprintf(os.Stderr, "Failed to read image: %v\n", readErr)
			os.Exit(1)
		}
		result, err = rec.Recognize(ctx, data)
	} else {
		encoded, readErr := os.ReadFile(*base64Path)
		if readErr != nil {
			fmt.Fprintf(os.Stderr, "Failed to read file: %v\n", readErr)
			os.Exit(1)
		}
		result, err = rec.RecognizeBase64(ctx, strings.TrimSpace(string(encoded)))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
}
