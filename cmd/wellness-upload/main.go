package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/paradigmbrian/wellness-mono-sub000/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "Wellness server URL (e.g. https://wellness.tail1234.ts.net)")
	apiKey := flag.String("api-key", "", "API key for the server (or WELLNESS_API_KEY)")
	userID := flag.String("user", "", "user ID the payloads belong to")
	dir := flag.String("path", "", "directory of exported .json health payload files")
	dryRun := flag.Bool("dry-run", false, "parse files but don't send to server")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("wellness-upload", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *apiKey == "" {
		*apiKey = os.Getenv("WELLNESS_API_KEY")
	}

	if *dir == "" || *userID == "" {
		fmt.Fprintf(os.Stderr, "Usage: wellness-upload -server <URL> -user <ID> -path <export dir> [-api-key KEY] [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if !*dryRun && (*serverURL == "" || *apiKey == "") {
		fmt.Fprintf(os.Stderr, "Error: -server and -api-key are required (or use -dry-run)\n")
		os.Exit(1)
	}

	*serverURL = strings.TrimRight(*serverURL, "/")

	info, err := os.Stat(*dir)
	if err != nil || !info.IsDir() {
		log.Error("export directory not found", "path", *dir)
		os.Exit(1)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	state, err := upload.OpenStateDB(filepath.Join(homeDir, ".wellness-upload"))
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	var client *upload.Client
	if !*dryRun {
		client = upload.NewClient(*serverURL, *apiKey, *userID)
	} else {
		log.Info("DRY RUN mode, files will be parsed but not sent")
	}

	uploader := upload.New(client, state, *dir, *dryRun, log)
	stats, err := uploader.Run()
	if err != nil {
		log.Error("upload failed", "error", err)
		printStats(stats, state)
		os.Exit(1)
	}

	printStats(stats, state)
}

func printStats(stats *upload.Stats, state *upload.StateDB) {
	fmt.Println()
	fmt.Println("=== Upload Summary ===")
	fmt.Printf("  Files total:   %d\n", stats.FilesTotal)
	fmt.Printf("  Files sent:    %d\n", stats.FilesSent)
	fmt.Printf("  Files skipped: %d (already sent)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored: %d\n", stats.FilesErrored)
	fmt.Printf("  Days this run: %d\n", stats.DaysProduced)
	if total, err := state.TotalDaysSent(); err == nil {
		fmt.Printf("  Days all time: %d\n", total)
	}
	fmt.Println()
}
