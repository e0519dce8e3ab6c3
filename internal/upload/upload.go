package upload

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/paradigmbrian/wellness-mono-sub000/internal/models"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal   int
	FilesSent    int
	FilesSkipped int
	FilesErrored int

	// DaysProduced sums the per-file day counts the server reported for
	// this run.
	DaysProduced int
}

// Uploader walks an export directory of .json health payload files and
// POSTs each new one to the wellness server.
type Uploader struct {
	client *Client
	state  *StateDB
	dir    string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader.
func New(client *Client, state *StateDB, dir string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		dir:    dir,
		dryRun: dryRun,
		log:    log,
	}
}

// Run executes the upload pipeline. Files that fail to parse or send are
// logged and counted; one bad file does not abort the run.
func (u *Uploader) Run() (*Stats, error) {
	files, err := filepath.Glob(filepath.Join(u.dir, "*.json"))
	if err != nil {
		return &u.stats, fmt.Errorf("listing export dir %s: %w", u.dir, err)
	}
	sort.Strings(files)

	for _, f := range files {
		u.stats.FilesTotal++

		relPath, _ := filepath.Rel(u.dir, f)
		info, err := os.Stat(f)
		if err != nil {
			u.log.Warn("stat failed", "file", f, "error", err)
			u.stats.FilesErrored++
			continue
		}

		hash, err := HashFile(f)
		if err != nil {
			u.log.Warn("hash failed", "file", f, "error", err)
			u.stats.FilesErrored++
			continue
		}

		sent, err := u.state.IsSent(relPath, info.Size(), hash)
		if err != nil {
			u.log.Warn("state check failed", "file", f, "error", err)
			u.stats.FilesErrored++
			continue
		}
		if sent {
			u.stats.FilesSkipped++
			continue
		}

		data, err := os.ReadFile(f)
		if err != nil {
			u.log.Warn("read failed", "file", f, "error", err)
			u.stats.FilesErrored++
			continue
		}

		// Sanity-parse before sending so malformed exports fail locally.
		var payload models.HealthPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			u.log.Warn("parse failed", "file", f, "error", err)
			u.stats.FilesErrored++
			continue
		}

		if u.dryRun {
			u.log.Info("dry-run: would send", "file", relPath, "bytes", len(data))
		} else {
			result, err := u.client.SendPayload(data)
			if err != nil {
				u.log.Warn("send failed", "file", relPath, "error", err)
				u.stats.FilesErrored++
				continue
			}
			u.stats.DaysProduced += result.DaysProduced
			if err := u.state.MarkSent(relPath, info.Size(), hash, result.DaysProduced); err != nil {
				u.log.Warn("failed to mark sent", "file", relPath, "error", err)
			}
		}
		u.stats.FilesSent++
	}

	u.log.Info("upload complete",
		"total", u.stats.FilesTotal,
		"sent", u.stats.FilesSent,
		"skipped", u.stats.FilesSkipped,
		"errored", u.stats.FilesErrored,
		"days", u.stats.DaysProduced,
	)

	return &u.stats, nil
}
