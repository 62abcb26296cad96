package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/partdex/partdex/pkg/config"
	"github.com/partdex/partdex/pkg/storage/sqlite"
)

var (
	watchDir        = flag.String("watch-dir", "./extractions", "Directory to watch for extraction JSON files")
	processExisting = flag.Bool("process-existing", true, "Load extraction files already present at startup")
	settleDelay     = flag.Duration("settle-delay", 2*time.Second, "Wait after the last write before loading a file")
)

func main() {
	flag.Parse()

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	store, err := sqlite.Open(cfg.Storage)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open database")
	}
	defer store.Close()

	loader := newLoader(store, logger)

	if *processExisting {
		scanExistingExtractions(*watchDir, loader, logger)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.WithError(err).Fatal("Failed to create watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(*watchDir); err != nil {
		logger.WithError(err).WithField("dir", *watchDir).Fatal("Failed to watch directory")
	}

	// Extraction files arrive in multiple writes; track the last write per
	// file and load once the stream has settled.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	logger.WithField("dir", *watchDir).Info("Watching for extraction files")
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 && filepath.Ext(event.Name) == ".json" {
				pending[event.Name] = time.Now()
			}
		case <-ticker.C:
			for path, last := range pending {
				if time.Since(last) < *settleDelay {
					continue
				}
				delete(pending, path)
				loadAndArchive(loader, path, logger)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.WithError(err).Error("Watcher error")
		}
	}
}

// scanExistingExtractions loads any .json files left over from before the
// watcher started.
func scanExistingExtractions(dir string, loader *loader, logger *logrus.Logger) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.WithError(err).WithField("dir", dir).Warn("Cannot scan for existing extractions")
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		loadAndArchive(loader, filepath.Join(dir, entry.Name()), logger)
	}
}

func loadAndArchive(loader *loader, path string, logger *logrus.Logger) {
	log := logger.WithField("file", filepath.Base(path))

	stats, err := loader.LoadFile(context.Background(), path)
	if err != nil {
		log.WithError(err).Error("Failed to load extraction")
		return
	}
	log.WithFields(logrus.Fields{
		"parts":        stats.Parts,
		"images":       stats.Images,
		"guides":       stats.Guides,
		"associations": stats.Associations,
		"skipped":      stats.Skipped,
	}).Info("Extraction loaded")

	if err := os.Rename(path, path+".done"); err != nil {
		log.WithError(err).Warn("Failed to archive extraction file")
	}
}
