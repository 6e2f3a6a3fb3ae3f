package mmcheck

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	clog "mmcheck/pkg/log"
)

// WatchDirectory watches a directory for .mmb files and checks each one
// into the database as it appears or changes. A file named foo.mmb is
// stored under the name foo; a sibling foo.mm0 declaration file, if
// present, is matched against it. Files already in the directory are
// checked on startup. Blocks until the context is cancelled.
func WatchDirectory(ctx context.Context, db *Database, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "fsnotify.NewWatcher")
	}
	defer func() {
		_ = watcher.Close()
	}()

	if err := watcher.Add(dir); err != nil {
		return errors.Wrapf(err, "watch directory %s", dir)
	}

	// Check what's already there.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".mmb") {
			checkProofFile(db, filepath.Join(dir, entry.Name()))
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher channel closed")
			}
			if !strings.HasSuffix(event.Name, ".mmb") {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				checkProofFile(db, event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			clog.Base().Warn().Err(err).Msg("fsnotify watcher error")
		}
	}
}

func checkProofFile(db *Database, path string) {
	name := strings.TrimSuffix(filepath.Base(path), ".mmb")

	proof, err := os.ReadFile(path)
	if err != nil {
		clog.Base().Warn().Err(err).Str("path", path).Msg("can't read proof file")
		return
	}

	spec := ""
	specPath := strings.TrimSuffix(path, ".mmb") + ".mm0"
	if specBytes, err := os.ReadFile(specPath); err == nil {
		spec = string(specBytes)
	}

	info, err := db.CheckProof(name, proof, spec)
	if err != nil {
		clog.Base().Error().Err(err).Str("path", path).Msg("proof check failed")
		return
	}
	clog.Base().Info().
		Str("name", info.Name).
		Int("axioms", info.Axioms).
		Int("theorems", info.Theorems).
		Bool("has_spec", info.HasSpec).
		Msg("checked proof file")
}
