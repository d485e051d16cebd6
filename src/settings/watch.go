package settings

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the burst of events editors produce on save.
const reloadDebounce = 150 * time.Millisecond

// lastSaved holds the bytes Save last wrote per absolute path, so Watch can
// tell our own saves from external edits.
var lastSaved = struct {
	sync.Mutex
	data map[string][]byte
}{data: make(map[string][]byte)}

func recordSave(path string, data []byte) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	lastSaved.Lock()
	lastSaved.data[filepath.Clean(abs)] = data
	lastSaved.Unlock()
}

func isOwnSave(abs string, data []byte) bool {
	lastSaved.Lock()
	defer lastSaved.Unlock()
	saved, ok := lastSaved.data[filepath.Clean(abs)]
	return ok && bytes.Equal(saved, data)
}

// Watch reloads the settings file whenever it is written or replaced and
// passes valid results to onChange. Invalid edits are logged and skipped, as
// are reloads of content this process saved itself, so live edits made
// after a Save are not reverted.
// The directory is watched rather than the file so atomic renames (ours and
// editors') are seen. Watch returns once ctx is done.
func Watch(ctx context.Context, path string, onChange func(*Settings)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create settings watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	log.Printf("Watching settings file %s", abs)

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(abs) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			timerC = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("settings watcher error: %v", err)
		case <-timerC:
			timerC = nil
			if data, err := os.ReadFile(abs); err == nil && isOwnSave(abs, data) {
				continue
			}
			s, err := Load(abs)
			if err != nil {
				log.Printf("Ignoring settings change: %v", err)
				continue
			}
			log.Printf("Settings reloaded from %s", abs)
			onChange(s)
		}
	}
}
